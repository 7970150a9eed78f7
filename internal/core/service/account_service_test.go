package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/usersvc/accounts-api/internal/core/domain"
	"github.com/usersvc/accounts-api/internal/core/ports"
)

type stubAccountRepo struct {
	accounts  map[string]*domain.Account // keyed by username
	nextID    int
	updates   int
	insertErr error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Insert(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	if _, exists := r.accounts[account.Username]; exists {
		return nil, domain.ErrUsernameTaken
	}
	r.nextID++
	created := cloneAccount(account)
	created.ID = fmt.Sprintf("id-%d", r.nextID)
	r.accounts[created.Username] = cloneAccount(created)
	return created, nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	if a, ok := r.accounts[username]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindAll(_ context.Context) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		stripped := *a
		stripped.PasswordHash = ""
		stripped.CreditCardNumber = ""
		out = append(out, stripped)
	}
	return out, nil
}

func (r *stubAccountRepo) Update(_ context.Context, account *domain.Account) error {
	for username, a := range r.accounts {
		if a.ID == account.ID {
			r.updates++
			r.accounts[username] = cloneAccount(account)
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

func (r *stubAccountRepo) DeleteByUsername(_ context.Context, username string) error {
	if _, ok := r.accounts[username]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, username)
	return nil
}

// fakeHasher avoids bcrypt cost in tests; the real hasher has its own tests.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, hashed string) bool  { return hashed == "hashed:"+plaintext }

type fakeCodec struct{}

func (fakeCodec) Issue(subjectID string, role domain.Role) (string, error) {
	return fmt.Sprintf("token:%s:%d", subjectID, int(role)), nil
}

func (fakeCodec) Verify(string) (*ports.TokenClaims, error) {
	return nil, domain.ErrTokenMalformed
}

type captureEnqueuer struct {
	jobs []ports.EmailJob
}

func (c *captureEnqueuer) Enqueue(_ context.Context, job ports.EmailJob) {
	c.jobs = append(c.jobs, job)
}

func newTestService(repo *stubAccountRepo) (*AccountService, *captureEnqueuer) {
	mail := &captureEnqueuer{}
	return NewAccountService(repo, fakeHasher{}, fakeCodec{}, mail, zerolog.Nop()), mail
}

func validRegisterInput() ports.RegisterInput {
	return ports.RegisterInput{
		Username:         "normalUser",
		Email:            "normalUser@live.co.uk",
		Password:         "p",
		Password2:        "p",
		CreditCardNumber: "1111222233334444",
	}
}

func TestAccountService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc, mail := newTestService(repo)

	result, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.Account.Role != domain.RoleNormal {
		t.Fatalf("expected default role Normal, got %v", result.Account.Role)
	}
	if result.Account.PasswordHash == "p" || result.Account.PasswordHash == "" {
		t.Fatalf("password not hashed: %q", result.Account.PasswordHash)
	}
	if want := fmt.Sprintf("token:%s:0", result.Account.ID); result.Token != want {
		t.Fatalf("token issued for wrong subject: %q", result.Token)
	}
	if len(mail.jobs) != 1 || mail.jobs[0].To != "normalUser@live.co.uk" {
		t.Fatalf("expected one welcome email, got %+v", mail.jobs)
	}
}

func TestAccountService_Register_ExplicitRole(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	in := validRegisterInput()
	in.UserLevel = float64(2)
	result, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.Account.Role != domain.RoleManager {
		t.Fatalf("expected Manager, got %v", result.Account.Role)
	}
}

func TestAccountService_Register_CollectsAllErrors(t *testing.T) {
	repo := newStubAccountRepo()
	svc, mail := newTestService(repo)

	_, err := svc.Register(context.Background(), ports.RegisterInput{})
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}

	want := domain.ValidationErrors{
		MsgUsernameRequired,
		MsgEmailRequired,
		MsgCardRequired,
		MsgPasswordRequired,
		MsgPassword2Required,
	}
	if !reflect.DeepEqual(verrs, want) {
		t.Fatalf("unexpected messages: %v", verrs)
	}
	if len(mail.jobs) != 0 {
		t.Fatalf("no email expected on failed registration")
	}
}

func TestAccountService_Register_FieldErrors(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
		want   string
	}{
		{"bad email", func(in *ports.RegisterInput) { in.Email = "123" }, MsgEmailInvalid},
		{"bad card", func(in *ports.RegisterInput) { in.CreditCardNumber = "111" }, MsgCardInvalid},
		{"password mismatch", func(in *ports.RegisterInput) { in.Password2 = "other" }, MsgPasswordsMismatch},
		{"bad user level", func(in *ports.RegisterInput) { in.UserLevel = "apple" }, MsgUserLevelInvalid},
		{"user level out of range", func(in *ports.RegisterInput) { in.UserLevel = float64(4) }, MsgUserLevelInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegisterInput()
			in.Username = "user_" + tc.name
			in.Email = "user" + tc.name + "@example.com"
			tc.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			var verrs domain.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if len(verrs) != 1 || verrs[0] != tc.want {
				t.Fatalf("expected [%q], got %v", tc.want, verrs)
			}
		})
	}
}

func TestAccountService_Register_DuplicateUsernameAndEmail(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	want := domain.ValidationErrors{MsgUsernameTaken, MsgEmailTaken}
	if !reflect.DeepEqual(verrs, want) {
		t.Fatalf("unexpected messages: %v", verrs)
	}
}

func TestAccountService_Register_RaceLosesToIndex(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	// The fast-path checks pass but the unique index rejects the insert, as
	// happens when two registrations for the same username race.
	repo.insertErr = domain.ErrUsernameTaken

	_, err := svc.Register(context.Background(), validRegisterInput())
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 1 || verrs[0] != MsgUsernameTaken {
		t.Fatalf("unexpected messages: %v", verrs)
	}
}

func TestAccountService_Login(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	reg, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(context.Background(), "normalUser", "p")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if want := fmt.Sprintf("token:%s:0", reg.Account.ID); result.Token != want {
		t.Fatalf("unexpected token %q", result.Token)
	}

	if _, err := svc.Login(context.Background(), "normalUser", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost", "p"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_UpdateSelf(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	reg, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id := reg.Account.ID

	updated, err := svc.UpdateSelf(context.Background(), id, ports.UpdateSelfInput{
		Email:            "newNormalUser@live.co.uk",
		CreditCardNumber: "1234-5678-9012-3456",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "newNormalUser@live.co.uk" {
		t.Fatalf("email not updated: %s", updated.Email)
	}
	if updated.CreditCardNumber != "1234567890123456" {
		t.Fatalf("card not normalized: %s", updated.CreditCardNumber)
	}
	if repo.updates != 1 {
		t.Fatalf("expected one write, got %d", repo.updates)
	}
}

func TestAccountService_UpdateSelf_InvalidValuesIgnored(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	reg, _ := svc.Register(context.Background(), validRegisterInput())

	updated, err := svc.UpdateSelf(context.Background(), reg.Account.ID, ports.UpdateSelfInput{
		Email:            "123",
		CreditCardNumber: "123",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "normalUser@live.co.uk" || updated.CreditCardNumber != "1111222233334444" {
		t.Fatalf("invalid values were applied: %+v", updated)
	}
	if repo.updates != 0 {
		t.Fatalf("no write expected, got %d", repo.updates)
	}
}

func TestAccountService_UpdateSelf_NoNetChange(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	reg, _ := svc.Register(context.Background(), validRegisterInput())

	updated, err := svc.UpdateSelf(context.Background(), reg.Account.ID, ports.UpdateSelfInput{
		Email:            "normalUser@live.co.uk",
		CreditCardNumber: "1111 2222 3333 4444",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "normalUser@live.co.uk" {
		t.Fatalf("unexpected account state: %+v", updated)
	}
	if repo.updates != 0 {
		t.Fatalf("identical values must not trigger a write, got %d", repo.updates)
	}
}

func TestAccountService_ChangeRole(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	_, _ = svc.Register(context.Background(), validRegisterInput())

	account, err := svc.ChangeRole(context.Background(), "normalUser", domain.RoleManager)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if account.Role != domain.RoleManager {
		t.Fatalf("role not changed: %v", account.Role)
	}

	stored, _ := repo.FindByUsername(context.Background(), "normalUser")
	if stored.Role != domain.RoleManager {
		t.Fatalf("role change not persisted: %v", stored.Role)
	}
}

func TestAccountService_ChangeRole_OutOfRange(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	_, _ = svc.Register(context.Background(), validRegisterInput())

	for _, r := range []domain.Role{-1, 3, 42} {
		if _, err := svc.ChangeRole(context.Background(), "normalUser", r); !errors.Is(err, domain.ErrInvalidRole) {
			t.Fatalf("role %d: expected ErrInvalidRole, got %v", int(r), err)
		}
	}

	stored, _ := repo.FindByUsername(context.Background(), "normalUser")
	if stored.Role != domain.RoleNormal {
		t.Fatalf("rejected change mutated the account: %v", stored.Role)
	}
}

func TestAccountService_ChangeRole_UnknownUser(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	if _, err := svc.ChangeRole(context.Background(), "ghost", domain.RoleStaff); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_DeleteByUsername(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	_, _ = svc.Register(context.Background(), validRegisterInput())

	if err := svc.DeleteByUsername(context.Background(), "normalUser"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteByUsername(context.Background(), "normalUser"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on second delete, got %v", err)
	}
}

func TestAccountService_List_StripsSecrets(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _ := newTestService(repo)

	_, _ = svc.Register(context.Background(), validRegisterInput())

	accounts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected one account, got %d", len(accounts))
	}
	if accounts[0].PasswordHash != "" || accounts[0].CreditCardNumber != "" {
		t.Fatalf("secrets leaked into listing: %+v", accounts[0])
	}
}
