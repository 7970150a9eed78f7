package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/usersvc/accounts-api/internal/core/domain"
	"github.com/usersvc/accounts-api/internal/core/ports"
)

// Registration validation messages, returned verbatim in the 400 error array.
const (
	MsgUsernameRequired  = "Username is a required field."
	MsgUsernameTaken     = "Username is already in use."
	MsgEmailRequired     = "Email is a required field."
	MsgEmailInvalid      = "Invalid email address."
	MsgEmailTaken        = "Email is already in use."
	MsgCardRequired      = "Credit Card Number is a required field."
	MsgCardInvalid       = "Invalid credit card number."
	MsgPasswordRequired  = "Password is a required field."
	MsgPassword2Required = "Password confirmation is a required field."
	MsgPasswordsMismatch = "Passwords must match."
	MsgUserLevelInvalid  = "userLevel must be a number that is 0, 1 or 2."
)

// AccountService implements registration, authentication and the self-service
// and administrative account operations.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	tokens ports.TokenCodec
	mail   ports.EmailEnqueuer
	log    zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, hasher ports.PasswordHasher, tokens ports.TokenCodec, mail ports.EmailEnqueuer, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, tokens: tokens, mail: mail, log: log}
}

// Register validates every field, collecting all failures rather than
// stopping at the first, then persists the account and issues a token for it.
// The pre-insert uniqueness lookups are a fast path only; the unique indexes
// on username and email are the real arbiter under concurrent registration.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	var verrs domain.ValidationErrors

	if in.Username == "" {
		verrs = append(verrs, MsgUsernameRequired)
	} else {
		taken, err := s.usernameTaken(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			verrs = append(verrs, MsgUsernameTaken)
		}
	}

	if in.Email == "" {
		verrs = append(verrs, MsgEmailRequired)
	} else if !domain.IsEmail(in.Email) {
		verrs = append(verrs, MsgEmailInvalid)
	} else {
		taken, err := s.emailTaken(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			verrs = append(verrs, MsgEmailTaken)
		}
	}

	if in.CreditCardNumber == "" {
		verrs = append(verrs, MsgCardRequired)
	} else if !domain.IsCreditCardNumber(in.CreditCardNumber) {
		verrs = append(verrs, MsgCardInvalid)
	}

	if in.Password == "" {
		verrs = append(verrs, MsgPasswordRequired)
	}
	if in.Password2 == "" {
		verrs = append(verrs, MsgPassword2Required)
	} else if in.Password != "" && in.Password != in.Password2 {
		verrs = append(verrs, MsgPasswordsMismatch)
	}

	role := domain.RoleNormal
	if in.UserLevel != nil {
		parsed, err := domain.ParseRole(in.UserLevel)
		if err != nil {
			verrs = append(verrs, MsgUserLevelInvalid)
		} else {
			role = parsed
		}
	}

	if len(verrs) > 0 {
		return nil, verrs
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:         in.Username,
		Email:            in.Email,
		PasswordHash:     hash,
		CreditCardNumber: domain.NormalizeCreditCard(in.CreditCardNumber),
		Role:             role,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	created, err := s.repo.Insert(ctx, account)
	if err != nil {
		// A concurrent registration can slip past the fast-path checks; the
		// index violation comes back here and is still a validation error.
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			return nil, domain.ValidationErrors{MsgUsernameTaken}
		case errors.Is(err, domain.ErrEmailTaken):
			return nil, domain.ValidationErrors{MsgEmailTaken}
		case errors.Is(err, domain.ErrDuplicateAccount):
			return nil, domain.ValidationErrors{MsgUsernameTaken, MsgEmailTaken}
		}
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID, created.Role)
	if err != nil {
		return nil, err
	}

	if s.mail != nil {
		s.mail.Enqueue(ctx, ports.EmailJob{
			To:      created.Email,
			Subject: "Welcome to the users service",
			Body:    fmt.Sprintf("Hi %s, your account has been created.", created.Username),
		})
	}

	return &ports.AuthResult{Token: token, Account: created}, nil
}

// Login verifies the password and issues a token embedding the account's
// current role. The embedded role can go stale; admin-gated endpoints re-read
// it from storage on every request.
func (s *AccountService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, Account: account}, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateSelf applies email and credit card changes when they are
// syntactically valid, ignoring invalid values, and only writes back when
// something actually changed.
func (s *AccountService) UpdateSelf(ctx context.Context, id string, in ports.UpdateSelfInput) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.Email != "" && domain.IsEmail(in.Email) && in.Email != account.Email {
		account.Email = in.Email
		changed = true
	}
	if card := domain.NormalizeCreditCard(in.CreditCardNumber); in.CreditCardNumber != "" &&
		domain.IsCreditCardNumber(in.CreditCardNumber) && card != account.CreditCardNumber {
		account.CreditCardNumber = card
		changed = true
	}

	if !changed {
		return account, nil
	}

	account.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.repo.FindAll(ctx)
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *AccountService) DeleteByUsername(ctx context.Context, username string) error {
	return s.repo.DeleteByUsername(ctx, username)
}

// ChangeRole sets the account's permission tier. The role has already been
// parsed at the boundary; the bounds check here keeps the invariant local.
func (s *AccountService) ChangeRole(ctx context.Context, username string, role domain.Role) (*domain.Account, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if account.Role != role {
		account.Role = role
		account.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, account); err != nil {
			return nil, err
		}
	}
	return account, nil
}

func (s *AccountService) usernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrAccountNotFound) {
		return false, nil
	}
	return false, err
}

func (s *AccountService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrAccountNotFound) {
		return false, nil
	}
	return false, err
}
