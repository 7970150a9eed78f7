package ports

import (
	"context"

	"github.com/usersvc/accounts-api/internal/core/domain"
)

// RegisterInput carries the raw registration form. UserLevel is the decoded
// JSON value as-is (number, string or nil); nil means "default to Normal".
// All validation happens inside the service, not at binding time, so every
// failing field can be reported together.
type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	Password2        string
	CreditCardNumber string
	UserLevel        any
}

// UpdateSelfInput carries the self-service profile changes. Empty fields are
// left untouched; syntactically invalid values are ignored rather than
// rejected.
type UpdateSelfInput struct {
	Email            string
	CreditCardNumber string
}

// AuthResult is returned by Register and Login: the issued bearer token plus
// the account it identifies.
type AuthResult struct {
	Token   string
	Account *domain.Account
}

type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	UpdateSelf(ctx context.Context, id string, in UpdateSelfInput) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	DeleteByUsername(ctx context.Context, username string) error
	ChangeRole(ctx context.Context, username string, role domain.Role) (*domain.Account, error)
}
