package ports

import (
	"context"

	"github.com/usersvc/accounts-api/internal/core/domain"
)

// AccountRepository defines the persistence contract for accounts.
// "Not found" is domain.ErrAccountNotFound, never a nil-with-nil-error pair;
// infrastructure failures are returned wrapped and distinct from it.
type AccountRepository interface {
	Insert(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindAll returns every account with PasswordHash and CreditCardNumber
	// projected away.
	FindAll(ctx context.Context) ([]domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	DeleteByUsername(ctx context.Context, username string) error
}
