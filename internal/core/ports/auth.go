package ports

import "github.com/usersvc/accounts-api/internal/core/domain"

// TokenClaims is the decoded identity carried by a bearer token.
type TokenClaims struct {
	SubjectID string
	Role      domain.Role
}

// TokenCodec signs an identity claim into an opaque bearer token and
// verifies tokens back into claims. Verification failures are one of
// domain.ErrTokenMalformed, domain.ErrTokenExpired or
// domain.ErrTokenInvalidSignature.
type TokenCodec interface {
	Issue(subjectID string, role domain.Role) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// PasswordHasher salts and hashes credentials. Verify never returns an error
// for malformed input; a bad hash simply fails to match.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}
