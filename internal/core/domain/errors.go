package domain

import "errors"

var ErrAccountNotFound = errors.New("account not found")
var ErrUsernameTaken = errors.New("username already in use")
var ErrEmailTaken = errors.New("email already in use")
var ErrDuplicateAccount = errors.New("account already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRole = errors.New("user level must be 0, 1 or 2")

// Token verification failures. All three surface to the client as a single
// generic authentication failure; the split exists for logging and metrics.
var ErrTokenMalformed = errors.New("token malformed")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalidSignature = errors.New("token signature invalid")

// ValidationErrors collects every failing registration check, in field order.
// It satisfies error so services can return it through the usual path.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	return v[0]
}
