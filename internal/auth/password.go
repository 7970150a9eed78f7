package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost matches the work factor the service has always used; bumping it
// only affects newly written hashes, existing ones keep their embedded cost.
const hashCost = 10

// BcryptHasher implements ports.PasswordHasher on top of x/crypto/bcrypt.
// Each Hash call draws a fresh random salt, so hashing the same plaintext
// twice yields different outputs.
type BcryptHasher struct{}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// Verify recomputes using the salt embedded in hashed and compares in
// constant time. Malformed hashes report false, never an error.
func (h *BcryptHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
