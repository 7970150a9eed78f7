package domain

import (
	"regexp"
	"strings"
	"time"
)

// Account is the sole persisted aggregate: a registered user of the service.
// PasswordHash is bson-only and must never appear in an outward representation.
type Account struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	Username         string    `json:"username" bson:"username"`
	Email            string    `json:"email" bson:"email"`
	PasswordHash     string    `json:"-" bson:"password_hash"`
	CreditCardNumber string    `json:"creditCardNumber,omitempty" bson:"credit_card_number,omitempty"`
	Role             Role      `json:"userLevel" bson:"user_level"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

var (
	creditCardPattern = regexp.MustCompile(`^[0-9]{16}$`)
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

// NormalizeCreditCard strips dashes and spaces from a raw card number.
func NormalizeCreditCard(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, raw)
}

// IsCreditCardNumber reports whether raw, once separators are stripped,
// is exactly 16 digits.
func IsCreditCardNumber(raw string) bool {
	if raw == "" {
		return false
	}
	return creditCardPattern.MatchString(NormalizeCreditCard(raw))
}

// IsEmail reports whether raw is a syntactically valid email address.
func IsEmail(raw string) bool {
	return emailPattern.MatchString(raw)
}
