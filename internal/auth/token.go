package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/usersvc/accounts-api/internal/core/domain"
	"github.com/usersvc/accounts-api/internal/core/ports"
)

// DefaultTokenTTL is the fixed validity window for issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// JWTCodec implements ports.TokenCodec with HS256-signed JWTs. The signing
// secret is injected once at construction and never rotated at runtime.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTCodec(secret string, ttl time.Duration) *JWTCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a claim bundle {sub, role, iat, exp} valid for the codec's TTL.
func (c *JWTCodec) Issue(subjectID string, role domain.Role) (string, error) {
	now := c.now().UTC()
	claims := jwt.MapClaims{
		"sub":  subjectID,
		"role": int(role),
		"iat":  now.Unix(),
		"exp":  now.Add(c.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates token, mapping jwt failures onto the domain's
// three-way split: malformed / expired / bad signature.
func (c *JWTCodec) Verify(token string) (*ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenInvalidSignature
		default:
			return nil, domain.ErrTokenMalformed
		}
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalidSignature
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrTokenMalformed
	}

	out := &ports.TokenClaims{SubjectID: sub}
	if raw, ok := claims["role"].(float64); ok {
		out.Role = domain.Role(int(raw))
	}
	return out, nil
}
