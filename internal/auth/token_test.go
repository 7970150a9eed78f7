package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/usersvc/accounts-api/internal/core/domain"
)

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := NewJWTCodec("secret", time.Hour)

	token, err := codec.Issue("account-123", domain.RoleStaff)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty string")
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.SubjectID != "account-123" {
		t.Fatalf("subject mismatch: %s", claims.SubjectID)
	}
	if claims.Role != domain.RoleStaff {
		t.Fatalf("role mismatch: %v", claims.Role)
	}
}

func TestJWTCodec_Expired(t *testing.T) {
	codec := NewJWTCodec("secret", 24*time.Hour)

	token, err := codec.Issue("account-123", domain.RoleNormal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Move the codec clock past the 24h validity window.
	codec.now = func() time.Time { return time.Now().Add(24*time.Hour + time.Minute) }

	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTCodec_TamperedSignature(t *testing.T) {
	codec := NewJWTCodec("secret", time.Hour)

	token, err := codec.Issue("account-123", domain.RoleNormal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	if _, err := codec.Verify(tampered); !errors.Is(err, domain.ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	issuer := NewJWTCodec("secret-one", time.Hour)
	verifier := NewJWTCodec("secret-two", time.Hour)

	token, err := issuer.Issue("account-123", domain.RoleNormal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, domain.ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestJWTCodec_RejectsForeignAlgorithm(t *testing.T) {
	codec := NewJWTCodec("secret", time.Hour)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{
		"sub": "account-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, domain.ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestJWTCodec_Garbage(t *testing.T) {
	codec := NewJWTCodec("secret", time.Hour)

	for _, tok := range []string{"not-a-token", "a.b.c", "."} {
		if _, err := codec.Verify(tok); !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestJWTCodec_MissingSubject(t *testing.T) {
	codec := NewJWTCodec("secret", time.Hour)

	anon := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := anon.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}
