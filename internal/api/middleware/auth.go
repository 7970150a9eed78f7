package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/usersvc/accounts-api/internal/api/metrics"
	"github.com/usersvc/accounts-api/internal/core/domain"
	"github.com/usersvc/accounts-api/internal/core/ports"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextAccountID = "account_id"
	ContextRole      = "role"
)

// HeaderAccessToken is the canonical token transport header.
const HeaderAccessToken = "x-access-token"

// Requests larger than this are not searched for a body token.
const maxTokenBodyBytes = 1 << 20

// authFailure is the JSON envelope for every gate rejection.
type authFailure struct {
	Auth    bool   `json:"auth"`
	Message string `json:"message"`
}

// Authenticate requires a present, valid, unexpired bearer token and injects
// the decoded identity into the request context. A missing token is 403, a
// token that fails verification is 401. Infrastructure faults alone get 500.
func Authenticate(codec ports.TokenCodec, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c)
			if token == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return c.JSON(http.StatusForbidden, authFailure{Auth: false, Message: "No token provided."})
			}

			claims, err := codec.Verify(token)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(verifyFailureReason(err)).Inc()
				log.Debug().Err(err).
					Str("path", c.Path()).
					Msg("token verification failed")
				return c.JSON(http.StatusUnauthorized, authFailure{Auth: false, Message: "Failed to authenticate token."})
			}

			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(ContextAccountID, claims.SubjectID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// RequireRole loads the caller's account and checks the permission policy
// against action. The role is re-read from storage on every request, so a
// demotion takes effect on the very next call even for already-issued tokens.
func RequireRole(repo ports.AccountRepository, action domain.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(ContextAccountID).(string)
			account, err := repo.FindByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					return c.String(http.StatusNotFound, "No user found")
				}
				return err
			}

			if !account.Role.Can(action) {
				return c.JSON(http.StatusUnauthorized, authFailure{Auth: false, Message: "Unauthorized to view this content."})
			}

			c.Set(ContextRole, account.Role)
			return next(c)
		}
	}
}

// ExtractToken pulls the bearer token from the request, checking the
// x-access-token header, then the token query parameter, then a token field
// in a JSON body. The body is restored so handlers can still bind it.
func ExtractToken(c echo.Context) string {
	if t := c.Request().Header.Get(HeaderAccessToken); t != "" {
		return t
	}
	if t := c.QueryParam("token"); t != "" {
		return t
	}
	return tokenFromBody(c)
}

func tokenFromBody(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || req.ContentLength == 0 || req.ContentLength > maxTokenBodyBytes {
		return ""
	}

	body, err := io.ReadAll(req.Body)
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Token
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
