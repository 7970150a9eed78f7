package handler

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/usersvc/accounts-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx
// responses that are not gate rejections or validation lists.
type errorResponse struct {
	Error string `json:"error"`
}

// fieldError is one entry in the register validation error array.
type fieldError struct {
	Msg string `json:"msg"`
}

// cardNumber accepts a credit card number sent either as a JSON string or as
// a bare JSON number. Decoding from the raw bytes keeps all 16 digits intact;
// going through float64 would lose precision at the top of the range.
type cardNumber string

func (n *cardNumber) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = cardNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = cardNumber(num.String())
	return nil
}

// --- Request types ---

type registerRequest struct {
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Password         string     `json:"password"`
	Password2        string     `json:"password2"`
	CreditCardNumber cardNumber `json:"creditCardNumber"`
	UserLevel        any        `json:"userLevel"`
	Role             any        `json:"role"`
}

// userLevel returns whichever role field the client supplied; userLevel is
// the historical name and wins when both are present.
func (r registerRequest) userLevel() any {
	if r.UserLevel != nil {
		return r.UserLevel
	}
	return r.Role
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateSelfRequest struct {
	Email            string     `json:"email"`
	CreditCardNumber cardNumber `json:"creditCardNumber"`
}

type changeRoleRequest struct {
	UserLevel any `json:"userLevel"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal domain changes.

type accountResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	CreditCardNumber string    `json:"creditCardNumber,omitempty"`
	UserLevel        int       `json:"userLevel"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type authResponse struct {
	Auth  bool             `json:"auth"`
	Token string           `json:"token"`
	User  *accountResponse `json:"user,omitempty"`
}

// logoutResponse always carries a null token; there is no server-side
// session to tear down.
type logoutResponse struct {
	Auth  bool    `json:"auth"`
	Token *string `json:"token"`
}

type deleteResponse struct {
	Deleted  bool   `json:"deleted"`
	Status   string `json:"status"`
	Username string `json:"username"`
}

func newAccountResponse(a *domain.Account, includeCard bool) *accountResponse {
	resp := &accountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		UserLevel: int(a.Role),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if includeCard {
		resp.CreditCardNumber = a.CreditCardNumber
	}
	return resp
}

func newAccountListResponse(accounts []domain.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, *newAccountResponse(&accounts[i], false))
	}
	return out
}

func newFieldErrors(msgs domain.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, fieldError{Msg: m})
	}
	return out
}

// roleLabel renders a role for metric labels.
func roleLabel(r domain.Role) string {
	if r.Valid() {
		return r.String()
	}
	return strconv.Itoa(int(r))
}
