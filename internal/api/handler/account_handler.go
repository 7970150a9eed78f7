package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/usersvc/accounts-api/internal/api/metrics"
	"github.com/usersvc/accounts-api/internal/api/middleware"
	"github.com/usersvc/accounts-api/internal/core/domain"
	"github.com/usersvc/accounts-api/internal/core/ports"
)

type AccountHandler struct {
	service ports.AccountService
	log     zerolog.Logger
}

func NewAccountHandler(service ports.AccountService, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{service: service, log: log}
}

// Register creates a new account and issues a token for it.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      200   {object}  authResponse
// @Failure      400   {array}   fieldError
// @Failure      500   {object}  errorResponse
// @Router       /users/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	result, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		Password2:        req.Password2,
		CreditCardNumber: string(req.CreditCardNumber),
		UserLevel:        req.userLevel(),
	})
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			metrics.RegistrationFailuresTotal.Inc()
			return c.JSON(http.StatusBadRequest, newFieldErrors(verrs))
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(roleLabel(result.Account.Role)).Inc()
	return c.JSON(http.StatusOK, authResponse{
		Auth:  true,
		Token: result.Token,
		User:  newAccountResponse(result.Account, true),
	})
}

// Login authenticates by username and password and returns a bearer token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  logoutResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			metrics.LoginAttemptsTotal.WithLabelValues("not_found").Inc()
			return c.JSON(http.StatusNotFound, errorResponse{Error: "No user found"})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginAttemptsTotal.WithLabelValues("bad_password").Inc()
			return c.JSON(http.StatusUnauthorized, logoutResponse{Auth: false, Token: nil})
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{Auth: true, Token: result.Token})
}

// Logout is stateless: tokens are not revocable, the client just discards
// its copy.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /users/logout [get]
func (h *AccountHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, logoutResponse{Auth: false, Token: nil})
}

// GetSelf returns the caller's own account, password hash excluded.
//
// @Summary      View own profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  accountResponse
// @Failure      403  {object}  object
// @Failure      404  {string}  string
// @Router       /users/me [get]
func (h *AccountHandler) GetSelf(c echo.Context) error {
	id, _ := c.Get(middleware.ContextAccountID).(string)
	account, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.String(http.StatusNotFound, "No user found")
		}
		return err
	}
	return c.JSON(http.StatusOK, newAccountResponse(account, true))
}

// UpdateSelf changes the caller's email and/or credit card number. Invalid
// values are ignored and the unchanged account is returned.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      updateSelfRequest  true  "Fields to update"
// @Success      200   {object}  accountResponse
// @Router       /users/me [post]
func (h *AccountHandler) UpdateSelf(c echo.Context) error {
	var req updateSelfRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	id, _ := c.Get(middleware.ContextAccountID).(string)
	account, err := h.service.UpdateSelf(c.Request().Context(), id, ports.UpdateSelfInput{
		Email:            req.Email,
		CreditCardNumber: string(req.CreditCardNumber),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.String(http.StatusNotFound, "No user found")
		}
		return err
	}
	return c.JSON(http.StatusOK, newAccountResponse(account, true))
}

// List returns every account, password hashes and card numbers projected
// away. An empty store is a 404, matching the service's historical contract.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Success      200  {array}  accountResponse
// @Failure      401  {object}  object
// @Router       /users/list [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return c.NoContent(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, newAccountListResponse(accounts))
}

// GetByUsername returns a single account by username, sans password and card.
//
// @Summary      View an account by username
// @Tags         admin
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  accountResponse
// @Failure      404       {string}  string
// @Router       /users/singleUser/{username} [get]
func (h *AccountHandler) GetByUsername(c echo.Context) error {
	account, err := h.service.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return c.JSON(http.StatusOK, newAccountResponse(account, false))
}

// Delete removes an account permanently. There is no soft delete.
//
// @Summary      Delete an account
// @Tags         admin
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  deleteResponse
// @Failure      404       {string}  string
// @Router       /users/{username} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	username := c.Param("username")
	if err := h.service.DeleteByUsername(c.Request().Context(), username); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}

	metrics.AccountsDeletedTotal.Inc()
	h.log.Info().Str("username", username).Msg("account deleted")
	return c.JSON(http.StatusOK, deleteResponse{Deleted: true, Status: "User deleted", Username: username})
}

// ChangeRole sets an account's user level. The level must parse to a number
// in {0,1,2}; anything else is rejected before the account is touched.
//
// @Summary      Change an account's user level
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        username  path      string             true  "Username"
// @Param        body      body      changeRoleRequest  true  "New user level"
// @Success      200       {object}  accountResponse
// @Failure      400       {object}  errorResponse
// @Router       /admin/{username} [post]
func (h *AccountHandler) ChangeRole(c echo.Context) error {
	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "userLevel must be a number that is 0, 1 or 2."})
	}

	role, err := domain.ParseRole(req.UserLevel)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "userLevel must be a number that is 0, 1 or 2."})
	}

	account, err := h.service.ChangeRole(c.Request().Context(), c.Param("username"), role)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}

	metrics.RoleChangesTotal.Inc()
	return c.JSON(http.StatusOK, newAccountResponse(account, false))
}
