package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/user-admin-api/internal/messages"
	"github.com/rmaalouf/user-admin-api/internal/middleware"
	"github.com/rmaalouf/user-admin-api/internal/service"
)

// AuthHandler bundles dependencies for the credential endpoints.
type AuthHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService) *AuthHandler {
	return &AuthHandler{Auth: auth, Users: users}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the user with a fresh bearer
// token. Bad credentials are a 401 with the catalog message; the
// response never says whether the email or the password was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, messages.Resolve("auth", "login_failed"), err)
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return failure(c, http.StatusBadRequest, messages.Resolve("auth", "login_failed"), errors.New("email and password are required"))
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	result, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("auth", "login_failed"), err)
	}
	if result == nil {
		return failure(c, http.StatusUnauthorized, messages.Resolve("auth", "login_failed"), nil)
	}

	detail, err := h.Users.Detail(ctx, result.User.ID)
	if err != nil {
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("auth", "login_failed"), err)
	}
	return success(c, echo.Map{
		"user":  userPayload(detail),
		"token": tokenPart{Token: result.Token.Token, Expires: result.Token.Exp},
	}, messages.Resolve("auth", "login_success"))
}

// Logout revokes the token the request authenticated with.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, middleware.UserID(c), middleware.TokenID(c)); err != nil {
		return failure(c, http.StatusBadRequest, messages.Resolve("auth", "logout_failed"), err)
	}
	return success(c, nil, messages.Resolve("auth", "logout_success"))
}

// ForgotPassword creates a reset token and hands it to the mail
// pipeline. An unknown email reports failure so the caller can correct
// a typo; rate limiting on this route keeps that from being an oracle
// worth probing.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return failure(c, http.StatusBadRequest, messages.Resolve("auth", "forgot_email_fail"), nil)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Auth.ForgotPassword(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return failure(c, http.StatusBadRequest, messages.Resolve("auth", "forgot_email_fail"), nil)
		}
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("auth", "forgot_email_fail"), err)
	}
	return success(c, nil, messages.Resolve("auth", "forgot_email_success"))
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return failure(c, http.StatusBadRequest, messages.Resolve("auth", "reset_fail"), nil)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Auth.ResetPassword(ctx, strings.TrimSpace(req.Token), req.Password)
	switch {
	case err == nil:
		return success(c, nil, messages.Resolve("auth", "reset_success"))
	case errors.Is(err, service.ErrWeakPassword):
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "password_error"), nil)
	case errors.Is(err, service.ErrNotFound):
		return failure(c, http.StatusBadRequest, messages.Resolve("auth", "reset_fail"), nil)
	default:
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("auth", "reset_fail"), err)
	}
}

// reqContext bounds handler work with the request context plus a
// timeout for the database round trips.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
