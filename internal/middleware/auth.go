package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/user-admin-api/internal/model"
	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/utils"
)

// Context keys set by Auth and read by handlers and other middleware.
const (
	ctxUserID  = "user_id"
	ctxTokenID = "token_id"
	ctxUser    = "user"
)

// Auth returns an Echo middleware that validates a Bearer token and
// injects the authenticated user into the request context. Validation
// is two-step: the JWT signature and expiry first, then the backing
// access_tokens row; a revoked row kills the session no matter what
// the JWT says. The user must be live and active. Every failure is a
// plain 401; the reason is not leaked.
func Auth(secret string, tokens *repository.TokenRepo, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"status": http.StatusUnauthorized, "message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := utils.ParseBearerToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"status": http.StatusUnauthorized, "message": "invalid token"})
			}

			ctx := c.Request().Context()
			row, err := tokens.GetActive(ctx, claims.TokenID)
			if err != nil || row.UserID != claims.UserID {
				return c.JSON(http.StatusUnauthorized, echo.Map{"status": http.StatusUnauthorized, "message": "invalid token"})
			}

			u, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"status": http.StatusUnauthorized, "message": "invalid token"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"status": http.StatusInternalServerError, "message": "auth lookup failed"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{"status": http.StatusUnauthorized, "message": "invalid token"})
			}

			c.Set(ctxUserID, u.ID)
			c.Set(ctxTokenID, row.ID)
			c.Set(ctxUser, u)
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id from context, or zero.
func UserID(c echo.Context) uint64 {
	if v, ok := c.Get(ctxUserID).(uint64); ok {
		return v
	}
	return 0
}

// TokenID returns the id of the token the request authenticated with.
func TokenID(c echo.Context) uint64 {
	if v, ok := c.Get(ctxTokenID).(uint64); ok {
		return v
	}
	return 0
}

// CurrentUser returns the authenticated user record from context.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUser).(model.User)
	return u, ok
}
