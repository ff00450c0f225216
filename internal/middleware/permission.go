package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/user-admin-api/internal/repository"
)

// RequirePermission returns a middleware that enforces that the
// authenticated user holds the given permission slug. Permissions are
// looked up on every request, with no caching, so a detach takes effect
// immediately. It assumes Auth ran earlier and stored the user id in
// the context. Requests without the permission are rejected with 405
// and the supplied message, matching the API's error contract.
func RequirePermission(perms *repository.PermissionRepo, slug, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := UserID(c)
			if uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"status": http.StatusUnauthorized, "message": "unauthorized"})
			}
			slugs, err := perms.SlugsByUser(c.Request().Context(), uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"status": http.StatusInternalServerError, "message": "permission lookup failed"})
			}
			for _, s := range slugs {
				if s == slug {
					return next(c)
				}
			}
			return c.JSON(http.StatusMethodNotAllowed, echo.Map{"status": http.StatusMethodNotAllowed, "message": message})
		}
	}
}
