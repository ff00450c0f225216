package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rmaalouf/user-admin-api/internal/config"
	"github.com/rmaalouf/user-admin-api/internal/handler"
	"github.com/rmaalouf/user-admin-api/internal/middleware"
	"github.com/rmaalouf/user-admin-api/internal/repository"
)

// Deps carries everything route registration needs.
type Deps struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Users   *handler.UsersHandler

	TokenSecret string
	Tokens      *repository.TokenRepo
	UserRepo    *repository.UserRepo
	Perms       *repository.PermissionRepo

	Redis     *redis.Client
	RateLimit config.RateLimitConfig
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI wires the /v1 surface. Credential endpoints live under
// /v1/auth behind the rate limiter; everything else requires a valid
// bearer token, and the admin routes additionally require the matching
// permission slug. The role-hierarchy gate for role mutations runs
// inside the handler, right before the write.
func RegisterAPI(e *echo.Echo, d Deps) {
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	authn := middleware.Auth(d.TokenSecret, d.Tokens, d.UserRepo)

	// Unauthenticated credential operations. Login and the reset flow
	// are the abuse targets, so the bucket applies to the whole group.
	g := e.Group("/v1/auth", limit)
	g.POST("/login", d.Auth.Login)
	g.POST("/forgot-password", d.Auth.ForgotPassword)
	g.POST("/reset-password", d.Auth.ResetPassword)
	// Logout revokes the presenting token, so it needs one.
	g.POST("/logout", d.Auth.Logout, authn)

	// The caller's own account.
	profile := e.Group("/v1/profile", authn)
	profile.GET("", d.Profile.Get)
	profile.PUT("", d.Profile.Update)
	profile.PUT("/password", d.Profile.UpdatePassword)
	profile.POST("/image", d.Profile.UpdatePhoto)

	// Admin surface. Each route names the permission slug it demands;
	// the middleware answers 405 with the catalog message when the
	// caller lacks it.
	users := e.Group("/v1/users", authn)
	users.GET("", d.Users.List,
		middleware.RequirePermission(d.Perms, "get-users", "This user is not allowed to get users"))
	users.PUT("/permissions/attach", d.Users.AttachPermissions,
		middleware.RequirePermission(d.Perms, "attach-permissions", "This user is not allowed to attach/detach permissions"))
	users.PUT("/permissions/detach", d.Users.DetachPermissions,
		middleware.RequirePermission(d.Perms, "attach-permissions", "This user is not allowed to attach/detach permissions"))
	users.PUT("/roles/attach", d.Users.AttachRoles,
		middleware.RequirePermission(d.Perms, "attach-permissions", "This user is not allowed to attach/detach roles"))
	users.PUT("/roles/detach", d.Users.DetachRoles,
		middleware.RequirePermission(d.Perms, "attach-permissions", "This user is not allowed to attach/detach roles"))
	users.PUT("/activate", d.Users.Activate,
		middleware.RequirePermission(d.Perms, "activate-user", "This user is not allowed to change activation"))
	users.PUT("/deactivate", d.Users.Deactivate,
		middleware.RequirePermission(d.Perms, "activate-user", "This user is not allowed to change activation"))
	users.DELETE("/:id", d.Users.Delete,
		middleware.RequirePermission(d.Perms, "delete-user", "This user is not allowed to delete users"))
}
