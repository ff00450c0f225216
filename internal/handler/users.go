package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/user-admin-api/internal/messages"
	"github.com/rmaalouf/user-admin-api/internal/middleware"
	"github.com/rmaalouf/user-admin-api/internal/service"
)

// UsersHandler serves the admin surface: listing accounts, granting and
// revoking roles/permissions, activation flags and deletion. Permission
// checks run as route middleware; the role-hierarchy gate runs here,
// immediately before each role mutation.
type UsersHandler struct {
	Users  *service.UserService
	Attach *service.AttachService
	Access *service.AccessService
}

func NewUsersHandler(users *service.UserService, attach *service.AttachService, access *service.AccessService) *UsersHandler {
	return &UsersHandler{Users: users, Attach: attach, Access: access}
}

type idsReq struct {
	UserID uint64   `json:"user_id"`
	IDs    []uint64 `json:"ids"`
}

type activationReq struct {
	IDs []uint64 `json:"ids"`
}

// List returns a page of users with their associations.
func (h *UsersHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	ctx, cancel := reqContext(c)
	defer cancel()

	details, meta, err := h.Users.List(ctx, page, perPage)
	if err != nil {
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("users", "get_error"), err)
	}
	users := make([]userPart, 0, len(details))
	for _, d := range details {
		users = append(users, userPayload(d))
	}
	return success(c, echo.Map{"users": users, "meta": meta}, messages.Resolve("users", "get"))
}

// AttachPermissions grants permissions to a user. Already-held
// permissions are skipped silently.
func (h *UsersHandler) AttachPermissions(c echo.Context) error {
	return h.permissionMutation(c, h.Attach.AttachPermissions, "attach_permissions", "attach_permissions_failed")
}

// DetachPermissions removes permissions from a user.
func (h *UsersHandler) DetachPermissions(c echo.Context) error {
	return h.permissionMutation(c, h.Attach.DetachPermissions, "detach_permissions", "detach_permissions_failed")
}

func (h *UsersHandler) permissionMutation(c echo.Context, mutate func(ctx context.Context, userID uint64, ids []uint64) error, okKey, failKey string) error {
	var req idsReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return failure(c, http.StatusBadRequest, messages.Resolve("users", failKey), nil)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := mutate(ctx, req.UserID, req.IDs)
	switch {
	case err == nil:
		return success(c, nil, messages.Resolve("users", okKey))
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrNotFound):
		return failure(c, http.StatusBadRequest, messages.Resolve("users", failKey), err)
	default:
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("users", failKey), err)
	}
}

// AttachRoles grants roles to a user. The hierarchy gate is evaluated
// here, right before the mutation, so a just-promoted target is seen.
func (h *UsersHandler) AttachRoles(c echo.Context) error {
	return h.roleMutation(c, h.Attach.AttachRoles, "attach_roles", "attach_roles_failed")
}

// DetachRoles removes roles from a user, under the same gate.
func (h *UsersHandler) DetachRoles(c echo.Context) error {
	return h.roleMutation(c, h.Attach.DetachRoles, "detach_roles", "detach_roles_failed")
}

func (h *UsersHandler) roleMutation(c echo.Context, mutate func(ctx context.Context, userID uint64, ids []uint64) error, okKey, failKey string) error {
	var req idsReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return failure(c, http.StatusBadRequest, messages.Resolve("users", failKey), nil)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Access.CanUpdateRoles(ctx, middleware.UserID(c), req.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAllowed):
			return failure(c, http.StatusMethodNotAllowed, messages.Resolve("users", "attach_roles_not_allowed"), nil)
		case errors.Is(err, service.ErrNotFound):
			return failure(c, http.StatusBadRequest, messages.Resolve("users", failKey), err)
		default:
			return failure(c, http.StatusMethodNotAllowed, messages.Resolve("users", failKey), err)
		}
	}

	err := mutate(ctx, req.UserID, req.IDs)
	switch {
	case err == nil:
		return success(c, nil, messages.Resolve("users", okKey))
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrNotFound):
		return failure(c, http.StatusBadRequest, messages.Resolve("users", failKey), err)
	default:
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("users", failKey), err)
	}
}

// Activate enables a batch of accounts.
func (h *UsersHandler) Activate(c echo.Context) error {
	return h.activation(c, true, "activate")
}

// Deactivate disables a batch of accounts. Their live tokens still pass
// signature checks but the auth middleware rejects inactive users.
func (h *UsersHandler) Deactivate(c echo.Context) error {
	return h.activation(c, false, "deactivate")
}

func (h *UsersHandler) activation(c echo.Context, active bool, okKey string) error {
	var req activationReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, messages.Resolve("users", "activate_failed"), err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Users.SetActive(ctx, req.IDs, active)
	switch {
	case err == nil:
		return success(c, nil, messages.Resolve("users", okKey))
	case errors.Is(err, service.ErrInvalidArgument):
		return failure(c, http.StatusBadRequest, messages.Resolve("users", "activate_failed"), nil)
	default:
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("users", "activate_failed"), err)
	}
}

// Delete soft-deletes one account and kills its sessions. The row stays
// until the retention sweep removes it.
func (h *UsersHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return failure(c, http.StatusBadRequest, messages.Resolve("users", "delete_failed"), nil)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err = h.Users.SoftDelete(ctx, id)
	switch {
	case err == nil:
		return success(c, nil, messages.Resolve("users", "delete"))
	case errors.Is(err, service.ErrNotFound):
		return failure(c, http.StatusBadRequest, messages.Resolve("users", "delete_failed"), nil)
	default:
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("users", "delete_failed"), err)
	}
}
