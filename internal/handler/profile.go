package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/user-admin-api/internal/messages"
	"github.com/rmaalouf/user-admin-api/internal/middleware"
	"github.com/rmaalouf/user-admin-api/internal/service"
)

// ProfileHandler serves the authenticated user's own account: reading
// the profile, editing it, changing the password and managing the photo.
type ProfileHandler struct {
	Users *service.UserService
}

func NewProfileHandler(users *service.UserService) *ProfileHandler {
	return &ProfileHandler{Users: users}
}

type updateProfileReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type updatePasswordReq struct {
	OldPassword string `json:"old_password"`
	Password    string `json:"password"`
}

// Get returns the caller's profile with roles, permissions and photo.
func (h *ProfileHandler) Get(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	detail, err := h.Users.Detail(ctx, middleware.UserID(c))
	if err != nil {
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("profile", "get_error"), err)
	}
	return success(c, echo.Map{"user": userPayload(detail)}, messages.Resolve("profile", "get"))
}

// Update changes the caller's name and email.
func (h *ProfileHandler) Update(c echo.Context) error {
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "update_error"), err)
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "update_error"), errors.New("first_name, last_name and email are required"))
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	_, err := h.Users.Update(ctx, middleware.UserID(c), service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	switch {
	case err == nil:
		detail, derr := h.Users.Detail(ctx, middleware.UserID(c))
		if derr != nil {
			return failure(c, http.StatusMethodNotAllowed, messages.Resolve("profile", "update_error"), derr)
		}
		return success(c, echo.Map{"user": userPayload(detail)}, messages.Resolve("profile", "update_success"))
	case errors.Is(err, service.ErrDuplicateEmail):
		return failure(c, http.StatusBadRequest, messages.Resolve("users", "email_exists"), nil)
	default:
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("profile", "update_error"), err)
	}
}

// UpdatePassword changes the caller's password. On success every other
// session is dead and the response carries the replacement token.
func (h *ProfileHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "password_error"), err)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	token, err := h.Users.UpdatePassword(ctx, middleware.UserID(c), req.OldPassword, req.Password)
	switch {
	case err == nil:
		return success(c, echo.Map{
			"token": tokenPart{Token: token.Token, Expires: token.Exp},
		}, messages.Resolve("profile", "password"))
	case errors.Is(err, service.ErrOldPasswordMismatch):
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "old_password_error"), nil)
	case errors.Is(err, service.ErrSameOldPassword):
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "old_password_equal_new"), nil)
	case errors.Is(err, service.ErrWeakPassword):
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "password_error"), nil)
	default:
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("profile", "update_error"), err)
	}
}

// UpdatePhoto replaces the caller's profile photo from a multipart
// upload. A request without a file clears the photo instead.
func (h *ProfileHandler) UpdatePhoto(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	fh, err := c.FormFile("photo")
	if err != nil {
		if rerr := h.Users.RemoveProfileImage(ctx, middleware.UserID(c)); rerr != nil {
			return failure(c, http.StatusMethodNotAllowed, messages.Resolve("profile", "update_error"), rerr)
		}
		return success(c, nil, messages.Resolve("profile", "update_success"))
	}

	src, err := fh.Open()
	if err != nil {
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "update_error"), err)
	}
	defer src.Close()

	img, err := h.Users.UpdateProfileImage(ctx, middleware.UserID(c), src, fh.Filename)
	switch {
	case err == nil:
		return success(c, echo.Map{
			"image": imagePart{ID: img.ID, Link: img.Link, Size: img.Size},
		}, messages.Resolve("profile", "update_success"))
	case errors.Is(err, service.ErrInvalidArgument):
		return failure(c, http.StatusBadRequest, messages.Resolve("profile", "update_error"), errors.New("unsupported image type"))
	default:
		return failure(c, http.StatusMethodNotAllowed, messages.Resolve("profile", "update_error"), err)
	}
}
