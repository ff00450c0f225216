package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/rmaalouf/user-admin-api/internal/model"
	"github.com/rmaalouf/user-admin-api/internal/queue"
	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/storage"
	"github.com/rmaalouf/user-admin-api/internal/utils"
)

// UserService manages account records: creation, profile and password
// updates, activation flags, soft deletion, listing, and the profile
// photo. Every multi-step mutation runs in one transaction.
type UserService struct {
	DB         *sql.DB
	Users      *repository.UserRepo
	Roles      *repository.RoleRepo
	Perms      *repository.PermissionRepo
	Images     *repository.ImageRepo
	Tokens     *TokenService
	Store      *storage.Store
	Events     *queue.Publisher
	BcryptCost int
}

// CreateUserInput carries the fields accepted on account creation.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateProfileInput carries the fields a user may change on their
// own profile.
type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

// UserDetail is a user with their associations loaded.
type UserDetail struct {
	User        model.User
	Roles       []model.Role
	Permissions []model.Permission
	Image       *model.Image
}

// ListMeta describes a page of results.
type ListMeta struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// trim applies the field normalization used on every write: names and
// password lose surrounding whitespace, the email additionally folds to
// lowercase.
func (in *CreateUserInput) trim() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
}

func (in *UpdateProfileInput) trim() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)
}

// Create inserts a new user. A taken email fails with
// ErrDuplicateEmail; any other storage failure rolls back and surfaces
// as ErrCreateFailed.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (model.User, error) {
	in.trim()

	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return model.User{}, ErrCreateFailed
	}
	u := model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, ErrCreateFailed
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Users.CreateTx(ctx, tx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrDuplicateEmail
		}
		log.Printf("create user failed: %v", err)
		return model.User{}, ErrCreateFailed
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, ErrCreateFailed
	}

	_ = s.Events.Publish(ctx, queue.UserEvent{
		Name:   queue.EventUserCreated,
		UserID: u.ID,
		Email:  u.Email,
	})
	return u, nil
}

// Update changes a user's name and email. The email uniqueness check
// runs inside the same transaction as the write, and the column's
// unique constraint remains the final arbiter: a racing duplicate still
// fails with ErrDuplicateEmail, never a partial write.
func (s *UserService) Update(ctx context.Context, userID uint64, in UpdateProfileInput) (model.User, error) {
	in.trim()

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, ErrUpdateFailed
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, ErrUpdateFailed
	}
	defer func() { _ = tx.Rollback() }()

	if in.Email != u.Email {
		taken, err := s.Users.EmailInUseTx(ctx, tx, in.Email, u.ID)
		if err != nil {
			return model.User{}, ErrUpdateFailed
		}
		if taken {
			return model.User{}, ErrDuplicateEmail
		}
	}

	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Email = in.Email
	if err := s.Users.UpdateProfileTx(ctx, tx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrDuplicateEmail
		}
		log.Printf("update user %d failed: %v", u.ID, err)
		return model.User{}, ErrUpdateFailed
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, ErrUpdateFailed
	}
	return s.Users.GetByID(ctx, u.ID)
}

// UpdatePassword verifies the old password, enforces the policy, and in
// one transaction writes the new hash, revokes every live session and
// issues a fresh token. There is no window where a pre-change token and
// the fresh one are both valid: nothing changes until commit, and at
// commit the old sessions die with the new hash.
func (s *UserService) UpdatePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) (utils.BearerToken, error) {
	oldPassword = strings.TrimSpace(oldPassword)
	newPassword = strings.TrimSpace(newPassword)

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.BearerToken{}, ErrNotFound
		}
		return utils.BearerToken{}, ErrUpdateFailed
	}
	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		return utils.BearerToken{}, ErrOldPasswordMismatch
	}
	if newPassword == oldPassword {
		return utils.BearerToken{}, ErrSameOldPassword
	}
	if !utils.StrongPassword(newPassword) {
		return utils.BearerToken{}, ErrWeakPassword
	}

	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return utils.BearerToken{}, ErrUpdateFailed
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return utils.BearerToken{}, ErrUpdateFailed
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Users.UpdatePasswordTx(ctx, tx, u.ID, hash); err != nil {
		log.Printf("password update failed for user %d: %v", u.ID, err)
		return utils.BearerToken{}, ErrUpdateFailed
	}
	token, err := s.Tokens.reissueTx(ctx, tx, u.ID)
	if err != nil {
		log.Printf("token reissue failed for user %d: %v", u.ID, err)
		return utils.BearerToken{}, ErrUpdateFailed
	}
	if err := tx.Commit(); err != nil {
		return utils.BearerToken{}, ErrUpdateFailed
	}

	_ = s.Events.Publish(ctx, queue.UserEvent{
		Name:   queue.EventPasswordChanged,
		UserID: u.ID,
		Email:  u.Email,
	})
	return token, nil
}

// SetActive flips the activation flag for a batch of users.
func (s *UserService) SetActive(ctx context.Context, ids []uint64, active bool) error {
	if len(ids) == 0 {
		return ErrInvalidArgument
	}
	if _, err := s.Users.SetActive(ctx, ids, active); err != nil {
		log.Printf("set active failed: %v", err)
		return ErrUpdateFailed
	}
	return nil
}

// SoftDelete marks a user deleted and revokes all their sessions in one
// transaction. The record survives for the sweep window.
func (s *UserService) SoftDelete(ctx context.Context, id uint64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return ErrDeleteFailed
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Users.SoftDeleteTx(ctx, tx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrDeleteFailed
	}
	if err := s.Tokens.Tokens.RevokeAllForUserTx(ctx, tx, id); err != nil {
		return ErrDeleteFailed
	}
	if err := tx.Commit(); err != nil {
		return ErrDeleteFailed
	}
	return nil
}

// Detail loads a user with their roles, permissions and profile image.
func (s *UserService) Detail(ctx context.Context, id uint64) (UserDetail, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserDetail{}, ErrNotFound
		}
		return UserDetail{}, err
	}
	return s.detailFor(ctx, u)
}

func (s *UserService) detailFor(ctx context.Context, u model.User) (UserDetail, error) {
	roles, err := s.Roles.ListByUser(ctx, u.ID)
	if err != nil {
		return UserDetail{}, err
	}
	perms, err := s.Perms.ListByUser(ctx, u.ID)
	if err != nil {
		return UserDetail{}, err
	}
	d := UserDetail{User: u, Roles: roles, Permissions: perms}
	if u.ProfileImageID != nil {
		img, err := s.Images.Get(ctx, *u.ProfileImageID)
		if err == nil {
			d.Image = &img
		} else if !errors.Is(err, sql.ErrNoRows) {
			return UserDetail{}, err
		}
	}
	return d, nil
}

// List returns a page of users with associations plus paging metadata.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]UserDetail, ListMeta, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	total, err := s.Users.Count(ctx)
	if err != nil {
		return nil, ListMeta{}, err
	}
	users, err := s.Users.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, ListMeta{}, err
	}
	out := make([]UserDetail, 0, len(users))
	for _, u := range users {
		d, err := s.detailFor(ctx, u)
		if err != nil {
			return nil, ListMeta{}, err
		}
		out = append(out, d)
	}
	return out, ListMeta{Total: total, Page: page, PerPage: perPage}, nil
}

// UpdateProfileImage stores a new photo, records it, soft-deletes the
// previous one and points the user at the new row, all in one
// transaction. On rollback the freshly stored file is removed again.
func (s *UserService) UpdateProfileImage(ctx context.Context, userID uint64, file io.Reader, originalName string) (model.Image, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Image{}, ErrNotFound
		}
		return model.Image{}, ErrUpdateFailed
	}

	link, size, err := s.Store.Save(file, originalName)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return model.Image{}, ErrInvalidArgument
		}
		return model.Image{}, ErrUpdateFailed
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		_ = s.Store.Delete(link)
		return model.Image{}, ErrUpdateFailed
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
			_ = s.Store.Delete(link)
		}
	}()

	imageID, err := s.Images.InsertTx(ctx, tx, link, size)
	if err != nil {
		return model.Image{}, ErrUpdateFailed
	}
	if u.ProfileImageID != nil {
		if err := s.Images.SoftDeleteTx(ctx, tx, *u.ProfileImageID); err != nil {
			return model.Image{}, ErrUpdateFailed
		}
	}
	if err := s.Users.SetProfileImageTx(ctx, tx, u.ID, &imageID); err != nil {
		return model.Image{}, ErrUpdateFailed
	}
	if err := tx.Commit(); err != nil {
		return model.Image{}, ErrUpdateFailed
	}
	committed = true

	return s.Images.Get(ctx, imageID)
}

// RemoveProfileImage clears the user's photo. The image row is soft
// deleted; the sweep removes the file later.
func (s *UserService) RemoveProfileImage(ctx context.Context, userID uint64) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return ErrUpdateFailed
	}
	if u.ProfileImageID == nil {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return ErrUpdateFailed
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Images.SoftDeleteTx(ctx, tx, *u.ProfileImageID); err != nil {
		return ErrUpdateFailed
	}
	if err := s.Users.SetProfileImageTx(ctx, tx, u.ID, nil); err != nil {
		return ErrUpdateFailed
	}
	if err := tx.Commit(); err != nil {
		return ErrUpdateFailed
	}
	return nil
}
