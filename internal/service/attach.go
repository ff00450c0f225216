package service

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/rmaalouf/user-admin-api/internal/repository"
)

// AttachService mutates the role and permission associations of a user.
// Idempotence lives in the storage layer (composite keys + INSERT
// IGNORE), so concurrent duplicate attaches cannot race. For role
// mutations the caller must already hold a passing CanUpdateRoles
// verdict; the handler runs the gate immediately before calling in, and
// this service does not re-check.
type AttachService struct {
	DB    *sql.DB
	Users *repository.UserRepo
	Roles *repository.RoleRepo
	Perms *repository.PermissionRepo
}

func NewAttachService(db *sql.DB, users *repository.UserRepo, roles *repository.RoleRepo,
	perms *repository.PermissionRepo) *AttachService {
	return &AttachService{DB: db, Users: users, Roles: roles, Perms: perms}
}

// AttachRoles attaches the given roles to the user. Unknown role ids or
// an unknown user fail with ErrNotFound before anything is written.
func (s *AttachService) AttachRoles(ctx context.Context, userID uint64, roleIDs []uint64) error {
	return s.mutateRoles(ctx, userID, roleIDs, s.Roles.AttachTx)
}

// DetachRoles removes the given roles from the user.
func (s *AttachService) DetachRoles(ctx context.Context, userID uint64, roleIDs []uint64) error {
	return s.mutateRoles(ctx, userID, roleIDs, s.Roles.DetachTx)
}

// AttachPermissions attaches the given permissions to the user.
func (s *AttachService) AttachPermissions(ctx context.Context, userID uint64, permIDs []uint64) error {
	return s.mutatePermissions(ctx, userID, permIDs, s.Perms.AttachTx)
}

// DetachPermissions removes the given permissions from the user.
func (s *AttachService) DetachPermissions(ctx context.Context, userID uint64, permIDs []uint64) error {
	return s.mutatePermissions(ctx, userID, permIDs, s.Perms.DetachTx)
}

type assocFunc func(ctx context.Context, tx *sql.Tx, userID, refID uint64) error

func (s *AttachService) mutateRoles(ctx context.Context, userID uint64, ids []uint64, f assocFunc) error {
	if len(ids) == 0 {
		return ErrInvalidArgument
	}
	ids = dedupe(ids)
	n, err := s.Roles.CountByIDs(ctx, ids)
	if err != nil {
		return ErrUpdateFailed
	}
	if n != len(ids) {
		return ErrNotFound
	}
	return s.apply(ctx, userID, ids, f)
}

func (s *AttachService) mutatePermissions(ctx context.Context, userID uint64, ids []uint64, f assocFunc) error {
	if len(ids) == 0 {
		return ErrInvalidArgument
	}
	ids = dedupe(ids)
	n, err := s.Perms.CountByIDs(ctx, ids)
	if err != nil {
		return ErrUpdateFailed
	}
	if n != len(ids) {
		return ErrNotFound
	}
	return s.apply(ctx, userID, ids, f)
}

// apply verifies the target user and runs the association mutation for
// every id in a single transaction.
func (s *AttachService) apply(ctx context.Context, userID uint64, ids []uint64, f assocFunc) error {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return ErrUpdateFailed
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return ErrUpdateFailed
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if err := f(ctx, tx, userID, id); err != nil {
			log.Printf("association mutation failed for user %d ref %d: %v", userID, id, err)
			return ErrUpdateFailed
		}
	}
	if err := tx.Commit(); err != nil {
		return ErrUpdateFailed
	}
	return nil
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
