package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rmaalouf/user-admin-api/internal/model"
)

// UserRepo provides access to the `users` table. Soft-deleted rows are
// excluded from every lookup; they remain in the table until the
// scheduled sweep hard-deletes them.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = "id, first_name, last_name, email, password_hash, password_changed_at, profile_image_id, is_active, deleted_at, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u          model.User
		pwdChanged sql.NullTime
		imageID    sql.NullInt64
		deletedAt  sql.NullTime
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&pwdChanged, &imageID, &u.IsActive, &deletedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if pwdChanged.Valid {
		t := pwdChanged.Time
		u.PasswordChangedAt = &t
	}
	if imageID.Valid {
		id := uint64(imageID.Int64)
		u.ProfileImageID = &id
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return u, nil
}

// isDuplicateKey reports whether err is the MySQL duplicate-entry error (1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// CreateTx inserts a user inside an existing transaction and populates
// the generated ID. The email must already be trimmed and lowercased by
// the caller. A duplicate email maps to ErrEmailExists.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password_hash, is_active) VALUES (?,?,?,?,?)",
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a live user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND deleted_at IS NULL LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a live user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanUser(row)
}

// EmailInUseTx reports whether another live user already holds the email.
func (r *UserRepo) EmailInUseTx(ctx context.Context, tx *sql.Tx, email string, excludeID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=? AND id<>? AND deleted_at IS NULL",
		email, excludeID).Scan(&n)
	return n > 0, err
}

// UpdateProfileTx updates name and email inside an existing transaction.
// A duplicate email maps to ErrEmailExists so the uniqueness constraint
// stays the final arbiter even under concurrent updates.
func (r *UserRepo) UpdateProfileTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, email=? WHERE id=? AND deleted_at IS NULL",
		u.FirstName, u.LastName, u.Email, u.ID)
	if isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// UpdatePasswordTx replaces the password hash and stamps password_changed_at.
func (r *UserRepo) UpdatePasswordTx(ctx context.Context, tx *sql.Tx, id uint64, hash string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=?, password_changed_at=NOW() WHERE id=? AND deleted_at IS NULL",
		hash, id)
	return err
}

// SetProfileImageTx points the user at a new profile image row. Passing
// nil clears the association.
func (r *UserRepo) SetProfileImageTx(ctx context.Context, tx *sql.Tx, userID uint64, imageID *uint64) error {
	var v interface{}
	if imageID != nil {
		v = *imageID
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET profile_image_id=? WHERE id=? AND deleted_at IS NULL", v, userID)
	return err
}

// SetActive flips the is_active flag for the given users and returns how
// many rows changed.
func (r *UserRepo) SetActive(ctx context.Context, ids []uint64, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := "UPDATE users SET is_active=? WHERE deleted_at IS NULL AND id IN (" + placeholders(len(ids)) + ")"
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, active)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SoftDeleteTx marks a user deleted. The row survives until the sweep
// job removes it; all lookups skip it immediately. Callers pair it with
// token revocation in the same transaction.
func (r *UserRepo) SoftDeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET deleted_at=NOW(), is_active=0 WHERE id=? AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of live users ordered by id.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE deleted_at IS NULL ORDER BY id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of live users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE deleted_at IS NULL").Scan(&n)
	return n, err
}

// HardDeleteBefore permanently removes users soft-deleted at or before
// the cutoff. Association and token rows go with them via ON DELETE
// CASCADE. Used by the scheduled sweep only.
func (r *UserRepo) HardDeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM users WHERE deleted_at IS NOT NULL AND deleted_at <= ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// placeholders returns n comma-joined "?" markers for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
