package repository

import (
	"context"
	"database/sql"

	"github.com/rmaalouf/user-admin-api/internal/model"
)

// PermissionRepo reads the `permissions` reference table and manages
// the `user_permissions` association. Same idempotence contract as
// RoleRepo: the composite primary key plus INSERT IGNORE make duplicate
// attaches a storage-level no-op.
type PermissionRepo struct{ DB *sql.DB }

func NewPermissionRepo(db *sql.DB) *PermissionRepo { return &PermissionRepo{DB: db} }

// ListByUser returns the permissions attached to a user.
func (r *PermissionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Permission, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.name, p.slug, p.description FROM permissions p
		 JOIN user_permissions up ON up.permission_id = p.id
		 WHERE up.user_id = ? ORDER BY p.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Permission
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SlugsByUser returns just the permission slugs for a user. The
// permission middleware calls this on every gated request.
func (r *PermissionRepo) SlugsByUser(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.slug FROM permissions p
		 JOIN user_permissions up ON up.permission_id = p.id
		 WHERE up.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		out = append(out, slug)
	}
	return out, rows.Err()
}

// CountByIDs returns how many of the given permission ids exist.
func (r *PermissionRepo) CountByIDs(ctx context.Context, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := "SELECT COUNT(*) FROM permissions WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	var n int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// AttachTx associates a permission with a user (idempotent).
func (r *PermissionRepo) AttachTx(ctx context.Context, tx *sql.Tx, userID, permissionID uint64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT IGNORE INTO user_permissions (user_id, permission_id) VALUES (?,?)",
		userID, permissionID)
	return err
}

// DetachTx removes a permission association (no-op when absent).
func (r *PermissionRepo) DetachTx(ctx context.Context, tx *sql.Tx, userID, permissionID uint64) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM user_permissions WHERE user_id=? AND permission_id=?", userID, permissionID)
	return err
}
