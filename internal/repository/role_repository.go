package repository

import (
	"context"
	"database/sql"

	"github.com/rmaalouf/user-admin-api/internal/model"
)

// RoleRepo reads the `roles` reference table and manages the
// `user_roles` association. Attach uses INSERT IGNORE against the
// composite primary key so a duplicate attach is a no-op at the
// storage layer; there is no check-then-act window under concurrent
// requests.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// All returns every role ordered by priority (ascending id).
func (r *RoleRepo) All(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, slug FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

// ListByUser returns the roles attached to a user, ordered by priority.
func (r *RoleRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name, r.slug FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ? ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

// CountByIDs returns how many of the given role ids exist. Callers use
// this to reject attach/detach requests that reference unknown roles.
func (r *RoleRepo) CountByIDs(ctx context.Context, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := "SELECT COUNT(*) FROM roles WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	var n int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// AttachTx associates a role with a user. Idempotent: attaching an
// already-attached role affects zero rows and returns nil.
func (r *RoleRepo) AttachTx(ctx context.Context, tx *sql.Tx, userID, roleID uint64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role_id) VALUES (?,?)", userID, roleID)
	return err
}

// DetachTx removes a role association. Detaching a role that is not
// attached is also a no-op.
func (r *RoleRepo) DetachTx(ctx context.Context, tx *sql.Tx, userID, roleID uint64) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id=? AND role_id=?", userID, roleID)
	return err
}

func collectRoles(rows *sql.Rows) ([]model.Role, error) {
	var out []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Slug); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}
