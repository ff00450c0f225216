package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log"

	"github.com/rmaalouf/user-admin-api/internal/utils"
)

// Reference rows seeded on every boot. Role ids double as priority
// ranks, so the order here is load-bearing: super-admin must keep the
// smallest id.
var seedRoles = []struct {
	ID   uint64
	Name string
	Slug string
}{
	{1, "Super Admin", "super-admin"},
	{2, "Admin", "admin"},
	{3, "User", "user"},
}

var seedPermissions = []struct {
	Name        string
	Slug        string
	Description string
}{
	{"Get Users", "get-users", "Get all users"},
	{"Attach Permissions", "attach-permissions", "Add and remove permissions for user"},
	{"Activate/Deactivate User", "activate-user", "Activate or deactivate a user's account"},
	{"Delete User", "delete-user", "Delete a user's account"},
	{"Get deleted users", "get-deleted-users", "Get the list of deleted users"},
	{"Get inactive users", "get-inactive-users", "Get the list of inactive users"},
}

// Seed inserts the role and permission reference rows. INSERT IGNORE
// keeps the call idempotent across restarts.
func Seed(ctx context.Context, db *sql.DB) error {
	for _, r := range seedRoles {
		if _, err := db.ExecContext(ctx,
			"INSERT IGNORE INTO roles (id, name, slug) VALUES (?,?,?)",
			r.ID, r.Name, r.Slug); err != nil {
			return err
		}
	}
	for _, p := range seedPermissions {
		if _, err := db.ExecContext(ctx,
			"INSERT IGNORE INTO permissions (name, slug, description) VALUES (?,?,?)",
			p.Name, p.Slug, p.Description); err != nil {
			return err
		}
	}
	return nil
}

// SeedBootUser creates the initial super-admin account on first boot if
// no users exist. The generated password is logged and must be changed
// immediately. Returns the generated password (empty string if seeding
// was skipped).
func SeedBootUser(ctx context.Context, db *sql.DB, bcryptCost int) (string, error) {
	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE deleted_at IS NULL").Scan(&count); err != nil {
		return "", err
	}
	if count > 0 {
		return "", nil
	}

	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	password := hex.EncodeToString(buf)

	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password_hash, is_active) VALUES (?,?,?,?,1)",
		"Admin", "Admin", "admin@example.com", hash)
	if err != nil {
		return "", err
	}
	uid, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	// Highest priority role plus every seeded permission.
	if _, err := tx.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role_id) VALUES (?,1)", uid); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT IGNORE INTO user_permissions (user_id, permission_id) SELECT ?, id FROM permissions", uid); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	log.Printf("seeded boot super-admin admin@example.com password=%s (change immediately)", password)
	return password, nil
}
