package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rmaalouf/user-admin-api/internal/model"
)

// ResetRepo persists password-reset tokens (single 'token_hash' column,
// the raw token is only ever mailed to the user).
type ResetRepo struct{ DB *sql.DB }

func NewResetRepo(db *sql.DB) *ResetRepo { return &ResetRepo{DB: db} }

// ReplaceForUser drops any previous reset token for the user and stores
// a new hash. One outstanding reset per user.
func (r *ResetRepo) ReplaceForUser(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM password_resets WHERE user_id=?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO password_resets (token_hash, user_id, expires_at) VALUES (?,?,?)",
		tokenHash, userID, exp); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the reset row for a token hash if it has not expired.
func (r *ResetRepo) Get(ctx context.Context, tokenHash string) (model.PasswordReset, error) {
	var pr model.PasswordReset
	err := r.DB.QueryRowContext(ctx,
		"SELECT token_hash, user_id, expires_at, created_at FROM password_resets WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&pr.TokenHash, &pr.UserID, &pr.ExpiresAt, &pr.CreatedAt)
	if err != nil {
		return model.PasswordReset{}, err
	}
	if time.Now().UTC().After(pr.ExpiresAt) {
		return model.PasswordReset{}, sql.ErrNoRows
	}
	return pr, nil
}

// ConsumeTx deletes the reset row inside the password-reset transaction
// so a token can only be used once.
func (r *ResetRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, tokenHash string) error {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM password_resets WHERE token_hash=?", tokenHash)
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
