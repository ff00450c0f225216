package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rmaalouf/user-admin-api/internal/model"
)

// TokenRepo persists bearer access tokens. A row is the revocable half
// of a session: the signed JWT handed to the client references the row
// through its `jti` claim, and authentication re-checks the row on
// every request. Revoking the row kills the session immediately,
// regardless of the JWT's own expiry.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// InsertTx creates a token row inside an existing transaction and
// returns its generated id.
func (r *TokenRepo) InsertTx(ctx context.Context, tx *sql.Tx, userID uint64, name string, exp time.Time) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO access_tokens (user_id, name, expires_at) VALUES (?,?,?)",
		userID, name, exp)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Insert creates a token row outside any transaction.
func (r *TokenRepo) Insert(ctx context.Context, userID uint64, name string, exp time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_tokens (user_id, name, expires_at) VALUES (?,?,?)",
		userID, name, exp)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetActive returns the token row when it exists, is not revoked and
// has not expired. Any other state maps to sql.ErrNoRows.
func (r *TokenRepo) GetActive(ctx context.Context, id uint64) (model.AccessToken, error) {
	var (
		t         model.AccessToken
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, name, expires_at, revoked_at, created_at FROM access_tokens WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.UserID, &t.Name, &t.ExpiresAt, &revokedAt, &t.CreatedAt)
	if err != nil {
		return model.AccessToken{}, err
	}
	if revokedAt.Valid {
		return model.AccessToken{}, sql.ErrNoRows
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return model.AccessToken{}, sql.ErrNoRows
	}
	return t, nil
}

// Revoke marks a single active token as revoked. It only touches rows
// owned by the given user; revoking someone else's token, an already
// revoked token or a missing one maps to ErrNotFound.
func (r *TokenRepo) Revoke(ctx context.Context, userID, tokenID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE access_tokens SET revoked_at=NOW() WHERE id=? AND user_id=? AND revoked_at IS NULL",
		tokenID, userID)
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

// RevokeAllForUser revokes all of a user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE access_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

// RevokeAllForUserTx is RevokeAllForUser inside an existing transaction.
// Password change pairs it with InsertTx so the old sessions and the
// fresh one flip together at commit.
func (r *TokenRepo) RevokeAllForUserTx(ctx context.Context, tx *sql.Tx, userID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE access_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

// CountActiveForUser returns the number of live tokens a user holds.
func (r *TokenRepo) CountActiveForUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM access_tokens WHERE user_id=? AND revoked_at IS NULL AND expires_at > NOW()",
		userID).Scan(&n)
	return n, err
}
