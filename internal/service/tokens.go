package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/utils"
)

// TokenService owns the bearer-token lifecycle: issue, revoke one,
// revoke all, and the atomic revoke-all-and-reissue used after a
// password change. Every token is backed by an access_tokens row; the
// row is the unit of revocation.
type TokenService struct {
	DB      *sql.DB
	Tokens  *repository.TokenRepo
	Secret  string
	AppName string
	TTL     time.Duration
}

func NewTokenService(db *sql.DB, tokens *repository.TokenRepo, secret, appName string, ttlHours int) *TokenService {
	return &TokenService{
		DB:      db,
		Tokens:  tokens,
		Secret:  secret,
		AppName: appName,
		TTL:     time.Duration(ttlHours) * time.Hour,
	}
}

// Issue creates a new bearer token for the user and returns the signed
// credential. The row's name is a hash of the app name and issue time,
// a label for operators, not a secret.
func (s *TokenService) Issue(ctx context.Context, userID uint64) (utils.BearerToken, error) {
	exp := time.Now().UTC().Add(s.TTL)
	id, err := s.Tokens.Insert(ctx, userID, utils.TokenLabel(s.AppName), exp)
	if err != nil {
		return utils.BearerToken{}, err
	}
	signed, err := utils.SignBearerToken(s.Secret, userID, id, exp)
	if err != nil {
		return utils.BearerToken{}, err
	}
	return utils.BearerToken{ID: id, Token: signed, Exp: exp}, nil
}

// IssueTx is Issue inside an existing transaction. The signed string is
// computed before commit; if the caller rolls back, the row never
// existed and the signed token authenticates nothing.
func (s *TokenService) IssueTx(ctx context.Context, tx *sql.Tx, userID uint64) (utils.BearerToken, error) {
	exp := time.Now().UTC().Add(s.TTL)
	id, err := s.Tokens.InsertTx(ctx, tx, userID, utils.TokenLabel(s.AppName), exp)
	if err != nil {
		return utils.BearerToken{}, err
	}
	signed, err := utils.SignBearerToken(s.Secret, userID, id, exp)
	if err != nil {
		return utils.BearerToken{}, err
	}
	return utils.BearerToken{ID: id, Token: signed, Exp: exp}, nil
}

// Revoke marks one of the user's active tokens as revoked. A token that
// is missing, already revoked, or owned by someone else fails with
// ErrNotFound.
func (s *TokenService) Revoke(ctx context.Context, userID, tokenID uint64) error {
	err := s.Tokens.Revoke(ctx, userID, tokenID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// RevokeAll revokes every active token the user holds.
func (s *TokenService) RevokeAll(ctx context.Context, userID uint64) error {
	return s.Tokens.RevokeAllForUser(ctx, userID)
}

// RevokeAllAndReissue atomically revokes every active token and issues
// a fresh one. Used after a password change: committed, no token issued
// before the call can authenticate and exactly one new one can; rolled
// back, nothing changed.
func (s *TokenService) RevokeAllAndReissue(ctx context.Context, userID uint64) (utils.BearerToken, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return utils.BearerToken{}, ErrUpdateFailed
	}
	defer func() { _ = tx.Rollback() }()

	token, err := s.reissueTx(ctx, tx, userID)
	if err != nil {
		log.Printf("token reissue failed for user %d: %v", userID, err)
		return utils.BearerToken{}, ErrUpdateFailed
	}
	if err := tx.Commit(); err != nil {
		return utils.BearerToken{}, ErrUpdateFailed
	}
	return token, nil
}

// reissueTx is the shared revoke-all-plus-issue step, also used inside
// the password-change transaction.
func (s *TokenService) reissueTx(ctx context.Context, tx *sql.Tx, userID uint64) (utils.BearerToken, error) {
	if err := s.Tokens.RevokeAllForUserTx(ctx, tx, userID); err != nil {
		return utils.BearerToken{}, err
	}
	return s.IssueTx(ctx, tx, userID)
}
