package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/rmaalouf/user-admin-api/internal/model"
	"github.com/rmaalouf/user-admin-api/internal/queue"
	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/utils"
)

// AuthService verifies credentials and manages sessions and password
// resets. It delegates token work to TokenService.
type AuthService struct {
	DB         *sql.DB
	Users      *repository.UserRepo
	Resets     *repository.ResetRepo
	Tokens     *TokenService
	Events     *queue.Publisher
	ResetTTL   time.Duration
	BcryptCost int
}

func NewAuthService(db *sql.DB, users *repository.UserRepo, resets *repository.ResetRepo,
	tokens *TokenService, events *queue.Publisher, resetTTLMin, bcryptCost int) *AuthService {
	return &AuthService{
		DB:         db,
		Users:      users,
		Resets:     resets,
		Tokens:     tokens,
		Events:     events,
		ResetTTL:   time.Duration(resetTTLMin) * time.Minute,
		BcryptCost: bcryptCost,
	}
}

// LoginResult pairs the authenticated user with a fresh bearer token.
type LoginResult struct {
	User  model.User
	Token utils.BearerToken
}

// NormalizeEmail applies the single normalization policy used
// everywhere an email crosses the boundary: trim surrounding
// whitespace, compare case-insensitively by storing lowercase.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies email and password against the stored credentials. An
// unknown email, a wrong password, or an inactive account all return
// (nil, nil), never an error, so the handler can answer 401 without
// leaking which part failed. On success a new token is issued.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	password = strings.TrimSpace(password)

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, nil
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, nil
	}

	token, err := s.Tokens.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Token: token}, nil
}

// Logout revokes the token the current request authenticated with.
func (s *AuthService) Logout(ctx context.Context, userID, tokenID uint64) error {
	return s.Tokens.Revoke(ctx, userID, tokenID)
}

// ForgotPassword creates a single-use reset token for the account and
// hands it to the mail pipeline via a published event. Only the SHA-256
// hash is stored. An unknown email fails with ErrNotFound.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	raw, err := utils.NewResetToken()
	if err != nil {
		return err
	}
	exp := time.Now().UTC().Add(s.ResetTTL)
	if err := s.Resets.ReplaceForUser(ctx, u.ID, utils.HashResetRaw(raw), exp); err != nil {
		log.Printf("store reset token failed for user %d: %v", u.ID, err)
		return ErrUpdateFailed
	}

	if err := s.Events.Publish(ctx, queue.UserEvent{
		Name:       queue.EventPasswordResetRequested,
		UserID:     u.ID,
		Email:      u.Email,
		ResetToken: raw,
	}); err != nil {
		// Mail delivery is best-effort from this side; the token stays
		// valid and support can resend.
		log.Printf("publish reset event failed for user %d: %v", u.ID, err)
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the account
// password. One transaction covers the hash update, the token
// consumption, and the revocation of every live session: a reset
// never leaves an old session usable.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if !utils.StrongPassword(newPassword) {
		return ErrWeakPassword
	}

	pr, err := s.Resets.Get(ctx, utils.HashResetRaw(rawToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return ErrUpdateFailed
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return ErrUpdateFailed
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Users.UpdatePasswordTx(ctx, tx, pr.UserID, hash); err != nil {
		log.Printf("reset password update failed for user %d: %v", pr.UserID, err)
		return ErrUpdateFailed
	}
	if err := s.Resets.ConsumeTx(ctx, tx, pr.TokenHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrUpdateFailed
	}
	if err := s.Tokens.Tokens.RevokeAllForUserTx(ctx, tx, pr.UserID); err != nil {
		return ErrUpdateFailed
	}
	if err := tx.Commit(); err != nil {
		return ErrUpdateFailed
	}

	u, err := s.Users.GetByID(ctx, pr.UserID)
	if err == nil {
		_ = s.Events.Publish(ctx, queue.UserEvent{
			Name:   queue.EventPasswordChanged,
			UserID: u.ID,
			Email:  u.Email,
		})
	}
	return nil
}
