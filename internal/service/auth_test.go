package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaalouf/user-admin-api/internal/queue"
	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/utils"
)

func newAuthService(t *testing.T) (*AuthService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	tokens := NewTokenService(db, repository.NewTokenRepo(db), testSecret, "user-admin-api", 24)
	svc := NewAuthService(db, repository.NewUserRepo(db), repository.NewResetRepo(db),
		tokens, queue.NewPublisher(""), 60, testBcryptCost)
	return svc, mock, func() { db.Close() }
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	result, err := svc.Login(context.Background(), " Ghost@Example.com ", "whatever1!")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))

	result, err := svc.Login(context.Background(), "ada@example.com", "wrong1!")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginInactiveUser(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	hash, err := utils.HashPassword("correct1!", testBcryptCost)
	require.NoError(t, err)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "password_hash",
		"password_changed_at", "profile_image_id", "is_active", "deleted_at",
		"created_at", "updated_at",
	}).AddRow(1, "Ada", "Lovelace", "ada@example.com", hash, nil, nil, false, nil, now, now)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").WillReturnRows(rows)

	result, err := svc.Login(context.Background(), "ada@example.com", "correct1!")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginIssuesToken(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))
	mock.ExpectExec("INSERT INTO access_tokens").
		WillReturnResult(sqlmock.NewResult(3, 1))

	result, err := svc.Login(context.Background(), "ada@example.com", "correct1!")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "ada@example.com", result.User.Email)

	claims, err := utils.ParseBearerToken(testSecret, result.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.UserID)
	assert.Equal(t, uint64(3), claims.TokenID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordWeak(t *testing.T) {
	svc, _, done := newAuthService(t)
	defer done()

	err := svc.ResetPassword(context.Background(), "sometoken", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestResetPasswordUnknownToken(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM password_resets").
		WillReturnError(sql.ErrNoRows)

	err := svc.ResetPassword(context.Background(), "sometoken", "fresh9$pw")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordConsumesTokenAndRevokesSessions(t *testing.T) {
	svc, mock, done := newAuthService(t)
	defer done()

	hash := utils.HashResetRaw("sometoken")
	mock.ExpectQuery("SELECT (.+) FROM password_resets").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"token_hash", "user_id", "expires_at", "created_at"}).
			AddRow(hash, 1, time.Now().Add(time.Hour), time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET password_hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM password_resets").
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE access_tokens SET revoked_at").
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// post-commit lookup for the event payload
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "old1!pw"))

	err := svc.ResetPassword(context.Background(), "sometoken", "fresh9$pw")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
