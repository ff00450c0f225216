package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaalouf/user-admin-api/internal/queue"
	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/utils"
)

// low bcrypt cost keeps the tests fast
const testBcryptCost = 4

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := &UserService{
		DB:         db,
		Users:      repository.NewUserRepo(db),
		Roles:      repository.NewRoleRepo(db),
		Perms:      repository.NewPermissionRepo(db),
		Images:     repository.NewImageRepo(db),
		Tokens:     NewTokenService(db, repository.NewTokenRepo(db), testSecret, "user-admin-api", 24),
		Events:     queue.NewPublisher(""),
		BcryptCost: testBcryptCost,
	}
	return svc, mock, func() { db.Close() }
}

func userRow(t *testing.T, id uint64, email, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, testBcryptCost)
	require.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "password_hash",
		"password_changed_at", "profile_image_id", "is_active", "deleted_at",
		"created_at", "updated_at",
	}).AddRow(id, "Ada", "Lovelace", email, hash, nil, nil, true, nil, now, now)
}

func TestUpdatePasswordOldMismatch(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))

	_, err := svc.UpdatePassword(context.Background(), 1, "wrong1!", "fresh9$pw")
	assert.ErrorIs(t, err, ErrOldPasswordMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordSameAsOld(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))

	_, err := svc.UpdatePassword(context.Background(), 1, "correct1!", "correct1!")
	assert.ErrorIs(t, err, ErrSameOldPassword)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordWeak(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))

	// no digit, no special
	_, err := svc.UpdatePassword(context.Background(), 1, "correct1!", "weakweak")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordRevokesAndReissues(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET password_hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE access_tokens SET revoked_at").
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO access_tokens").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	token, err := svc.UpdatePassword(context.Background(), 1, "correct1!", "fresh9$pw")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), token.ID)

	claims, err := utils.ParseBearerToken(testSecret, token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateUserInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com ",
		Password:  "fresh9$pw",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNormalizesEmail(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ada", "Lovelace", "ada@example.com", sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	u, err := svc.Create(context.Background(), CreateUserInput{
		FirstName: " Ada ",
		LastName:  " Lovelace ",
		Email:     " Ada@Example.COM ",
		Password:  "fresh9$pw",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDuplicateEmail(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT(.+) FROM users WHERE email=").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), 1, UpdateProfileInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "taken@example.com",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActiveRequiresIDs(t *testing.T) {
	svc, _, done := newUserService(t)
	defer done()

	err := svc.SetActive(context.Background(), nil, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSoftDeleteRevokesSessions(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET deleted_at").
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE access_tokens SET revoked_at").
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	assert.NoError(t, svc.SoftDelete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteUnknownUser(t *testing.T) {
	svc, mock, done := newUserService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET deleted_at").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, svc.SoftDelete(context.Background(), 99), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
