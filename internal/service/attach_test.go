package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaalouf/user-admin-api/internal/repository"
)

func newAttachService(t *testing.T) (*AttachService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewAttachService(db,
		repository.NewUserRepo(db),
		repository.NewRoleRepo(db),
		repository.NewPermissionRepo(db))
	return svc, mock, func() { db.Close() }
}

func TestAttachRolesRequiresIDs(t *testing.T) {
	svc, _, done := newAttachService(t)
	defer done()

	assert.ErrorIs(t, svc.AttachRoles(context.Background(), 1, nil), ErrInvalidArgument)
	assert.ErrorIs(t, svc.DetachPermissions(context.Background(), 1, []uint64{}), ErrInvalidArgument)
}

func TestAttachRolesUnknownRole(t *testing.T) {
	svc, mock, done := newAttachService(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT(.+) FROM roles").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	err := svc.AttachRoles(context.Background(), 1, []uint64{2, 99})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachRolesIdempotentWrites(t *testing.T) {
	svc, mock, done := newAttachService(t)
	defer done()

	// duplicate input id collapses to one write
	mock.ExpectQuery("SELECT COUNT(.+) FROM roles").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO user_roles").
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.AttachRoles(context.Background(), 1, []uint64{2, 2})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachPermissionsUnknownUser(t *testing.T) {
	svc, mock, done := newAttachService(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT(.+) FROM permissions").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnError(sql.ErrNoRows)

	err := svc.AttachPermissions(context.Background(), 42, []uint64{1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetachPermissions(t *testing.T) {
	svc, mock, done := newAttachService(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT(.+) FROM permissions").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(t, 1, "ada@example.com", "correct1!"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_permissions").
		WithArgs(uint64(1), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM user_permissions").
		WithArgs(uint64(1), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := svc.DetachPermissions(context.Background(), 1, []uint64{3, 4})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
