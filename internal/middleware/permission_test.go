package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaalouf/user-admin-api/internal/repository"
)

func permissionRequest(t *testing.T, perms *repository.PermissionRepo, slug string, uid uint64) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != 0 {
		c.Set(ctxUserID, uid)
	}

	called := false
	h := RequirePermission(perms, slug, "not allowed")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec.Code, called
}

func TestRequirePermissionGranted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.slug FROM permissions").
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).AddRow("get-users").AddRow("delete-user"))

	code, called := permissionRequest(t, repository.NewPermissionRepo(db), "get-users", 1)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirePermissionDenied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.slug FROM permissions").
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).AddRow("get-users"))

	code, called := permissionRequest(t, repository.NewPermissionRepo(db), "delete-user", 1)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirePermissionUnauthenticated(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	code, called := permissionRequest(t, repository.NewPermissionRepo(db), "get-users", 0)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, called)
}
