package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaalouf/user-admin-api/internal/repository"
	"github.com/rmaalouf/user-admin-api/internal/storage"
)

func TestCleanerRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	// A stored file whose image row is past the retention window.
	link := "1700000000_old.png"
	require.NoError(t, os.WriteFile(filepath.Join(store.Root, link), []byte("x"), 0o644))

	deleted := time.Now().AddDate(0, 0, -40)
	mock.ExpectExec("DELETE FROM users WHERE deleted_at").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT (.+) FROM images WHERE deleted_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "link", "size", "deleted_at", "created_at"}).
			AddRow(5, link, 1, deleted, deleted))
	mock.ExpectExec("DELETE FROM images WHERE id IN").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cl := &Cleaner{
		Users:      repository.NewUserRepo(db),
		Images:     repository.NewImageRepo(db),
		Store:      store,
		RetainDays: 30,
	}
	cl.Run(context.Background())

	_, err = os.Stat(filepath.Join(store.Root, link))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanerRunNothingToPurge(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM users WHERE deleted_at").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM images WHERE deleted_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "link", "size", "deleted_at", "created_at"}))

	cl := &Cleaner{
		Users:      repository.NewUserRepo(db),
		Images:     repository.NewImageRepo(db),
		Store:      store,
		RetainDays: 30,
	}
	cl.Run(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	_, err := Schedule("not a cron spec", &Cleaner{})
	assert.Error(t, err)
}
