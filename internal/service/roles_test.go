package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmaalouf/user-admin-api/internal/model"
	"github.com/rmaalouf/user-admin-api/internal/repository"
)

func TestHighestRole(t *testing.T) {
	cases := []struct {
		name    string
		roles   []model.Role
		want    uint64
		wantErr error
	}{
		{name: "empty set", roles: nil, wantErr: ErrInvalidArgument},
		{name: "single role", roles: []model.Role{{ID: 3, Slug: "user"}}, want: 3},
		{
			name: "lowest id wins",
			roles: []model.Role{
				{ID: 3, Slug: "user"},
				{ID: 1, Slug: "super-admin"},
				{ID: 2, Slug: "admin"},
			},
			want: 1,
		},
		{
			name: "first occurrence wins on repeated id",
			roles: []model.Role{
				{ID: 2, Name: "Admin"},
				{ID: 2, Name: "Admin copy"},
			},
			want: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HighestRole(tc.roles)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.ID)
			if tc.name == "first occurrence wins on repeated id" {
				assert.Equal(t, "Admin", got.Name)
			}
		})
	}
}

func roleRows(ids ...uint64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "slug"})
	for _, id := range ids {
		rows.AddRow(id, "role", "role")
	}
	return rows
}

func TestCanUpdateRoles(t *testing.T) {
	cases := []struct {
		name    string
		actor   []uint64
		target  []uint64
		wantErr error
	}{
		{name: "admin may edit user", actor: []uint64{2}, target: []uint64{3}},
		{name: "super-admin may edit admin", actor: []uint64{1, 3}, target: []uint64{2}},
		{name: "equal rank refused", actor: []uint64{1}, target: []uint64{1}, wantErr: ErrNotAllowed},
		{name: "lower rank refused", actor: []uint64{3}, target: []uint64{2}, wantErr: ErrNotAllowed},
		{name: "actor without roles", actor: nil, target: []uint64{3}, wantErr: ErrNotFound},
		{name: "target without roles", actor: []uint64{1}, target: nil, wantErr: ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery("SELECT (.+) FROM roles r").WillReturnRows(roleRows(tc.actor...))
			mock.ExpectQuery("SELECT (.+) FROM roles r").WillReturnRows(roleRows(tc.target...))

			svc := NewAccessService(repository.NewRoleRepo(db))
			err = svc.CanUpdateRoles(context.Background(), 10, 20)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
