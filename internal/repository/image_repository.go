package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rmaalouf/user-admin-api/internal/model"
)

// ImageRepo persists stored file records in the `images` table.
type ImageRepo struct{ DB *sql.DB }

func NewImageRepo(db *sql.DB) *ImageRepo { return &ImageRepo{DB: db} }

// InsertTx creates an image row and returns its id.
func (r *ImageRepo) InsertTx(ctx context.Context, tx *sql.Tx, link string, size int64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO images (link, size) VALUES (?,?)", link, size)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Get fetches a live image row by id.
func (r *ImageRepo) Get(ctx context.Context, id uint64) (model.Image, error) {
	var (
		img       model.Image
		deletedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, link, size, deleted_at, created_at FROM images WHERE id=? AND deleted_at IS NULL LIMIT 1",
		id).Scan(&img.ID, &img.Link, &img.Size, &deletedAt, &img.CreatedAt)
	if err != nil {
		return model.Image{}, err
	}
	return img, nil
}

// SoftDeleteTx marks an image deleted. The file itself stays on disk
// until the sweep job removes it together with the row.
func (r *ImageRepo) SoftDeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE images SET deleted_at=NOW() WHERE id=? AND deleted_at IS NULL", id)
	return err
}

// ListDeletedBefore returns images soft-deleted at or before the cutoff.
// The sweep deletes their files before removing the rows.
func (r *ImageRepo) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]model.Image, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, link, size, deleted_at, created_at FROM images WHERE deleted_at IS NOT NULL AND deleted_at <= ?",
		cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Image
	for rows.Next() {
		var (
			img       model.Image
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&img.ID, &img.Link, &img.Size, &deletedAt, &img.CreatedAt); err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			img.DeletedAt = &t
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// HardDelete permanently removes image rows.
func (r *ImageRepo) HardDelete(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := "DELETE FROM images WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
