package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contenthub/api/internal/models"
)

type MediaItemRepository interface {
	ListByPostID(ctx context.Context, postID string) ([]*models.MediaItem, error)
	ReplaceForPost(ctx context.Context, tx *sql.Tx, postID string, items []*models.MediaItem) error
}

type mediaItemRepository struct {
	db *sql.DB
}

func NewMediaItemRepository(db *sql.DB) MediaItemRepository {
	return &mediaItemRepository{db: db}
}

// ListByPostID returns the post's media joined with library assets, in
// carousel sort order.
func (r *mediaItemRepository) ListByPostID(ctx context.Context, postID string) ([]*models.MediaItem, error) {
	query := `
		SELECT spm.id, spm.media_id, ml.url, ml.storage_key, ml.file_type, ml.file_name, spm.sort_order
		FROM social_post_media spm
		JOIN media_library ml ON spm.media_id = ml.id
		WHERE spm.social_post_id = $1
		ORDER BY spm.sort_order
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.MediaItem
	for rows.Next() {
		var m models.MediaItem
		if err := rows.Scan(&m.ID, &m.MediaID, &m.URL, &m.StorageKey, &m.FileType, &m.FileName, &m.SortOrder); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, &m)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return items, nil
}

// ReplaceForPost deletes and reinserts the post's media join rows with fresh
// sort orders.
func (r *mediaItemRepository) ReplaceForPost(ctx context.Context, tx *sql.Tx, postID string, items []*models.MediaItem) error {
	del := `DELETE FROM social_post_media WHERE social_post_id = $1`
	ins := `INSERT INTO social_post_media (id, social_post_id, media_id, sort_order) VALUES ($1, $2, $3, $4)`

	exec := r.db.ExecContext
	if tx != nil {
		exec = tx.ExecContext
	}

	if _, err := exec(ctx, del, postID); err != nil {
		slog.Info(err.Error())
		return err
	}
	for _, item := range items {
		if _, err := exec(ctx, ins, item.ID, postID, item.MediaID, item.SortOrder); err != nil {
			slog.Info(err.Error())
			return err
		}
	}
	return nil
}
