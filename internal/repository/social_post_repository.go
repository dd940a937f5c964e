package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/contenthub/api/internal/models"
)

type SocialPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.SocialPost) error
	GetByID(ctx context.Context, id string) (*models.SocialPost, error)
	ListByUserID(ctx context.Context, userID, status string, limit, offset int) ([]*models.SocialPost, error)
	CountByUserID(ctx context.Context, userID, status string) (int, error)
	CheckByUserID(ctx context.Context, postID, userID string) (bool, error)
	ListDueScheduled(ctx context.Context, before time.Time) ([]*models.SocialPost, error)
	UpdateContent(ctx context.Context, post *models.SocialPost) error
	UpdateStatus(ctx context.Context, postID, status string) error
	SetPublished(ctx context.Context, postID string) error
	SetFailed(ctx context.Context, postID, errorMessage string) error
	SetSchedule(ctx context.Context, postID, status string, scheduledAt sql.NullTime) error
	Remove(ctx context.Context, id string) error
}

type socialPostRepository struct {
	db *sql.DB
}

func NewSocialPostRepository(db *sql.DB) SocialPostRepository {
	return &socialPostRepository{db: db}
}

const postColumns = `id, user_id, content_item_id, caption, hashtags, post_type, status,
	scheduled_at, published_at, error_message, retry_count, max_retries, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.SocialPost, error) {
	var p models.SocialPost
	err := row.Scan(&p.ID, &p.UserID, &p.ContentItemID, &p.Caption, &p.Hashtags,
		&p.PostType, &p.Status, &p.ScheduledAt, &p.PublishedAt, &p.ErrorMessage,
		&p.RetryCount, &p.MaxRetries, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *socialPostRepository) Create(ctx context.Context, tx *sql.Tx, post *models.SocialPost) error {
	query := `
		INSERT INTO social_posts (id, user_id, content_item_id, caption, hashtags, post_type, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, post.ID, post.UserID, post.ContentItemID,
			post.Caption, post.Hashtags, post.PostType, post.Status, post.ScheduledAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, post.ID, post.UserID, post.ContentItemID,
			post.Caption, post.Hashtags, post.PostType, post.Status, post.ScheduledAt)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) GetByID(ctx context.Context, id string) (*models.SocialPost, error) {
	query := `SELECT ` + postColumns + ` FROM social_posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *socialPostRepository) ListByUserID(ctx context.Context, userID, status string, limit, offset int) ([]*models.SocialPost, error) {
	query := `SELECT ` + postColumns + ` FROM social_posts WHERE user_id = $1`
	args := []any{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY COALESCE(scheduled_at, created_at) DESC`

	if status != "" {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.SocialPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *socialPostRepository) CountByUserID(ctx context.Context, userID, status string) (int, error) {
	query := `SELECT COUNT(*) FROM social_posts WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *socialPostRepository) CheckByUserID(ctx context.Context, postID, userID string) (bool, error) {
	query := `SELECT 1 FROM social_posts WHERE id = $1 AND user_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *socialPostRepository) ListDueScheduled(ctx context.Context, before time.Time) ([]*models.SocialPost, error) {
	query := `SELECT ` + postColumns + ` FROM social_posts WHERE status = $1 AND scheduled_at <= $2`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, before)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.SocialPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *socialPostRepository) UpdateContent(ctx context.Context, post *models.SocialPost) error {
	query := `
		UPDATE social_posts
		SET caption = $1, hashtags = $2, post_type = $3, status = $4, scheduled_at = $5, updated_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query, post.Caption, post.Hashtags, post.PostType,
		post.Status, post.ScheduledAt, time.Now(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) UpdateStatus(ctx context.Context, postID, status string) error {
	query := `UPDATE social_posts SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) SetPublished(ctx context.Context, postID string) error {
	query := `
		UPDATE social_posts
		SET status = $1, published_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) SetFailed(ctx context.Context, postID, errorMessage string) error {
	query := `
		UPDATE social_posts
		SET status = $1, error_message = $2, retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, errorMessage, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) SetSchedule(ctx context.Context, postID, status string, scheduledAt sql.NullTime) error {
	query := `UPDATE social_posts SET scheduled_at = $1, status = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, scheduledAt, status, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM social_posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
