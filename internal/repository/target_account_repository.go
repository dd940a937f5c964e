package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contenthub/api/internal/models"
)

type TargetAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, ta *models.TargetAccount) error
	ListByPostID(ctx context.Context, postID string) ([]*models.TargetAccount, error)
	ListForPublish(ctx context.Context, postID string) ([]*models.TargetAccount, error)
	ReplaceForPost(ctx context.Context, tx *sql.Tx, postID string, tas []*models.TargetAccount) error
	MarkAllPublishing(ctx context.Context, postID string) error
	MarkPublished(ctx context.Context, id, platformPostID string) error
	MarkFailed(ctx context.Context, id, platformError string) error
}

type targetAccountRepository struct {
	db *sql.DB
}

func NewTargetAccountRepository(db *sql.DB) TargetAccountRepository {
	return &targetAccountRepository{db: db}
}

func (r *targetAccountRepository) Create(ctx context.Context, tx *sql.Tx, ta *models.TargetAccount) error {
	query := `
		INSERT INTO social_post_accounts (id, social_post_id, social_account_id)
		VALUES ($1, $2, $3)
	`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, ta.ID, ta.SocialPostID, ta.SocialAccountID)
	} else {
		_, err = r.db.ExecContext(ctx, query, ta.ID, ta.SocialPostID, ta.SocialAccountID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *targetAccountRepository) ListByPostID(ctx context.Context, postID string) ([]*models.TargetAccount, error) {
	query := `
		SELECT id, social_post_id, social_account_id, platform_post_id, platform_status, platform_error, published_at
		FROM social_post_accounts
		WHERE social_post_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var targets []*models.TargetAccount
	for rows.Next() {
		var ta models.TargetAccount
		if err := rows.Scan(&ta.ID, &ta.SocialPostID, &ta.SocialAccountID,
			&ta.PlatformPostID, &ta.PlatformStatus, &ta.PlatformError, &ta.PublishedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		targets = append(targets, &ta)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return targets, nil
}

// ListForPublish loads target rows joined with the connected account details
// the adapters need, in insertion order.
func (r *targetAccountRepository) ListForPublish(ctx context.Context, postID string) ([]*models.TargetAccount, error) {
	query := `
		SELECT spa.id, spa.social_post_id, spa.social_account_id, spa.platform_post_id,
			spa.platform_status, spa.platform_error, spa.published_at,
			sa.id, sa.user_id, sa.provider, sa.provider_account_id, sa.account_type,
			sa.account_name, sa.account_avatar_url, sa.access_token, sa.token_expires_at,
			sa.page_id, sa.instagram_account_id, sa.is_active, sa.created_at, sa.updated_at
		FROM social_post_accounts spa
		JOIN social_accounts sa ON spa.social_account_id = sa.id
		WHERE spa.social_post_id = $1
		ORDER BY spa.id
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var targets []*models.TargetAccount
	for rows.Next() {
		var ta models.TargetAccount
		var acc models.SocialAccount
		if err := rows.Scan(&ta.ID, &ta.SocialPostID, &ta.SocialAccountID,
			&ta.PlatformPostID, &ta.PlatformStatus, &ta.PlatformError, &ta.PublishedAt,
			&acc.ID, &acc.UserID, &acc.Provider, &acc.ProviderAccountID, &acc.AccountType,
			&acc.AccountName, &acc.AccountAvatarURL, &acc.AccessToken, &acc.TokenExpiresAt,
			&acc.PageID, &acc.InstagramAccountID, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ta.Account = &acc
		targets = append(targets, &ta)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return targets, nil
}

// ReplaceForPost deletes and reinserts the post's target rows. Updating a
// post's account list is full-replace by design.
func (r *targetAccountRepository) ReplaceForPost(ctx context.Context, tx *sql.Tx, postID string, tas []*models.TargetAccount) error {
	del := `DELETE FROM social_post_accounts WHERE social_post_id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, del, postID)
	} else {
		_, err = r.db.ExecContext(ctx, del, postID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	for _, ta := range tas {
		if err := r.Create(ctx, tx, ta); err != nil {
			return err
		}
	}
	return nil
}

func (r *targetAccountRepository) MarkAllPublishing(ctx context.Context, postID string) error {
	query := `UPDATE social_post_accounts SET platform_status = $1 WHERE social_post_id = $2`
	_, err := r.db.ExecContext(ctx, query, models.PlatformStatusPublishing, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *targetAccountRepository) MarkPublished(ctx context.Context, id, platformPostID string) error {
	query := `
		UPDATE social_post_accounts
		SET platform_status = $1, platform_post_id = $2, published_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PlatformStatusPublished, platformPostID, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *targetAccountRepository) MarkFailed(ctx context.Context, id, platformError string) error {
	query := `
		UPDATE social_post_accounts
		SET platform_status = $1, platform_error = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PlatformStatusFailed, platformError, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
