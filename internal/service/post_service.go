package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contenthub/api/internal/models"
	"github.com/contenthub/api/internal/repository"
	"github.com/contenthub/api/internal/transfer"
	"github.com/google/uuid"
)

type PostService interface {
	Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.SocialPost, error)
	PostInfo(ctx context.Context, userID, postID string) (*models.SocialPost, []*models.MediaItem, []*models.TargetAccount, error)
	List(ctx context.Context, userID, status string, limit, offset int) ([]*models.SocialPost, int, error)
	Update(ctx context.Context, userID, postID string, pu *transfer.PostUpdate) (*models.SocialPost, error)
	Remove(ctx context.Context, userID, postID string) error
	Duplicate(ctx context.Context, userID, postID string) (*models.SocialPost, error)
	Reschedule(ctx context.Context, userID, postID, scheduledAt string) (*models.SocialPost, error)
}

type postService struct {
	db *sql.DB
	pr repository.SocialPostRepository
	ta repository.TargetAccountRepository
	mi repository.MediaItemRepository
	ac repository.SocialAccountRepository
}

func NewPostService(
	db *sql.DB,
	pr repository.SocialPostRepository,
	ta repository.TargetAccountRepository,
	mi repository.MediaItemRepository,
	ac repository.SocialAccountRepository) PostService {
	return &postService{
		db: db,
		pr: pr,
		ta: ta,
		mi: mi,
		ac: ac,
	}
}

var validPostTypes = map[string]struct{}{
	models.PostTypeImage:    {},
	models.PostTypeVideo:    {},
	models.PostTypeCarousel: {},
	models.PostTypeText:     {},
	models.PostTypeReel:     {},
	models.PostTypeStory:    {},
}

func (s *postService) Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.SocialPost, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}

	postType := pc.PostType
	if postType == "" {
		postType = models.PostTypeImage
	}
	if _, ok := validPostTypes[postType]; !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown post type %q", postType)}
	}

	scheduledAt, err := parseScheduledAt(pc.ScheduledAt)
	if err != nil {
		return nil, err
	}

	status := models.PostStatusDraft
	if scheduledAt.Valid {
		status = models.PostStatusScheduled
	}

	post := &models.SocialPost{
		ID:          uuid.NewString(),
		UserID:      userID,
		Caption:     pc.Caption,
		Hashtags:    pc.Hashtags,
		PostType:    postType,
		Status:      status,
		ScheduledAt: scheduledAt,
		MaxRetries:  3,
	}
	if pc.ContentItemID != "" {
		post.ContentItemID = sql.NullString{String: pc.ContentItemID, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.pr.Create(ctx, tx, post); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	if err = s.saveMedia(ctx, tx, post.ID, pc.MediaIDs); err != nil {
		return nil, fmt.Errorf("error saving post media: %w", err)
	}
	if err = s.saveTargetAccounts(ctx, tx, userID, post.ID, pc.AccountIDs); err != nil {
		return nil, fmt.Errorf("error saving target accounts: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	created, err := s.pr.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *postService) saveMedia(ctx context.Context, tx *sql.Tx, postID string, mediaIDs []string) error {
	items := make([]*models.MediaItem, 0, len(mediaIDs))
	for i, mediaID := range mediaIDs {
		items = append(items, &models.MediaItem{
			ID:        uuid.NewString(),
			MediaID:   mediaID,
			SortOrder: i,
		})
	}
	return s.mi.ReplaceForPost(ctx, tx, postID, items)
}

func (s *postService) saveTargetAccounts(ctx context.Context, tx *sql.Tx, userID, postID string, accountIDs []string) error {
	targets := make([]*models.TargetAccount, 0, len(accountIDs))
	for _, accountID := range accountIDs {
		exists, err := s.ac.CheckByUserID(ctx, accountID, userID)
		if err != nil {
			return fmt.Errorf("error checking social account %s: %w", accountID, err)
		}
		if !exists {
			return &ValidationError{Message: fmt.Sprintf("social account %s does not exist", accountID)}
		}
		targets = append(targets, &models.TargetAccount{
			ID:              uuid.NewString(),
			SocialPostID:    postID,
			SocialAccountID: accountID,
		})
	}
	return s.ta.ReplaceForPost(ctx, tx, postID, targets)
}

func (s *postService) ownedPost(ctx context.Context, userID, postID string) (*models.SocialPost, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) PostInfo(ctx context.Context, userID, postID string) (*models.SocialPost, []*models.MediaItem, []*models.TargetAccount, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, nil, nil, err
	}

	media, err := s.mi.ListByPostID(ctx, postID)
	if err != nil {
		return nil, nil, nil, err
	}
	targets, err := s.ta.ListByPostID(ctx, postID)
	if err != nil {
		return nil, nil, nil, err
	}
	return post, media, targets, nil
}

func (s *postService) List(ctx context.Context, userID, status string, limit, offset int) ([]*models.SocialPost, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.pr.ListByUserID(ctx, userID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.pr.CountByUserID(ctx, userID, status)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update applies partial edits. Editing is refused while the post is
// publishing or after it has published. Setting or clearing the scheduled
// time toggles the draft/scheduled pair; other statuses keep their status.
func (s *postService) Update(ctx context.Context, userID, postID string, pu *transfer.PostUpdate) (*models.SocialPost, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if !models.CanEdit(post.Status) {
		return nil, &PolicyViolationError{Message: "cannot edit a published or publishing post"}
	}

	if pu.Caption != nil {
		post.Caption = *pu.Caption
	}
	if pu.Hashtags != nil {
		post.Hashtags = *pu.Hashtags
	}
	if pu.PostType != nil {
		if _, ok := validPostTypes[*pu.PostType]; !ok {
			return nil, &ValidationError{Message: fmt.Sprintf("unknown post type %q", *pu.PostType)}
		}
		post.PostType = *pu.PostType
	}
	if pu.ScheduledAt != nil {
		scheduledAt, err := parseScheduledAt(*pu.ScheduledAt)
		if err != nil {
			return nil, err
		}
		post.ScheduledAt = scheduledAt
		if scheduledAt.Valid && post.Status == models.PostStatusDraft {
			post.Status = models.PostStatusScheduled
		} else if !scheduledAt.Valid && post.Status == models.PostStatusScheduled {
			post.Status = models.PostStatusDraft
		}
	}

	if err := s.pr.UpdateContent(ctx, post); err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}

	if pu.MediaIDs != nil {
		if err := s.saveMedia(ctx, nil, postID, *pu.MediaIDs); err != nil {
			return nil, fmt.Errorf("error replacing post media: %w", err)
		}
	}
	if pu.AccountIDs != nil {
		if err := s.saveTargetAccounts(ctx, nil, userID, postID, *pu.AccountIDs); err != nil {
			return nil, fmt.Errorf("error replacing target accounts: %w", err)
		}
	}

	return s.pr.GetByID(ctx, postID)
}

func (s *postService) Remove(ctx context.Context, userID, postID string) error {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	if !models.CanDelete(post.Status) {
		return &PolicyViolationError{Message: "cannot delete a post that is currently publishing"}
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

// Duplicate copies a post's content, media list and account list into a
// fresh draft.
func (s *postService) Duplicate(ctx context.Context, userID, postID string) (*models.SocialPost, error) {
	original, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	media, err := s.mi.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	targets, err := s.ta.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	dup := &models.SocialPost{
		ID:            uuid.NewString(),
		UserID:        userID,
		ContentItemID: original.ContentItemID,
		Caption:       original.Caption,
		Hashtags:      original.Hashtags,
		PostType:      original.PostType,
		Status:        models.PostStatusDraft,
		MaxRetries:    original.MaxRetries,
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.pr.Create(ctx, tx, dup); err != nil {
		return nil, fmt.Errorf("error duplicating post: %w", err)
	}

	mediaIDs := make([]string, 0, len(media))
	for _, item := range media {
		mediaIDs = append(mediaIDs, item.MediaID)
	}
	if err = s.saveMedia(ctx, tx, dup.ID, mediaIDs); err != nil {
		return nil, fmt.Errorf("error copying post media: %w", err)
	}

	accountIDs := make([]string, 0, len(targets))
	for _, target := range targets {
		accountIDs = append(accountIDs, target.SocialAccountID)
	}
	if err = s.saveTargetAccounts(ctx, tx, userID, dup.ID, accountIDs); err != nil {
		return nil, fmt.Errorf("error copying target accounts: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.pr.GetByID(ctx, dup.ID)
}

func (s *postService) Reschedule(ctx context.Context, userID, postID, scheduledAt string) (*models.SocialPost, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if !models.CanEdit(post.Status) {
		return nil, &PolicyViolationError{Message: "cannot reschedule a published or publishing post"}
	}

	parsed, err := parseScheduledAt(scheduledAt)
	if err != nil {
		return nil, err
	}

	status := models.PostStatusDraft
	if parsed.Valid {
		status = models.PostStatusScheduled
	}

	if err := s.pr.SetSchedule(ctx, postID, status, parsed); err != nil {
		return nil, fmt.Errorf("error rescheduling post: %w", err)
	}
	return s.pr.GetByID(ctx, postID)
}

func parseScheduledAt(value string) (sql.NullTime, error) {
	if value == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return sql.NullTime{}, &ValidationError{Message: fmt.Sprintf("invalid scheduled time format: %v", err)}
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}
