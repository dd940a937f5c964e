package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/contenthub/api/internal/models"
	"github.com/contenthub/api/internal/repository"
	"github.com/contenthub/api/internal/transfer"
)

// PlatformPublisher adapts one post to one provider's publish protocol and
// returns the platform post id.
type PlatformPublisher interface {
	PublishPost(ctx context.Context, account *models.SocialAccount, message string, media []*models.MediaItem, postType string) (string, error)
}

type PublisherService interface {
	Publish(ctx context.Context, postID string) ([]transfer.PublishOutcome, error)
}

type publisherService struct {
	pr repository.SocialPostRepository
	ta repository.TargetAccountRepository
	mi repository.MediaItemRepository
	st StorageService

	fb PlatformPublisher
	ig PlatformPublisher
}

func NewPublisherService(
	pr repository.SocialPostRepository,
	ta repository.TargetAccountRepository,
	mi repository.MediaItemRepository,
	st StorageService,
	fb PlatformPublisher,
	ig PlatformPublisher) PublisherService {
	return &publisherService{
		pr: pr,
		ta: ta,
		mi: mi,
		st: st,
		fb: fb,
		ig: ig,
	}
}

// Publish fans one post out to all of its target accounts, one at a time in
// stored order. Each account's outcome is persisted the moment it is known;
// a failing account never stops the remaining ones. The post's own status is
// recomputed only after every account has been attempted.
func (s *publisherService) Publish(ctx context.Context, postID string) ([]transfer.PublishOutcome, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if !models.CanPublish(post.Status) {
		return nil, &PolicyViolationError{
			Message: fmt.Sprintf("post is already %s", post.Status),
		}
	}

	media, err := s.mi.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	for _, item := range media {
		resolved, err := s.st.ResolveURL(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("resolve media url: %w", err)
		}
		item.URL = resolved
	}

	targets, err := s.ta.ListForPublish(ctx, postID)
	if err != nil {
		return nil, err
	}
	// A post with no target accounts is a no-op: empty outcome list, status
	// left untouched.
	if len(targets) == 0 {
		slog.Info("publish requested for post with no target accounts", "post_id", postID)
		return []transfer.PublishOutcome{}, nil
	}

	// Visible "publishing" state goes down before any external call so a
	// crash mid-publish never leaves a silently stale draft/scheduled row.
	if err := s.pr.UpdateStatus(ctx, postID, models.PostStatusPublishing); err != nil {
		return nil, err
	}
	if err := s.ta.MarkAllPublishing(ctx, postID); err != nil {
		// The post is already marked publishing. Without a terminal status
		// every later attempt would be rejected by the state guard, so fall
		// back to failed before surfacing the error.
		if failErr := s.pr.SetFailed(ctx, postID, err.Error()); failErr != nil {
			slog.Error("could not mark post failed", "post_id", postID, "error", failErr.Error())
		}
		return nil, err
	}

	message := ComposeMessage(post.Caption, post.Hashtags)

	outcomes := make([]transfer.PublishOutcome, 0, len(targets))
	for _, target := range targets {
		outcome := s.publishToTarget(ctx, target, message, media, post.PostType)
		outcomes = append(outcomes, outcome)
	}

	status, errorMessage := AggregateOutcomes(outcomes)
	switch status {
	case models.PostStatusPublished:
		if err := s.pr.SetPublished(ctx, postID); err != nil {
			return outcomes, err
		}
	case models.PostStatusFailed:
		if err := s.pr.SetFailed(ctx, postID, errorMessage); err != nil {
			return outcomes, err
		}
	}

	return outcomes, nil
}

func (s *publisherService) publishToTarget(ctx context.Context, target *models.TargetAccount, message string, media []*models.MediaItem, postType string) transfer.PublishOutcome {
	platformPostID, err := s.dispatch(ctx, target.Account, message, media, postType)
	if err != nil {
		slog.Info("publish failed for account",
			"post_id", target.SocialPostID,
			"account_id", target.SocialAccountID,
			"error", err.Error())
		if markErr := s.ta.MarkFailed(ctx, target.ID, err.Error()); markErr != nil {
			slog.Error("could not persist account failure", "target_id", target.ID, "error", markErr.Error())
		}
		return transfer.PublishOutcome{
			AccountID: target.SocialAccountID,
			Success:   false,
			Error:     err.Error(),
		}
	}

	if markErr := s.ta.MarkPublished(ctx, target.ID, platformPostID); markErr != nil {
		slog.Error("could not persist account success", "target_id", target.ID, "error", markErr.Error())
	}
	return transfer.PublishOutcome{
		AccountID:      target.SocialAccountID,
		Success:        true,
		PlatformPostID: platformPostID,
	}
}

// dispatch is the single branch point mapping an account variant onto its
// adapter.
func (s *publisherService) dispatch(ctx context.Context, account *models.SocialAccount, message string, media []*models.MediaItem, postType string) (string, error) {
	switch account.AccountType {
	case models.AccountTypeFacebookPage:
		return s.fb.PublishPost(ctx, account, message, media, postType)
	case models.AccountTypeInstagramBusiness:
		return s.ig.PublishPost(ctx, account, message, media, postType)
	default:
		return "", &ValidationError{Message: fmt.Sprintf("unsupported account type %q", account.AccountType)}
	}
}

// ComposeMessage appends the hashtags block to the caption, separated by a
// blank line. Hashtag text is passed through verbatim.
func ComposeMessage(caption, hashtags string) string {
	if hashtags == "" {
		return caption
	}
	return caption + "\n\n" + hashtags
}

// AggregateOutcomes reduces per-account outcomes to the post's final status.
// Any success counts as published; error_message is only produced when every
// account failed. Partial failures stay visible on their own account rows.
func AggregateOutcomes(outcomes []transfer.PublishOutcome) (status, errorMessage string) {
	if len(outcomes) == 0 {
		return "", ""
	}

	anySuccess := false
	var failures []string
	for _, outcome := range outcomes {
		if outcome.Success {
			anySuccess = true
		} else {
			failures = append(failures, outcome.Error)
		}
	}

	if anySuccess {
		return models.PostStatusPublished, ""
	}
	return models.PostStatusFailed, strings.Join(failures, "; ")
}
