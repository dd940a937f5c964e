package models

import (
	"database/sql"
	"time"
)

type SocialPost struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"user_id"`
	ContentItemID sql.NullString `db:"content_item_id" json:"content_item_id"`
	Caption       string         `db:"caption" json:"caption"`
	Hashtags      string         `db:"hashtags" json:"hashtags"`
	PostType      string         `db:"post_type" json:"post_type"`
	Status        string         `db:"status" json:"status"`
	ScheduledAt   sql.NullTime   `db:"scheduled_at" json:"scheduled_at"`
	PublishedAt   sql.NullTime   `db:"published_at" json:"published_at"`
	ErrorMessage  sql.NullString `db:"error_message" json:"error_message"`
	RetryCount    int            `db:"retry_count" json:"retry_count"`
	MaxRetries    int            `db:"max_retries" json:"max_retries"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// MediaItem is one ordered media attachment of a post, joined with its
// library asset. FileType is "image" or "video".
type MediaItem struct {
	ID         string `db:"id" json:"id"`
	MediaID    string `db:"media_id" json:"media_id"`
	URL        string `db:"url" json:"url"`
	StorageKey string `db:"storage_key" json:"storage_key"`
	FileType   string `db:"file_type" json:"file_type"`
	FileName   string `db:"file_name" json:"file_name"`
	SortOrder  int    `db:"sort_order" json:"sort_order"`
}

const (
	PostStatusDraft      = "draft"
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)

const (
	PostTypeImage    = "image"
	PostTypeVideo    = "video"
	PostTypeCarousel = "carousel"
	PostTypeText     = "text"
	PostTypeReel     = "reel"
	PostTypeStory    = "story"
)

// postTransitions is the closed set of legal status moves. Everything not
// listed here is rejected. draft<->scheduled follows the presence of a
// scheduled time; failed is re-enterable into publishing for retries.
var postTransitions = map[string][]string{
	PostStatusDraft:      {PostStatusScheduled, PostStatusPublishing},
	PostStatusScheduled:  {PostStatusDraft, PostStatusPublishing},
	PostStatusPublishing: {PostStatusPublished, PostStatusFailed},
	PostStatusFailed:     {PostStatusPublishing},
	PostStatusPublished:  {},
}

func CanTransition(from, to string) bool {
	for _, next := range postTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanEdit reports whether a post in the given status accepts content edits.
func CanEdit(status string) bool {
	return status != PostStatusPublishing && status != PostStatusPublished
}

// CanDelete reports whether a post in the given status may be deleted.
// Published posts may be removed from the dashboard; a post mid-publish
// may not.
func CanDelete(status string) bool {
	return status != PostStatusPublishing
}

// CanPublish reports whether a publish attempt is allowed to start.
func CanPublish(status string) bool {
	return CanTransition(status, PostStatusPublishing)
}
