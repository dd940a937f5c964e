package models

import (
	"database/sql"
	"time"
)

const (
	AccountTypeFacebookPage      = "facebook_page"
	AccountTypeInstagramBusiness = "instagram_business"
)

// SocialAccount is a connected Facebook Page or Instagram Business account.
// AccessToken is stored AES-GCM encrypted; adapters decrypt at publish time.
type SocialAccount struct {
	ID                 string         `db:"id" json:"id"`
	UserID             string         `db:"user_id" json:"user_id"`
	Provider           string         `db:"provider" json:"provider"`
	ProviderAccountID  string         `db:"provider_account_id" json:"provider_account_id"`
	AccountType        string         `db:"account_type" json:"account_type"`
	AccountName        string         `db:"account_name" json:"account_name"`
	AccountAvatarURL   string         `db:"account_avatar_url" json:"account_avatar_url"`
	AccessToken        string         `db:"access_token" json:"-"`
	TokenExpiresAt     sql.NullTime   `db:"token_expires_at" json:"token_expires_at"`
	PageID             sql.NullString `db:"page_id" json:"page_id"`
	InstagramAccountID sql.NullString `db:"instagram_account_id" json:"instagram_account_id"`
	IsActive           bool           `db:"is_active" json:"is_active"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// PublishTargetID returns the Graph object id the adapters post against,
// falling back to the provider account id when the typed column is empty.
func (a *SocialAccount) PublishTargetID() string {
	switch a.AccountType {
	case AccountTypeFacebookPage:
		if a.PageID.Valid && a.PageID.String != "" {
			return a.PageID.String
		}
	case AccountTypeInstagramBusiness:
		if a.InstagramAccountID.Valid && a.InstagramAccountID.String != "" {
			return a.InstagramAccountID.String
		}
	}
	return a.ProviderAccountID
}

const (
	PlatformStatusPending    = "pending"
	PlatformStatusPublishing = "publishing"
	PlatformStatusPublished  = "published"
	PlatformStatusFailed     = "failed"
)

// TargetAccount is the per-post, per-account join row carrying that
// account's individual publish outcome. Account is populated when the row
// is loaded for publishing.
type TargetAccount struct {
	ID              string         `db:"id" json:"id"`
	SocialPostID    string         `db:"social_post_id" json:"social_post_id"`
	SocialAccountID string         `db:"social_account_id" json:"social_account_id"`
	PlatformPostID  sql.NullString `db:"platform_post_id" json:"platform_post_id"`
	PlatformStatus  string         `db:"platform_status" json:"platform_status"`
	PlatformError   sql.NullString `db:"platform_error" json:"platform_error"`
	PublishedAt     sql.NullTime   `db:"published_at" json:"published_at"`

	Account *SocialAccount `db:"-" json:"-"`
}
