package transfer

// PostCreation is the composer payload for a new social post.
type PostCreation struct {
	Caption       string   `json:"caption"`
	Hashtags      string   `json:"hashtags"`
	PostType      string   `json:"post_type"`
	ScheduledAt   string   `json:"scheduled_at"`
	ContentItemID string   `json:"content_item_id"`
	AccountIDs    []string `json:"account_ids"`
	MediaIDs      []string `json:"media_ids"`
}

// PostUpdate carries partial edits; nil fields are left untouched. Media and
// account lists are full-replace when present.
type PostUpdate struct {
	Caption     *string   `json:"caption"`
	Hashtags    *string   `json:"hashtags"`
	PostType    *string   `json:"post_type"`
	ScheduledAt *string   `json:"scheduled_at"`
	AccountIDs  *[]string `json:"account_ids"`
	MediaIDs    *[]string `json:"media_ids"`
}

// PublishOutcome is one target account's result from a fan-out publish.
type PublishOutcome struct {
	AccountID      string `json:"account_id"`
	Success        bool   `json:"success"`
	PlatformPostID string `json:"platform_post_id,omitempty"`
	Error          string `json:"error,omitempty"`
}
