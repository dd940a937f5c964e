package service

import (
	"context"
	"fmt"

	config "github.com/contenthub/api/configs"
	"github.com/contenthub/api/internal/models"
	"github.com/contenthub/api/pkg/utils"
)

type FacebookService interface {
	PublishPost(ctx context.Context, account *models.SocialAccount, message string, media []*models.MediaItem, postType string) (string, error)
}

type facebookService struct {
	cfg   config.Config
	graph *GraphClient
}

func NewFacebookService(cfg config.Config, graph *GraphClient) FacebookService {
	return &facebookService{cfg: cfg, graph: graph}
}

// PublishPost publishes to a Facebook Page. The endpoint is picked by the
// first media item: none means a plain feed post, an image goes to /photos,
// a video to /videos. Pages have no carousel publish here, so only the
// first item is ever used.
func (s *facebookService) PublishPost(ctx context.Context, account *models.SocialAccount, message string, media []*models.MediaItem, postType string) (string, error) {
	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("decrypt access token: %w", err)
	}

	pageID := account.PublishTargetID()

	if len(media) > 0 && media[0].FileType == "image" {
		return s.graph.Post(ctx, "Facebook", pageID, "photos", map[string]any{
			"url":          media[0].URL,
			"message":      message,
			"access_token": accessToken,
		})
	}

	if len(media) > 0 && media[0].FileType == "video" {
		return s.graph.Post(ctx, "Facebook", pageID, "videos", map[string]any{
			"file_url":     media[0].URL,
			"description":  message,
			"access_token": accessToken,
		})
	}

	return s.graph.Post(ctx, "Facebook", pageID, "feed", map[string]any{
		"message":      message,
		"access_token": accessToken,
	})
}
