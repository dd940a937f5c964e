package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/contenthub/api/configs"
	"github.com/contenthub/api/internal/models"
	"github.com/contenthub/api/pkg/utils"
)

const (
	containerStatusFinished = "FINISHED"
	containerStatusError    = "ERROR"
)

type InstagramService interface {
	PublishPost(ctx context.Context, account *models.SocialAccount, caption string, media []*models.MediaItem, postType string) (string, error)
}

type instagramService struct {
	cfg config.Config

	graph        *GraphClient
	pollInterval time.Duration
	pollAttempts int
	sleep        func(time.Duration)
}

func NewInstagramService(cfg config.Config, graph *GraphClient) InstagramService {
	return &instagramService{
		cfg:          cfg,
		graph:        graph,
		pollInterval: time.Duration(cfg.PublishPollSeconds) * time.Second,
		pollAttempts: cfg.PublishPollAttempts,
		sleep:        time.Sleep,
	}
}

// PublishPost publishes to an Instagram Business account through the media
// container protocol: create container(s), wait for async processing where
// the container holds video, then publish the container.
func (s *instagramService) PublishPost(ctx context.Context, account *models.SocialAccount, caption string, media []*models.MediaItem, postType string) (string, error) {
	if len(media) == 0 {
		return "", &ValidationError{Message: "Instagram requires at least one media item"}
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("decrypt access token: %w", err)
	}

	igAccountID := account.PublishTargetID()

	if postType == models.PostTypeCarousel && len(media) > 1 {
		return s.publishCarousel(ctx, igAccountID, accessToken, caption, media)
	}
	return s.publishSingle(ctx, igAccountID, accessToken, caption, media[0], postType)
}

// publishCarousel creates one child container per media item in sort order,
// then a parent CAROUSEL container referencing them, then publishes the
// parent.
func (s *instagramService) publishCarousel(ctx context.Context, igAccountID, accessToken, caption string, media []*models.MediaItem) (string, error) {
	containerIDs := make([]string, 0, len(media))

	for _, item := range media {
		isVideo := item.FileType == "video"

		payload := map[string]any{
			"media_type":       "IMAGE",
			"is_carousel_item": true,
			"access_token":     accessToken,
			"image_url":        item.URL,
		}
		if isVideo {
			payload["media_type"] = "VIDEO"
			payload["video_url"] = item.URL
			delete(payload, "image_url")
		}

		containerID, err := s.graph.Post(ctx, "Instagram", igAccountID, "media", payload)
		if err != nil {
			return "", err
		}
		containerIDs = append(containerIDs, containerID)
	}

	carouselID, err := s.graph.Post(ctx, "Instagram", igAccountID, "media", map[string]any{
		"media_type":   "CAROUSEL",
		"children":     strings.Join(containerIDs, ","),
		"caption":      caption,
		"access_token": accessToken,
	})
	if err != nil {
		return "", err
	}

	return s.publishContainer(ctx, igAccountID, carouselID, accessToken)
}

func (s *instagramService) publishSingle(ctx context.Context, igAccountID, accessToken, caption string, item *models.MediaItem, postType string) (string, error) {
	isVideo := item.FileType == "video"
	isReel := postType == models.PostTypeReel

	mediaType := "IMAGE"
	if isReel {
		mediaType = "REELS"
	} else if isVideo {
		mediaType = "VIDEO"
	}

	payload := map[string]any{
		"media_type":   mediaType,
		"caption":      caption,
		"access_token": accessToken,
	}
	if isVideo || isReel {
		payload["video_url"] = item.URL
	} else {
		payload["image_url"] = item.URL
	}

	containerID, err := s.graph.Post(ctx, "Instagram", igAccountID, "media", payload)
	if err != nil {
		return "", err
	}

	// Image containers are ready immediately; video work is asynchronous and
	// the container must finish processing before it can be published.
	if isVideo || isReel {
		if err := s.awaitMediaReady(ctx, igAccountID, containerID, accessToken); err != nil {
			return "", err
		}
	}

	return s.publishContainer(ctx, igAccountID, containerID, accessToken)
}

func (s *instagramService) publishContainer(ctx context.Context, igAccountID, containerID, accessToken string) (string, error) {
	return s.graph.Post(ctx, "Instagram", igAccountID, "media_publish", map[string]any{
		"creation_id":  containerID,
		"access_token": accessToken,
	})
}

// awaitMediaReady polls the container's status_code until FINISHED. An ERROR
// status fails immediately; any other status, including a failed status
// read, keeps polling until the attempt cap runs out.
func (s *instagramService) awaitMediaReady(ctx context.Context, igAccountID, containerID, accessToken string) error {
	for i := 0; i < s.pollAttempts; i++ {
		status, err := s.graph.GetStatus(ctx, "Instagram", containerID, accessToken)
		if err != nil {
			slog.Info("container status check failed", "container_id", containerID, "error", err.Error())
		}

		switch status {
		case containerStatusFinished:
			return nil
		case containerStatusError:
			return &ProcessingError{ContainerID: containerID}
		}

		s.sleep(s.pollInterval)
	}
	return &TimeoutError{AccountID: igAccountID, ContainerID: containerID}
}
