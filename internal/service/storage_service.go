package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/contenthub/api/configs"
	"github.com/contenthub/api/internal/models"
)

// StorageService resolves media items to URLs the Graph API can fetch.
type StorageService interface {
	ResolveURL(ctx context.Context, item *models.MediaItem) (string, error)
}

type r2Service struct {
	config cfg.Config
}

func NewR2Service(cfg cfg.Config) StorageService {
	return &r2Service{config: cfg}
}

func (r *r2Service) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// ResolveURL prefers the stored public URL; items that only carry an object
// key get a presigned GET against the R2 bucket. The remote platform pulls
// media by URL, so whatever comes back here must be reachable from outside.
func (r *r2Service) ResolveURL(ctx context.Context, item *models.MediaItem) (string, error) {
	if item.URL != "" {
		return item.URL, nil
	}
	if item.StorageKey == "" {
		return "", fmt.Errorf("media %s has neither url nor storage key", item.MediaID)
	}

	if r.config.R2.PublicBase != "" {
		return fmt.Sprintf("%s/%s", r.config.R2.PublicBase, item.StorageKey), nil
	}

	client, err := r.client(ctx)
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.config.R2.BucketName),
		Key:    aws.String(item.StorageKey),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return req.URL, nil
}
