package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "v21.0", cfg.GraphAPIVersion)
	assert.Equal(t, "contenthub_session", cfg.CookieName)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, 2, cfg.PublishPollSeconds)
	assert.Equal(t, 30, cfg.PublishPollAttempts)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("META_GRAPH_API_VERSION", "v23.0")
	t.Setenv("PUBLISH_POLL_SECONDS", "5")
	t.Setenv("PUBLISH_POLL_ATTEMPTS", "10")
	t.Setenv("R2_BUCKET_NAME", "media-bucket")

	cfg := LoadConfig()

	assert.Equal(t, "v23.0", cfg.GraphAPIVersion)
	assert.Equal(t, 5, cfg.PublishPollSeconds)
	assert.Equal(t, 10, cfg.PublishPollAttempts)
	assert.Equal(t, "media-bucket", cfg.R2.BucketName)
}

func TestLoadConfigIgnoresBadInt(t *testing.T) {
	t.Setenv("PUBLISH_POLL_ATTEMPTS", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 30, cfg.PublishPollAttempts)
}
