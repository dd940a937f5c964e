package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/contenthub/api/configs"
	"github.com/contenthub/api/internal/models"
	"github.com/contenthub/api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type graphCall struct {
	method  string
	path    string
	payload map[string]any
}

// fakeGraphServer records every Graph call and answers with canned responses
// in order.
type fakeGraphServer struct {
	server    *httptest.Server
	calls     []graphCall
	responses []string
}

func newFakeGraphServer(t *testing.T, responses ...string) *fakeGraphServer {
	t.Helper()
	f := &fakeGraphServer{responses: responses}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := graphCall{method: r.Method, path: r.URL.Path}
		if r.Method == http.MethodPost {
			if err := json.NewDecoder(r.Body).Decode(&call.payload); err != nil {
				t.Errorf("decode request body: %v", err)
			}
		}
		f.calls = append(f.calls, call)

		resp := `{"id":"default"}`
		if len(f.responses) > 0 {
			resp = f.responses[0]
			f.responses = f.responses[1:]
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGraphServer) client() *GraphClient {
	return &GraphClient{
		httpClient: f.server.Client(),
		baseURL:    f.server.URL,
	}
}

func testFacebookAccount(t *testing.T) *models.SocialAccount {
	t.Helper()
	token, err := utils.Encrypt([]byte("page-token"), []byte(testSecretKey))
	require.NoError(t, err)
	return &models.SocialAccount{
		ID:          "acc_fb",
		AccountType: models.AccountTypeFacebookPage,
		AccessToken: token,
		PageID:      sql.NullString{String: "page_42", Valid: true},
	}
}

func TestFacebookService_PublishPost(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{SecretKey: testSecretKey}

	t.Run("text-only post goes to the feed edge", func(t *testing.T) {
		graph := newFakeGraphServer(t, `{"id":"fb_feed_1"}`)
		svc := NewFacebookService(cfg, graph.client())

		id, err := svc.PublishPost(ctx, testFacebookAccount(t), "hello world", nil, models.PostTypeText)
		require.NoError(t, err)
		assert.Equal(t, "fb_feed_1", id)

		require.Len(t, graph.calls, 1)
		assert.Equal(t, "/page_42/feed", graph.calls[0].path)
		assert.Equal(t, "hello world", graph.calls[0].payload["message"])
		assert.Equal(t, "page-token", graph.calls[0].payload["access_token"])
	})

	t.Run("image post goes to photos with the first item's url", func(t *testing.T) {
		graph := newFakeGraphServer(t, `{"id":"fb_photo_1"}`)
		svc := NewFacebookService(cfg, graph.client())

		media := []*models.MediaItem{
			{URL: "https://cdn.example/a.jpg", FileType: "image"},
			{URL: "https://cdn.example/b.jpg", FileType: "image"},
		}

		id, err := svc.PublishPost(ctx, testFacebookAccount(t), "caption", media, models.PostTypeImage)
		require.NoError(t, err)
		assert.Equal(t, "fb_photo_1", id)

		require.Len(t, graph.calls, 1)
		assert.Equal(t, "/page_42/photos", graph.calls[0].path)
		assert.Equal(t, "https://cdn.example/a.jpg", graph.calls[0].payload["url"])
		assert.Equal(t, "caption", graph.calls[0].payload["message"])
	})

	t.Run("video post goes to videos with file_url and description", func(t *testing.T) {
		graph := newFakeGraphServer(t, `{"id":"fb_video_1"}`)
		svc := NewFacebookService(cfg, graph.client())

		media := []*models.MediaItem{{URL: "https://cdn.example/v.mp4", FileType: "video"}}

		id, err := svc.PublishPost(ctx, testFacebookAccount(t), "watch this", media, models.PostTypeVideo)
		require.NoError(t, err)
		assert.Equal(t, "fb_video_1", id)

		require.Len(t, graph.calls, 1)
		assert.Equal(t, "/page_42/videos", graph.calls[0].path)
		assert.Equal(t, "https://cdn.example/v.mp4", graph.calls[0].payload["file_url"])
		assert.Equal(t, "watch this", graph.calls[0].payload["description"])
	})

	t.Run("error payload in a 200 body surfaces as a platform error", func(t *testing.T) {
		graph := newFakeGraphServer(t, `{"error":{"message":"Invalid OAuth access token"}}`)
		svc := NewFacebookService(cfg, graph.client())

		_, err := svc.PublishPost(ctx, testFacebookAccount(t), "hello", nil, models.PostTypeText)

		var apiErr *PlatformAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Facebook", apiErr.Platform)
		assert.Equal(t, "Facebook API: Invalid OAuth access token", err.Error())
	})

	t.Run("falls back to provider account id when page id is unset", func(t *testing.T) {
		graph := newFakeGraphServer(t, `{"id":"fb_1"}`)
		svc := NewFacebookService(cfg, graph.client())

		account := testFacebookAccount(t)
		account.PageID = sql.NullString{}
		account.ProviderAccountID = "provider_7"

		_, err := svc.PublishPost(ctx, account, "hi", nil, models.PostTypeText)
		require.NoError(t, err)
		require.Len(t, graph.calls, 1)
		assert.Equal(t, "/provider_7/feed", graph.calls[0].path)
	})
}
