package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	config "github.com/contenthub/api/configs"
	"github.com/contenthub/api/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	app.Use(NewAuthMiddleware(cfg).AuthMiddleware())
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("role"),
		})
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	cfg := config.Config{
		SecretKey:  "0123456789abcdef0123456789abcdef",
		CookieName: "contenthub_session",
	}

	t.Run("valid session cookie passes through with claims", func(t *testing.T) {
		app := newProtectedApp(cfg)

		token, err := utils.GenerateToken(cfg.SecretKey, "user_1", "member", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "user_1", body["user_id"])
		assert.Equal(t, "member", body["role"])
	})

	t.Run("missing cookie is unauthorized", func(t *testing.T) {
		app := newProtectedApp(cfg)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token is rejected and the cookie cleared", func(t *testing.T) {
		app := newProtectedApp(cfg)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: "not-a-jwt"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		setCookie := resp.Header.Get("Set-Cookie")
		assert.Contains(t, setCookie, cfg.CookieName+"=")
		assert.Contains(t, strings.ToLower(setCookie), "max-age")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Invalid or expired token")
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		app := newProtectedApp(cfg)

		token, err := utils.GenerateToken(cfg.SecretKey, "user_1", "member", -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		app := newProtectedApp(cfg)

		token, err := utils.GenerateToken("fedcba9876543210fedcba9876543210", "user_1", "member", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
