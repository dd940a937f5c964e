package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// graphResponse is the shape every Graph endpoint answers with: an object id
// on success or an error payload. Providers return the error payload with a
// 200 status often enough that the HTTP status alone cannot be trusted.
type graphResponse struct {
	ID         string `json:"id"`
	StatusCode string `json:"status_code"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GraphClient is a thin client for the Meta Graph API. The HTTP client and
// base URL are injectable so adapters can be tested against a fake server.
type GraphClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewGraphClient(apiVersion string) *GraphClient {
	return &GraphClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: fmt.Sprintf("https://graph.facebook.com/%s", apiVersion),
	}
}

// Post sends a JSON body to {object}/{edge} and returns the created object
// id. platform names the provider in surfaced errors.
func (c *GraphClient) Post(ctx context.Context, platform, object, edge string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s/%s", c.baseURL, object, edge)
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	result, err := decodeGraph(resp.Body)
	if err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", &PlatformAPIError{Platform: platform, Message: result.Error.Message}
	}
	return result.ID, nil
}

// GetStatus reads an object's status_code field, used while waiting for a
// media container to finish processing.
func (c *GraphClient) GetStatus(ctx context.Context, platform, object, accessToken string) (string, error) {
	params := url.Values{}
	params.Set("fields", "status_code")
	params.Set("access_token", accessToken)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, object, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	result, err := decodeGraph(resp.Body)
	if err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", &PlatformAPIError{Platform: platform, Message: result.Error.Message}
	}
	return result.StatusCode, nil
}

func decodeGraph(r io.Reader) (*graphResponse, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result graphResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &result, nil
}
