// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

/*
client.go - Media Host REST API Client

The media host stores the raw video, thumbnail, avatar, and cover assets.
The API server only passes uploads through and keeps the returned URLs;
it never serves asset bytes itself.
*/

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/models"
)

// ErrUnavailable marks a media-host failure the client should retry later.
var ErrUnavailable = errors.New("media host unavailable")

// Uploader is the surface the HTTP handlers use. Both Client and
// BreakerClient implement it.
type Uploader interface {
	Upload(ctx context.Context, kind string, filename string, content io.Reader) (*models.UploadResult, error)
	Delete(ctx context.Context, publicID string) error
	Ping(ctx context.Context) error
}

var _ Uploader = (*Client)(nil)

// Client provides access to the media host REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a bare client. Most callers want NewBreakerClient.
func NewClient(cfg *config.MediaConfig) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// uploadResponse is the media host's upload payload.
type uploadResponse struct {
	URL      string  `json:"url"`
	PublicID string  `json:"public_id"`
	Duration float64 `json:"duration"`
}

// Upload streams content to the media host. kind selects the asset class
// ("video", "thumbnail", "avatar", "cover") and drives host-side validation.
func (c *Client) Upload(ctx context.Context, kind, filename string, content io.Reader) (*models.UploadResult, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(form, kind, filename, content)
		if cerr := form.Close(); err == nil {
			err = cerr
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/assets", pr)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("media host upload returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &models.UploadResult{
		URL:      payload.URL,
		PublicID: payload.PublicID,
		Duration: payload.Duration,
	}, nil
}

func writeUploadForm(form *multipart.Writer, kind, filename string, content io.Reader) error {
	if err := form.WriteField("kind", kind); err != nil {
		return err
	}
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, content)
	return err
}

// Delete removes an asset by its public id. A 404 from the host is treated
// as success so delete stays idempotent.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	endpoint := c.baseURL + "/v1/assets/" + publicID
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent &&
		resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("media host delete returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Ping checks media host liveness.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media host health returned status %d", resp.StatusCode)
	}
	return nil
}

// PublicIDFromURL recovers the asset public id from a stored URL so old
// avatars and replaced thumbnails can be cleaned up.
func PublicIDFromURL(rawURL string) string {
	idx := strings.LastIndex(rawURL, "/")
	if idx < 0 || idx == len(rawURL)-1 {
		return ""
	}
	return rawURL[idx+1:]
}
