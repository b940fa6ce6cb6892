// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/clipstream/clipstream/internal/admin"
	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/database"
	"github.com/clipstream/clipstream/internal/models"
)

// fakeUploader satisfies media.Uploader without a media host. Uploads get
// deterministic URLs; deletes are recorded for assertions.
type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, kind, filename string, content io.Reader) (*models.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return nil, err
	}
	publicID := fmt.Sprintf("%s-%d", filename, len(f.uploads))
	f.uploads = append(f.uploads, publicID)
	result := &models.UploadResult{
		URL:      "https://media.example.com/assets/" + publicID,
		PublicID: publicID,
	}
	if kind == "video" {
		result.Duration = 42.5
	}
	return result, nil
}

func (f *fakeUploader) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, publicID)
	return nil
}

func (f *fakeUploader) Ping(context.Context) error { return nil }

func (f *fakeUploader) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "development"},
		Auth: config.AuthConfig{
			AccessTokenSecret:  "test-access-secret-test-access-secret",
			AccessTokenTTL:     15 * time.Minute,
			RefreshTokenSecret: "test-refresh-secret-test-refresh-secret",
			RefreshTokenTTL:    24 * time.Hour,
			RateLimitDisabled:  true,
			CORSOrigins:        []string{"http://localhost:3000"},
		},
		API: config.APIConfig{DefaultPageSize: 10, MaxPageSize: 50},
	}
}

type testServer struct {
	handler  http.Handler
	db       *database.DB
	uploader *fakeUploader
	cfg      *config.Config
}

// setupServer assembles the full router against an in-memory store, with
// throttling disabled and uploads faked.
func setupServer(t *testing.T, adminHandler *admin.Handler) *testServer {
	t.Helper()

	cfg := testConfig()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	tokens, err := auth.NewTokenManager(&cfg.Auth)
	if err != nil {
		t.Fatalf("failed to build token manager: %v", err)
	}

	uploader := &fakeUploader{}
	handlers := NewHandlers(db, tokens, uploader, cfg)
	authMW := auth.NewMiddleware(tokens, db, handlers.Unauthorized)
	chiMW := NewChiMiddleware(&cfg.Auth)

	router := NewRouter(handlers, authMW, chiMW, adminHandler)
	return &testServer{handler: router.Setup(), db: db, uploader: uploader, cfg: cfg}
}

// envelope mirrors both response shapes for assertions.
type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Errors     []models.FieldError `json:"errors"`
	StatusCode int                `json:"statusCode"`
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not the envelope: %v: %s", err, rec.Body.String())
	}
	return rec, &env
}

var registerSeq int

// registerAndLogin creates an account through the API and returns the user
// payload plus a live access token.
func (ts *testServer) registerAndLogin(t *testing.T) (*models.User, string) {
	t.Helper()

	registerSeq++
	username := fmt.Sprintf("apiuser%d", registerSeq)
	password := "correct horse battery"

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/users/register", "", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		FullName: "API User",
		Password: password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	rec, env := ts.do(t, http.MethodPost, "/api/v1/users/login", "", models.LoginRequest{
		Email:    username + "@example.com",
		Password: password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	var login models.LoginResponse
	if err := json.Unmarshal(env.Data, &login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return &login.User, login.AccessToken
}

func TestHealthcheck(t *testing.T) {
	ts := setupServer(t, nil)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/healthcheck/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !env.Success {
		t.Error("expected success envelope")
	}

	var health models.Health
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("failed to decode health payload: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("expected status ok, got %q", health.Status)
	}
}

func TestRegisterValidation(t *testing.T) {
	ts := setupServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "noemail",
		"password": "long enough pw",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Success {
		t.Error("expected error envelope")
	}
	if len(env.Errors) == 0 {
		t.Error("expected field errors for missing email/fullName")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ts := setupServer(t, nil)

	body := models.RegisterRequest{
		Username: "dupe",
		Email:    "dupe@example.com",
		FullName: "Dupe",
		Password: "long enough pw",
	}
	if rec, _ := ts.do(t, http.MethodPost, "/api/v1/users/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register returned %d", rec.Code)
	}
	rec, env := ts.do(t, http.MethodPost, "/api/v1/users/register", "", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", rec.Code)
	}
	if env.Success {
		t.Error("expected error envelope")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts := setupServer(t, nil)
	user, _ := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/users/login", "", models.LoginRequest{
		Email:    user.Email,
		Password: "not the password",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Message != "invalid credentials" {
		t.Errorf("expected opaque credential error, got %q", env.Message)
	}
}

func TestLoginByUsername(t *testing.T) {
	ts := setupServer(t, nil)
	user, _ := ts.registerAndLogin(t)

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/users/login", "", models.LoginRequest{
		Username: user.Username,
		Password: "correct horse battery",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginSetsCookies(t *testing.T) {
	ts := setupServer(t, nil)
	user, _ := ts.registerAndLogin(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(fmt.Sprintf(`{"email":%q,"password":"correct horse battery"}`, user.Email)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d", rec.Code)
	}
	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = c.HttpOnly
	}
	for _, want := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		httpOnly, ok := names[want]
		if !ok {
			t.Errorf("missing cookie %q", want)
		} else if !httpOnly {
			t.Errorf("cookie %q is not httpOnly", want)
		}
	}
}

func TestAuthGate(t *testing.T) {
	ts := setupServer(t, nil)

	cases := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := ts.do(t, http.MethodGet, "/api/v1/users/current-user", tc.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if env.Success {
				t.Error("expected error envelope")
			}
			if env.Errors == nil {
				t.Error("errors array must be present, not null")
			}
		})
	}
}

func TestCurrentUser(t *testing.T) {
	ts := setupServer(t, nil)
	user, token := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/users/current-user", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got models.User
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.ID)
	}
	if got.PasswordHash != "" {
		t.Error("password hash must never serialize")
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	ts := setupServer(t, nil)
	user, _ := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/users/login", "", models.LoginRequest{
		Email:    user.Email,
		Password: "correct horse battery",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d", rec.Code)
	}
	var login models.LoginResponse
	if err := json.Unmarshal(env.Data, &login); err != nil {
		t.Fatalf("failed to decode login: %v", err)
	}

	rec, env = ts.do(t, http.MethodPost, "/api/v1/users/refresh-token", "", models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh returned %d: %s", rec.Code, rec.Body.String())
	}
	var pair models.TokenPair
	if err := json.Unmarshal(env.Data, &pair); err != nil {
		t.Fatalf("failed to decode pair: %v", err)
	}
	if pair.RefreshToken == login.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The rotated-out token no longer matches the stored copy.
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/users/refresh-token", "", models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for stale refresh token, got %d", rec.Code)
	}
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	ts := setupServer(t, nil)
	user, _ := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/users/login", "", models.LoginRequest{
		Email:    user.Email,
		Password: "correct horse battery",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d", rec.Code)
	}
	var login models.LoginResponse
	if err := json.Unmarshal(env.Data, &login); err != nil {
		t.Fatalf("failed to decode login: %v", err)
	}

	if rec, _ = ts.do(t, http.MethodPost, "/api/v1/users/logout", login.AccessToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout returned %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/users/refresh-token", "", models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

// publishVideo drives the multipart upload endpoint.
func (ts *testServer) publishVideo(t *testing.T, token, title string) *models.Video {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", title); err != nil {
		t.Fatalf("failed to write title field: %v", err)
	}
	if err := mw.WriteField("description", "uploaded in test"); err != nil {
		t.Fatalf("failed to write description field: %v", err)
	}
	for field, name := range map[string]string{"videoFile": "clip.mp4", "thumbnail": "thumb.jpg"} {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("failed to create %s part: %v", field, err)
		}
		if _, err := part.Write([]byte("fake bytes")); err != nil {
			t.Fatalf("failed to write %s part: %v", field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("publish returned %d: %s", rec.Code, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	var video models.Video
	if err := json.Unmarshal(env.Data, &video); err != nil {
		t.Fatalf("failed to decode video: %v", err)
	}
	return &video
}

func TestVideoPublishAndFetch(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)

	video := ts.publishVideo(t, token, "first upload")
	if video.Duration != 42.5 {
		t.Errorf("expected duration from upload probe, got %f", video.Duration)
	}
	if !video.IsPublished {
		t.Error("expected video to start published")
	}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/videos/"+video.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}
	var detail models.VideoDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("failed to decode detail: %v", err)
	}
	if detail.Views != 1 {
		t.Errorf("expected first view recorded, got %d views", detail.Views)
	}
}

func TestGetVideoMalformedID(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/videos/not-a-uuid", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Success {
		t.Error("expected error envelope")
	}
}

func TestVideoPublishRequiresTitle(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("videoFile", "clip.mp4")
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write([]byte("bytes")); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVideoUpdateJSON(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)
	video := ts.publishVideo(t, token, "before")

	rec, env := ts.do(t, http.MethodPatch, "/api/v1/videos/"+video.ID, token, models.UpdateVideoRequest{
		Title: "after",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.Video
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("failed to decode video: %v", err)
	}
	if updated.Title != "after" {
		t.Errorf("expected title updated, got %q", updated.Title)
	}
	if updated.Description != "uploaded in test" {
		t.Errorf("empty description must not clobber, got %q", updated.Description)
	}
}

func TestVideoUpdateByStrangerIs404(t *testing.T) {
	ts := setupServer(t, nil)
	_, ownerToken := ts.registerAndLogin(t)
	video := ts.publishVideo(t, ownerToken, "mine")

	_, strangerToken := ts.registerAndLogin(t)
	rec, _ := ts.do(t, http.MethodPatch, "/api/v1/videos/"+video.ID, strangerToken, models.UpdateVideoRequest{
		Title: "stolen",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", rec.Code)
	}
}

func TestVideoDeleteReclaimsAssets(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)
	video := ts.publishVideo(t, token, "doomed")

	rec, _ := ts.do(t, http.MethodDelete, "/api/v1/videos/"+video.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}
	if got := len(ts.uploader.deleted()); got != 2 {
		t.Errorf("expected video and thumbnail assets deleted, got %d deletes", got)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/videos/"+video.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestTogglePublishMessages(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)
	video := ts.publishVideo(t, token, "toggle me")

	rec, env := ts.do(t, http.MethodPatch, "/api/v1/videos/toggle/publish/"+video.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle returned %d", rec.Code)
	}
	if env.Message != "video unpublished" {
		t.Errorf("expected unpublish message, got %q", env.Message)
	}

	_, env = ts.do(t, http.MethodPatch, "/api/v1/videos/toggle/publish/"+video.ID, token, nil)
	if env.Message != "video published" {
		t.Errorf("expected publish message, got %q", env.Message)
	}
}

func TestLikeToggleMessages(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)
	video := ts.publishVideo(t, token, "likeable")

	rec, env := ts.do(t, http.MethodPost, "/api/v1/likes/toggle/v/"+video.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle returned %d", rec.Code)
	}
	if env.Message != "liked" {
		t.Errorf("expected liked, got %q", env.Message)
	}

	_, env = ts.do(t, http.MethodPost, "/api/v1/likes/toggle/v/"+video.ID, token, nil)
	if env.Message != "unliked" {
		t.Errorf("expected unliked, got %q", env.Message)
	}
}

func TestLikeMissingTarget(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/likes/toggle/t/no-such-tweet", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSubscriptionToggle(t *testing.T) {
	ts := setupServer(t, nil)
	channel, _ := ts.registerAndLogin(t)
	_, fanToken := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID, fanToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("subscribe returned %d", rec.Code)
	}
	if env.Message != "subscribed" {
		t.Errorf("expected subscribed, got %q", env.Message)
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/subscriptions/c/"+channel.ID, fanToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list subscribers returned %d", rec.Code)
	}
	var subscribers []models.UserSummary
	if err := json.Unmarshal(env.Data, &subscribers); err != nil {
		t.Fatalf("failed to decode subscribers: %v", err)
	}
	if len(subscribers) != 1 {
		t.Errorf("expected 1 subscriber, got %d", len(subscribers))
	}

	_, env = ts.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID, fanToken, nil)
	if env.Message != "unsubscribed" {
		t.Errorf("expected unsubscribed, got %q", env.Message)
	}
}

func TestSelfSubscriptionRejected(t *testing.T) {
	ts := setupServer(t, nil)
	user, token := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+user.ID, token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Success {
		t.Error("expected error envelope")
	}
}

func TestCommentEditableByAnyUser(t *testing.T) {
	ts := setupServer(t, nil)
	_, authorToken := ts.registerAndLogin(t)
	video := ts.publishVideo(t, authorToken, "commented")

	rec, env := ts.do(t, http.MethodPost, "/api/v1/comments/"+video.ID, authorToken, models.CreateCommentRequest{
		Content: "original",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment returned %d", rec.Code)
	}
	var comment models.Comment
	if err := json.Unmarshal(env.Data, &comment); err != nil {
		t.Fatalf("failed to decode comment: %v", err)
	}

	// Comment mutations are moderator-style: not owner-scoped.
	_, strangerToken := ts.registerAndLogin(t)
	rec, _ = ts.do(t, http.MethodPatch, "/api/v1/comments/c/"+comment.ID, strangerToken, models.UpdateCommentRequest{
		Content: "edited by someone else",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected any user to edit comments, got %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/comments/c/"+comment.ID, strangerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected any user to delete comments, got %d", rec.Code)
	}
}

func TestTweetMutationsAreOwnerScoped(t *testing.T) {
	ts := setupServer(t, nil)
	_, authorToken := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/tweets/", authorToken, models.CreateTweetRequest{
		Content: "hello world",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("tweet returned %d", rec.Code)
	}
	var tweet models.Tweet
	if err := json.Unmarshal(env.Data, &tweet); err != nil {
		t.Fatalf("failed to decode tweet: %v", err)
	}

	_, strangerToken := ts.registerAndLogin(t)
	rec, _ = ts.do(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID, strangerToken, models.UpdateTweetRequest{
		Content: "hijacked",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner tweet edit, got %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID, authorToken, models.UpdateTweetRequest{
		Content: "revised",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner edit returned %d", rec.Code)
	}
}

func TestPlaylistLifecycle(t *testing.T) {
	ts := setupServer(t, nil)
	user, token := ts.registerAndLogin(t)
	video := ts.publishVideo(t, token, "playlisted")

	rec, env := ts.do(t, http.MethodPost, "/api/v1/playlist/", token, models.CreatePlaylistRequest{
		Name:        "favorites",
		Description: "the good ones",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create playlist returned %d", rec.Code)
	}
	var playlist models.Playlist
	if err := json.Unmarshal(env.Data, &playlist); err != nil {
		t.Fatalf("failed to decode playlist: %v", err)
	}

	rec, env = ts.do(t, http.MethodPatch,
		"/api/v1/playlist/add/"+video.ID+"/"+playlist.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("add video returned %d: %s", rec.Code, rec.Body.String())
	}
	var detail models.PlaylistDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("failed to decode detail: %v", err)
	}
	if len(detail.Videos) != 1 {
		t.Fatalf("expected 1 video in playlist, got %d", len(detail.Videos))
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/playlist/user/"+user.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list playlists returned %d", rec.Code)
	}
	var summaries []models.PlaylistSummary
	if err := json.Unmarshal(env.Data, &summaries); err != nil {
		t.Fatalf("failed to decode summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].VideoCount != 1 {
		t.Errorf("expected one playlist with one video, got %+v", summaries)
	}

	rec, _ = ts.do(t, http.MethodPatch,
		"/api/v1/playlist/remove/"+video.ID+"/"+playlist.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove video returned %d", rec.Code)
	}

	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/playlist/"+playlist.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete playlist returned %d", rec.Code)
	}
}

func TestDashboardStats(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)
	ts.publishVideo(t, token, "stat me")

	rec, env := ts.do(t, http.MethodGet, "/api/v1/dashboard/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats returned %d", rec.Code)
	}
	var stats models.ChannelStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.TotalVideos != 1 {
		t.Errorf("expected 1 video, got %d", stats.TotalVideos)
	}
}

func TestListVideosPagination(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)
	for i := 0; i < 12; i++ {
		ts.publishVideo(t, token, fmt.Sprintf("clip %02d", i))
	}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/videos/?page=1&limit=5", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var page models.VideoPage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if len(page.Videos) != 5 {
		t.Errorf("expected 5 videos, got %d", len(page.Videos))
	}
	if page.Pagination.Total != 12 {
		t.Errorf("expected 12 total, got %d", page.Pagination.Total)
	}
}

func TestListVideosInvalidSort(t *testing.T) {
	ts := setupServer(t, nil)
	_, token := ts.registerAndLogin(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/videos/?sortBy=password_hash", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for disallowed sort field, got %d", rec.Code)
	}
}

func TestChannelProfileAnonymous(t *testing.T) {
	ts := setupServer(t, nil)
	user, _ := ts.registerAndLogin(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/users/c/"+user.Username, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("channel profile returned %d", rec.Code)
	}
	var profile models.ChannelProfile
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.IsSubscribed {
		t.Error("anonymous viewer cannot be subscribed")
	}
}

func TestAdminUploadRequiresSession(t *testing.T) {
	sessions, err := admin.OpenSessionStore("", "test-admin-session-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to open session store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	adminCfg := &config.AdminConfig{
		Emails:     []string{"root@example.com"},
		SessionTTL: time.Hour,
	}

	// The admin handler needs the same store the router uses.
	cfg := testConfig()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenManager(&cfg.Auth)
	if err != nil {
		t.Fatalf("failed to build token manager: %v", err)
	}
	uploader := &fakeUploader{}
	handlers := NewHandlers(db, tokens, uploader, cfg)
	authMW := auth.NewMiddleware(tokens, db, handlers.Unauthorized)
	adminHandler := admin.NewHandler(db, sessions, adminCfg, false)
	router := NewRouter(handlers, authMW, NewChiMiddleware(&cfg.Auth), adminHandler)
	handler := router.Setup()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "asset.png")
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write([]byte("png bytes")); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/upload", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin session, got %d", rec.Code)
	}

	// Bootstrap an admin account and log in through the admin surface.
	hash, err := auth.HashPassword("super secret pw")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.CreateUser(context.Background(), &models.User{
		Username:     "root",
		Email:        "root@example.com",
		FullName:     "Root",
		PasswordHash: hash,
	}); err != nil {
		t.Fatalf("failed to create admin user: %v", err)
	}

	loginReq := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"email":"root@example.com","password":"super secret pw"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	handler.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("admin login returned %d: %s", loginRec.Code, loginRec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range loginRec.Result().Cookies() {
		if c.Name == admin.SessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("admin login did not set a session cookie")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/upload", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with session, got %d: %s", rec.Code, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	var result models.UploadResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("failed to decode upload result: %v", err)
	}
	if result.URL == "" || result.PublicID == "" {
		t.Errorf("expected asset descriptor, got %+v", result)
	}
}
