// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gws "github.com/gorilla/websocket"

	"github.com/reliva-app/reliva-feed/internal/config"
	"github.com/reliva-app/reliva-feed/internal/feed"
	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/protocol"
	"github.com/reliva-app/reliva-feed/internal/websocket"
)

//nolint:gochecknoinits // keep test logging quiet
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func testConfig() *config.Config {
	return &config.Config{
		API:      config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Security: config.SecurityConfig{RateLimitDisabled: true, CORSOrigins: []string{"*"}},
	}
}

func setupAPI(t *testing.T) (*websocket.Hub, http.Handler) {
	t.Helper()
	hub := websocket.NewHub(feed.NewStore(nil))
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)
	time.Sleep(10 * time.Millisecond)

	handler := NewHandler(hub, testConfig())
	return hub, handler.NewRouter()
}

func TestPostsEnvelope(t *testing.T) {
	hub, router := setupAPI(t)
	hub.Feed().CreatePost(protocol.NewPost{AuthorID: "u1", Content: "first"})
	hub.Feed().CreatePost(protocol.NewPost{AuthorID: "u2", Content: "second"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp models.PostsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || len(resp.Posts) != 2 {
		t.Fatalf("expected success with 2 posts, got success=%v len=%d", resp.Success, len(resp.Posts))
	}
	if resp.Posts[0].Content != "second" {
		t.Error("feed must be newest first")
	}
}

func TestPostsViewerDecoration(t *testing.T) {
	hub, router := setupAPI(t)
	post := hub.Feed().CreatePost(protocol.NewPost{AuthorID: "u1", Content: "liked one"})
	hub.Feed().ApplyLike(protocol.Like{
		Type: protocol.TypeLikePost, UserID: "viewer-1", PostID: post.ID, TargetType: protocol.TargetPost,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts?userId=viewer-1", nil))

	var resp models.PostsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Posts[0].IsLiked || resp.Posts[0].LikeCount != 1 {
		t.Errorf("expected viewer-relative isLiked with count 1, got %+v", resp.Posts[0])
	}

	// Another viewer sees the count but not the flag. Decode into a fresh
	// struct: isLiked is omitempty, and unmarshalling into the reused slice
	// element would keep the stale true from the first response.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts?userId=viewer-2", nil))
	resp = models.PostsResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Posts[0].IsLiked {
		t.Error("isLiked must be viewer-relative")
	}
}

func TestPostsPaginationClamped(t *testing.T) {
	hub, router := setupAPI(t)
	for i := 0; i < 30; i++ {
		hub.Feed().CreatePost(protocol.NewPost{AuthorID: "u1", Content: "post"})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts?limit=100000", nil))

	var resp models.PostsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Posts) != 30 {
		t.Errorf("expected limit clamped to max page size (100), got %d posts", len(resp.Posts))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts?page=1&limit=20", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Posts) != 10 {
		t.Errorf("expected second page with 10 posts, got %d", len(resp.Posts))
	}
}

func TestCommentByID(t *testing.T) {
	hub, router := setupAPI(t)
	post := hub.Feed().CreatePost(protocol.NewPost{AuthorID: "u1", Content: "post"})
	comment, err := hub.Feed().CreateComment(protocol.NewReply{
		PostID: post.ID, AuthorID: "u2", Content: "the reply",
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/comments/"+comment.ID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp models.CommentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Comment == nil || resp.Comment.Content != "the reply" {
		t.Fatalf("unexpected comment response: %+v", resp)
	}
}

func TestCommentNotFound(t *testing.T) {
	_, router := setupAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/comments/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp models.CommentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success {
		t.Error("envelope must report failure")
	}
}

func TestHealth(t *testing.T) {
	_, router := setupAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestMetricsExposed(t *testing.T) {
	_, router := setupAPI(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestWebSocketUpgradeAndInit(t *testing.T) {
	hub, router := setupAPI(t)
	hub.Feed().CreatePost(protocol.NewPost{AuthorID: "u1", Content: "seeded"})

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	auth, err := protocol.Encode(protocol.Auth{UserID: "viewer-1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(gws.TextMessage, auth); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read init: %v", err)
	}
	msg, err := protocol.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	initMsg, ok := msg.(protocol.Init)
	if !ok {
		t.Fatalf("expected init first, got %T", msg)
	}
	if len(initMsg.Posts) != 1 || initMsg.Posts[0].Content != "seeded" {
		t.Fatalf("unexpected init snapshot: %+v", initMsg.Posts)
	}
}

func TestWebSocketRejectsDisallowedOrigin(t *testing.T) {
	hub := websocket.NewHub(feed.NewStore(nil))
	cfg := testConfig()
	cfg.Security.CORSOrigins = []string{"https://reliva.app"}
	handler := NewHandler(hub, cfg)

	srv := httptest.NewServer(handler.NewRouter())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := gws.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected upgrade to fail for a disallowed origin")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}
