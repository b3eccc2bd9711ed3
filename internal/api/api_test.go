package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/cache"
	"github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/editor"
	"github.com/inkpress/inkpress/internal/feed"
	"github.com/inkpress/inkpress/internal/listing"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/publish"
	"github.com/inkpress/inkpress/internal/repository"
	"github.com/inkpress/inkpress/internal/sse"
)

const testToken = "test-token"

func setupServer(t *testing.T) (*httptest.Server, *repository.DBPostStore) {
	t.Helper()

	database := db.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err := database.InitSchema(); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := repository.NewDBPostStore(database)
	if err != nil {
		t.Fatalf("NewDBPostStore failed: %v", err)
	}

	pc := cache.NewPathCache[[]listing.View]()
	listSvc := listing.New(store, pc, "/placeholder.jpg", 50, zerolog.Nop())
	pipeline := publish.New(store, nil, pc.Invalidate, time.Second, "", zerolog.Nop())
	provider := auth.NewTokenProvider(testToken, "admin")

	h := NewHandler(
		pipeline,
		store,
		store,
		listSvc,
		editor.NewMemoryDraftStore(),
		sse.NewClients(),
		provider,
		feed.Site{Name: "Test Blog", Description: "testing", BaseURL: "https://example.com"},
		3,
		5,
	)

	srv := httptest.NewServer(NewRouter(h, provider))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any, authed bool) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func postPayload(title, slug string) map[string]any {
	return map[string]any{
		"title":    title,
		"slug":     slug,
		"subtitle": "a subtitle",
		"metadata": map[string]any{
			"blocks": []map[string]any{
				{"id": "1", "type": "h1", "content": title},
				{"id": "2", "type": "p", "content": "Body"},
			},
		},
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	srv, _ := setupServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/posts", postPayload("Nope", "nope"), false)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateAndFetchPost(t *testing.T) {
	srv, _ := setupServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/posts", postPayload("Hello World", ""), true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["message"] != "Post created successfully" {
		t.Errorf("message = %v", body["message"])
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("data missing from response: %v", body)
	}
	if data["slug"] != "hello-world" {
		t.Errorf("slug = %v, want derived from title", data["slug"])
	}
	if data["excerpt"] != "a subtitle" {
		t.Errorf("excerpt = %v, want subtitle alias honored", data["excerpt"])
	}
	if body["redirect"] != "/blog/hello-world" {
		t.Errorf("redirect = %v", body["redirect"])
	}

	resp, post := doJSON(t, http.MethodGet, srv.URL+"/api/posts/slug/hello-world", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get by slug status = %d", resp.StatusCode)
	}
	if post["title"] != "Hello World" {
		t.Errorf("title = %v", post["title"])
	}
	if post["coverImage"] != "" {
		t.Errorf("coverImage = %v, want empty string on detail view", post["coverImage"])
	}

	id := data["id"].(string)
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/posts/"+id, nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get by id status = %d", resp.StatusCode)
	}
}

func TestCreateValidation(t *testing.T) {
	srv, _ := setupServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/posts", map[string]any{"slug": "no-title"}, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %v", resp.StatusCode, body)
	}
}

func TestDuplicateSlugConflicts(t *testing.T) {
	srv, _ := setupServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/posts", postPayload("First", "taken"), true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/posts", postPayload("Second", "taken"), true)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", resp.StatusCode)
	}
}

func TestViewAndLikeCounters(t *testing.T) {
	srv, _ := setupServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/posts", postPayload("Counted", "counted"), true)
	id := body["data"].(map[string]any)["id"].(string)

	resp, viewBody := doJSON(t, http.MethodPost, srv.URL+"/api/posts/"+id+"/view", nil, false)
	if resp.StatusCode != http.StatusOK || viewBody["success"] != true {
		t.Errorf("view: status = %d, body = %v", resp.StatusCode, viewBody)
	}

	for want := 1; want <= 2; want++ {
		resp, likeBody := doJSON(t, http.MethodPost, srv.URL+"/api/posts/"+id+"/like", nil, false)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("like status = %d", resp.StatusCode)
		}
		if got := int(likeBody["likes"].(float64)); got != want {
			t.Errorf("likes = %d, want %d", got, want)
		}
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/posts/no-such-id/view", nil, false)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("view unknown post status = %d, want 404", resp.StatusCode)
	}
}

func TestListingFiltersAndPlaceholder(t *testing.T) {
	srv, _ := setupServer(t)

	p1 := postPayload("Go Tips", "go-tips")
	p1["category"] = "Technology"
	p2 := postPayload("Paint Techniques", "paint")
	p2["category"] = "Art"
	for _, p := range []map[string]any{p1, p2} {
		if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/posts", p, true); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed create status = %d", resp.StatusCode)
		}
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/posts?category=Art", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	posts := body["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1 for category filter", len(posts))
	}
	first := posts[0].(map[string]any)
	if first["slug"] != "paint" {
		t.Errorf("slug = %v", first["slug"])
	}
	if first["coverImage"] != "/placeholder.jpg" {
		t.Errorf("coverImage = %v, want placeholder on listing", first["coverImage"])
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/posts?search=paint", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d", resp.StatusCode)
	}
	if total := body["total"].(float64); total != 1 {
		t.Errorf("search total = %v, want 1", total)
	}
}

func TestListingFeaturedFlag(t *testing.T) {
	srv, _ := setupServer(t)

	featured := postPayload("Star Post", "star")
	featured["isFeatured"] = true
	plain := postPayload("Plain Post", "plain")
	for _, p := range []map[string]any{featured, plain} {
		if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/posts", p, true); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed create status = %d", resp.StatusCode)
		}
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/posts?featured=true", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("featured list status = %d", resp.StatusCode)
	}
	posts := body["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want only the featured one", len(posts))
	}
	if posts[0].(map[string]any)["slug"] != "star" {
		t.Errorf("slug = %v", posts[0].(map[string]any)["slug"])
	}
}

func TestCreateFallsBackToStoredAuthor(t *testing.T) {
	_, store := setupServer(t)

	author := &model.User{ID: "author-1", Name: "Fallback", Email: "fb@example.com", Role: model.RoleAuthor}
	if err := store.CreateUser(context.Background(), author); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// The token provider carries a user id of its own; clear it so the
	// handler has to fall back to the stored author.
	h := NewHandler(
		publish.New(store, nil, nil, time.Second, "", zerolog.Nop()),
		store,
		store,
		listing.New(store, cache.NewPathCache[[]listing.View](), "/placeholder.jpg", 50, zerolog.Nop()),
		editor.NewMemoryDraftStore(),
		sse.NewClients(),
		nil,
		feed.Site{},
		3,
		5,
	)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(postPayload("Anonymous", "anonymous")); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	w := httptest.NewRecorder()
	h.CreatePost(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	post, err := store.GetBySlug(context.Background(), "anonymous")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if post.Author != author.ID {
		t.Errorf("author = %q, want stored author fallback", post.Author)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	srv, _ := setupServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/posts", postPayload("Original", "original"), true)
	id := body["data"].(map[string]any)["id"].(string)

	update := postPayload("Renamed", "original")
	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/posts/"+id, update, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, body = %v", resp.StatusCode, body)
	}
	if body["data"].(map[string]any)["title"] != "Renamed" {
		t.Errorf("title = %v", body["data"].(map[string]any)["title"])
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/posts/ghost", update, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("update unknown id status = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/posts/"+id, nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/posts/"+id, nil, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", resp.StatusCode)
	}
}

func TestDraftLifecycle(t *testing.T) {
	srv, _ := setupServer(t)

	resp, draft := doJSON(t, http.MethodPost, srv.URL+"/api/drafts", nil, true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create draft status = %d", resp.StatusCode)
	}
	id := draft["id"].(string)

	save := map[string]any{
		"title": "WIP",
		"blocks": []map[string]any{
			{"id": "1", "type": "p", "content": "so far"},
		},
	}
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/drafts/"+id, save, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save draft status = %d", resp.StatusCode)
	}

	resp, got := doJSON(t, http.MethodGet, srv.URL+"/api/drafts/"+id, nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get draft status = %d", resp.StatusCode)
	}
	if got["title"] != "WIP" {
		t.Errorf("title = %v", got["title"])
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/drafts/"+id, nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete draft status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/drafts/"+id, nil, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted draft status = %d, want 404", resp.StatusCode)
	}
}

func TestDashboardStats(t *testing.T) {
	srv, _ := setupServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/posts", postPayload("Stat Post", "stat-post"), true)
	id := body["data"].(map[string]any)["id"].(string)
	doJSON(t, http.MethodPost, srv.URL+"/api/posts/"+id+"/view", nil, false)
	doJSON(t, http.MethodPost, srv.URL+"/api/posts/"+id+"/like", nil, false)

	resp, stats := doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/stats", nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}
	if stats["totalViews"].(float64) != 1 || stats["totalLikes"].(float64) != 1 {
		t.Errorf("stats = %v", stats)
	}
	if stats["activePosts"].(float64) != 1 {
		t.Errorf("activePosts = %v", stats["activePosts"])
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/dashboard/stats", nil, false)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated stats status = %d, want 401", resp.StatusCode)
	}
}

func TestFeed(t *testing.T) {
	srv, _ := setupServer(t)

	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/posts", postPayload("Feed Post", "feed-post"), true); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed create failed")
	}

	resp, err := http.Get(srv.URL + "/feed.xml")
	if err != nil {
		t.Fatalf("GET /feed.xml failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("feed status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/rss+xml; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
}
