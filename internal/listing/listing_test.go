package listing

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/inkpress/internal/cache"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/repository"
)

type fakeStore struct {
	repository.PostStore

	posts []model.Post
	lists int
}

func (s *fakeStore) List(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	s.lists++
	var out []model.Post
	for _, p := range s.posts {
		if opts.PublishedOnly && !p.Published {
			continue
		}
		if opts.FeaturedOnly && !p.Featured {
			continue
		}
		out = append(out, p)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) Categories(context.Context) ([]string, error) {
	return []string{"Technology", "Design"}, nil
}

func testPosts() []model.Post {
	return []model.Post{
		{
			ID:         "1",
			Title:      "Go Generics in Practice",
			Slug:       "go-generics",
			Excerpt:    "Type parameters beyond the tutorial",
			Category:   "Technology",
			Tags:       []string{"Technology", "golang"},
			CoverImage: model.CoverImage{URL: "https://cdn/go.png"},
			Published:  true,
			Featured:   true,
			CreatedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "2",
			Title:     "Designing Quiet Interfaces",
			Slug:      "quiet-interfaces",
			Excerpt:   "Less chrome, more content",
			Category:  "Design",
			Tags:      []string{"Design"},
			Published: true,
			CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "3",
			Title:     "Unfinished Draft",
			Slug:      "unfinished",
			Category:  "Technology",
			Published: false,
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func newService(store *fakeStore) *Service {
	return New(store, cache.NewPathCache[[]View](), "/placeholder.jpg", 0, zerolog.Nop())
}

func TestQueryReturnsOnlyPublished(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	svc := newService(store)

	views, err := svc.Query(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2 published", len(views))
	}
	if views[0].ID != "1" || views[1].ID != "2" {
		t.Errorf("order = %s, %s; want store order preserved", views[0].ID, views[1].ID)
	}
}

func TestQueryCategoryFilter(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	svc := newService(store)

	tests := []struct {
		category string
		want     []model.PostID
	}{
		{"Design", []model.PostID{"2"}},
		{"design", []model.PostID{"2"}},
		{"golang", []model.PostID{"1"}}, // tag match counts
		{"All", []model.PostID{"1", "2"}},
		{"", []model.PostID{"1", "2"}},
		{"Cooking", nil},
	}
	for _, tt := range tests {
		views, err := svc.Query(context.Background(), tt.category, "")
		if err != nil {
			t.Fatalf("Query(%q) failed: %v", tt.category, err)
		}
		if len(views) != len(tt.want) {
			t.Errorf("Query(%q) = %d views, want %d", tt.category, len(views), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if views[i].ID != id {
				t.Errorf("Query(%q)[%d] = %s, want %s", tt.category, i, views[i].ID, id)
			}
		}
	}
}

func TestQuerySearchFilter(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	svc := newService(store)

	tests := []struct {
		search string
		want   int
	}{
		{"generics", 1},
		{"GENERICS", 1},
		{"chrome", 1}, // excerpt match
		{"nonexistent", 0},
		{"", 2},
	}
	for _, tt := range tests {
		views, err := svc.Query(context.Background(), "", tt.search)
		if err != nil {
			t.Fatalf("Query(search=%q) failed: %v", tt.search, err)
		}
		if len(views) != tt.want {
			t.Errorf("Query(search=%q) = %d views, want %d", tt.search, len(views), tt.want)
		}
	}
}

func TestQueryFiltersCompose(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	svc := newService(store)

	views, err := svc.Query(context.Background(), "Technology", "quiet")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("got %d views, want 0 when category and search exclude each other", len(views))
	}
}

func TestQueryPlaceholderCover(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	svc := newService(store)

	views, err := svc.Query(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if views[0].CoverImage != "https://cdn/go.png" {
		t.Errorf("cover = %q, want stored URL", views[0].CoverImage)
	}
	if views[1].CoverImage != "/placeholder.jpg" {
		t.Errorf("cover = %q, want placeholder for empty cover", views[1].CoverImage)
	}
}

func TestQueryPageSizeCap(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	svc := New(store, cache.NewPathCache[[]View](), "/placeholder.jpg", 1, zerolog.Nop())

	views, err := svc.Query(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want page size cap of 1", len(views))
	}
	if views[0].ID != "1" {
		t.Errorf("capped page starts at %s, want newest post", views[0].ID)
	}
}

func TestQueryCaches(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	pc := cache.NewPathCache[[]View]()
	svc := New(store, pc, "/placeholder.jpg", 0, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := svc.Query(context.Background(), "Design", ""); err != nil {
			t.Fatalf("Query failed: %v", err)
		}
	}
	if store.lists != 1 {
		t.Errorf("store hit %d times, want 1 with warm cache", store.lists)
	}

	pc.Invalidate("/blog")
	if _, err := svc.Query(context.Background(), "Design", ""); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if store.lists != 2 {
		t.Errorf("store hit %d times after invalidation, want 2", store.lists)
	}
}

func TestFeaturedHonorsLimit(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	svc := newService(store)

	views, err := svc.Featured(context.Background(), 5)
	if err != nil {
		t.Fatalf("Featured failed: %v", err)
	}
	if len(views) != 1 || views[0].ID != "1" {
		t.Errorf("featured = %v", views)
	}
}

func TestCategoriesPrependAll(t *testing.T) {
	store := &fakeStore{posts: testPosts()}
	svc := newService(store)

	categories, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 3 || categories[0] != AllCategories {
		t.Errorf("categories = %v, want All first", categories)
	}
}
