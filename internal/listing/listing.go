// Package listing serves the public blog index: published posts filtered
// by category and search, with cover images flattened for card rendering.
package listing

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/inkpress/internal/cache"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/repository"
)

const blogPath = "/blog"

// AllCategories is the pseudo-category that disables filtering.
const AllCategories = "All"

// View is a post shaped for the index page. CoverImage is always a
// plain URL here; posts without one get the configured placeholder.
type View struct {
	ID         model.PostID `json:"id"`
	Title      string       `json:"title"`
	Slug       string       `json:"slug"`
	Excerpt    string       `json:"excerpt"`
	Category   string       `json:"category"`
	Tags       []string     `json:"tags"`
	CoverImage string       `json:"coverImage"`
	Featured   bool         `json:"isFeatured"`
	Views      int64        `json:"views"`
	Likes      int64        `json:"likes"`
	CreatedAt  time.Time    `json:"createdAt"`
}

type Service struct {
	store       repository.PostStore
	cache       *cache.PathCache[[]View]
	placeholder string
	perPage     int
	log         zerolog.Logger
}

func New(store repository.PostStore, pc *cache.PathCache[[]View], placeholder string, perPage int, log zerolog.Logger) *Service {
	return &Service{
		store:       store,
		cache:       pc,
		placeholder: placeholder,
		perPage:     perPage,
		log:         log,
	}
}

// Query returns published posts, newest first, narrowed by category and
// search and capped at the configured page size. Results are cached per
// query combination under the blog path, so a publish-side
// Invalidate("/blog") expires every combination at once.
func (s *Service) Query(ctx context.Context, category, search string) ([]View, error) {
	key := cacheKey(category, search)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	posts, err := s.store.List(ctx, repository.ListOptions{PublishedOnly: true})
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		if !matchesCategory(post, category) || !matchesSearch(post, search) {
			continue
		}
		views = append(views, s.view(post))
		if s.perPage > 0 && len(views) == s.perPage {
			break
		}
	}

	s.cache.Set(key, views)
	s.log.Debug().Str("key", key).Int("posts", len(views)).Msg("Cached listing query")
	return views, nil
}

// Featured returns up to limit featured published posts.
func (s *Service) Featured(ctx context.Context, limit int) ([]View, error) {
	posts, err := s.store.List(ctx, repository.ListOptions{
		PublishedOnly: true,
		FeaturedOnly:  true,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(posts))
	for i := range posts {
		views = append(views, s.view(&posts[i]))
	}
	return views, nil
}

// Recent returns the latest posts regardless of publish state, for the
// dashboard's activity panel.
func (s *Service) Recent(ctx context.Context, limit int) ([]View, error) {
	posts, err := s.store.List(ctx, repository.ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(posts))
	for i := range posts {
		views = append(views, s.view(&posts[i]))
	}
	return views, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{AllCategories}, categories...), nil
}

func (s *Service) view(post *model.Post) View {
	cover := post.CoverImage.URL
	if cover == "" {
		cover = s.placeholder
	}
	return View{
		ID:         post.ID,
		Title:      post.Title,
		Slug:       post.Slug,
		Excerpt:    post.Excerpt,
		Category:   post.Category,
		Tags:       post.Tags,
		CoverImage: cover,
		Featured:   post.Featured,
		Views:      post.Stats.Views,
		Likes:      post.Stats.Likes,
		CreatedAt:  post.CreatedAt,
	}
}

func cacheKey(category, search string) string {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}
	if len(q) == 0 {
		return blogPath
	}
	return blogPath + "?" + q.Encode()
}

func matchesCategory(post *model.Post, category string) bool {
	if category == "" || strings.EqualFold(category, AllCategories) {
		return true
	}
	if strings.EqualFold(post.Category, category) {
		return true
	}
	for _, tag := range post.Tags {
		if strings.EqualFold(tag, category) {
			return true
		}
	}
	return false
}

func matchesSearch(post *model.Post, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(post.Title), needle) ||
		strings.Contains(strings.ToLower(post.Excerpt), needle)
}
