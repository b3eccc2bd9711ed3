// Package repository is the persistence boundary for posts and authors.
package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/inkpress/inkpress/internal/model"
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

// ListOptions narrows List. The zero value returns every post, newest
// first.
type ListOptions struct {
	PublishedOnly bool
	FeaturedOnly  bool
	Limit         int
}

// DashboardStats aggregates the counters the admin dashboard renders.
type DashboardStats struct {
	TotalViews   int64
	TotalLikes   int64
	ActivePosts  int64
	AvgWordCount float64
}

// CategoryCount is one bucket of the category distribution.
type CategoryCount struct {
	Category string
	Count    int64
}

// PostStore persists posts. Writers obey last-write-wins; the only
// concurrent-safe operations are the counter increments, which must be
// single atomic updates at the store level.
type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	Get(ctx context.Context, id model.PostID) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id model.PostID) error
	List(ctx context.Context, opts ListOptions) ([]model.Post, error)

	IncrementViews(ctx context.Context, id model.PostID) error
	IncrementLikes(ctx context.Context, id model.PostID) (int64, error)

	Categories(ctx context.Context) ([]string, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	Stats(ctx context.Context) (*DashboardStats, error)
}

// UserStore persists authors.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	AnyUser(ctx context.Context) (*model.User, error)
}
