// Package publish orchestrates turning editor state into a persisted post:
// validate, resolve the cover image, serialize blocks, write through the
// store, then signal cache invalidation.
package publish

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/internal/cache"
	"github.com/inkpress/inkpress/internal/editor"
	"github.com/inkpress/inkpress/internal/media"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/repository"
	"github.com/inkpress/inkpress/internal/util"
)

// State tracks where a publish action is. Each action moves
// Idle → Validating → Uploading → Persisting → Done, or stops at Failed.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateUploading
	StatePersisting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Input is the editor-side payload for a create or update action.
type Input struct {
	Title    string
	Slug     string
	Excerpt  string
	Category string

	// Content is an optional pre-rendered HTML body. Whenever Blocks are
	// present they are the source of truth and Content is regenerated
	// from them, so the two can never diverge at rest.
	Content string
	Blocks  []model.Block

	// CoverImage is either an already-hosted URL or an inline data URL.
	CoverImage string

	SEO  model.SEO
	Tags []string

	// Published overrides the post's publish state when set. Create
	// defaults to published; update preserves the existing state.
	Published *bool
	Featured  *bool

	Author model.UserID
}

// Result reports a finished action.
type Result struct {
	Post *model.Post

	// RedirectPath is where the editor should send the user next.
	RedirectPath string

	State State
}

const (
	// FallbackCategory is assigned when a publish request carries none.
	FallbackCategory = "Technology"

	blogPath      = "/blog"
	dashboardPath = "/dashboard"
)

type Pipeline struct {
	store      repository.PostStore
	uploader   media.Uploader
	invalidate cache.Invalidator

	uploadTimeout    time.Duration
	fallbackCategory string

	log zerolog.Logger
}

func New(store repository.PostStore, uploader media.Uploader, invalidate cache.Invalidator, uploadTimeout time.Duration, fallbackCategory string, log zerolog.Logger) *Pipeline {
	if invalidate == nil {
		invalidate = func(string) {}
	}
	if uploadTimeout <= 0 {
		uploadTimeout = 30 * time.Second
	}
	if fallbackCategory == "" {
		fallbackCategory = FallbackCategory
	}
	return &Pipeline{
		store:      store,
		uploader:   uploader,
		invalidate: invalidate,

		uploadTimeout:    uploadTimeout,
		fallbackCategory: fallbackCategory,

		log: log,
	}
}

// Create runs the full pipeline for a new post.
func (p *Pipeline) Create(ctx context.Context, in Input) (*Result, error) {
	if err := p.validate(in); err != nil {
		return &Result{State: StateFailed}, err
	}

	coverURL := p.resolveCover(ctx, in.CoverImage)

	post := p.buildPost(in, coverURL)
	post.ID = model.PostID(uuid.New().String())
	post.Published = true
	if in.Published != nil {
		post.Published = *in.Published
	}
	post.CreatedAt = time.Now().UTC()

	p.log.Debug().Str("state", StatePersisting.String()).Str("slug", post.Slug).Msg("Persisting new post")
	if err := p.store.Create(ctx, post); err != nil {
		return &Result{State: StateFailed}, &apperr.PersistenceError{Err: err}
	}

	p.signalChanged()
	return &Result{Post: post, RedirectPath: blogPath + "/" + post.Slug, State: StateDone}, nil
}

// Update runs the pipeline against an existing post. Unknown ids surface
// apperr.ErrNotFound before any side effect on the store.
func (p *Pipeline) Update(ctx context.Context, id model.PostID, in Input) (*Result, error) {
	if err := p.validate(in); err != nil {
		return &Result{State: StateFailed}, err
	}

	existing, err := p.store.Get(ctx, id)
	if err != nil {
		return &Result{State: StateFailed}, err
	}

	coverURL := p.resolveCover(ctx, in.CoverImage)

	post := p.buildPost(in, coverURL)
	post.ID = existing.ID
	post.CreatedAt = existing.CreatedAt
	post.Author = existing.Author
	if in.Author != "" {
		post.Author = in.Author
	}
	post.Published = existing.Published
	if in.Published != nil {
		post.Published = *in.Published
	}
	if in.Featured == nil {
		post.Featured = existing.Featured
	}

	p.log.Debug().Str("state", StatePersisting.String()).Str("post_id", string(post.ID)).Msg("Persisting updated post")
	if err := p.store.Update(ctx, post); err != nil {
		return &Result{State: StateFailed}, &apperr.PersistenceError{Err: err}
	}

	p.signalChanged()
	return &Result{Post: post, RedirectPath: blogPath + "/" + post.Slug, State: StateDone}, nil
}

// validate rejects the action before any side effect. Title is mandatory
// and some body must exist; blocks with empty content are allowed through.
func (p *Pipeline) validate(in Input) error {
	p.log.Debug().Str("state", StateValidating.String()).Msg("Validating publish input")

	fields := make(map[string]string)
	if in.Title == "" {
		fields["title"] = "title is required"
	}
	if len(in.Blocks) == 0 && in.Content == "" {
		fields["content"] = "content is required"
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// resolveCover runs the upload step. Failure never aborts the action: the
// cover degrades to empty and the error is logged.
func (p *Pipeline) resolveCover(ctx context.Context, value string) string {
	p.log.Debug().Str("state", StateUploading.String()).Msg("Resolving cover image")

	url, err := media.Resolve(ctx, p.uploader, value, p.uploadTimeout)
	if err != nil {
		p.log.Warn().Err(err).Msg("Cover upload failed, publishing without cover image")
		return ""
	}
	return url
}

// buildPost assembles the normalized document: blocks serialized to HTML,
// slug derived from the title, category defaulted, tags auto-filled with
// the category, SEO and alt text defaulted from title and excerpt.
func (p *Pipeline) buildPost(in Input, coverURL string) *model.Post {
	content := in.Content
	blocks := in.Blocks
	if len(blocks) > 0 {
		content = editor.Serialize(blocks)
	}

	slug := in.Slug
	if slug == "" {
		slug = util.Slugify(in.Title)
	}

	category := in.Category
	if category == "" {
		category = p.fallbackCategory
	}

	tags := in.Tags
	if len(tags) == 0 {
		tags = []string{category}
	}

	seo := in.SEO
	if seo.MetaTitle == "" {
		seo.MetaTitle = in.Title
	}
	if seo.MetaDescription == "" {
		seo.MetaDescription = in.Excerpt
	}

	post := &model.Post{
		Title:    in.Title,
		Slug:     slug,
		Excerpt:  in.Excerpt,
		Content:  content,
		Category: category,
		Tags:     tags,
		CoverImage: model.CoverImage{
			URL: coverURL,
			Alt: in.Title,
		},
		SEO:    seo,
		Blocks: blocks,
		Author: in.Author,
	}
	if in.Featured != nil {
		post.Featured = *in.Featured
	}
	return post
}

// signalChanged tells the caches that the public listing and the dashboard
// are stale. Regeneration is the collaborator's concern.
func (p *Pipeline) signalChanged() {
	p.invalidate(blogPath)
	p.invalidate(dashboardPath)
}

// Delete removes a post and invalidates the same views a write would.
func (p *Pipeline) Delete(ctx context.Context, id model.PostID) error {
	if err := p.store.Delete(ctx, id); err != nil {
		return err
	}
	p.signalChanged()
	return nil
}
