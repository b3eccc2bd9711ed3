package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/inkpress/inkpress/internal/editor"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/publish"
)

// PostPayload is the request body for creating or updating a post. It
// tolerates the two client vocabularies in circulation: "subtitle" as an
// alias for "excerpt", and blocks either top-level or nested under
// "metadata".
type PostPayload struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Excerpt  string `json:"excerpt"`
	Slug     string `json:"slug"`
	Category string `json:"category"`

	Content string        `json:"content"`
	Blocks  []model.Block `json:"blocks"`

	Metadata struct {
		Blocks []model.Block `json:"blocks"`
	} `json:"metadata"`

	CoverImage string    `json:"coverImage"`
	SEO        model.SEO `json:"seo"`
	Tags       []string  `json:"tags"`

	Published  *bool `json:"published"`
	IsFeatured *bool `json:"isFeatured"`
}

func (p PostPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Slug, validation.Length(0, 200)),
		validation.Field(&p.Category, validation.Length(0, 100)),
	)
}

func (p PostPayload) toInput(author model.UserID) publish.Input {
	excerpt := p.Excerpt
	if excerpt == "" {
		excerpt = p.Subtitle
	}
	blocks := p.Blocks
	if len(blocks) == 0 {
		blocks = p.Metadata.Blocks
	}
	return publish.Input{
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    excerpt,
		Category:   p.Category,
		Content:    p.Content,
		Blocks:     blocks,
		CoverImage: p.CoverImage,
		SEO:        p.SEO,
		Tags:       p.Tags,
		Published:  p.Published,
		Featured:   p.IsFeatured,
		Author:     author,
	}
}

// PostResponse is the full post detail. CoverImage is flattened to a bare
// URL; unlike the listing views it stays empty when the post has none.
type PostResponse struct {
	ID         model.PostID  `json:"id"`
	Title      string        `json:"title"`
	Slug       string        `json:"slug"`
	Excerpt    string        `json:"excerpt"`
	Category   string        `json:"category"`
	Content    string        `json:"content"`
	Tags       []string      `json:"tags"`
	CoverImage string        `json:"coverImage"`
	SEO        model.SEO     `json:"seo"`
	Blocks     []model.Block `json:"blocks"`
	Published  bool          `json:"published"`
	IsFeatured bool          `json:"isFeatured"`
	Author     model.UserID  `json:"author"`
	Stats      model.Stats   `json:"stats"`
	CreatedAt  time.Time     `json:"createdAt"`
	ModifiedAt time.Time     `json:"modifiedAt"`
}

func toPostResponse(post *model.Post) PostResponse {
	return PostResponse{
		ID:         post.ID,
		Title:      post.Title,
		Slug:       post.Slug,
		Excerpt:    post.Excerpt,
		Category:   post.Category,
		Content:    post.Content,
		Tags:       post.Tags,
		CoverImage: post.CoverImage.URL,
		SEO:        post.SEO,
		Blocks:     post.Blocks,
		Published:  post.Published,
		IsFeatured: post.Featured,
		Author:     post.Author,
		Stats:      post.Stats,
		CreatedAt:  post.CreatedAt,
		ModifiedAt: post.ModifiedAt,
	}
}

// DraftPayload is the autosave body for the block editor.
type DraftPayload struct {
	Title  string        `json:"title"`
	Blocks []model.Block `json:"blocks"`
}

// DraftResponse mirrors editor.Draft with wire-friendly field names.
type DraftResponse struct {
	ID        editor.DraftID `json:"id"`
	Title     string         `json:"title"`
	Blocks    []model.Block  `json:"blocks"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func toDraftResponse(d *editor.Draft) DraftResponse {
	return DraftResponse{
		ID:        d.ID,
		Title:     d.Title,
		Blocks:    d.Blocks,
		UpdatedAt: d.UpdatedAt,
	}
}
