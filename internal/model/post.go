// Package model defines core data structures and types for the blog platform.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

type PostID string

// BlockType enumerates the structural units a post body is built from.
type BlockType string

const (
	BlockH1    BlockType = "h1"
	BlockH2    BlockType = "h2"
	BlockP     BlockType = "p"
	BlockQuote BlockType = "quote"
	BlockCode  BlockType = "code"
	BlockImage BlockType = "image"
)

// Block is one unit of post content. Content holds an inline-formatted HTML
// fragment for text types, or an image URL for image blocks.
type Block struct {
	ID      string    `json:"id"`
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
}

type CoverImage struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Credit string `json:"credit"`
}

type SEO struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
}

type Stats struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}

type Post struct {
	ID      PostID
	Title   string
	Slug    string
	Excerpt string

	// Content is the rendered HTML body. It is always regenerable from
	// Blocks via the serializer; the two are written together and must not
	// diverge.
	Content string

	Category   string
	Tags       []string
	CoverImage CoverImage
	SEO        SEO

	// Blocks is the raw editing source, persisted alongside the rendered
	// HTML so the post can be reopened in the editor.
	Blocks []Block

	Published bool
	Featured  bool
	Author    UserID
	Stats     Stats

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// CoverImageValue absorbs the legacy storage drift around cover images:
// older documents hold a bare URL string where newer ones hold a
// {url, alt, credit} object. It decodes either shape; every reader goes
// through Image or Resolve, so the two shapes never leak past the store
// boundary.
type CoverImageValue struct {
	Bare   string
	Hosted CoverImage

	hosted bool
}

func (v *CoverImageValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*v = CoverImageValue{}
		return nil
	}
	if trimmed[0] == '"' {
		v.hosted = false
		return json.Unmarshal(data, &v.Bare)
	}
	v.hosted = true
	return json.Unmarshal(data, &v.Hosted)
}

func (v CoverImageValue) MarshalJSON() ([]byte, error) {
	if !v.hosted && v.Bare != "" {
		return json.Marshal(v.Bare)
	}
	return json.Marshal(v.Hosted)
}

// Image returns the cover image in the current object shape, lifting a
// legacy bare URL into it.
func (v CoverImageValue) Image() CoverImage {
	if v.hosted {
		return v.Hosted
	}
	return CoverImage{URL: v.Bare}
}

// Resolve flattens the value to the single URL string readers consume,
// falling back when neither shape yields a non-empty value.
func (v CoverImageValue) Resolve(fallback string) string {
	url := v.Hosted.URL
	if !v.hosted {
		url = v.Bare
	}
	if strings.TrimSpace(url) == "" {
		return fallback
	}
	return url
}
