// Package feed renders the published-post listing as RSS 2.0.
package feed

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/inkpress/inkpress/internal/listing"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// Site describes the feed channel.
type Site struct {
	Name        string
	Description string
	BaseURL     string
}

// WriteRSS encodes the posts as an RSS 2.0 document.
func WriteRSS(w io.Writer, site Site, posts []listing.View) error {
	base := strings.TrimSuffix(site.BaseURL, "/")

	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := base + "/blog/" + p.Slug
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Excerpt,
			Category:    p.Category,
			PubDate:     p.CreatedAt.Format(time.RFC1123Z),
			GUID:        postURL,
		})
	}

	doc := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Name,
			Link:        base,
			Description: site.Description,
			Items:       items,
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(doc)
}
