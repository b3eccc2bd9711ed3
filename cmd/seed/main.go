// Command seed fills a fresh database with a demo author and a handful
// of published posts, so the blog has something to render out of the box.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/editor"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/repository"
	"github.com/inkpress/inkpress/internal/util"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type seedPost struct {
	title    string
	excerpt  string
	category string
	featured bool
	blocks   []model.Block
}

var seedPosts = []seedPost{
	{
		title:    "Welcome to Inkpress",
		excerpt:  "What this engine does and why it exists",
		category: "Technology",
		featured: true,
		blocks: []model.Block{
			{ID: "1", Type: model.BlockH1, Content: "Welcome to Inkpress"},
			{ID: "2", Type: model.BlockP, Content: "Posts are composed from typed blocks and rendered to HTML at publish time."},
			{ID: "3", Type: model.BlockQuote, Content: "Write once, render deterministically."},
		},
	},
	{
		title:    "Composing Posts from Blocks",
		excerpt:  "The block model behind the editor",
		category: "Technology",
		blocks: []model.Block{
			{ID: "1", Type: model.BlockH2, Content: "The block model"},
			{ID: "2", Type: model.BlockP, Content: "Six block types cover headings, paragraphs, quotes, code and images."},
			{ID: "3", Type: model.BlockCode, Content: "type Block struct {\n\tID      string\n\tType    BlockType\n\tContent string\n}"},
		},
	},
	{
		title:    "Covers, Counters and Caches",
		excerpt:  "The plumbing around a published post",
		category: "Engineering",
		blocks: []model.Block{
			{ID: "1", Type: model.BlockH2, Content: "Plumbing"},
			{ID: "2", Type: model.BlockP, Content: "Cover images are uploaded to object storage, view and like counters are bumped atomically, and listings are cached per query."},
		},
	},
}

func fail(msg string, err error) {
	fmt.Println(errStyle.Render(fmt.Sprintf("%s: %v", msg, err)))
	os.Exit(1)
}

func main() {
	dbPath := flag.String("db", "inkpress.db", "path to the sqlite database")
	flag.Parse()

	fmt.Println(titleStyle.Render("Seeding " + *dbPath))

	database := db.NewSQLite(*dbPath)
	if err := database.InitSchema(); err != nil {
		fail("Error initializing schema", err)
	}
	defer database.Close()

	store, err := repository.NewDBPostStore(database)
	if err != nil {
		fail("Error creating store", err)
	}

	ctx := context.Background()

	author := &model.User{
		ID:    model.UserID(uuid.New().String()),
		Name:  "Demo Author",
		Email: "author@example.com",
		Role:  model.RoleAuthor,
	}
	if err := store.CreateUser(ctx, author); err != nil {
		fail("Error creating author", err)
	}
	fmt.Println(okStyle.Render("  author " + author.Email))

	for i, sp := range seedPosts {
		post := &model.Post{
			ID:        model.PostID(uuid.New().String()),
			Title:     sp.title,
			Slug:      util.Slugify(sp.title),
			Excerpt:   sp.excerpt,
			Content:   editor.Serialize(sp.blocks),
			Category:  sp.category,
			Tags:      []string{sp.category},
			SEO:       model.SEO{MetaTitle: sp.title, MetaDescription: sp.excerpt},
			Blocks:    sp.blocks,
			Published: true,
			Featured:  sp.featured,
			Author:    author.ID,
			CreatedAt: time.Now().UTC().Add(-time.Duration(len(seedPosts)-i) * 24 * time.Hour),
		}
		if err := store.Create(ctx, post); err != nil {
			fail("Error creating post", err)
		}
		fmt.Println(okStyle.Render("  post /blog/" + post.Slug))
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Done: %d posts", len(seedPosts))))
}
