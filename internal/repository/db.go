package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/util"
	"github.com/inkpress/inkpress/internal/util/compression"
)

const postColumns = `id, title, slug, excerpt, content, category, tags, cover_image, seo, blocks,
	published, is_featured, author_id, stats_views, stats_likes, created_at, modified_at`

type DBPostStore struct { // implements PostStore, UserStore
	db         db.DB
	compressor compression.Compressor
}

func NewDBPostStore(database db.DB) (*DBPostStore, error) {
	zstd, err := compression.NewZstd()
	if err != nil {
		return nil, fmt.Errorf("error creating compressor: %w", err)
	}
	return &DBPostStore{
		db:         database,
		compressor: zstd,
	}, nil
}

func (s *DBPostStore) Create(ctx context.Context, post *model.Post) error {
	row, err := s.encodePost(post)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.ModifiedAt = now

	_, err = s.db.Exec(
		`INSERT INTO posts (id, title, slug, excerpt, content, word_count, category, tags,
			cover_image, seo, blocks, published, is_featured, author_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Title, post.Slug, post.Excerpt, row.content, row.wordCount, post.Category,
		row.tags, row.cover, row.seo, row.blocks, post.Published, post.Featured, post.Author,
		post.CreatedAt, post.ModifiedAt,
	)
	if err != nil {
		return translateConstraint(err)
	}

	repoLogger.Debug().Str("post_id", string(post.ID)).Str("slug", post.Slug).Msg("Post created")
	return nil
}

func (s *DBPostStore) Update(ctx context.Context, post *model.Post) error {
	row, err := s.encodePost(post)
	if err != nil {
		return err
	}

	post.ModifiedAt = time.Now().UTC()

	// Stats columns are deliberately absent: counters move only through
	// the atomic increment operations.
	res, err := s.db.Exec(
		`UPDATE posts SET title = ?, slug = ?, excerpt = ?, content = ?, word_count = ?,
			category = ?, tags = ?, cover_image = ?, seo = ?, blocks = ?, published = ?,
			is_featured = ?, modified_at = ?
		WHERE id = ?`,
		post.Title, post.Slug, post.Excerpt, row.content, row.wordCount, post.Category,
		row.tags, row.cover, row.seo, row.blocks, post.Published, post.Featured,
		post.ModifiedAt, post.ID,
	)
	if err != nil {
		return translateConstraint(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("post %s: %w", post.ID, apperr.ErrNotFound)
	}

	repoLogger.Debug().Str("post_id", string(post.ID)).Msg("Post updated")
	return nil
}

func (s *DBPostStore) Get(ctx context.Context, id model.PostID) (*model.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := s.scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %s: %w", id, apperr.ErrNotFound)
	}
	return post, err
}

func (s *DBPostStore) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
	post, err := s.scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post slug %s: %w", slug, apperr.ErrNotFound)
	}
	return post, err
}

func (s *DBPostStore) Delete(ctx context.Context, id model.PostID) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("post %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (s *DBPostStore) List(ctx context.Context, opts ListOptions) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	var conds []string
	if opts.PublishedOnly {
		conds = append(conds, "published = 1")
	}
	if opts.FeaturedOnly {
		conds = append(conds, "is_featured = 1")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// created_at descending is the feed's baseline order; id breaks ties
	// so the sort is stable across queries.
	query += " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		post, err := s.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

// IncrementViews bumps the view counter with a single atomic update; a
// read-modify-write here would lose counts under concurrent requests.
func (s *DBPostStore) IncrementViews(ctx context.Context, id model.PostID) error {
	res, err := s.db.Exec(`UPDATE posts SET stats_views = stats_views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error incrementing views: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("post %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// IncrementLikes bumps the like counter atomically and returns the new
// value.
func (s *DBPostStore) IncrementLikes(ctx context.Context, id model.PostID) (int64, error) {
	var likes int64
	err := s.db.QueryRow(
		`UPDATE posts SET stats_likes = stats_likes + 1 WHERE id = ? RETURNING stats_likes`, id,
	).Scan(&likes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("post %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("error incrementing likes: %w", err)
	}
	return likes, nil
}

// Categories returns the distinct tags of published posts, first-seen
// casing preserved, sorted case-insensitively.
func (s *DBPostStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, fmt.Errorf("error querying tags: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]string)
	var order []string
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var tags []string
		if raw.Valid && raw.String != "" {
			if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
				return nil, fmt.Errorf("error decoding tags: %w", err)
			}
		}
		for _, t := range tags {
			key := strings.ToLower(t)
			if _, ok := seen[key]; !ok {
				seen[key] = t
				order = append(order, key)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(order))
	for _, key := range order {
		result = append(result, seen[key])
	}
	return result, nil
}

func (s *DBPostStore) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.Query(
		`SELECT category, COUNT(*) FROM posts WHERE category IS NOT NULL AND category != ''
		GROUP BY category ORDER BY COUNT(*) DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("error querying category counts: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Stats runs the dashboard aggregations in parallel.
func (s *DBPostStore) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var views, likes sql.NullInt64
		var avgWords sql.NullFloat64
		err := s.db.QueryRow(
			`SELECT SUM(stats_views), SUM(stats_likes), AVG(word_count) FROM posts`,
		).Scan(&views, &likes, &avgWords)
		if err != nil {
			return fmt.Errorf("error aggregating stats: %w", err)
		}
		stats.TotalViews = views.Int64
		stats.TotalLikes = likes.Int64
		stats.AvgWordCount = avgWords.Float64
		return nil
	})
	g.Go(func() error {
		err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE published = 1`).Scan(&stats.ActivePosts)
		if err != nil {
			return fmt.Errorf("error counting published posts: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *DBPostStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.Role, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (s *DBPostStore) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, name, email, role, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &u, nil
}

// AnyUser returns the oldest registered user, the fallback author for
// requests that carry no identity.
func (s *DBPostStore) AnyUser(ctx context.Context) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, name, email, role, created_at FROM users ORDER BY created_at LIMIT 1`,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no users: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &u, nil
}

type encodedPost struct {
	content   []byte
	wordCount int
	tags      string
	cover     string
	seo       string
	blocks    string
}

func (s *DBPostStore) encodePost(post *model.Post) (*encodedPost, error) {
	content, err := s.compressor.Compress([]byte(post.Content))
	if err != nil {
		return nil, fmt.Errorf("error compressing content: %w", err)
	}

	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("error encoding tags: %w", err)
	}
	coverJSON, err := json.Marshal(post.CoverImage)
	if err != nil {
		return nil, fmt.Errorf("error encoding cover image: %w", err)
	}
	seoJSON, err := json.Marshal(post.SEO)
	if err != nil {
		return nil, fmt.Errorf("error encoding seo: %w", err)
	}
	blocks := post.Blocks
	if blocks == nil {
		blocks = []model.Block{}
	}
	blocksJSON, err := json.Marshal(blocks)
	if err != nil {
		return nil, fmt.Errorf("error encoding blocks: %w", err)
	}

	return &encodedPost{
		content:   content,
		wordCount: util.WordCount(post.Content),
		tags:      string(tagsJSON),
		cover:     string(coverJSON),
		seo:       string(seoJSON),
		blocks:    string(blocksJSON),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *DBPostStore) scanPost(row rowScanner) (*model.Post, error) {
	var post model.Post
	var compressed []byte
	var excerpt, category, tagsJSON, coverJSON, seoJSON, blocksJSON sql.NullString
	var author sql.NullString
	var modifiedAt sql.NullTime

	err := row.Scan(
		&post.ID, &post.Title, &post.Slug, &excerpt, &compressed, &category,
		&tagsJSON, &coverJSON, &seoJSON, &blocksJSON, &post.Published, &post.Featured,
		&author, &post.Stats.Views, &post.Stats.Likes, &post.CreatedAt, &modifiedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Excerpt = excerpt.String
	post.Category = category.String
	post.Author = model.UserID(author.String)
	if modifiedAt.Valid {
		post.ModifiedAt = modifiedAt.Time
	}

	if len(compressed) > 0 {
		content, err := s.compressor.Decompress(compressed)
		if err != nil {
			return nil, fmt.Errorf("error decompressing content: %w", err)
		}
		post.Content = string(content)
	}

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &post.Tags); err != nil {
			return nil, fmt.Errorf("error decoding tags: %w", err)
		}
	}
	if coverJSON.Valid && coverJSON.String != "" {
		// The adapter lifts both the legacy bare-string shape and the
		// current object shape; nothing past this point sees the drift.
		var cover model.CoverImageValue
		if err := json.Unmarshal([]byte(coverJSON.String), &cover); err != nil {
			return nil, fmt.Errorf("error decoding cover image: %w", err)
		}
		post.CoverImage = cover.Image()
	}
	if seoJSON.Valid && seoJSON.String != "" {
		if err := json.Unmarshal([]byte(seoJSON.String), &post.SEO); err != nil {
			return nil, fmt.Errorf("error decoding seo: %w", err)
		}
	}
	if blocksJSON.Valid && blocksJSON.String != "" {
		if err := json.Unmarshal([]byte(blocksJSON.String), &post.Blocks); err != nil {
			return nil, fmt.Errorf("error decoding blocks: %w", err)
		}
	}

	return &post, nil
}

// translateConstraint maps the sqlite UNIQUE violation on posts.slug to the
// domain error. The driver exposes constraint failures only through the
// error text.
func translateConstraint(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed: posts.slug") {
		return fmt.Errorf("slug taken: %w", apperr.ErrDuplicateSlug)
	}
	return fmt.Errorf("error saving post: %w", err)
}
