package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jairbenitez29/blueedu/pkg/core"
)

// ErrNotFound is returned by single-record lookups when no row matches.
var ErrNotFound = errors.New("record not found")

const articleColumns = "id, title, author, summary, body, category, published_at, source_url, keywords, active, views"

func scanArticle(row interface{ Scan(...any) error }) (*core.Article, error) {
	var a core.Article
	var active int
	err := row.Scan(&a.ID, &a.Title, &a.Author, &a.Summary, &a.Body, &a.Category,
		&a.PublishedAt, &a.SourceURL, &a.Keywords, &active, &a.Views)
	if err != nil {
		return nil, err
	}
	a.Active = active == 1
	return &a, nil
}

// SearchArticles returns active articles whose title, summary, body,
// keywords or author contain the query, newest first.
func (s *Store) SearchArticles(ctx context.Context, query string, limit int) ([]core.Article, error) {
	pattern := likePattern(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE (title LIKE ? OR summary LIKE ? OR body LIKE ? OR keywords LIKE ? OR author LIKE ?)
		  AND active = 1
		ORDER BY published_at DESC
		LIMIT ?`,
		pattern, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			fmt.Printf("Warning: failed to close rows: %v\n", err)
		}
	}()

	var articles []core.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// SearchArticleTitles is the quick-search variant: active articles matched
// on title only.
func (s *Store) SearchArticleTitles(ctx context.Context, query string, limit int) ([]core.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE title LIKE ? AND active = 1
		LIMIT ?`,
		likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching article titles: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			fmt.Printf("Warning: failed to close rows: %v\n", err)
		}
	}()

	var articles []core.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// FindArticleBySourceOrTitle looks up an article by exact source URL or
// exact title. Used by the ingestion sink for de-duplication.
func (s *Store) FindArticleBySourceOrTitle(ctx context.Context, sourceURL, title string) (*core.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE source_url = ? OR title = ?
		LIMIT 1`,
		sourceURL, title)

	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding article: %w", err)
	}
	return a, nil
}

// InsertArticle stores a new article, assigning an ID when missing.
func (s *Store) InsertArticle(ctx context.Context, a *core.Article) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = time.Now().UTC()
	}

	active := 0
	if a.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Author, a.Summary, a.Body, a.Category,
		a.PublishedAt, a.SourceURL, a.Keywords, active, a.Views)
	if err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}
	return nil
}

// IncrementArticleViews bumps the view counter without touching any other
// field.
func (s *Store) IncrementArticleViews(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE articles SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("incrementing views: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ActivateArticle promotes an unverified article so it becomes publicly
// visible.
func (s *Store) ActivateArticle(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE articles SET active = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("activating article: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetArticle returns a single article by ID.
func (s *Store) GetArticle(ctx context.Context, id string) (*core.Article, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting article: %w", err)
	}
	return a, nil
}

// ListArticles returns articles newest first. Inactive (unverified) records
// are included only when requested.
func (s *Store) ListArticles(ctx context.Context, includeInactive bool, limit int) ([]core.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles"
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY published_at DESC LIMIT ?"

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			fmt.Printf("Warning: failed to close rows: %v\n", err)
		}
	}()

	var articles []core.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}
