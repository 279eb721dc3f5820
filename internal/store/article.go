// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"maplecms/internal/models"
	"maplecms/internal/slug"
)

// articleSlugMaxLen mirrors the articles.slug column limit.
const articleSlugMaxLen = 180

const articleColumns = `id, title, slug, excerpt, content_md, content_html, status,
	       author_id, category_id, published_at, meta, created_at, updated_at`

// ArticleStore handles all article-related database operations, including
// the article↔tag association.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// ArticleFilter selects articles for List. Nil fields are not applied;
// set fields are combined as a conjunction.
type ArticleFilter struct {
	Status     *models.ArticleStatus
	AuthorID   *uuid.UUID
	CategoryID *uuid.UUID
	Skip       int
	Limit      int
}

// ArticleDraft carries the caller-supplied fields for a new article.
// The slug is always derived from Title, never caller-supplied.
type ArticleDraft struct {
	Title       string
	Excerpt     *string
	ContentMD   *string
	ContentHTML *string
	Status      models.ArticleStatus
	CategoryID  *uuid.UUID
	Meta        models.Metadata
	TagIDs      []uuid.UUID
}

// ArticleChange carries a partial update. Nil fields are left untouched.
// A non-nil TagIDs replaces the article's tag set wholesale — an empty
// slice removes every association.
type ArticleChange struct {
	Title       *string
	Excerpt     *string
	ContentMD   *string
	ContentHTML *string
	Status      *models.ArticleStatus
	CategoryID  *uuid.UUID
	Meta        models.Metadata
	TagIDs      *[]uuid.UUID
}

// scanArticle scans a row into an Article struct.
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.ContentMD, &a.ContentHTML,
		&a.Status, &a.AuthorID, &a.CategoryID, &a.PublishedAt, &a.Meta,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns articles matching the filter, ordered by creation date
// descending (most recent first). Tags are not loaded for list views.
func (s *ArticleStore) List(f ArticleFilter) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	var conditions []string
	var args []any

	if f.Status != nil {
		args = append(args, *f.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.AuthorID != nil {
		args = append(args, *f.AuthorID)
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}

	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	args = append(args, f.Skip)
	query += fmt.Sprintf(" ORDER BY created_at DESC OFFSET $%d", len(args))
	args = append(args, f.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// FindByID retrieves an article with its tags. Returns nil if not found.
func (s *ArticleStore) FindByID(id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	if a.Tags, err = s.loadTags(s.db, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// FindBySlug retrieves an article by slug with its tags. Returns nil if
// not found.
func (s *ArticleStore) FindBySlug(slugStr string) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slugStr)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	if a.Tags, err = s.loadTags(s.db, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// loadTags fetches the tags associated with an article, ordered by name.
func (s *ArticleStore) loadTags(q queryer, articleID uuid.UUID) ([]models.Tag, error) {
	rows, err := q.Query(`
		SELECT t.id, t.name, t.slug, t.created_at, t.updated_at
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = $1
		ORDER BY t.name
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("load article tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// Create inserts a new article and its tag associations in one transaction.
// The slug is resolved inside the transaction; if a concurrent writer claims
// it between probe and insert, the whole resolve-and-insert is retried once
// before the collision surfaces as ErrConflict. A missing author, category,
// or tag rolls everything back with ErrNotFound — no partial write survives.
func (s *ArticleStore) Create(d ArticleDraft, authorID uuid.UUID) (*models.Article, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		a, err := s.createOnce(d, authorID)
		if err == nil {
			return a, nil
		}
		if isUniqueViolation(err, "articles_slug_key") {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("create article %q: %v: %w", d.Title, lastErr, ErrConflict)
}

func (s *ArticleStore) createOnce(d ArticleDraft, authorID uuid.UUID) (*models.Article, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	resolved, err := resolveSlug(tx, "articles", d.Title, articleSlugMaxLen, uuid.Nil)
	if err != nil {
		return nil, err
	}

	// First transition into published stamps published_at.
	var publishedAt *time.Time
	if d.Status == models.ArticleStatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	row := tx.QueryRow(`
		INSERT INTO articles (title, slug, excerpt, content_md, content_html,
		                      status, author_id, category_id, published_at, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+articleColumns,
		d.Title, resolved, d.Excerpt, d.ContentMD, d.ContentHTML,
		d.Status, authorID, d.CategoryID, publishedAt, d.Meta,
	)
	a, err := scanArticle(row)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("create article: referenced author or category: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	if err := insertArticleTags(tx, a.ID, d.TagIDs); err != nil {
		return nil, err
	}
	if a.Tags, err = s.loadTags(tx, a.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create article: %w", err)
	}
	return a, nil
}

// Update applies a partial change to an article inside one transaction.
// The slug is regenerated only when a new title's normalized base differs
// from the current slug. published_at is set on the first transition into
// published and never overwritten afterwards. A non-nil TagIDs replaces
// all association rows (delete-all-then-insert).
func (s *ArticleStore) Update(id uuid.UUID, ch ArticleChange) (*models.Article, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		a, err := s.updateOnce(id, ch)
		if err == nil {
			return a, nil
		}
		if isUniqueViolation(err, "articles_slug_key") {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update article %s: %v: %w", id, lastErr, ErrConflict)
}

func (s *ArticleStore) updateOnce(id uuid.UUID, ch ArticleChange) (*models.Article, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = $1 FOR UPDATE`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("update article %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	if ch.Title != nil {
		a.Title = *ch.Title
		if slug.Generate(*ch.Title) != a.Slug {
			resolved, err := resolveSlug(tx, "articles", *ch.Title, articleSlugMaxLen, id)
			if err != nil {
				return nil, err
			}
			a.Slug = resolved
		}
	}
	if ch.Excerpt != nil {
		a.Excerpt = ch.Excerpt
	}
	if ch.ContentMD != nil {
		a.ContentMD = ch.ContentMD
	}
	if ch.ContentHTML != nil {
		a.ContentHTML = ch.ContentHTML
	}
	if ch.Status != nil {
		if *ch.Status == models.ArticleStatusPublished && a.PublishedAt == nil {
			now := time.Now()
			a.PublishedAt = &now
		}
		a.Status = *ch.Status
	}
	if ch.CategoryID != nil {
		a.CategoryID = ch.CategoryID
	}
	if ch.Meta != nil {
		a.Meta = ch.Meta
	}

	row = tx.QueryRow(`
		UPDATE articles SET
			title = $1, slug = $2, excerpt = $3, content_md = $4, content_html = $5,
			status = $6, category_id = $7, published_at = $8, meta = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING `+articleColumns,
		a.Title, a.Slug, a.Excerpt, a.ContentMD, a.ContentHTML,
		a.Status, a.CategoryID, a.PublishedAt, a.Meta, id,
	)
	updated, err := scanArticle(row)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("update article: referenced category: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	if ch.TagIDs != nil {
		if _, err := tx.Exec(`DELETE FROM article_tags WHERE article_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear article tags: %w", err)
		}
		if err := insertArticleTags(tx, id, *ch.TagIDs); err != nil {
			return nil, err
		}
	}
	if updated.Tags, err = s.loadTags(tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update article: %w", err)
	}
	return updated, nil
}

// insertArticleTags creates one association row per tag id. A missing tag
// surfaces as ErrNotFound; a duplicate pair in the request as ErrConflict.
func insertArticleTags(tx *sql.Tx, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("prepare tag insert: %w", err)
	}
	defer stmt.Close()

	for _, tagID := range tagIDs {
		_, err := stmt.Exec(articleID, tagID)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("attach tag %s: %w", tagID, ErrNotFound)
		}
		if isUniqueViolation(err, "") {
			return fmt.Errorf("attach tag %s twice: %w", tagID, ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("attach tag %s: %w", tagID, err)
		}
	}
	return nil
}

// Delete removes an article by ID. Association rows cascade; tags and the
// author are left intact.
func (s *ArticleStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete article %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountByStatus returns the number of articles in the given status.
func (s *ArticleStore) CountByStatus(status models.ArticleStatus) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}
