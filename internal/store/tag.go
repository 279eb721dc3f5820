// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"maplecms/internal/models"
	"maplecms/internal/slug"
)

// tagSlugMaxLen mirrors the tags.slug column limit.
const tagSlugMaxLen = 64

const tagColumns = `id, name, slug, created_at, updated_at`

// TagStore manages tags in the database.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

func scanTag(scanner interface{ Scan(...any) error }) (*models.Tag, error) {
	var t models.Tag
	if err := scanner.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tags ordered by name, paginated by skip/limit.
func (s *TagStore) List(skip, limit int) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT `+tagColumns+` FROM tags
		ORDER BY name
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(id uuid.UUID) (*models.Tag, error) {
	row := s.db.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE id = $1`, id)
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by id: %w", err)
	}
	return t, nil
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(slugStr string) (*models.Tag, error) {
	row := s.db.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slugStr)
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// Create inserts a new tag with a slug derived from its name, retrying
// the resolve-and-insert once on a concurrent slug collision.
func (s *TagStore) Create(name string) (*models.Tag, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resolved, err := resolveSlug(s.db, "tags", name, tagSlugMaxLen, uuid.Nil)
		if err != nil {
			return nil, err
		}

		row := s.db.QueryRow(`
			INSERT INTO tags (name, slug)
			VALUES ($1, $2)
			RETURNING `+tagColumns,
			name, resolved,
		)
		t, err := scanTag(row)
		if err == nil {
			return t, nil
		}
		if isUniqueViolation(err, "tags_slug_key") {
			lastErr = err
			continue
		}
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("create tag %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return nil, fmt.Errorf("create tag %q: %v: %w", name, lastErr, ErrConflict)
}

// Update renames a tag. The slug is regenerated only when the new name's
// normalized base differs from the current slug.
func (s *TagStore) Update(id uuid.UUID, name string) (*models.Tag, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		t, err := s.FindByID(id)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("update tag %s: %w", id, ErrNotFound)
		}

		t.Name = name
		if slug.Generate(name) != t.Slug {
			resolved, err := resolveSlug(s.db, "tags", name, tagSlugMaxLen, id)
			if err != nil {
				return nil, err
			}
			t.Slug = resolved
		}

		row := s.db.QueryRow(`
			UPDATE tags SET name = $1, slug = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING `+tagColumns,
			t.Name, t.Slug, id,
		)
		updated, err := scanTag(row)
		if err == nil {
			return updated, nil
		}
		if isUniqueViolation(err, "tags_slug_key") {
			lastErr = err
			continue
		}
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("update tag %s: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}
	return nil, fmt.Errorf("update tag %s: %v: %w", id, lastErr, ErrConflict)
}

// Delete removes a tag by ID. Association rows cascade; articles are
// left intact.
func (s *TagStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete tag %s: %w", id, ErrNotFound)
	}
	return nil
}
