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

// categorySlugMaxLen mirrors the categories.slug column limit.
const categorySlugMaxLen = 80

const categoryColumns = `id, name, slug, description, created_at, updated_at`

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns categories with article counts, ordered by name, paginated
// by skip/limit.
func (s *CategoryStore) List(skip, limit int) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.created_at, c.updated_at,
		       COUNT(a.id) AS article_count
		FROM categories c
		LEFT JOIN articles a ON a.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description,
			&c.CreatedAt, &c.UpdatedAt, &c.ArticleCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slugStr string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slugStr)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category with a slug derived from its name.
// The whole resolve-and-insert is retried once if a concurrent writer
// claims the resolved slug between the probe and the insert.
func (s *CategoryStore) Create(name string, description *string) (*models.Category, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resolved, err := resolveSlug(s.db, "categories", name, categorySlugMaxLen, uuid.Nil)
		if err != nil {
			return nil, err
		}

		row := s.db.QueryRow(`
			INSERT INTO categories (name, slug, description)
			VALUES ($1, $2, $3)
			RETURNING `+categoryColumns,
			name, resolved, description,
		)
		c, err := scanCategory(row)
		if err == nil {
			return c, nil
		}
		if isUniqueViolation(err, "categories_slug_key") {
			lastErr = err
			continue // concurrent writer took the slug; re-resolve
		}
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("create category %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return nil, fmt.Errorf("create category %q: %v: %w", name, lastErr, ErrConflict)
}

// Update renames a category and/or changes its description. The slug is
// regenerated only when the new name's normalized base differs from the
// current slug, so cosmetic re-saves do not churn URLs.
func (s *CategoryStore) Update(id uuid.UUID, name, description *string) (*models.Category, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		c, err := s.FindByID(id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("update category %s: %w", id, ErrNotFound)
		}

		if name != nil {
			c.Name = *name
			if slug.Generate(*name) != c.Slug {
				resolved, err := resolveSlug(s.db, "categories", *name, categorySlugMaxLen, id)
				if err != nil {
					return nil, err
				}
				c.Slug = resolved
			}
		}
		if description != nil {
			c.Description = description
		}

		row := s.db.QueryRow(`
			UPDATE categories SET
				name = $1, slug = $2, description = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING `+categoryColumns,
			c.Name, c.Slug, c.Description, id,
		)
		updated, err := scanCategory(row)
		if err == nil {
			return updated, nil
		}
		if isUniqueViolation(err, "categories_slug_key") {
			lastErr = err
			continue
		}
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("update category %s: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return nil, fmt.Errorf("update category %s: %v: %w", id, lastErr, ErrConflict)
}

// Delete removes a category by ID. Referencing articles are detached
// (category_id set to NULL by the foreign key), never deleted.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete category %s: %w", id, ErrNotFound)
	}
	return nil
}
