// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// ValidArticleStatus reports whether s is one of the known statuses.
func ValidArticleStatus(s string) bool {
	switch ArticleStatus(s) {
	case ArticleStatusDraft, ArticleStatusPublished, ArticleStatusArchived:
		return true
	}
	return false
}

// Metadata is an opaque key-value mapping stored as JSONB. It scans from
// and serializes to the database as a JSON document.
type Metadata map[string]any

// Value implements driver.Valuer, marshaling the map to JSON.
// A nil map is stored as an empty object, never as SQL NULL.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner, unmarshaling a JSONB column into the map.
func (m *Metadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("metadata: cannot scan %T", src)
}

// Article represents a piece of content with markdown source and a
// rendered HTML version. An article always has exactly one author and
// at most one category.
type Article struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Excerpt     *string       `json:"excerpt,omitempty"`
	ContentMD   *string       `json:"content_md,omitempty"`
	ContentHTML *string       `json:"content_html,omitempty"`
	Status      ArticleStatus `json:"status"`
	AuthorID    uuid.UUID     `json:"author_id"`
	CategoryID  *uuid.UUID    `json:"category_id,omitempty"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	Meta        Metadata      `json:"meta"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Virtual field populated by store methods.
	Tags []Tag `json:"tags,omitempty"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}
