// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"maplecms/internal/models"
)

const mediaColumns = `id, filename, original_filename, mime_type, size_bytes,
	       storage_key, url, uploader_id, created_at, updated_at`

// MediaStore manages media metadata rows. The file bytes themselves live
// in object storage; this table only records what was uploaded and where.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore returns a new MediaStore.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.OriginalFilename, &m.MimeType, &m.SizeBytes,
		&m.StorageKey, &m.URL, &m.UploaderID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a media metadata row for an uploaded object.
func (s *MediaStore) Create(m *models.Media) (*models.Media, error) {
	row := s.db.QueryRow(`
		INSERT INTO media (filename, original_filename, mime_type, size_bytes,
		                   storage_key, url, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+mediaColumns,
		m.Filename, m.OriginalFilename, m.MimeType, m.SizeBytes,
		m.StorageKey, m.URL, m.UploaderID,
	)
	created, err := scanMedia(row)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("create media: uploader: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return created, nil
}

// FindByID retrieves a media row by ID. Returns nil if not found.
func (s *MediaStore) FindByID(id uuid.UUID) (*models.Media, error) {
	row := s.db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE id = $1`, id)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}

// List returns media rows ordered by upload date descending, paginated by
// skip/limit.
func (s *MediaStore) List(skip, limit int) ([]models.Media, error) {
	rows, err := s.db.Query(`
		SELECT `+mediaColumns+` FROM media
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// Delete removes a media row by ID. Deleting the stored object is the
// caller's responsibility, after the row is gone.
func (s *MediaStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete media %s: %w", id, ErrNotFound)
	}
	return nil
}
