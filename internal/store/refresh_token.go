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
)

const refreshTokenColumns = `id, token, user_id, is_revoked, expires_at, created_at`

// RefreshTokenStore persists refresh tokens for rotation and revocation.
// Rows are removed automatically when their user is deleted.
type RefreshTokenStore struct {
	db *sql.DB
}

// NewRefreshTokenStore returns a new RefreshTokenStore.
func NewRefreshTokenStore(db *sql.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

func scanRefreshToken(scanner interface{ Scan(...any) error }) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := scanner.Scan(&t.ID, &t.Token, &t.UserID, &t.IsRevoked, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create stores a freshly issued refresh token.
func (s *RefreshTokenStore) Create(token string, userID uuid.UUID, expiresAt time.Time) (*models.RefreshToken, error) {
	row := s.db.QueryRow(`
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING `+refreshTokenColumns,
		token, userID, expiresAt,
	)
	t, err := scanRefreshToken(row)
	if isUniqueViolation(err, "") {
		return nil, fmt.Errorf("create refresh token: %w", ErrConflict)
	}
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("create refresh token: user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}
	return t, nil
}

// FindByToken retrieves a refresh token row by its opaque value.
// Returns nil if not found.
func (s *RefreshTokenStore) FindByToken(token string) (*models.RefreshToken, error) {
	row := s.db.QueryRow(`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token = $1`, token)
	t, err := scanRefreshToken(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return t, nil
}

// Revoke marks a token unusable. Revoking an unknown token is a no-op:
// logout must be idempotent.
func (s *RefreshTokenStore) Revoke(token string) error {
	_, err := s.db.Exec(`UPDATE refresh_tokens SET is_revoked = TRUE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser invalidates every token a user holds, e.g. after a
// password change or deactivation.
func (s *RefreshTokenStore) RevokeAllForUser(userID uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE refresh_tokens SET is_revoked = TRUE WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// PurgeExpired deletes tokens past their expiry. Returns the number removed.
func (s *RefreshTokenStore) PurgeExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
