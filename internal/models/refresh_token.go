// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a persisted refresh token. Tokens are rotated: each
// successful refresh revokes the presented token and issues a new row.
// Rows are deleted when their user is deleted.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"-"` // Opaque JWT; never listed back to clients
	UserID    uuid.UUID `json:"user_id"`
	IsRevoked bool      `json:"is_revoked"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable returns true if the token has not been revoked and has not expired.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}
