// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"maplecms/internal/slug"
)

const (
	// maxSlugAttempts bounds the collision-avoidance loop. Once exhausted
	// the caller gets ErrConflict instead of spinning forever.
	maxSlugAttempts = 50

	// slugSuffixHeadroom reserves room in the column for the longest
	// collision suffix ("-50") plus a byte to spare, so a truncated base
	// never overflows after a suffix is appended.
	slugSuffixHeadroom = 4
)

// rowQuerier is satisfied by both *sql.DB and *sql.Tx, so slug resolution
// can run inside the same transaction as the insert it guards.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// resolveSlug derives a unique slug for one entity namespace (table).
// It normalizes display into a base candidate capped to the column limit,
// probes the table for an existing row with that slug, and on collision
// appends -2, -3, … first-fit. A row whose id equals excludeID does not
// count as a collision, so updates never collide with themselves.
//
// The check-then-insert sequence is not atomic against concurrent writers;
// the table's unique index is the final arbiter and callers retry the
// whole resolve-and-insert once on that specific violation.
func resolveSlug(q rowQuerier, table, display string, maxLen int, excludeID uuid.UUID) (string, error) {
	base := slug.Generate(display)
	if base == "" {
		base = "untitled"
	}
	base = slug.Truncate(base, maxLen-slugSuffixHeadroom)

	candidate := base
	for n := 2; n < 2+maxSlugAttempts; n++ {
		var id uuid.UUID
		err := q.QueryRow(`SELECT id FROM `+table+` WHERE slug = $1`, candidate).Scan(&id)
		if err == sql.ErrNoRows {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if id == excludeID {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("slug namespace exhausted for %q: %w", base, ErrConflict)
}
