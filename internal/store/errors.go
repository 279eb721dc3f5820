// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by store operations. Callers match them with
// errors.Is; handlers translate them into HTTP status codes.
var (
	// ErrNotFound means a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a unique constraint was violated: duplicate slug
	// after resolution is exhausted, or duplicate username, email, or name.
	ErrConflict = errors.New("already exists")

	// ErrReferentialViolation means a delete was rejected because other
	// rows still reference the entity under a RESTRICT policy.
	ErrReferentialViolation = errors.New("still referenced")
)

// Postgres error codes the stores care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation. If constraint is non-empty, only that named constraint matches.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isForeignKeyViolation reports whether err is a postgres foreign-key
// violation. On insert/update this means a referenced parent is missing;
// on delete it means the row is still referenced.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
