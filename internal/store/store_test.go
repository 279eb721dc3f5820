// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"maplecms/internal/database"
	"maplecms/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with development defaults.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "maplecms")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "maplecms")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testAuthor creates a throwaway author for article tests. The user is
// removed in cleanup after their articles are gone.
func testAuthor(t *testing.T, db *sql.DB, email string) uuid.UUID {
	t.Helper()
	u, err := NewUserStore(db).Create("author-"+uuid.NewString()[:8], email, "testpass123", models.RoleAuthor)
	if err != nil {
		t.Fatalf("create test author: %v", err)
	}
	return u.ID
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanArticles removes test articles by slug prefix. Call in t.Cleanup().
func cleanArticles(t *testing.T, db *sql.DB, slugPrefixes ...string) {
	t.Helper()
	for _, p := range slugPrefixes {
		db.Exec("DELETE FROM articles WHERE slug LIKE $1 || '%'", p)
	}
}

// cleanCategories removes test categories by slug prefix. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugPrefixes ...string) {
	t.Helper()
	for _, p := range slugPrefixes {
		db.Exec("DELETE FROM categories WHERE slug LIKE $1 || '%'", p)
	}
}

// cleanTags removes test tags by slug prefix. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, slugPrefixes ...string) {
	t.Helper()
	for _, p := range slugPrefixes {
		db.Exec("DELETE FROM tags WHERE slug LIKE $1 || '%'", p)
	}
}

// cleanMedia removes test media rows by storage key. Call in t.Cleanup().
func cleanMedia(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	for _, key := range keys {
		db.Exec("DELETE FROM media WHERE storage_key = $1", key)
	}
}
