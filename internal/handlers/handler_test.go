// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable;
// the article cache is left nil, which the handlers treat as a no-op.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"maplecms/internal/auth"
	"maplecms/internal/database"
	"maplecms/internal/middleware"
	"maplecms/internal/models"
	"maplecms/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "maplecms")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "maplecms")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Users    *store.UserStore
	Articles *store.ArticleStore
	Tokens   *store.RefreshTokenStore
	JWT      *auth.Manager

	AuthH     *Auth
	ArticlesH *Articles
	UsersH    *Users
}

// newTestEnv creates a complete test environment with handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)

	jwt, err := auth.NewManager("handler-test-secret", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("auth.NewManager: %v", err)
	}

	users := store.NewUserStore(db)
	articles := store.NewArticleStore(db)
	tokens := store.NewRefreshTokenStore(db)

	return &testEnv{
		DB:        db,
		Users:     users,
		Articles:  articles,
		Tokens:    tokens,
		JWT:       jwt,
		AuthH:     NewAuth(users, tokens, jwt),
		ArticlesH: NewArticles(articles, nil),
		UsersH:    NewUsers(users, tokens),
	}
}

// testUser creates a user with the given role, registering cleanup.
func (env *testEnv) testUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u, err := env.Users.Create("u-"+uuid.NewString()[:8], email, "testpass123", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM articles WHERE author_id = $1", u.ID)
		env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(buf)
	}
	r := httptest.NewRequest(method, target, body)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// asUser stamps the authenticated identity on a request, the way the
// auth middleware would after verifying a token.
func asUser(r *http.Request, u *models.User) *http.Request {
	ident := &middleware.Identity{UserID: u.ID, Role: u.Role}
	return r.WithContext(context.WithValue(r.Context(), middleware.IdentityKey, ident))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody unmarshals a recorded JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
