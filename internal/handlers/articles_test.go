// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"maplecms/internal/models"
)

func TestArticlesCreate(t *testing.T) {
	env := newTestEnv(t)
	author := env.testUser(t, "art-create@handler-test.local", models.RoleAuthor)

	rec := httptest.NewRecorder()
	r := jsonRequest(t, "POST", "/api/v1/articles", map[string]any{
		"title":      "Handler Test First Post",
		"content_md": "# Heading\n\nSome **bold** text.",
	})
	env.ArticlesH.Create(rec, asUser(r, author))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}

	var a models.Article
	decodeBody(t, rec, &a)
	if a.Slug != "handler-test-first-post" {
		t.Errorf("slug: got %q", a.Slug)
	}
	if a.AuthorID != author.ID {
		t.Errorf("author: got %s, want %s", a.AuthorID, author.ID)
	}
	if a.Status != models.ArticleStatusDraft {
		t.Errorf("status: got %q, want draft", a.Status)
	}
	// HTML is derived from the markdown when the client sends none.
	if a.ContentHTML == nil || !strings.Contains(*a.ContentHTML, "<strong>bold</strong>") {
		t.Errorf("content_html: got %v", a.ContentHTML)
	}
}

func TestArticlesCreateViewerForbidden(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.testUser(t, "art-viewer@handler-test.local", models.RoleViewer)

	rec := httptest.NewRecorder()
	r := jsonRequest(t, "POST", "/api/v1/articles", map[string]any{"title": "Nope"})
	env.ArticlesH.Create(rec, asUser(r, viewer))
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer create: got %d, want 403", rec.Code)
	}
}

func TestArticlesOwnershipEnforcement(t *testing.T) {
	env := newTestEnv(t)
	owner := env.testUser(t, "art-owner@handler-test.local", models.RoleAuthor)
	other := env.testUser(t, "art-other@handler-test.local", models.RoleAuthor)
	editor := env.testUser(t, "art-editor@handler-test.local", models.RoleEditor)

	rec := httptest.NewRecorder()
	r := jsonRequest(t, "POST", "/api/v1/articles", map[string]any{"title": "Handler Test Owned"})
	env.ArticlesH.Create(rec, asUser(r, owner))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d", rec.Code)
	}
	var a models.Article
	decodeBody(t, rec, &a)

	// Another author cannot touch it.
	rec = httptest.NewRecorder()
	r = jsonRequest(t, "PATCH", "/api/v1/articles/"+a.ID.String(), map[string]any{"title": "Hijacked"})
	env.ArticlesH.Update(rec, asUser(withChiURLParam(r, "id", a.ID.String()), other))
	if rec.Code != http.StatusForbidden {
		t.Errorf("other author update: got %d, want 403", rec.Code)
	}

	// An editor can.
	rec = httptest.NewRecorder()
	r = jsonRequest(t, "PATCH", "/api/v1/articles/"+a.ID.String(), map[string]any{"title": "Handler Test Edited"})
	env.ArticlesH.Update(rec, asUser(withChiURLParam(r, "id", a.ID.String()), editor))
	if rec.Code != http.StatusOK {
		t.Errorf("editor update: got %d, body %s", rec.Code, rec.Body.String())
	}

	// The owner can delete; another author cannot.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest("DELETE", "/api/v1/articles/"+a.ID.String(), nil)
	env.ArticlesH.Delete(rec, asUser(withChiURLParam(r, "id", a.ID.String()), other))
	if rec.Code != http.StatusForbidden {
		t.Errorf("other author delete: got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	r = httptest.NewRequest("DELETE", "/api/v1/articles/"+a.ID.String(), nil)
	env.ArticlesH.Delete(rec, asUser(withChiURLParam(r, "id", a.ID.String()), owner))
	if rec.Code != http.StatusNoContent {
		t.Errorf("owner delete: got %d, want 204", rec.Code)
	}
}

func TestArticlesDraftHiddenFromPublic(t *testing.T) {
	env := newTestEnv(t)
	author := env.testUser(t, "art-hidden@handler-test.local", models.RoleAuthor)

	rec := httptest.NewRecorder()
	r := jsonRequest(t, "POST", "/api/v1/articles", map[string]any{"title": "Handler Test Hidden Draft"})
	env.ArticlesH.Create(rec, asUser(r, author))
	var a models.Article
	decodeBody(t, rec, &a)

	// Unauthenticated fetch by id returns 404, not 403 — existence of
	// drafts is not leaked.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/v1/articles/"+a.ID.String(), nil)
	env.ArticlesH.Get(rec, withChiURLParam(r, "id", a.ID.String()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("anonymous draft get: got %d, want 404", rec.Code)
	}

	// The author still sees it.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/v1/articles/"+a.ID.String(), nil)
	env.ArticlesH.Get(rec, asUser(withChiURLParam(r, "id", a.ID.String()), author))
	if rec.Code != http.StatusOK {
		t.Errorf("author draft get: got %d, want 200", rec.Code)
	}

	// The slug endpoint only serves published articles.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/v1/articles/slug/"+a.Slug, nil)
	env.ArticlesH.GetBySlug(rec, withChiURLParam(r, "slug", a.Slug))
	if rec.Code != http.StatusNotFound {
		t.Errorf("draft by slug: got %d, want 404", rec.Code)
	}
}

func TestArticlesGetBySlugPublished(t *testing.T) {
	env := newTestEnv(t)
	author := env.testUser(t, "art-slug@handler-test.local", models.RoleAuthor)

	rec := httptest.NewRecorder()
	r := jsonRequest(t, "POST", "/api/v1/articles", map[string]any{
		"title":  "Handler Test Public Post",
		"status": "published",
	})
	env.ArticlesH.Create(rec, asUser(r, author))
	var a models.Article
	decodeBody(t, rec, &a)
	if a.PublishedAt == nil {
		t.Fatal("published article must carry published_at")
	}

	rec = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/v1/articles/slug/"+a.Slug, nil)
	env.ArticlesH.GetBySlug(rec, withChiURLParam(r, "slug", a.Slug))
	if rec.Code != http.StatusOK {
		t.Fatalf("published by slug: got %d", rec.Code)
	}
	var got models.Article
	decodeBody(t, rec, &got)
	if got.ID != a.ID {
		t.Errorf("slug fetch: got %s, want %s", got.ID, a.ID)
	}
}

func TestArticlesListForcesPublishedForAnonymous(t *testing.T) {
	env := newTestEnv(t)
	author := env.testUser(t, "art-list@handler-test.local", models.RoleAuthor)

	for _, payload := range []map[string]any{
		{"title": "Handler Test List Draft"},
		{"title": "Handler Test List Published", "status": "published"},
	} {
		rec := httptest.NewRecorder()
		env.ArticlesH.Create(rec, asUser(jsonRequest(t, "POST", "/api/v1/articles", payload), author))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create: got %d", rec.Code)
		}
	}

	// Anonymous callers asking for drafts still get only published items.
	rec := httptest.NewRecorder()
	env.ArticlesH.List(rec, httptest.NewRequest("GET", "/api/v1/articles?status=draft&author_id="+author.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var items []models.Article
	decodeBody(t, rec, &items)
	for _, item := range items {
		if item.Status != models.ArticleStatusPublished {
			t.Errorf("anonymous list leaked %q article %s", item.Status, item.Slug)
		}
	}

	// The author sees both.
	rec = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/v1/articles?author_id="+author.ID.String(), nil)
	env.ArticlesH.List(rec, asUser(r, author))
	decodeBody(t, rec, &items)
	if len(items) != 2 {
		t.Errorf("author list: got %d items, want 2", len(items))
	}
}

func TestArticlesValidation(t *testing.T) {
	env := newTestEnv(t)
	author := env.testUser(t, "art-valid@handler-test.local", models.RoleAuthor)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing title", map[string]any{"content_md": "body"}},
		{"blank title", map[string]any{"title": "   "}},
		{"bad status", map[string]any{"title": "ok", "status": "launched"}},
		{"long title", map[string]any{"title": strings.Repeat("x", 200)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.ArticlesH.Create(rec, asUser(jsonRequest(t, "POST", "/api/v1/articles", tc.payload), author))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rec.Code)
			}
		})
	}
}
