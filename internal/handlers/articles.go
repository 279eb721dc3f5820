// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"maplecms/internal/cache"
	"maplecms/internal/markdown"
	"maplecms/internal/middleware"
	"maplecms/internal/models"
	"maplecms/internal/store"
)

// Articles groups the article CRUD handlers. Writes go through the store's
// transactional slug resolution; reads of published articles by slug go
// through the cache when one is configured.
type Articles struct {
	articles *store.ArticleStore
	cache    *cache.ArticleCache // nil when Valkey is not configured
}

// NewArticles creates the articles handler group.
func NewArticles(articles *store.ArticleStore, articleCache *cache.ArticleCache) *Articles {
	return &Articles{articles: articles, cache: articleCache}
}

// canEdit reports whether the caller may modify the given article.
// Editors and admins may modify any article; authors only their own.
func canEdit(ident *middleware.Identity, a *models.Article) bool {
	if ident == nil {
		return false
	}
	if ident.Role == models.RoleAdmin || ident.Role == models.RoleEditor {
		return true
	}
	return ident.Role == models.RoleAuthor && a.AuthorID == ident.UserID
}

// renderHTML fills in content_html from content_md when the client did not
// supply a pre-rendered version.
func renderHTML(contentMD, contentHTML *string) *string {
	if contentHTML != nil || contentMD == nil {
		return contentHTML
	}
	rendered, err := markdown.ToHTML(*contentMD)
	if err != nil {
		slog.Warn("markdown render failed", "error", err)
		return nil
	}
	return &rendered
}

// List returns articles matching the query filters. Unauthenticated
// callers and viewers only see published articles regardless of the
// requested status filter.
func (h *Articles) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	filter := store.ArticleFilter{Skip: skip, Limit: limit}

	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		if !models.ValidArticleStatus(s) {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		status := models.ArticleStatus(s)
		filter.Status = &status
	}
	if s := q.Get("author_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid author_id")
			return
		}
		filter.AuthorID = &id
	}
	if s := q.Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = &id
	}

	ident := identityFrom(r)
	if ident == nil || ident.Role == models.RoleViewer {
		published := models.ArticleStatusPublished
		filter.Status = &published
	}

	items, err := h.articles.List(filter)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Article{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns a single article by id with its tags. Drafts and archived
// articles are only visible to staff and their author.
func (h *Articles) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	a, err := h.articles.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if a == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}
	if !a.IsPublished() && !canEdit(identityFrom(r), a) {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// GetBySlug returns a published article by its slug. This is the public
// read path, served from the cache when possible.
func (h *Articles) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slugStr := chi.URLParam(r, "slug")

	if cached := h.cache.Get(r.Context(), slugStr); cached != nil {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	a, err := h.articles.FindBySlug(slugStr)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if a == nil || !a.IsPublished() {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	h.cache.Set(r.Context(), a)
	respondJSON(w, http.StatusOK, a)
}

// articleRequest is the write payload for create and update. On update,
// absent fields leave the stored values untouched.
type articleRequest struct {
	Title       *string         `json:"title"`
	Excerpt     *string         `json:"excerpt"`
	ContentMD   *string         `json:"content_md"`
	ContentHTML *string         `json:"content_html"`
	Status      *string         `json:"status"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Meta        models.Metadata `json:"meta"`
	TagIDs      *[]uuid.UUID    `json:"tag_ids"`
}

// Create inserts a new article authored by the caller. The slug is always
// derived from the title server-side; a duplicate title gets a numeric
// suffix rather than an error.
func (h *Articles) Create(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	if ident.Role == models.RoleViewer {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == nil {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if msg := validateArticle(*req.Title, req.Excerpt, req.ContentMD); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	status := models.ArticleStatusDraft
	if req.Status != nil {
		if !models.ValidArticleStatus(*req.Status) {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		status = models.ArticleStatus(*req.Status)
	}

	draft := store.ArticleDraft{
		Title:       *req.Title,
		Excerpt:     req.Excerpt,
		ContentMD:   req.ContentMD,
		ContentHTML: renderHTML(req.ContentMD, req.ContentHTML),
		Status:      status,
		CategoryID:  req.CategoryID,
		Meta:        req.Meta,
	}
	if req.TagIDs != nil {
		draft.TagIDs = *req.TagIDs
	}

	a, err := h.articles.Create(draft, ident.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.cache.Set(r.Context(), a)
	slog.Info("article created", "article_id", a.ID, "slug", a.Slug, "author_id", ident.UserID)
	respondJSON(w, http.StatusCreated, a)
}

// Update applies a partial change to an article. Authors may only update
// their own articles. A title change may change the slug; both the old
// and new slugs are evicted from the cache.
func (h *Articles) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	existing, err := h.articles.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}
	if !canEdit(identityFrom(r), existing) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil {
		if msg := validateArticle(*req.Title, req.Excerpt, req.ContentMD); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
	}

	change := store.ArticleChange{
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		ContentMD:   req.ContentMD,
		ContentHTML: renderHTML(req.ContentMD, req.ContentHTML),
		CategoryID:  req.CategoryID,
		Meta:        req.Meta,
		TagIDs:      req.TagIDs,
	}
	if req.Status != nil {
		if !models.ValidArticleStatus(*req.Status) {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		status := models.ArticleStatus(*req.Status)
		change.Status = &status
	}

	a, err := h.articles.Update(id, change)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), existing.Slug, a.Slug)
	h.cache.Set(r.Context(), a)
	slog.Info("article updated", "article_id", a.ID, "slug", a.Slug)
	respondJSON(w, http.StatusOK, a)
}

// Delete removes an article. Authors may only delete their own articles.
func (h *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	existing, err := h.articles.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}
	if !canEdit(identityFrom(r), existing) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.articles.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}

	h.cache.Invalidate(r.Context(), existing.Slug)
	slog.Info("article deleted", "article_id", id, "slug", existing.Slug)
	respondJSON(w, http.StatusNoContent, nil)
}
