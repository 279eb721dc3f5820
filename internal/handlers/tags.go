// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"maplecms/internal/models"
	"maplecms/internal/store"
)

// Tags groups the tag CRUD handlers. Reads are public; writes are
// restricted to editors and admins by the router.
type Tags struct {
	tags *store.TagStore
}

// NewTags creates the tags handler group.
func NewTags(tags *store.TagStore) *Tags {
	return &Tags{tags: tags}
}

// List returns all tags ordered by name.
func (h *Tags) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	items, err := h.tags.List(skip, limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Tag{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns a single tag by id.
func (h *Tags) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tag id")
		return
	}
	t, err := h.tags.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if t == nil {
		respondError(w, http.StatusNotFound, "tag not found")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// GetBySlug returns a single tag by slug.
func (h *Tags) GetBySlug(w http.ResponseWriter, r *http.Request) {
	t, err := h.tags.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if t == nil {
		respondError(w, http.StatusNotFound, "tag not found")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// tagRequest is the write payload for create and update.
type tagRequest struct {
	Name string `json:"name"`
}

func validateTagName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name is required"
	}
	if utf8.RuneCountInString(name) > maxTagNameLen {
		return "name is too long (max 48 characters)"
	}
	return ""
}

// Create inserts a new tag. The slug is derived from the name; a
// duplicate name gets a numeric suffix.
func (h *Tags) Create(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateTagName(req.Name); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := h.tags.Create(req.Name)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("tag created", "tag_id", t.ID, "slug", t.Slug)
	respondJSON(w, http.StatusCreated, t)
}

// Update renames a tag.
func (h *Tags) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateTagName(req.Name); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := h.tags.Update(id, req.Name)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("tag updated", "tag_id", t.ID, "slug", t.Slug)
	respondJSON(w, http.StatusOK, t)
}

// Delete removes a tag and its article associations.
func (h *Tags) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tag id")
		return
	}
	if err := h.tags.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	slog.Info("tag deleted", "tag_id", id)
	respondJSON(w, http.StatusNoContent, nil)
}
