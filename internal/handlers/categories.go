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

// Categories groups the category CRUD handlers. Reads are public; writes
// are restricted to editors and admins by the router.
type Categories struct {
	categories *store.CategoryStore
}

// NewCategories creates the categories handler group.
func NewCategories(categories *store.CategoryStore) *Categories {
	return &Categories{categories: categories}
}

// List returns all categories with their article counts.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	items, err := h.categories.List(skip, limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns a single category by id.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	c, err := h.categories.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// GetBySlug returns a single category by slug.
func (h *Categories) GetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// categoryRequest is the write payload for create and update.
type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func validateCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "name is required"
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "name is too long (max 64 characters)"
	}
	return ""
}

// Create inserts a new category. The slug is derived from the name; a
// duplicate name gets a numeric suffix.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if msg := validateCategoryName(*req.Name); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > maxDescriptionLen {
		respondError(w, http.StatusBadRequest, "description is too long (max 1,000 characters)")
		return
	}

	c, err := h.categories.Create(*req.Name, req.Description)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("category created", "category_id", c.ID, "slug", c.Slug)
	respondJSON(w, http.StatusCreated, c)
}

// Update renames a category and/or changes its description.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		if msg := validateCategoryName(*req.Name); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > maxDescriptionLen {
		respondError(w, http.StatusBadRequest, "description is too long (max 1,000 characters)")
		return
	}

	c, err := h.categories.Update(id, req.Name, req.Description)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("category updated", "category_id", c.ID, "slug", c.Slug)
	respondJSON(w, http.StatusOK, c)
}

// Delete removes a category. Articles in it are detached, never deleted.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := h.categories.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	slog.Info("category deleted", "category_id", id)
	respondJSON(w, http.StatusNoContent, nil)
}
