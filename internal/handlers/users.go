// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"maplecms/internal/models"
	"maplecms/internal/store"
)

// Users groups the user management handlers. The /me endpoints serve the
// authenticated caller; the rest are admin-only, enforced by the router.
type Users struct {
	users  *store.UserStore
	tokens *store.RefreshTokenStore
}

// NewUsers creates the users handler group.
func NewUsers(users *store.UserStore, tokens *store.RefreshTokenStore) *Users {
	return &Users{users: users, tokens: tokens}
}

// Me returns the authenticated caller's own profile.
func (h *Users) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.users.FindByID(userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if u == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// UpdateMe lets the caller change their own username, email, or password.
// Role and active status are not self-serviceable. A password change
// revokes every outstanding refresh token.
func (h *Users) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.FindByID(userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if u == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	if req.Username != nil {
		if msg := validateUsername(*req.Username); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		u.Username = *req.Username
	}
	if req.Email != nil {
		if msg := validateEmail(*req.Email); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		u.Email = *req.Email
	}

	if req.Username != nil || req.Email != nil {
		if err := h.users.Update(u); err != nil {
			respondStoreError(w, err)
			return
		}
	}
	if req.Password != nil {
		if msg := validatePassword(*req.Password); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		if err := h.users.SetPassword(userID, *req.Password); err != nil {
			respondStoreError(w, err)
			return
		}
		if err := h.tokens.RevokeAllForUser(userID); err != nil {
			respondStoreError(w, err)
			return
		}
		slog.Info("password changed, sessions revoked", "user_id", userID)
	}

	updated, err := h.users.FindByID(userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// List returns all users. Admin only.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	items, err := h.users.List(skip, limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.User{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns a single user by id. Admin only.
func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	u, err := h.users.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if u == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// Update changes a user's profile, role, or active status. Admin only.
// Admins cannot change their own role, so the system always keeps at
// least one admin. Deactivating a user revokes their refresh tokens.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if u == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	if req.Username != nil {
		if msg := validateUsername(*req.Username); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		u.Username = *req.Username
	}
	if req.Email != nil {
		if msg := validateEmail(*req.Email); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		u.Email = *req.Email
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			respondError(w, http.StatusBadRequest, "invalid role")
			return
		}
		if callerID, _ := currentUserID(r); callerID == id && models.Role(*req.Role) != u.Role {
			respondError(w, http.StatusForbidden, "cannot change your own role")
			return
		}
		u.Role = models.Role(*req.Role)
	}
	deactivated := false
	if req.IsActive != nil {
		deactivated = u.IsActive && !*req.IsActive
		u.IsActive = *req.IsActive
	}

	if err := h.users.Update(u); err != nil {
		respondStoreError(w, err)
		return
	}
	if deactivated {
		if err := h.tokens.RevokeAllForUser(id); err != nil {
			respondStoreError(w, err)
			return
		}
	}

	slog.Info("user updated", "user_id", id)
	respondJSON(w, http.StatusOK, u)
}

// Delete removes a user. Admin only. A user who still owns articles
// cannot be deleted; their articles must be reassigned or removed first.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if callerID, _ := currentUserID(r); callerID == id {
		respondError(w, http.StatusForbidden, "cannot delete your own account")
		return
	}
	if err := h.users.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	slog.Info("user deleted", "user_id", id)
	respondJSON(w, http.StatusNoContent, nil)
}
