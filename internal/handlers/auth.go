// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"maplecms/internal/auth"
	"maplecms/internal/middleware"
	"maplecms/internal/models"
	"maplecms/internal/store"
)

// identityFrom returns the authenticated caller, or nil.
func identityFrom(r *http.Request) *middleware.Identity {
	return middleware.IdentityFromCtx(r.Context())
}

// Auth groups the authentication handlers: register, login, token refresh
// and logout. Refresh tokens are persisted so they can be rotated and
// revoked; access tokens are verified statelessly.
type Auth struct {
	users  *store.UserStore
	tokens *store.RefreshTokenStore
	jwt    *auth.Manager
}

// NewAuth creates the auth handler group.
func NewAuth(users *store.UserStore, tokens *store.RefreshTokenStore, jwt *auth.Manager) *Auth {
	return &Auth{users: users, tokens: tokens, jwt: jwt}
}

// tokenResponse is the payload returned by login and refresh.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds until the access token expires
}

// issuePair creates an access/refresh pair for the user and persists the
// refresh token for later rotation or revocation.
func (h *Auth) issuePair(user *models.User) (*tokenResponse, error) {
	access, err := h.jwt.IssueAccess(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, expiresAt, err := h.jwt.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	if _, err := h.tokens.Create(refresh, user.ID, expiresAt); err != nil {
		return nil, err
	}
	return &tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(h.jwt.AccessTTL() / time.Second),
	}, nil
}

// Register creates a new account. Self-registered users always get the
// author role; only admins can assign other roles, through the users API.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateUsername(req.Username); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateEmail(req.Email); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.users.Create(req.Username, req.Email, req.Password, models.RoleAuthor)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	respondJSON(w, http.StatusCreated, user)
}

// Login verifies email and password and returns a fresh token pair.
// Invalid credentials and unknown accounts get the same answer.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.FindByEmail(req.Email)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if user == nil || !h.users.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.IsActive {
		respondError(w, http.StatusForbidden, "account is disabled")
		return
	}

	pair, err := h.issuePair(user)
	if err != nil {
		slog.Error("issue token pair failed", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	respondJSON(w, http.StatusOK, pair)
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued. A revoked, expired, or unknown token is rejected,
// so a stolen token works at most once.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.jwt.Verify(req.RefreshToken, auth.TypeRefresh)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	stored, err := h.tokens.FindByToken(req.RefreshToken)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if stored == nil || stored.UserID != userID || !stored.Usable(time.Now()) {
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.users.FindByID(userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if user == nil || !user.IsActive {
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	if err := h.tokens.Revoke(req.RefreshToken); err != nil {
		respondStoreError(w, err)
		return
	}
	pair, err := h.issuePair(user)
	if err != nil {
		slog.Error("issue token pair failed", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, pair)
}

// Logout revokes the presented refresh token. Revoking an already-revoked
// or unknown token still returns 204: logout is idempotent.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.tokens.Revoke(req.RefreshToken); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// currentUserID is a convenience for handlers that only need the caller's id.
func currentUserID(r *http.Request) (uuid.UUID, bool) {
	ident := identityFrom(r)
	if ident == nil {
		return uuid.Nil, false
	}
	return ident.UserID, true
}
