// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"maplecms/internal/models"
)

func TestUsersMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.testUser(t, "users-me@handler-test.local", models.RoleAuthor)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/v1/users/me", nil)
	env.UsersH.Me(rec, asUser(r, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("me: got %d", rec.Code)
	}

	var got models.User
	decodeBody(t, rec, &got)
	if got.ID != user.ID {
		t.Errorf("id: got %s, want %s", got.ID, user.ID)
	}
	// The password hash never leaves the server.
	if rec.Body.String() == "" || got.PasswordHash != "" {
		t.Error("password hash must not be serialized")
	}
}

func TestUsersUpdateMePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.testUser(t, "users-pw@handler-test.local", models.RoleAuthor)

	// Log in to obtain a refresh token, then change the password.
	rec := httptest.NewRecorder()
	env.AuthH.Login(rec, jsonRequest(t, "POST", "/api/v1/auth/login", map[string]string{
		"email":    user.Email,
		"password": "testpass123",
	}))
	var pair tokenResponse
	decodeBody(t, rec, &pair)

	rec = httptest.NewRecorder()
	r := jsonRequest(t, "PATCH", "/api/v1/users/me", map[string]string{"password": "brand-new-pass"})
	env.UsersH.UpdateMe(rec, asUser(r, user))
	if rec.Code != http.StatusOK {
		t.Fatalf("update me: got %d, body %s", rec.Code, rec.Body.String())
	}

	// The password change revoked the session.
	rec = httptest.NewRecorder()
	env.AuthH.Refresh(rec, jsonRequest(t, "POST", "/api/v1/auth/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after password change: got %d, want 401", rec.Code)
	}

	// The new password works.
	rec = httptest.NewRecorder()
	env.AuthH.Login(rec, jsonRequest(t, "POST", "/api/v1/auth/login", map[string]string{
		"email":    user.Email,
		"password": "brand-new-pass",
	}))
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password: got %d", rec.Code)
	}
}

func TestUsersAdminUpdateRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testUser(t, "users-admin@handler-test.local", models.RoleAdmin)
	target := env.testUser(t, "users-target@handler-test.local", models.RoleAuthor)

	rec := httptest.NewRecorder()
	r := jsonRequest(t, "PATCH", "/api/v1/users/"+target.ID.String(), map[string]any{"role": "editor"})
	env.UsersH.Update(rec, asUser(withChiURLParam(r, "id", target.ID.String()), admin))
	if rec.Code != http.StatusOK {
		t.Fatalf("promote: got %d, body %s", rec.Code, rec.Body.String())
	}

	got, _ := env.Users.FindByID(target.ID)
	if got.Role != models.RoleEditor {
		t.Errorf("role: got %q, want editor", got.Role)
	}

	// Unknown roles are rejected.
	rec = httptest.NewRecorder()
	r = jsonRequest(t, "PATCH", "/api/v1/users/"+target.ID.String(), map[string]any{"role": "superuser"})
	env.UsersH.Update(rec, asUser(withChiURLParam(r, "id", target.ID.String()), admin))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad role: got %d, want 400", rec.Code)
	}
}

func TestUsersAdminCannotChangeOwnRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testUser(t, "users-selfrole@handler-test.local", models.RoleAdmin)

	rec := httptest.NewRecorder()
	r := jsonRequest(t, "PATCH", "/api/v1/users/"+admin.ID.String(), map[string]any{"role": "viewer"})
	env.UsersH.Update(rec, asUser(withChiURLParam(r, "id", admin.ID.String()), admin))
	if rec.Code != http.StatusForbidden {
		t.Errorf("self role change: got %d, want 403", rec.Code)
	}

	got, _ := env.Users.FindByID(admin.ID)
	if got.Role != models.RoleAdmin {
		t.Errorf("role changed to %q", got.Role)
	}
}

func TestUsersDeactivateRevokesTokens(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testUser(t, "users-deact-admin@handler-test.local", models.RoleAdmin)
	target := env.testUser(t, "users-deact@handler-test.local", models.RoleAuthor)

	rec := httptest.NewRecorder()
	env.AuthH.Login(rec, jsonRequest(t, "POST", "/api/v1/auth/login", map[string]string{
		"email":    target.Email,
		"password": "testpass123",
	}))
	var pair tokenResponse
	decodeBody(t, rec, &pair)

	active := false
	rec = httptest.NewRecorder()
	r := jsonRequest(t, "PATCH", "/api/v1/users/"+target.ID.String(), map[string]any{"is_active": active})
	env.UsersH.Update(rec, asUser(withChiURLParam(r, "id", target.ID.String()), admin))
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.AuthH.Refresh(rec, jsonRequest(t, "POST", "/api/v1/auth/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after deactivation: got %d, want 401", rec.Code)
	}
}

func TestUsersAdminCannotDeleteSelf(t *testing.T) {
	env := newTestEnv(t)
	admin := env.testUser(t, "users-selfdel@handler-test.local", models.RoleAdmin)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("DELETE", "/api/v1/users/"+admin.ID.String(), nil)
	env.UsersH.Delete(rec, asUser(withChiURLParam(r, "id", admin.ID.String()), admin))
	if rec.Code != http.StatusForbidden {
		t.Errorf("self delete: got %d, want 403", rec.Code)
	}
	if found, _ := env.Users.FindByID(admin.ID); found == nil {
		t.Error("admin must survive self-delete attempt")
	}
}
