// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"maplecms/internal/auth"
	"maplecms/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// IdentityKey is the context key for the authenticated identity.
	IdentityKey contextKey = "identity"
)

// Identity is the authenticated caller, extracted from a verified access
// token. The role is the one embedded at token issue time.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

// Authenticate verifies the Authorization bearer token, if present, and
// stores the caller's identity in the request context. A request with no
// Authorization header passes through unauthenticated; a request with a
// bad token is rejected immediately.
func Authenticate(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := tokens.Verify(tokenStr, auth.TypeAccess)
			if err != nil {
				unauthorized(w)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				unauthorized(w)
				return
			}

			ident := &Identity{UserID: userID, Role: models.Role(claims.Role)}
			ctx := context.WithValue(r.Context(), IdentityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401.
// Must be applied after Authenticate in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromCtx(r.Context()) == nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns 403 unless the authenticated caller holds one of the
// given roles. Must be applied after RequireAuth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := IdentityFromCtx(r.Context())
			if ident == nil {
				unauthorized(w)
				return
			}
			for _, role := range roles {
				if ident.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			forbidden(w)
		})
	}
}

// IdentityFromCtx extracts the authenticated identity from the request
// context. Returns nil if the request carried no valid token.
func IdentityFromCtx(ctx context.Context) *Identity {
	ident, _ := ctx.Value(IdentityKey).(*Identity)
	return ident
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"forbidden"}`))
}
