// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"

	"techtrove/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the admin session data.
	SessionKey contextKey = "session"
)

// LoadSession resolves the bearer token from the Authorization header and
// stores the matching session in the request context. Downstream handlers
// can access it via SessionFromCtx(). This middleware does NOT enforce
// authentication, it just loads the session if one exists.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := session.TokenFromRequest(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			data, err := store.Get(r.Context(), tok)
			if err != nil {
				// Treat a Valkey error as unauthenticated rather than
				// failing the whole request.
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				ctx := context.WithValue(r.Context(), SessionKey, data)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests without an authenticated session.
// Must be applied after LoadSession in the middleware chain. Used on the
// 2FA setup and verify endpoints, which run before 2FA completes.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests unless the session exists and has completed
// two-factor verification. Guards the management endpoints.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil {
			unauthorized(w)
			return
		}
		if !sess.TwoFADone {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"Two-factor verification required"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (caller is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"Authentication required"}`))
}
