package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

// Headers carrying the session credentials on guarded routes.
const (
	HeaderUsername  = "X-Auth-Username"
	HeaderSessionID = "X-Session-ID"
)

type contextKey string

const usernameKey contextKey = "username"

// SessionValidator reports whether the presented session id is the live one
// for the user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, username, sessionID string) bool
}

// SessionGuard rejects requests whose session headers do not match a live
// session. On success the authenticated username is placed on the request
// context for handlers to read via UsernameFromContext.
func SessionGuard(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := r.Header.Get(HeaderUsername)
			sessionID := r.Header.Get(HeaderSessionID)

			if !validator.ValidateSession(r.Context(), username, sessionID) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or expired session"})
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext returns the username set by SessionGuard, or "" if the
// request did not pass through the guard.
func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}
