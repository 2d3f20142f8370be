package handlers

import (
	"context"
	"net/http"

	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/services/accounts"
)

type contextKey string

const userContextKey contextKey = "user"

// currentUser returns the authenticated user attached to the request, or nil.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// sessionToken extracts the session cookie value, empty when absent.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(accounts.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// withUser resolves the session cookie and attaches the user to the request
// context. Requests without a valid session pass through anonymously.
func withUser(svc *accounts.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := sessionToken(r); token != "" {
				if user, err := svc.UserFromToken(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects anonymous requests with a 401 pointing at the login
// endpoint.
func requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "authentication required",
				"login": "/api/auth/login",
			})
			return
		}
		next(w, r)
	}
}

// requireStaff rejects non-staff users. Anonymous callers get 401, logged-in
// non-staff get 403 with a pointer back home.
func requireStaff(next http.HandlerFunc) http.HandlerFunc {
	return requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "permission denied",
				"home":  "/",
			})
			return
		}
		next(w, r)
	})
}
