// Package guard gates navigation to authenticated pages on session token presence.
package guard

import (
	"net/http"

	"github.com/and161185/policydesk/internal/session"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// IsAuthenticated reports whether r holds a token. The token is not checked against the backend;
// an expired token counts until the backend answers 401.
func IsAuthenticated(r session.Reader) bool {
	if r == nil {
		return false
	}
	_, ok := r.Token()
	return ok
}

// Allow reports whether a visitor may see path. The root path always renders.
func Allow(r session.Reader, path string) bool {
	return path == "/" || IsAuthenticated(r)
}

// Middleware renders the wrapped handler for authenticated visitors and the root path,
// and redirects everyone else to LoginPath.
func Middleware(readerFor func(*http.Request) session.Reader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Allow(readerFor(r), r.URL.Path) {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
