package web

import (
	"context"
	"net/http"

	"github.com/and161185/policydesk/internal/session"
)

type ctxKey string

const sessionKey ctxKey = "policydesk.session"

// WithSession stores the request session in context.
func WithSession(ctx context.Context, s *RequestSession) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromCtx fetches the request session from context.
func SessionFromCtx(ctx context.Context) (*RequestSession, bool) {
	s, ok := ctx.Value(sessionKey).(*RequestSession)
	return s, ok && s != nil
}

// readerFor is the guard's view of the request session.
func readerFor(r *http.Request) session.Reader {
	if s, ok := SessionFromCtx(r.Context()); ok {
		return s
	}
	return nil
}

// LoadSession attaches the cookie session to every request.
func LoadSession(cs *CookieSessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := cs.For(w, r)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
