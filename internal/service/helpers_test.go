package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/and161185/policydesk/internal/apiclient"
	"github.com/and161185/policydesk/internal/session"
)

type call struct {
	Method, Path, Auth string
	Body               string
}

type route struct {
	status int
	body   string
}

// fakeBackend answers "METHOD /path" with canned replies and records every call.
type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]route
	calls  []call
	srv    *httptest.Server
}

func newBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{routes: map[string]route{}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: string(body)})
		rt, ok := b.routes[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"no route"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rt.status)
		_, _ = io.WriteString(w, rt.body)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) on(method, path string, status int, body string) {
	b.mu.Lock()
	b.routes[method+" "+path] = route{status: status, body: body}
	b.mu.Unlock()
}

func (b *fakeBackend) last() call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *fakeBackend) client(t *testing.T, st session.Reader) *apiclient.Client {
	return apiclient.New(b.srv.URL+"/api", st, apiclient.WithLogger(zaptest.NewLogger(t)))
}
