// Package web serves the browser portal: HTML pages over the same page flows the CLI uses,
// with the session kept in an encrypted cookie.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/and161185/policydesk/internal/apiclient"
	"github.com/and161185/policydesk/internal/guard"
	"github.com/and161185/policydesk/internal/limiter"
	"github.com/and161185/policydesk/internal/pages"
	"github.com/and161185/policydesk/internal/service"
)

// Options configures a Server.
type Options struct {
	APIBase    string
	HTTPClient *http.Client
	Sessions   *CookieSessions
	Logger     *zap.Logger
	// Timeout bounds each backend call made while serving a request; 0 disables it.
	Timeout time.Duration
	// Limiter throttles failed logins; nil uses an in-memory limiter.
	Limiter limiter.Limiter
}

// Server holds the shared portal dependencies. Everything session-bound is built per request.
type Server struct {
	apiBase  string
	hc       *http.Client
	sessions *CookieSessions
	log      *zap.Logger
	timeout  time.Duration
	limiter  limiter.Limiter
	views    views
	now      func() time.Time

	inflight singleflight.Group
}

// NewServer parses the templates and returns a ready Server.
func NewServer(o Options) (*Server, error) {
	if o.Sessions == nil {
		return nil, fmt.Errorf("web: cookie sessions are required")
	}
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	s := &Server{
		apiBase:  o.APIBase,
		hc:       o.HTTPClient,
		sessions: o.Sessions,
		log:      o.Logger,
		timeout:  o.Timeout,
		limiter:  o.Limiter,
		views:    v,
		now:      time.Now,
	}
	if s.apiBase == "" {
		s.apiBase = apiclient.DefaultBaseURL
	}
	if s.hc == nil {
		s.hc = &http.Client{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.limiter == nil {
		s.limiter = limiter.NewMemory(15*time.Minute, 5, 15*time.Minute)
	}
	return s, nil
}

// reqScope is everything one request needs to talk to the backend as its session.
type reqScope struct {
	sess  *RequestSession
	api   *apiclient.Client
	pages *pages.Pages
	admin bool
}

func (s *Server) scope(w http.ResponseWriter, r *http.Request) reqScope {
	rs, ok := SessionFromCtx(r.Context())
	if !ok {
		rs = s.sessions.For(w, r)
	}
	api := apiclient.New(s.apiBase, rs, apiclient.WithHTTPClient(s.hc), apiclient.WithLogger(s.log))
	cur, _ := rs.Current()
	f := service.ForSession(cur, api)
	return reqScope{
		sess:  rs,
		api:   api,
		pages: pages.New(f, rs).WithClock(s.now),
		admin: f.Admin != nil,
	}
}

func (s *Server) callCtx(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.timeout)
}

// render pops queued flashes, appends extra notices and writes the page.
func (s *Server) render(w http.ResponseWriter, sc reqScope, status int, name, title string, data any, extra ...*pages.Notice) {
	v := view{
		Title:       title,
		Authed:      guard.IsAuthenticated(sc.sess),
		Admin:       sc.admin,
		Notices:     sc.sess.Notices(),
		ClaimAmount: pages.DefaultClaimAmount,
		Data:        data,
	}
	if cur, ok := sc.sess.Current(); ok {
		v.User = cur.User
	}
	for _, n := range extra {
		if n != nil {
			v.Notices = append(v.Notices, *n)
		}
	}
	if err := s.views.render(w, status, name, v); err != nil {
		s.log.Error("render", zap.String("view", name), zap.Error(err))
		http.Error(w, "internal", http.StatusInternalServerError)
	}
}

// redirect flashes n and sends the browser to target.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sc reqScope, target string, n pages.Notice) {
	if err := sc.sess.Flash(n); err != nil {
		s.log.Warn("flash", zap.Error(err))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// collapse runs fn once per key among concurrent callers and hands every caller the same notice.
// The shared call is detached from the first caller's request so its disconnect does not fail the rest.
func (s *Server) collapse(r *http.Request, key string, fn func(ctx context.Context) pages.Notice) pages.Notice {
	v, _, shared := s.inflight.Do(key, func() (any, error) {
		ctx, cancel := s.sharedCtx(r)
		defer cancel()
		return fn(ctx), nil
	})
	if shared {
		s.log.Debug("duplicate submission collapsed", zap.String("key", key))
	}
	return v.(pages.Notice)
}

func (s *Server) sharedCtx(r *http.Request) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(r.Context())
	if s.timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, s.timeout)
}
