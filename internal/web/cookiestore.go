package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/pages"
	"github.com/and161185/policydesk/internal/session"
)

// CookieName is the portal session cookie.
const CookieName = "policydesk_session"

const (
	valToken     = "token"
	valUserID    = "userId"
	valUser      = "user"
	valExpiresAt = "expiresAt"
)

// CookieSessions issues one encrypted cookie session per browser.
type CookieSessions struct {
	store *sessions.CookieStore
}

// NewCookieSessions builds the cookie store from signing and encryption keys.
func NewCookieSessions(hashKey, blockKey []byte, secure bool) *CookieSessions {
	cs := sessions.NewCookieStore(hashKey, blockKey)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessions{store: cs}
}

// For returns the request-scoped session. A cookie that fails to decode yields a fresh session.
func (c *CookieSessions) For(w http.ResponseWriter, r *http.Request) *RequestSession {
	s, err := c.store.Get(r, CookieName)
	if err != nil || s == nil {
		s, _ = c.store.New(r, CookieName)
	}
	return &RequestSession{s: s, w: w, r: r}
}

// RequestSession adapts one cookie session to session.Store. Writes are saved to the
// response immediately, so they must happen before the body is written.
type RequestSession struct {
	s *sessions.Session
	w http.ResponseWriter
	r *http.Request
}

var _ session.Store = (*RequestSession)(nil)

func (rs *RequestSession) Token() (string, bool) {
	tok, _ := rs.s.Values[valToken].(string)
	return tok, tok != ""
}

func (rs *RequestSession) UserID() (int64, bool) {
	tok, _ := rs.s.Values[valToken].(string)
	uid, _ := rs.s.Values[valUserID].(int64)
	return uid, tok != "" && uid != 0
}

func (rs *RequestSession) Current() (model.Session, bool) {
	var s model.Session
	s.Token, _ = rs.s.Values[valToken].(string)
	s.UserID, _ = rs.s.Values[valUserID].(int64)
	if raw, ok := rs.s.Values[valUser].(string); ok && raw != "" {
		var u model.User
		if json.Unmarshal([]byte(raw), &u) == nil {
			s.User = &u
			s.Role = u.Role
		}
	}
	if exp, ok := rs.s.Values[valExpiresAt].(int64); ok && exp > 0 {
		s.ExpiresAt = time.Unix(exp, 0).UTC()
	}
	return s, s.Valid()
}

func (rs *RequestSession) Set(s model.Session) error {
	rs.s.Values[valToken] = s.Token
	rs.s.Values[valUserID] = s.UserID
	u := s.User
	if u == nil {
		u = &model.User{ID: s.UserID, Role: s.Role}
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	rs.s.Values[valUser] = string(b)
	if !s.ExpiresAt.IsZero() {
		rs.s.Values[valExpiresAt] = s.ExpiresAt.Unix()
	} else {
		delete(rs.s.Values, valExpiresAt)
	}
	return rs.s.Save(rs.r, rs.w)
}

// Clear drops identity but keeps the cookie so flashes survive the redirect.
func (rs *RequestSession) Clear() error {
	for _, k := range []string{valToken, valUserID, valUser, valExpiresAt} {
		delete(rs.s.Values, k)
	}
	return rs.s.Save(rs.r, rs.w)
}

// Flash queues a notice for the next rendered page.
func (rs *RequestSession) Flash(n pages.Notice) error {
	rs.s.AddFlash(string(n.Level) + "|" + n.Text)
	return rs.s.Save(rs.r, rs.w)
}

// Notices pops queued notices. The caller must render after this, not before.
func (rs *RequestSession) Notices() []pages.Notice {
	fl := rs.s.Flashes()
	if len(fl) == 0 {
		return nil
	}
	_ = rs.s.Save(rs.r, rs.w)
	out := make([]pages.Notice, 0, len(fl))
	for _, f := range fl {
		s, _ := f.(string)
		lvl, text := pages.LevelInfo, s
		for i := 0; i < len(s); i++ {
			if s[i] == '|' {
				lvl, text = pages.Level(s[:i]), s[i+1:]
				break
			}
		}
		out = append(out, pages.Notice{Level: lvl, Text: text})
	}
	return out
}
