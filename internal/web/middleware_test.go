package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/pages"
)

func TestRecover_PanicBecomes500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Recover(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic", logs.All()[0].Message)
}

func TestLogging_RecordsStatusWithoutForm(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "/login", fields["path"])
	assert.NotContains(t, fields, "password")
}

func TestRequestSession_SetCurrentClear(t *testing.T) {
	cs := NewCookieSessions(make([]byte, 64), make([]byte, 32), false)

	rec := httptest.NewRecorder()
	rs := cs.For(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, ok := rs.Current()
	assert.False(t, ok)

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, rs.Set(model.Session{Token: "t", UserID: 7, Role: model.RoleAdmin, ExpiresAt: exp}))
	require.NoError(t, rs.Flash(pages.Notice{Level: pages.LevelSuccess, Text: "a|b"}))

	// every save appends a Set-Cookie; a browser keeps the last one
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[len(cookies)-1])
	rs2 := cs.For(httptest.NewRecorder(), req)

	cur, ok := rs2.Current()
	require.True(t, ok)
	assert.Equal(t, "t", cur.Token)
	assert.Equal(t, int64(7), cur.UserID)
	assert.True(t, cur.IsAdmin())
	assert.Equal(t, exp, cur.ExpiresAt)

	uid, ok := rs2.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), uid)

	assert.Equal(t, []pages.Notice{{Level: pages.LevelSuccess, Text: "a|b"}}, rs2.Notices())
	assert.Empty(t, rs2.Notices())

	require.NoError(t, rs2.Clear())
	_, ok = rs2.Token()
	assert.False(t, ok)
}
