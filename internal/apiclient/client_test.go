package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/session"
)

type seen struct {
	method, path, auth, ctype, rid string
	body                           []byte
}

func backend(t *testing.T, status int, reply string) (*httptest.Server, *seen) {
	t.Helper()
	s := &seen{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.method, s.path = r.Method, r.URL.Path
		s.auth = r.Header.Get("Authorization")
		s.ctype = r.Header.Get("Content-Type")
		s.rid = r.Header.Get(HeaderRequestID)
		s.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, s
}

func TestRequest_BearerHeaderFollowsSession(t *testing.T) {
	t.Parallel()

	srv, s := backend(t, http.StatusOK, `{"ok":true}`)
	st := session.NewMemory()
	c := New(srv.URL+"/api/", st, WithLogger(zaptest.NewLogger(t)))

	_, err := c.Request(context.Background(), "/auth/me", RequestOptions{})
	require.NoError(t, err)
	assert.Empty(t, s.auth, "no token, no header")
	assert.Equal(t, "/api/auth/me", s.path)
	assert.Equal(t, http.MethodGet, s.method)
	assert.Equal(t, "application/json", s.ctype)
	_, err = uuid.FromString(s.rid)
	assert.NoError(t, err)

	require.NoError(t, st.Set(model.Session{Token: "T1", UserID: 1}))
	_, err = c.Request(context.Background(), "/auth/me", RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer T1", s.auth)

	require.NoError(t, st.Clear())
	_, err = c.Request(context.Background(), "/auth/me", RequestOptions{})
	require.NoError(t, err)
	assert.Empty(t, s.auth)
}

func TestRequest_NilSessionIsAnonymous(t *testing.T) {
	t.Parallel()

	srv, s := backend(t, http.StatusOK, `[]`)
	_, err := New(srv.URL, nil).Request(context.Background(), "/products", RequestOptions{})
	require.NoError(t, err)
	assert.Empty(t, s.auth)
}

func TestRequest_SerializesBodyAndHeaders(t *testing.T) {
	t.Parallel()

	srv, s := backend(t, http.StatusCreated, `{"id":9}`)
	c := New(srv.URL, session.NewMemory())

	raw, err := c.Request(context.Background(), "/claims", RequestOptions{
		Method:  http.MethodPost,
		Body:    map[string]any{"policyId": 3, "amount": 10.5},
		Headers: map[string]string{"X-Extra": "1"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9}`, string(raw))
	assert.Equal(t, http.MethodPost, s.method)
	assert.JSONEq(t, `{"policyId":3,"amount":10.5}`, string(s.body))
}

func TestRequest_NonSuccessKeepsStatusAndMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		reply   string
		wantMsg string
	}{
		{"error field", 400, `{"error":"Policy not approved"}`, "Policy not approved"},
		{"message field", 409, `{"message":"Email taken"}`, "Email taken"},
		{"nested", 422, `{"error":{"message":"bad amount"}}`, "bad amount"},
		{"html body", 502, `<html>bad gateway</html>`, ""},
		{"empty", 401, ``, ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := backend(t, tc.status, tc.reply)
			_, err := New(srv.URL, nil).Request(context.Background(), "/x", RequestOptions{})
			require.Error(t, err)

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errs.KindRequestFailed, e.Kind)
			assert.Equal(t, tc.status, e.Status)
			assert.Equal(t, tc.wantMsg, e.Message)
		})
	}
}

func TestRequest_MalformedAndEmptyBodies(t *testing.T) {
	t.Parallel()

	srv, _ := backend(t, http.StatusOK, `{"id":`)
	_, err := New(srv.URL, nil).Request(context.Background(), "/x", RequestOptions{})
	assert.Equal(t, errs.KindMalformedResponse, errs.KindOf(err))

	srv2, _ := backend(t, http.StatusNoContent, ``)
	raw, err := New(srv2.URL, nil).Request(context.Background(), "/x", RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestRequest_NetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Request(context.Background(), "/x", RequestOptions{})
	assert.Equal(t, errs.KindNetwork, errs.KindOf(err))
}

func TestRequest_CanceledContext(t *testing.T) {
	t.Parallel()

	srv, _ := backend(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, nil).Request(ctx, "/x", RequestOptions{})
	assert.Equal(t, errs.KindNetwork, errs.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_DecodesIntoOut(t *testing.T) {
	t.Parallel()

	srv, _ := backend(t, http.StatusOK, `{"id":5,"name":"Ann","email":"a@x","role":"admin"}`)
	var u model.User
	require.NoError(t, New(srv.URL, nil).Do(context.Background(), http.MethodGet, "/auth/me", nil, &u))
	assert.Equal(t, model.User{ID: 5, Name: "Ann", Email: "a@x", Role: model.RoleAdmin}, u)

	var wrong []model.User
	err := Decode(json.RawMessage(`{"id":1}`), &wrong)
	assert.Equal(t, errs.KindMalformedResponse, errs.KindOf(err))
	assert.NoError(t, Decode(json.RawMessage(`{}`), nil))
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultBaseURL, New("", nil).BaseURL())
	assert.Equal(t, "http://h/api", New("http://h/api///", nil).BaseURL())
}
