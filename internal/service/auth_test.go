package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/session"
)

func TestAuth_LoginWritesSessionAndNextCallIsAuthenticated(t *testing.T) {
	t.Parallel()

	be := newBackend(t)
	be.on(http.MethodPost, "/api/auth/login", 200, `{"token":"T42","userId":42,"user":{"id":42,"name":"Ann","email":"ann@x","role":"user"}}`)
	be.on(http.MethodGet, "/api/policies/myPolicies", 200, `[]`)

	st := session.NewMemory()
	api := be.client(t, st)
	auth := NewAuthService(api, st)

	res, err := auth.Login(context.Background(), " ann@x ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "T42", res.Token)
	assert.Equal(t, "Ann", res.User.Name)
	assert.JSONEq(t, `{"email":"ann@x","password":"pw"}`, be.last().Body)
	assert.Empty(t, be.last().Auth)

	s, ok := st.Current()
	require.True(t, ok)
	assert.Equal(t, int64(42), s.UserID)
	assert.Equal(t, model.RoleUser, s.Role)

	_, err = NewUserFacade(api).GetMyPolicies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, be.count(), "no extra round trip for the token")
	assert.Equal(t, "Bearer T42", be.last().Auth)

	require.NoError(t, auth.Logout())
	_, err = NewUserFacade(api).GetMyPolicies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, be.last().Auth, "logout drops the header")
}

func TestAuth_LoginUserIDFallsBackToUserObject(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}).SignedString([]byte("k"))
	require.NoError(t, err)

	be := newBackend(t)
	be.on(http.MethodPost, "/api/auth/login", 200, `{"token":"`+tok+`","user":{"id":7,"name":"Root","email":"r@x","role":"admin"}}`)

	st := session.NewMemory()
	_, err = NewAuthService(be.client(t, st), st).Login(context.Background(), "r@x", "pw")
	require.NoError(t, err)

	s, _ := st.Current()
	assert.Equal(t, int64(7), s.UserID)
	assert.True(t, s.IsAdmin())
	assert.True(t, exp.Equal(s.ExpiresAt))
}

func TestAuth_LoginFailures(t *testing.T) {
	t.Parallel()

	be := newBackend(t)
	st := session.NewMemory()
	auth := NewAuthService(be.client(t, st), st)

	_, err := auth.Login(context.Background(), "", "pw")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, 0, be.count(), "validation never reaches the network")

	be.on(http.MethodPost, "/api/auth/login", 401, `{"error":"Invalid credentials"}`)
	_, err = auth.Login(context.Background(), "a@x", "bad")
	assert.Equal(t, "Invalid credentials", errs.Message(err, ""))
	assert.Equal(t, 401, errs.StatusOf(err))

	be.on(http.MethodPost, "/api/auth/login", 200, `{"user":{"id":1}}`)
	_, err = auth.Login(context.Background(), "a@x", "pw")
	assert.ErrorIs(t, err, errs.ErrNoToken)

	_, ok := st.Token()
	assert.False(t, ok, "failed logins leave the session empty")
}

func TestAuth_RegisterAndMe(t *testing.T) {
	t.Parallel()

	be := newBackend(t)
	be.on(http.MethodPost, "/api/auth/register", 201, `{"message":"User created successfully"}`)
	be.on(http.MethodGet, "/api/auth/me", 200, `{"id":3,"name":"Cy","email":"c@x","role":"user","created_at":"2024-01-01"}`)

	st := session.NewMemory()
	auth := NewAuthService(be.client(t, st), st)

	ack, err := auth.Register(context.Background(), "Cy", "c@x", "pw")
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", ack.Message)
	assert.JSONEq(t, `{"name":"Cy","email":"c@x","password":"pw"}`, be.last().Body)

	_, err = auth.Register(context.Background(), "Cy", "", "pw")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	me, err := auth.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", me.CreatedAt)
}

func TestForSession_SelectsByRole(t *testing.T) {
	t.Parallel()

	be := newBackend(t)
	api := be.client(t, nil)

	f := ForSession(model.Session{Token: "t", Role: model.RoleUser}, api)
	assert.NotNil(t, f.User)
	assert.Nil(t, f.Admin)

	f = ForSession(model.Session{Token: "t", Role: model.RoleAdmin}, api)
	assert.NotNil(t, f.Admin)

	f = ForSession(model.Session{Role: model.RoleAdmin}, api)
	assert.Nil(t, f.Admin, "no token, no admin facade")
}
