package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/and161185/policydesk/internal/apiclient"
	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/session"
)

// AuthService defines the session lifecycle operations.
type AuthService interface {
	// Login authenticates and writes the session store.
	Login(ctx context.Context, email, password string) (LoginResult, error)
	// Register creates an account; it does not log in.
	Register(ctx context.Context, name, email, password string) (Ack, error)
	// Me fetches the current profile.
	Me(ctx context.Context) (model.User, error)
	// Logout clears the session store. Navigation is the caller's job.
	Logout() error
}

// LoginResult is the reshaped login response.
type LoginResult struct {
	Token string
	User  model.User
}

type AuthServiceImpl struct {
	api   Caller
	store session.Store
}

// NewAuthService constructs AuthService over an API caller and the session store it writes.
func NewAuthService(api Caller, store session.Store) *AuthServiceImpl {
	return &AuthServiceImpl{api: api, store: store}
}

// Login posts credentials and stores token, user id and role taken from the raw response.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, errs.Validation("email and password are required")
	}
	raw, err := s.api.Request(ctx, "/auth/login", apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return LoginResult{}, err
	}

	res, sess, err := parseLogin(raw)
	if err != nil {
		return LoginResult{}, err
	}
	if c, ok := session.Claims(res.Token); ok {
		sess.ExpiresAt = c.ExpiresAt
	}
	if err := s.store.Set(sess); err != nil {
		return LoginResult{}, fmt.Errorf("save session: %w", err)
	}
	return res, nil
}

// parseLogin reads token from "token" and the user id from "userId", falling back to "user.id".
func parseLogin(raw json.RawMessage) (LoginResult, model.Session, error) {
	if !gjson.ValidBytes(raw) {
		return LoginResult{}, model.Session{}, errs.Malformed(fmt.Errorf("login response is not JSON"))
	}
	doc := gjson.ParseBytes(raw)

	tok := doc.Get("token").String()
	if tok == "" {
		return LoginResult{}, model.Session{}, errs.ErrNoToken
	}

	var u model.User
	if uj := doc.Get("user"); uj.IsObject() {
		if err := json.Unmarshal([]byte(uj.Raw), &u); err != nil {
			return LoginResult{}, model.Session{}, errs.Malformed(err)
		}
	}
	uid := doc.Get("userId").Int()
	if uid == 0 {
		uid = u.ID
	}
	if u.ID == 0 {
		u.ID = uid
	}

	sess := model.Session{Token: tok, UserID: uid, Role: u.Role}
	if u.ID != 0 || u.Email != "" {
		cu := u
		sess.User = &cu
	}
	return LoginResult{Token: tok, User: u}, sess, nil
}

// Register posts a new account.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (Ack, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return Ack{}, errs.Validation("name, email and password are required")
	}
	var ack Ack
	err := send(ctx, s.api, http.MethodPost, "/auth/register",
		map[string]string{"name": name, "email": email, "password": password}, &ack)
	return ack, err
}

// Me returns the profile of the session's account.
func (s *AuthServiceImpl) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := get(ctx, s.api, "/auth/me", &u)
	return u, err
}

// Logout clears the session.
func (s *AuthServiceImpl) Logout() error { return s.store.Clear() }
