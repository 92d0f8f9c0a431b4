// Package apiclient is the single path from the application to the insurance REST backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/metrics"
	"github.com/and161185/policydesk/internal/session"
)

// DefaultBaseURL is the backend the client talks to when none is configured.
const DefaultBaseURL = "http://localhost:3000/api"

// HeaderRequestID carries a per-call id for log correlation.
const HeaderRequestID = "X-Request-ID"

// RequestOptions describes one call. A nil Body sends no body.
type RequestOptions struct {
	Method  string
	Body    any
	Headers map[string]string
}

// Client composes base URL, JSON body and bearer header for every backend call.
type Client struct {
	base string
	hc   *http.Client
	sess session.Reader
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport client. It should carry no timeout; use ctx instead.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithLogger sets the logger used for per-call debug records.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a client for base that reads the bearer token from sess on every call.
// sess may be nil for anonymous use.
func New(base string, sess session.Reader, opts ...Option) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		base: strings.TrimRight(base, "/"),
		hc:   http.DefaultClient,
		sess: sess,
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.base }

// Request performs one call and returns the raw JSON body. An empty 2xx body yields JSON null.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, errs.Network(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.sess != nil {
		if tok, ok := c.sess.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	rid, _ := uuid.NewV4()
	req.Header.Set(HeaderRequestID, rid.String())
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.observe(method, path, "network", start, rid, zap.Error(err))
		return nil, errs.Network(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, path, "network", start, rid, zap.Error(err))
		return nil, errs.Network(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(method, path, strconv.Itoa(resp.StatusCode), start, rid)
		return nil, failure(resp.StatusCode, raw)
	}
	c.observe(method, path, "ok", start, rid, zap.Int("status", resp.StatusCode))

	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, errs.Malformed(fmt.Errorf("%s %s: body is not JSON", method, path))
	}
	return json.RawMessage(raw), nil
}

// Do performs one call and decodes the JSON body into out (skipped when out is nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Request(ctx, path, RequestOptions{Method: method, Body: body})
	if err != nil {
		return err
	}
	return Decode(raw, out)
}

// Decode unmarshals raw into out, reporting failures as MalformedResponse.
func Decode(raw json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errs.Malformed(err)
	}
	return nil
}

// failure builds a RequestFailed error, keeping the backend's message when the body has one.
func failure(status int, raw []byte) *errs.Error {
	e := &errs.Error{Kind: errs.KindRequestFailed, Status: status}
	if json.Valid(raw) {
		e.Body = json.RawMessage(raw)
		for _, field := range []string{"error", "message", "error.message"} {
			if v := gjson.GetBytes(raw, field); v.Type == gjson.String && v.Str != "" {
				e.Message = v.Str
				break
			}
		}
	}
	return e
}

func (c *Client) observe(method, path, outcome string, start time.Time, rid uuid.UUID, extra ...zap.Field) {
	d := time.Since(start)
	metrics.ObserveAPICall(method, path, outcome, d)
	fields := append([]zap.Field{
		zap.String("method", method),
		zap.String("endpoint", metrics.Endpoint(path)),
		zap.String("outcome", outcome),
		zap.Duration("dur", d),
		zap.String("request_id", rid.String()),
	}, extra...)
	c.log.Debug("api", fields...)
}
