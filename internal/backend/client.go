// Package backend is the HTTP client for the tire-simulation backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client talks to the backend rooted at BaseURL.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenStore
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpc = c }
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpc = &http.Client{Timeout: d} }
}

// WithTokenStore sets where the bearer token comes from.
func WithTokenStore(s TokenStore) Option {
	return func(cl *Client) { cl.tokens = s }
}

// NewClient returns a client for baseURL, e.g. "http://localhost:3000".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		tokens:  FileTokenStore{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// request describes one backend call.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
	headers     map[string]string
}

// response is a fully read backend reply.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *Client) do(ctx context.Context, r request) (response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return response{}, err
	}
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.auth {
		token, err := c.tokens.Token()
		if err != nil {
			return response{}, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := logging.Logger().With(
		slog.String("request_id", id),
		slog.String("method", r.method),
		slog.String("path", r.path))
	start := time.Now()

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Error("backend request failed", slog.Any("error", err))
		return response{}, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: read body: %w", r.method, r.path, err)
	}
	log.Debug("backend request",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("bytes", len(body)))

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.Clear(); err != nil {
			log.Warn("failed to clear token", slog.Any("error", err))
		}
		return response{}, ErrUnauthorized
	}
	return response{status: resp.StatusCode, body: body}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, v any, auth bool) (response, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return response{}, err
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		auth:        auth,
	})
}

func (c *Client) postFile(ctx context.Context, path, field, filename string, content io.Reader) (response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return response{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return response{}, err
	}
	if err := mw.Close(); err != nil {
		return response{}, err
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
}

// envelope checks a {"success": bool, "message": string} reply. A reply
// fails when it is not valid JSON, reports success false, or carries a
// non-2xx status. The backend message is used when present, fallback
// otherwise.
func envelope(endpoint string, r response, fallback string) (gjson.Result, error) {
	if !gjson.ValidBytes(r.body) {
		return gjson.Result{}, &APIError{
			Endpoint:   endpoint,
			StatusCode: r.status,
			Message:    orDefault(snippet(r.body), fallback),
		}
	}
	doc := gjson.ParseBytes(r.body)
	if !r.ok() || !doc.Get("success").Bool() {
		return doc, &APIError{
			Endpoint:   endpoint,
			StatusCode: r.status,
			Message:    orDefault(doc.Get("message").String(), fallback),
		}
	}
	return doc, nil
}

// statusOnly fails a reply with a non-2xx status.
func statusOnly(endpoint string, r response, fallback string) error {
	if r.ok() {
		return nil
	}
	msg := fallback
	if gjson.ValidBytes(r.body) {
		msg = orDefault(gjson.GetBytes(r.body, "message").String(), fallback)
	}
	return &APIError{Endpoint: endpoint, StatusCode: r.status, Message: msg}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 256 {
		s = s[:256] + "..."
	}
	return s
}
