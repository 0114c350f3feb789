package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/pharmdesk/internal/common"
	"github.com/dmitrijs2005/pharmdesk/internal/logging"
)

const (
	headerAccept      = "Accept"
	headerAuth        = "Authorization"
	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-ID"

	mimeJSON = "application/json"

	maxBodyBytes = 8 << 20
)

// Session is what the client needs from the session owner.
// Invalidate is called once for every call answered with 401.
type Session interface {
	Token() string
	Invalidate()
}

// Options describe one request. Body may be []byte, string, io.Reader or
// any JSON-encodable value.
type Options struct {
	Method string
	Header http.Header
	Body   any
}

type Client struct {
	origin  string
	session Session
	base    http.RoundTripper
	timeout time.Duration
	logger  logging.Logger
}

type Option func(*Client)

// WithTransport replaces the underlying round tripper (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithTimeout bounds each call. Zero, the default, leaves timing to the transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for origin. It fails with
// common.ErrMissingOrigin when origin is empty. session may be nil, in
// which case calls are never authenticated.
func NewClient(origin string, session Session, opts ...Option) (*Client, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return nil, common.NewError(common.KindConfig, common.ErrMissingOrigin)
	}
	c := &Client{
		origin:  origin,
		session: session,
		base:    http.DefaultTransport,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Origin returns the backend origin without a trailing slash.
func (c *Client) Origin() string { return c.origin }

// Get is Request with the GET method.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, path, &Options{Method: http.MethodGet})
}

// Post is Request with the POST method and a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Request(ctx, path, &Options{Method: http.MethodPost, Body: body})
}

// Request performs one call and returns the parsed body.
func (c *Client) Request(ctx context.Context, path string, opts *Options) (json.RawMessage, error) {
	if opts == nil {
		opts = &Options{}
	}

	req, err := c.newRequest(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	reqID := req.Header.Get(headerRequestID)

	token := ""
	if c.session != nil {
		token = c.session.Token()
	}

	start := time.Now()
	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		c.logger.Warn(ctx, "api call failed",
			"method", req.Method, "path", path, "request_id", reqID, "error", err)
		return nil, &common.Error{
			Kind: common.KindTransport,
			Msg:  fmt.Sprintf("%s %s: %s", req.Method, path, transportReason(err)),
			Err:  err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &common.Error{
			Kind: common.KindTransport,
			Msg:  fmt.Sprintf("%s %s: reading response: %v", req.Method, path, err),
			Err:  err,
		}
	}

	c.logger.Debug(ctx, "api call",
		"method", req.Method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		if c.session != nil {
			c.session.Invalidate()
		}
		return nil, &common.Error{
			Kind:   common.KindUnauthorized,
			Status: resp.StatusCode,
			Err:    common.ErrUnauthorized,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &common.Error{
			Kind:   common.KindServer,
			Status: resp.StatusCode,
			Msg:    serverMessage(raw, resp.StatusCode),
		}
	}

	return parseBody(raw), nil
}

func (c *Client) newRequest(ctx context.Context, path string, opts *Options) (*http.Request, error) {
	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.origin+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Del(headerAuth)
	req.Header.Set(headerAccept, mimeJSON)
	if contentType != "" && req.Header.Get(headerContentType) == "" {
		req.Header.Set(headerContentType, contentType)
	}
	if req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, uuid.NewString())
	}
	return req, nil
}

// httpClient builds the per-call client. The bearer header is set by the
// oauth2 transport, which overrides anything already on the request.
func (c *Client) httpClient(token string) *http.Client {
	rt := c.base
	if token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.base,
		}
	}
	return &http.Client{Transport: rt, Timeout: c.timeout}
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(b), sniffJSON(b), nil
	case string:
		return strings.NewReader(b), sniffJSON([]byte(b)), nil
	case io.Reader:
		return b, "", nil
	default:
		enc, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(enc), mimeJSON, nil
	}
}

func sniffJSON(b []byte) string {
	if len(bytes.TrimSpace(b)) > 0 && gjson.ValidBytes(b) {
		return mimeJSON
	}
	return ""
}

// parseBody returns nil for empty or malformed JSON.
func parseBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

func serverMessage(raw []byte, status int) string {
	if gjson.ValidBytes(raw) {
		if e := gjson.GetBytes(raw, "error"); e.Type == gjson.String && strings.TrimSpace(e.Str) != "" {
			return e.Str
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

func transportReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	return "network error"
}

// Decode unmarshals raw into a T. A nil body is an error.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, errors.New("empty response body")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}
