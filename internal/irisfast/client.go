package irisfast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// StaticHeaders sends the Iris identity headers that are set.
func StaticHeaders(userID, userEmail, sessionID string) HeaderProvider {
	h := map[string]string{}
	if userID != "" {
		h["X-User-Id"] = userID
	}
	if userEmail != "" {
		h["X-User-Email"] = userEmail
	}
	if sessionID != "" {
		h["X-Session-Id"] = sessionID
	}
	return func() map[string]string {
		out := make(map[string]string, len(h))
		for k, v := range h {
			out[k] = v
		}
		return out
	}
}

const (
	maxErrorBody   = 512
	maxBackoffStep = 6
	backoffBase    = 100 * time.Millisecond
)

// APIError is a non-2xx answer from Iris.
type APIError struct {
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("iris %s: status=%d body=%s", e.Path, e.Status, e.Body)
}

// Temporary reports whether the same request may succeed later.
func (e *APIError) Temporary() bool {
	switch e.Status {
	case fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// endpoint describes one Iris route. Replies are not idempotent: a retried reply can
// reach the room twice.
type endpoint struct {
	method     string
	path       string
	idempotent bool
}

var (
	configEndpoint  = endpoint{method: fasthttp.MethodGet, path: "/config", idempotent: true}
	decryptEndpoint = endpoint{method: fasthttp.MethodPost, path: "/decrypt", idempotent: true}
	replyEndpoint   = endpoint{method: fasthttp.MethodPost, path: "/reply"}
)

// Client talks to the Iris HTTP API.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider
	logger  *zap.Logger

	timeout      time.Duration
	maxAttempts  int
	retryReplies bool
}

type Option func(*Client)

// WithTimeout bounds each attempt; a sooner context deadline wins.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithRetry sets how many attempts idempotent calls get.
func WithRetry(max int) Option {
	return func(c *Client) { c.maxAttempts = max }
}

// WithReplyRetry also retries /reply on transport errors and 5xx responses.
// A retried reply can be delivered twice.
func WithReplyRetry(enabled bool) Option {
	return func(c *Client) { c.retryReplies = enabled }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDialer overrides how connections are opened, e.g. an in-memory listener in tests.
func WithDialer(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxConnsPerHost: 64,
		},
		logger:      zap.NewNop(),
		timeout:     10 * time.Second,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := c.call(ctx, configEndpoint, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) Decrypt(ctx context.Context, data string) (string, error) {
	var resp DecryptResponse
	if err := c.call(ctx, decryptEndpoint, DecryptRequest{Data: data}, &resp); err != nil {
		return "", err
	}
	return resp.Decrypted, nil
}

func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	return c.call(ctx, replyEndpoint, ReplyRequest{Type: "text", Room: room, Data: message}, nil)
}

func (c *Client) SendImage(ctx context.Context, room, imageBase64 string) error {
	return c.call(ctx, replyEndpoint, ImageReplyRequest{Type: "image", Room: room, Data: imageBase64}, nil)
}

func (c *Client) attemptsFor(ep endpoint) int {
	if !ep.idempotent && !c.retryReplies {
		return 1
	}
	return max(c.maxAttempts, 1)
}

// call sends in as JSON to ep and decodes the answer into out when out is non-nil.
func (c *Client) call(ctx context.Context, ep endpoint, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal %s request: %w", ep.path, err)
		}
	}

	attempts := c.attemptsFor(ep)
	for attempt := 1; ; attempt++ {
		err := c.roundTrip(ctx, ep, payload, out)
		if err == nil || attempt >= attempts || !retryable(err) {
			return err
		}
		c.logger.Warn("iris_request_retry",
			zap.String("path", ep.path),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if werr := sleepCtx(ctx, backoffDuration(attempt)); werr != nil {
			return err
		}
	}
}

func (c *Client) roundTrip(ctx context.Context, ep endpoint, payload []byte, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(ep.method)
	req.SetRequestURI(c.baseURL + ep.path)
	req.Header.SetContentType("application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
				continue
			}
			req.Header.Set(k, v)
		}
	}
	if payload != nil {
		req.SetBody(payload)
	}

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return fmt.Errorf("iris %s: %w", ep.path, err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &APIError{Path: ep.path, Status: status, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", ep.path, err)
	}
	return nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	own := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(own) {
		return dl
	}
	return own
}

// retryable: transport failures and temporary API errors.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDuration doubles from 100ms per attempt, capped at the sixth step.
func backoffDuration(attempt int) time.Duration {
	step := min(max(attempt, 1), maxBackoffStep)
	return backoffBase << (step - 1)
}
