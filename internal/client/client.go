// Package client talks to the local AI review service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/lawndlwd/review-client/internal/logger"
	"github.com/lawndlwd/review-client/internal/output"
	"github.com/lawndlwd/review-client/internal/retry"
	"github.com/lawndlwd/review-client/internal/types"
)

const (
	DefaultBaseURL = "http://localhost:3002"
	DefaultTimeout = 30 * time.Second

	summaryTTL = 30 * time.Second
	diffTTL    = 15 * time.Second
	cacheSize  = 128
)

// ReviewClient wraps a pooled HTTP client with the retry policy applied to
// every request. It is meant for sequential use by one owner.
type ReviewClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        logger.Logger
	out        *output.Printer

	policy retry.Policy
	base   http.RoundTripper

	summaryCache *expirable.LRU[string, types.Summary]
	diffCache    *expirable.LRU[string, types.FileDiff]
}

// Option configures a ReviewClient.
type Option func(*ReviewClient)

// WithLogger injects the logger used for the lifetime of the client.
func WithLogger(l logger.Logger) Option {
	return func(c *ReviewClient) {
		if l != nil {
			c.log = l
		}
	}
}

// WithOutput sets where user-facing status lines are written.
func WithOutput(w io.Writer) Option {
	return func(c *ReviewClient) {
		if w != nil {
			c.out = output.New(w)
		}
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *ReviewClient) { c.policy = p }
}

// WithTransport sets the base transport underneath the retry layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *ReviewClient) { c.base = rt }
}

// New creates a client for baseURL. Empty baseURL and non-positive timeout
// fall back to DefaultBaseURL and DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *ReviewClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &ReviewClient{
		baseURL: trimBase(baseURL),
		timeout: timeout,
		log:     logger.Nop(),
		out:     output.New(os.Stdout),
		policy:  retry.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.base
	if base == nil {
		base = newPooledTransport()
	}
	c.httpClient = &http.Client{
		Transport: retry.NewTransport(base, c.policy),
		Timeout:   c.timeout,
	}
	c.summaryCache = expirable.NewLRU[string, types.Summary](cacheSize, nil, summaryTTL)
	c.diffCache = expirable.NewLRU[string, types.FileDiff](cacheSize, nil, diffTTL)
	return c
}

// Close releases idle pooled connections.
func (c *ReviewClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func trimBase(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

func newPooledTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 90 * time.Second
	return t
}

func (c *ReviewClient) newRequest(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs req and decodes a JSON object body. Any status outside
// accept is reported as a *statusError.
func (c *ReviewClient) send(req *http.Request) (map[string]any, error) {
	return sendWith(c.httpClient, req, is2xx)
}

func sendWith(hc *http.Client, req *http.Request, accept func(int) bool) (map[string]any, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !accept(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &statusError{code: resp.StatusCode}
	}
	return decodeObject(resp.Body)
}

func is2xx(code int) bool { return code >= 200 && code < 300 }

func decodeObject(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &decodeError{err: err}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &decodeError{err: errNotObject}
	}
	return obj, nil
}

var errNotObject = errors.New("response body is not a JSON object")

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// logFailure logs msg with the failure kind of err appended and attached
// as the kind field.
func logFailure(ctx context.Context, log logger.Logger, msg string, err error) {
	kind := failureKind(err)
	log.Errorf(logger.WithKind(ctx, kind), "%s: %s", msg, kind)
}

// failureKind reduces err to a category name that is safe to log.
func failureKind(err error) string {
	if err == nil {
		return ""
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) && exhausted.StatusCode != 0 {
		return "RetryError"
	}
	if errors.Is(err, context.Canceled) {
		return "Canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Timeout"
	}

	var se *statusError
	if errors.As(err, &se) {
		return "HTTPError"
	}
	var de *decodeError
	if errors.As(err, &de) {
		return "JSONDecodeError"
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Op == "parse" {
		return "InvalidURL"
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return "ConnectionError"
	}
	return "RequestException"
}

func isTimeout(err error) bool {
	return failureKind(err) == "Timeout"
}

func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

func intField(obj map[string]any, key string) (int, bool) {
	switch v := obj[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}
