// Package retry implements the bounded retry policy applied to every request
// the review client sends.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Policy describes when and how often a request is re-issued.
type Policy struct {
	Total             int
	BackoffFactor     time.Duration
	BackoffMax        time.Duration
	StatusForcelist   []int
	RespectRetryAfter bool
}

// Default returns 3 retries with a 1s exponential backoff on 429 and 5xx gateway errors.
func Default() Policy {
	return Policy{
		Total:             3,
		BackoffFactor:     time.Second,
		BackoffMax:        120 * time.Second,
		StatusForcelist:   []int{429, 500, 502, 503, 504},
		RespectRetryAfter: true,
	}
}

// Backoff returns the wait before the n-th retry (1-based).
// The first retry is immediate, then factor*2^(n-1).
func (p Policy) Backoff(n int) time.Duration {
	if n <= 1 || p.BackoffFactor <= 0 {
		return 0
	}
	d := p.BackoffFactor << uint(n-1)
	if d <= 0 || (p.BackoffMax > 0 && d > p.BackoffMax) {
		return p.BackoffMax
	}
	return d
}

func (p Policy) retryStatus(code int) bool {
	for _, s := range p.StatusForcelist {
		if s == code {
			return true
		}
	}
	return false
}

// ExhaustedError is returned once the retry budget is spent. StatusCode is
// the last forcelisted status seen, or 0 when the last attempt failed at the
// transport level (Err holds that failure).
type ExhaustedError struct {
	Attempts   int
	StatusCode int
	Err        error
}

func (e *ExhaustedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retries exhausted after %d attempts: last status %d", e.Attempts, e.StatusCode)
	}
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Transport is an http.RoundTripper that applies a Policy around a base transport.
type Transport struct {
	base   http.RoundTripper
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewTransport wraps base (http.DefaultTransport when nil) with policy.
func NewTransport(base http.RoundTripper, policy Policy) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, policy: policy, sleep: sleepContext}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req
	for attempt := 1; ; attempt++ {
		resp, err := t.base.RoundTrip(r)
		retriesLeft := attempt <= t.policy.Total

		if err != nil {
			if !retryableError(req, err) {
				return nil, err
			}
			if !retriesLeft {
				return nil, &ExhaustedError{Attempts: attempt, Err: err}
			}
			if !rewindable(req) {
				return nil, err
			}
			if err := t.sleep(req.Context(), t.policy.Backoff(attempt)); err != nil {
				return nil, err
			}
		} else {
			if !idempotent(req.Method) || !t.policy.retryStatus(resp.StatusCode) || !rewindable(req) {
				return resp, nil
			}
			if !retriesLeft {
				drain(resp)
				return nil, &ExhaustedError{Attempts: attempt, StatusCode: resp.StatusCode}
			}
			wait := t.policy.Backoff(attempt)
			if t.policy.RespectRetryAfter {
				if ra, ok := retryAfter(resp); ok {
					wait = ra
					if t.policy.BackoffMax > 0 {
						wait = min(ra, t.policy.BackoffMax)
					}
				}
			}
			drain(resp)
			if err := t.sleep(req.Context(), wait); err != nil {
				return nil, err
			}
		}

		next, err := rewind(req)
		if err != nil {
			return nil, err
		}
		r = next
	}
}

// CloseIdleConnections forwards to the base transport when it supports it.
func (t *Transport) CloseIdleConnections() {
	type closer interface{ CloseIdleConnections() }
	if c, ok := t.base.(closer); ok {
		c.CloseIdleConnections()
	}
}

func retryableError(req *http.Request, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if req.Context().Err() != nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return idempotent(req.Method)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete, http.MethodTrace:
		return true
	}
	return false
}

func rewindable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func rewind(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	next.Body = body
	return next, nil
}

func retryAfter(resp *http.Response) (time.Duration, bool) {
	switch resp.StatusCode {
	case http.StatusRequestEntityTooLarge, http.StatusTooManyRequests, http.StatusServiceUnavailable:
	default:
		return 0, false
	}
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			secs = 0
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		d := time.Until(at)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
