package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lawndlwd/review-client/internal/logger"
	"github.com/lawndlwd/review-client/internal/types"
)

const (
	healthPath = "/api/health"

	DefaultAsyncHealthTimeout = 10 * time.Second
)

// HealthChecker reports service health without ever failing. The blocking
// strategy is *ReviewClient; the goroutine strategy is AsyncChecker.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthStatus
}

var (
	_ HealthChecker = (*ReviewClient)(nil)
	_ HealthChecker = AsyncChecker{}
)

func errorStatus(msg string) types.HealthStatus {
	return types.HealthStatus{
		Status:  "error",
		Message: msg,
		Fields:  map[string]any{"status": "error", "message": msg},
	}
}

const (
	healthCheckFailed  = "Health check failed"
	serviceUnavailable = "Service unavailable"
	requestTimeout     = "Request timeout"
)

// fetchHealth is shared by both strategies so decoding stays identical.
func fetchHealth(ctx context.Context, hc *http.Client, baseURL string, accept func(int) bool) (types.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+healthPath, nil)
	if err != nil {
		return types.HealthStatus{}, &buildError{err: err}
	}
	req.Header.Set("Accept", "application/json")

	obj, err := sendWith(hc, req, accept)
	if err != nil {
		return types.HealthStatus{}, err
	}
	return healthFrom(obj), nil
}

type buildError struct {
	err error
}

func (e *buildError) Error() string { return "build request: " + e.err.Error() }
func (e *buildError) Unwrap() error { return e.err }

func healthFrom(obj map[string]any) types.HealthStatus {
	h := types.HealthStatus{Fields: obj}
	h.Status, _ = stringField(obj, "status")
	h.Message, _ = stringField(obj, "message")
	return h
}

// GetHealthStatus fetches /api/health. Transport and response failures yield
// {status: error, message: Health check failed}; anything else yields
// {status: error, message: Service unavailable}.
func (c *ReviewClient) GetHealthStatus(ctx context.Context) types.HealthStatus {
	ctx = logger.WithOp(ctx, "health")

	h, err := fetchHealth(ctx, c.httpClient, c.baseURL, is2xx)
	if err == nil {
		return h
	}

	var be *buildError
	if errors.As(err, &be) {
		logFailure(ctx, c.log, "Unexpected error during health check", err)
		return errorStatus(serviceUnavailable)
	}
	logFailure(ctx, c.log, "Health check failed", err)
	return errorStatus(healthCheckFailed)
}

// CheckHealth implements HealthChecker with a blocking call.
func (c *ReviewClient) CheckHealth(ctx context.Context) types.HealthStatus {
	return c.GetHealthStatus(ctx)
}

// AsyncHealthCheck runs a single health request on its own goroutine and
// single-use connection, bounded by timeout. The channel yields exactly one
// status and is then closed.
func AsyncHealthCheck(ctx context.Context, baseURL string, timeout time.Duration, log logger.Logger) <-chan types.HealthStatus {
	if timeout <= 0 {
		timeout = DefaultAsyncHealthTimeout
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}

	out := make(chan types.HealthStatus, 1)
	go func() {
		defer close(out)
		out <- asyncHealth(ctx, baseURL, timeout, log)
	}()
	return out
}

func asyncHealth(ctx context.Context, baseURL string, timeout time.Duration, log logger.Logger) types.HealthStatus {
	ctx = logger.WithOp(ctx, "async-health")
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	transport := &http.Transport{DisableKeepAlives: true}
	defer transport.CloseIdleConnections()
	hc := &http.Client{Transport: transport}

	h, err := fetchHealth(ctx, hc, trimBase(baseURL), func(code int) bool { return code == http.StatusOK })
	if err == nil {
		return h
	}

	var se *statusError
	switch {
	case errors.As(err, &se):
		return errorStatus(serviceUnavailable)
	case isTimeout(err):
		return errorStatus(requestTimeout)
	default:
		logFailure(ctx, log, "Async health check failed", err)
		return errorStatus(serviceUnavailable)
	}
}

// AsyncChecker implements HealthChecker by waiting on AsyncHealthCheck.
type AsyncChecker struct {
	BaseURL string
	Timeout time.Duration
	Logger  logger.Logger
}

func (a AsyncChecker) CheckHealth(ctx context.Context) types.HealthStatus {
	return <-AsyncHealthCheck(ctx, a.BaseURL, a.Timeout, a.Logger)
}
