package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
)

var (
	// ErrRequestFailed is wrapped by every *Error.
	ErrRequestFailed = errors.New("request failed")
	// ErrDecode is wrapped when a successful response body is not the expected JSON.
	ErrDecode = errors.New("failed to decode response body")
)

// Error is the single failure shape of the transport: a non-success HTTP status or a
// network-level failure (Status is 0 then).
type Error struct {
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
		}
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, ErrRequestFailed)
	}

	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}

	if e.Err != nil {
		return fmt.Sprintf("%s %s: status code: %d: %v", e.Method, e.Path, e.Status, e.Err)
	}

	return fmt.Sprintf("%s %s: status code: %d", e.Method, e.Path, e.Status)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRequestFailed, e.Err}
	}

	return []error{ErrRequestFailed}
}

// StatusCode extracts the HTTP status of a transport error, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	return 0
}

// API sends authorized JSON requests to the employee management backend.
type API struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
	metrics *metrics.Metrics
}

// NewAPI creates the transport. metrics may be nil.
func NewAPI(log *slog.Logger, client *http.Client, baseURL string, metrics *metrics.Metrics) *API {
	return &API{
		log:     log.With(slog.String("division", "transport")),
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
	}
}

// BaseURL returns the API root without a trailing slash.
func (a *API) BaseURL() string {
	return a.baseURL
}

// Do sends a request and returns the raw response body of a 2xx response.
// body is JSON encoded when not nil; the Authorization header is only set for a non-empty token.
func (a *API) Do(ctx context.Context, method, path string, body any, token string) ([]byte, error) {
	startTime := time.Now()
	status := 0
	defer func() {
		a.observe(method, path, status, time.Since(startTime))
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.DebugContext(ctx, "request failed", "method", method, "path", path, sl.Err(err))
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}

	a.log.DebugContext(ctx, "request completed",
		"method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(startTime))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}

// Ping checks that the API host answers at all. Any HTTP status counts as reachable
// except a 5xx.
func (a *API) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", a.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{Method: http.MethodHead, Path: "/", Status: resp.StatusCode}
	}

	return nil
}

func (a *API) observe(method, path string, status int, took time.Duration) {
	if a.metrics == nil {
		return
	}

	resource := Resource(path)
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}

	a.metrics.Requests.WithLabelValues(method, resource, label).Inc()
	a.metrics.RequestDuration.WithLabelValues(method, resource).Observe(took.Seconds())
}

// Resource returns the first path segment, used as a low-cardinality metric label.
func Resource(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexAny(path, "/?"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return "root"
	}

	return path
}

// Decode unmarshals a response body. An empty body decodes to the zero value.
func Decode[T any](data []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return out, nil
}
