package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout    = 120 * time.Second
	DefaultRetryDelay = time.Second
	OrchestratorName  = "ml-orchestrator"
)

// HTTPTransport posts JSON payloads and parses JSON (or text) responses.
type HTTPTransport struct {
	client         *http.Client
	logger         *slog.Logger
	defaultTimeout time.Duration
	defaultHeaders map[string]string
	retryCount     int
	retryDelay     time.Duration
}

type HTTPOption func(*HTTPTransport)

func WithDefaultTimeout(timeout time.Duration) HTTPOption {
	return func(t *HTTPTransport) { t.defaultTimeout = timeout }
}

func WithDefaultHeader(key, value string) HTTPOption {
	return func(t *HTTPTransport) { t.defaultHeaders[key] = value }
}

// WithRetry retries server errors and network failures count times, waiting
// delay*attempt between attempts. Client errors are never retried.
func WithRetry(count int, delay time.Duration) HTTPOption {
	return func(t *HTTPTransport) {
		t.retryCount = count
		t.retryDelay = delay
	}
}

func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.client = client }
}

func NewHTTPTransport(logger *slog.Logger, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:         logger,
		defaultTimeout: DefaultTimeout,
		defaultHeaders: map[string]string{
			"Content-Type":   "application/json",
			"X-Orchestrator": OrchestratorName,
		},
		retryDelay: DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *HTTPTransport) Invoke(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	var last *Response

	for attempt := 0; attempt <= t.retryCount; attempt++ {
		if attempt > 0 {
			t.logger.InfoContext(ctx, "http retry", "url", req.URL, "attempt", attempt, "max_attempts", t.retryCount+1)

			select {
			case <-ctx.Done():
				return last, nil
			case <-time.After(t.retryDelay * time.Duration(attempt)):
			}
		}

		resp := t.do(ctx, req, body)
		last = resp

		if resp.Success() || resp.ClientError() {
			return resp, nil
		}

		if !resp.ServerError() && resp.StatusCode != 0 {
			return resp, nil
		}
	}

	return last, nil
}

func (t *HTTPTransport) do(ctx context.Context, req Request, body []byte) *Response {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = t.defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		t.logger.ErrorContext(ctx, "http request invalid", "url", req.URL, "error", err)

		return &Response{Error: fmt.Sprintf("Request failed: %v", err)}
	}

	for key, value := range t.defaultHeaders {
		httpReq.Header.Set(key, value)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()

	t.logger.DebugContext(ctx, "http request", "method", http.MethodPost, "url", req.URL, "payload_size", len(body))

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		duration := time.Since(start)

		if isTimeout(err) {
			t.logger.ErrorContext(ctx, "http timeout", "url", req.URL, "timeout", timeout, "duration", duration)

			return &Response{Duration: duration, Error: fmt.Sprintf("Request timeout after %s", timeout)}
		}

		t.logger.ErrorContext(ctx, "http connection error", "url", req.URL, "error", err, "duration", duration)

		return &Response{Duration: duration, Error: fmt.Sprintf("Connection error: %v", err)}
	}

	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			t.logger.DebugContext(ctx, "failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &Response{
			StatusCode: httpResp.StatusCode,
			Duration:   time.Since(start),
			Error:      fmt.Sprintf("Request failed: %v", err),
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       parseBody(raw),
		Duration:   time.Since(start),
		Headers:    make(map[string]string, len(httpResp.Header)),
	}

	for key := range httpResp.Header {
		resp.Headers[key] = httpResp.Header.Get(key)
	}

	t.logger.DebugContext(ctx, "http response",
		"url", req.URL,
		"status_code", resp.StatusCode,
		"duration", resp.Duration,
		"response_size", len(raw),
	)

	return resp
}

func parseBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		return parsed
	}

	return string(raw)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
