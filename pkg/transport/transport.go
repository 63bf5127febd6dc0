// Package transport performs the outbound call of one step.
package transport

import (
	"context"
	"time"
)

// Request is a single outbound call.
type Request struct {
	URL     string
	Payload map[string]any
	Headers map[string]string
	Timeout time.Duration
}

// Response is the structured outcome of a call. Network failures and
// timeouts are reported here with StatusCode 0 and Error set, not as Go errors.
type Response struct {
	StatusCode int
	Body       any
	Error      string
	Duration   time.Duration
	Headers    map[string]string
}

func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) ClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) ServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// Transport executes a step's remote call. A returned error means the call
// could not be attempted at all and is treated as a critical fault.
type Transport interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

type Func func(ctx context.Context, req Request) (*Response, error)

func (f Func) Invoke(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
