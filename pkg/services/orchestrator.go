package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukex/orchestrator/pkg/dedup"
	"github.com/dukex/orchestrator/pkg/flow"
	"github.com/dukex/orchestrator/pkg/log"
	"github.com/dukex/orchestrator/pkg/models"
	"github.com/dukex/orchestrator/pkg/router"
	"github.com/dukex/orchestrator/pkg/transport"
)

const DefaultWebhookTimeout = 15 * time.Second

// Orchestrator handles one request end to end: validation, flow selection,
// execution and the completion webhook.
type Orchestrator struct {
	router  *router.Router
	engine  *flow.Engine
	tracker dedup.Tracker
	logger  *slog.Logger

	dedupTTL       time.Duration
	webhook        transport.Transport
	webhookURL     string
	webhookTimeout time.Duration
	newID          func() string
}

type Option func(*Orchestrator)

// WithTracker enables duplicate detection. Duplicates are reported, not rejected.
func WithTracker(tracker dedup.Tracker, ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.tracker = tracker
		if ttl > 0 {
			o.dedupTTL = ttl
		}
	}
}

// WithWebhook posts every execution response to url. An empty url disables it.
func WithWebhook(t transport.Transport, url string) Option {
	return func(o *Orchestrator) {
		o.webhook = t
		o.webhookURL = url
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

func NewOrchestrator(r *router.Router, engine *flow.Engine, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		router:         r,
		engine:         engine,
		logger:         logger,
		dedupTTL:       dedup.DefaultTTL,
		webhookTimeout: DefaultWebhookTimeout,
		newID:          uuid.NewString,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Handle runs the flow selected by params. A flow that hit a critical error
// still yields a Response; errors are returned only for invalid requests.
func (o *Orchestrator) Handle(ctx context.Context, params map[string]any) (*Response, error) {
	executionID := o.newID()
	start := time.Now()
	logger := o.logger.With(log.ExecutionID(executionID))

	logger.InfoContext(ctx, "request received", "request_keys", keys(params))

	problems, err := ValidateRequest(params)
	if err != nil {
		return nil, &ServiceError{Op: "Handle", Code: "validation_failed", Err: err}
	}

	if len(problems) > 0 {
		logger.WarnContext(ctx, "request validation failed", "errors", problems)

		return nil, &ValidationError{Op: "Handle", Errors: problems}
	}

	userID, _ := params[router.ParamUserID].(string)
	sessionID, _ := params[router.ParamSessionID].(string)

	o.checkDuplicate(ctx, logger, userID, sessionID, params)

	flowName := o.router.DetermineFlow(params)

	definition, err := o.router.FlowDefinition(flowName)
	if err != nil {
		return nil, &ServiceError{Op: "Handle", Code: "unknown_flow", Message: string(flowName), Err: err}
	}

	if flowErrs := o.router.ValidateFlowParams(flowName, params); len(flowErrs) > 0 {
		return nil, &ValidationError{Op: "Handle", Flow: flowName, Errors: flowErrs}
	}

	logger.InfoContext(ctx, "execution start", log.FlowName(flowName), "user_id", userID)

	steps := o.router.FilterSteps(definition, params)
	if len(steps) == 0 {
		logger.WarnContext(ctx, "no steps to execute", log.FlowName(flowName))

		return &Response{
			ExecutionID: executionID,
			FlowName:    flowName,
			Message:     "No steps to execute after filtering",
			Duration:    time.Since(start).Seconds(),
		}, nil
	}

	execCtx := models.NewExecutionContext(executionID, userID, sessionID, flowName, params)

	results, state := o.engine.RunWithState(ctx, steps, execCtx)

	duration := time.Since(start)
	resp := buildResponse(execCtx, results, state, duration)

	o.sendWebhook(ctx, logger, resp)

	logger.InfoContext(ctx, "execution end",
		log.FlowName(flowName),
		"duration", duration,
		"state", state,
		"total_steps", resp.Summary.Total,
		"successful_steps", resp.Summary.Successful,
	)

	return resp, nil
}

func (o *Orchestrator) checkDuplicate(ctx context.Context, logger *slog.Logger, userID, sessionID string, params map[string]any) {
	if o.tracker == nil {
		return
	}

	seen, err := o.tracker.Seen(ctx, dedup.Key(userID, sessionID, requestIdentifier(params)), o.dedupTTL)
	if err != nil {
		logger.WarnContext(ctx, "duplicate check failed", log.Error(err))

		return
	}

	if seen {
		logger.WarnContext(ctx, "duplicate request detected", "user_id", userID, "session_id", sessionID)
	}
}

// requestIdentifier formats any non-null identifier, so numeric identifiers
// keep distinct keys.
func requestIdentifier(params map[string]any) string {
	v, ok := params["identifier"]
	if !ok || v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

func (o *Orchestrator) sendWebhook(ctx context.Context, logger *slog.Logger, resp *Response) {
	if o.webhookURL == "" || o.webhook == nil {
		logger.DebugContext(ctx, "webhook skipped", "reason", "no_url_configured")

		return
	}

	payload, err := toPayload(resp)
	if err != nil {
		logger.ErrorContext(ctx, "webhook exception", log.Error(err))

		return
	}

	logger.InfoContext(ctx, "webhook execution start", "url", o.webhookURL)

	result, err := o.webhook.Invoke(ctx, transport.Request{
		URL:     o.webhookURL,
		Payload: payload,
		Timeout: o.webhookTimeout,
	})

	switch {
	case err != nil:
		logger.ErrorContext(ctx, "webhook exception", log.Error(err))
	case result == nil:
		logger.ErrorContext(ctx, "webhook exception", "error", "no response")
	case result.Success():
		logger.InfoContext(ctx, "webhook success", "status_code", result.StatusCode)
	default:
		logger.WarnContext(ctx, "webhook failed", "status_code", result.StatusCode, "error", result.Error)
	}
}

func toPayload(resp *Response) (map[string]any, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}

func keys(params map[string]any) []string {
	out := make([]string, 0, len(params))
	for k := range params {
		out = append(out, k)
	}

	return out
}
