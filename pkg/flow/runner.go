package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/log"
	"github.com/dukex/orchestrator/pkg/models"
	"github.com/dukex/orchestrator/pkg/otelhelper"
	"github.com/dukex/orchestrator/pkg/router"
	"github.com/dukex/orchestrator/pkg/transport"
)

var ErrNoResponse = errors.New("transport returned no response")

// Runner executes a single step and always reports a StepResult.
type Runner struct {
	transport transport.Transport
	resolver  catalog.Resolver
	skipper   router.SkipEvaluator
	logger    *slog.Logger
	tracer    trace.Tracer
}

type RunnerOption func(*Runner)

func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

func WithRunnerTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = tracer }
}

// NewRunner builds a runner. A nil skipper never skips.
func NewRunner(t transport.Transport, resolver catalog.Resolver, skipper router.SkipEvaluator, opts ...RunnerOption) *Runner {
	if skipper == nil {
		skipper = router.SkipRules(nil)
	}

	r := &Runner{
		transport: t,
		resolver:  resolver,
		skipper:   skipper,
		logger:    log.WithModule("step_runner"),
		tracer:    otelhelper.NoopTracer(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes step against the execution context. Faults, including panics,
// are returned as a CriticalError result rather than propagated.
func (r *Runner) Run(ctx context.Context, step models.Step, execCtx *models.ExecutionContext) (result models.StepResult) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "flow.step",
		attribute.String(otelhelper.ExecutionIDKey, execCtx.ExecutionID),
		attribute.String(otelhelper.StepNameKey, step.Name),
	)
	defer span.End()

	logger := r.logger.With(log.ExecutionID(execCtx.ExecutionID), log.StepName(step.Name))
	startedAt := time.Now().UTC()

	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprint(rec)
			stack := string(debug.Stack())

			logger.Error("step execution panic", "error", msg, "stack", stack)

			result = models.StepResult{
				StepName:     step.Name,
				Status:       models.StepStatusCriticalError,
				StartedAt:    startedAt,
				CompletedAt:  time.Now().UTC(),
				Duration:     time.Since(startedAt),
				Error:        msg,
				ErrorDetails: stack,
			}
		}

		if result.URL != "" {
			span.SetAttributes(attribute.String(otelhelper.StepURLKey, result.URL))
		}

		otelhelper.SetStepStatus(span, string(result.Status), result.Error)
	}()

	if skip, reason := r.skipper.ShouldSkip(step, execCtx.RequestData); skip {
		logger.Info("step skipped", "reason", reason)

		return finish(step, startedAt, models.StepResult{
			Status: models.StepStatusSkipped,
			Error:  "Skipped: " + reason,
		})
	}

	url := r.resolver.Resolve(step.Target)
	if url == "" {
		logger.Warn("step url not configured", "target", step.Target)

		return finish(step, startedAt, models.StepResult{
			Status: models.StepStatusSkipped,
			Error:  "URL not configured: " + step.Target,
		})
	}

	payload := BuildPayload(step, execCtx)
	headers := BuildHeaders(step, execCtx)

	logger.Info("step execution start", "url", url, "timeout", step.Timeout)

	resp, err := r.transport.Invoke(ctx, transport.Request{
		URL:     url,
		Payload: payload,
		Headers: headers,
		Timeout: step.Timeout,
	})
	if err == nil && resp == nil {
		err = ErrNoResponse
	}

	if err != nil {
		logger.Error("step transport error", log.Error(err))
		otelhelper.SetError(span, err, attribute.String(otelhelper.StepNameKey, step.Name))

		return finish(step, startedAt, models.StepResult{
			Status:       models.StepStatusCriticalError,
			URL:          url,
			Error:        err.Error(),
			ErrorDetails: fmt.Sprintf("%+v", err),
		})
	}

	result = finish(step, startedAt, classify(resp))
	result.URL = url

	logger.Info("step execution end",
		log.Status(result.Status),
		"status_code", result.StatusCode,
		"duration", result.Duration,
	)

	return result
}

func classify(resp *transport.Response) models.StepResult {
	if resp.Success() {
		return models.StepResult{
			Status:     models.StepStatusSuccess,
			Response:   resp.Body,
			StatusCode: resp.StatusCode,
		}
	}

	msg := resp.Error
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	return models.StepResult{
		Status:     models.StepStatusFailed,
		Response:   resp.Body,
		StatusCode: resp.StatusCode,
		Error:      msg,
	}
}

func finish(step models.Step, startedAt time.Time, result models.StepResult) models.StepResult {
	result.StepName = step.Name
	result.StartedAt = startedAt
	result.CompletedAt = time.Now().UTC()
	result.Duration = result.CompletedAt.Sub(startedAt)

	return result
}
