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
	"golang.org/x/sync/errgroup"

	"github.com/dukex/orchestrator/pkg/eventbus"
	"github.com/dukex/orchestrator/pkg/events"
	"github.com/dukex/orchestrator/pkg/log"
	"github.com/dukex/orchestrator/pkg/models"
	"github.com/dukex/orchestrator/pkg/otelhelper"
)

const DefaultMaxWorkers = 4

// RunState is the lifecycle of one flow run.
type RunState string

const (
	RunStatePlanned   RunState = "planned"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateAborted   RunState = "aborted"
)

// StepRunner executes a single step. *Runner is the production implementation.
type StepRunner interface {
	Run(ctx context.Context, step models.Step, execCtx *models.ExecutionContext) models.StepResult
}

// Engine dispatches groups in order. Steps of a parallel group run
// concurrently on a bounded pool; a CriticalError in any group stops the
// dispatch of the remaining groups.
type Engine struct {
	runner     StepRunner
	maxWorkers int
	logger     *slog.Logger
	tracer     trace.Tracer
	publisher  eventbus.EventPublisher
}

type Option func(*Engine)

func WithMaxWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxWorkers = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithPublisher emits lifecycle events. Publish failures are logged only.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Engine) {
		if publisher != nil {
			e.publisher = publisher
		}
	}
}

func NewEngine(runner StepRunner, opts ...Option) *Engine {
	e := &Engine{
		runner:     runner,
		maxWorkers: DefaultMaxWorkers,
		logger:     log.WithModule("flow_engine"),
		tracer:     otelhelper.NoopTracer(),
		publisher:  eventbus.NopPublisher{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) MaxWorkers() int {
	return e.maxWorkers
}

// Run plans steps and executes the resulting groups.
func (e *Engine) Run(ctx context.Context, steps []models.Step, execCtx *models.ExecutionContext) []models.StepResult {
	results, _ := e.RunWithState(ctx, steps, execCtx)

	return results
}

func (e *Engine) RunWithState(ctx context.Context, steps []models.Step, execCtx *models.ExecutionContext) ([]models.StepResult, RunState) {
	return e.execute(ctx, Plan(steps), execCtx)
}

// Execute runs groups in order and returns the results produced by this
// run in append order. Every dispatched step yields exactly one result.
func (e *Engine) Execute(ctx context.Context, groups []Group, execCtx *models.ExecutionContext) []models.StepResult {
	results, _ := e.execute(ctx, groups, execCtx)

	return results
}

func (e *Engine) execute(ctx context.Context, groups []Group, execCtx *models.ExecutionContext) ([]models.StepResult, RunState) {
	start := time.Now()
	logger := e.logger.With(log.ExecutionID(execCtx.ExecutionID), log.FlowName(execCtx.FlowName))

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "flow.execute",
		attribute.String(otelhelper.ExecutionIDKey, execCtx.ExecutionID),
		attribute.String(otelhelper.FlowNameKey, string(execCtx.FlowName)),
		attribute.String(otelhelper.UserIDKey, execCtx.UserID),
	)
	defer span.End()

	var stepNames []string
	for _, g := range groups {
		stepNames = append(stepNames, g.StepNames()...)
	}

	state := RunStatePlanned
	logger.Info("flow execution start", "total_steps", len(stepNames), "group_count", len(groups), "state", state)

	e.publish(ctx, execCtx, events.FlowExecutionStarted{
		BaseEvent:  events.NewBaseEvent(e.publisher.GenerateID(), events.FlowExecutionStartedEvent, execCtx),
		UserID:     execCtx.UserID,
		SessionID:  execCtx.SessionID,
		StepNames:  stepNames,
		GroupCount: len(groups),
	})

	state = RunStateRunning

	var results []models.StepResult

	for index, group := range groups {
		logger.Debug("executing step group",
			"group_index", index,
			"group_size", len(group),
			"is_parallel", group.Parallel(),
			"parallel_group", group.Tag(),
		)

		var groupResults []models.StepResult
		if group.Parallel() {
			groupResults = e.executeParallel(ctx, index, group, execCtx)
		} else {
			groupResults = []models.StepResult{e.resultOf(group[0], execCtx, e.runSafely(ctx, group[0], execCtx))}
		}

		for _, result := range groupResults {
			execCtx.AddResult(result)
			e.publishStep(ctx, execCtx, result)
		}

		results = append(results, groupResults...)

		if failed := criticalSteps(groupResults); len(failed) > 0 {
			state = RunStateAborted
			reason := "critical_error"
			if group.Parallel() {
				reason = "critical_error_in_parallel_group"
			}

			logger.Error("flow aborted", "reason", reason, "failed_steps", failed, "group_index", index)
			otelhelper.SetError(span, fmt.Errorf("flow aborted: critical error in %v", failed))

			e.publish(ctx, execCtx, events.FlowExecutionAborted{
				BaseEvent:   events.NewBaseEvent(e.publisher.GenerateID(), events.FlowExecutionAbortedEvent, execCtx),
				FailedSteps: failed,
				Summary:     models.Summarize(results),
				Duration:    time.Since(start),
			})

			break
		}
	}

	summary := models.Summarize(results)

	if state == RunStateRunning {
		state = RunStateCompleted

		e.publish(ctx, execCtx, events.FlowExecutionCompleted{
			BaseEvent: events.NewBaseEvent(e.publisher.GenerateID(), events.FlowExecutionCompletedEvent, execCtx),
			Summary:   summary,
			Duration:  time.Since(start),
		})
	}

	logger.Info("flow execution end",
		"state", state,
		"total_results", summary.Total,
		"successful_steps", summary.Successful,
		"failed_steps", summary.Failed+summary.CriticalErrors,
		"duration", time.Since(start),
	)

	return results, state
}

// outcome is what a worker hands back: a result, or the fault that
// prevented one.
type outcome struct {
	result models.StepResult
	fault  error
}

func (e *Engine) executeParallel(ctx context.Context, index int, group Group, execCtx *models.ExecutionContext) []models.StepResult {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "flow.group",
		attribute.Int(otelhelper.GroupIndexKey, index),
		attribute.Int(otelhelper.GroupSizeKey, len(group)),
		attribute.String(otelhelper.GroupTagKey, group.Tag()),
	)
	defer span.End()

	workers := min(len(group), e.maxWorkers)

	e.logger.Info("executing parallel steps",
		log.ExecutionID(execCtx.ExecutionID),
		"steps", group.StepNames(),
		"max_workers", workers,
	)

	outcomes := make([]outcome, len(group))

	var g errgroup.Group
	g.SetLimit(workers)

	for i, step := range group {
		g.Go(func() error {
			outcomes[i] = e.runSafely(ctx, step, execCtx)

			return nil
		})
	}

	_ = g.Wait()

	results := make([]models.StepResult, len(group))
	for i, o := range outcomes {
		results[i] = e.resultOf(group[i], execCtx, o)
	}

	return results
}

// resultOf converts a worker fault into a synthetic CriticalError.
func (e *Engine) resultOf(step models.Step, execCtx *models.ExecutionContext, o outcome) models.StepResult {
	if o.fault == nil {
		return o.result
	}

	e.logger.Error("step exception",
		log.ExecutionID(execCtx.ExecutionID),
		log.StepName(step.Name),
		log.Error(o.fault),
	)

	now := time.Now().UTC()
	result := models.StepResult{
		StepName:    step.Name,
		Status:      models.StepStatusCriticalError,
		StartedAt:   now,
		CompletedAt: now,
		Error:       "Unhandled exception: " + o.fault.Error(),
	}

	var p *panicError
	if errors.As(o.fault, &p) {
		result.ErrorDetails = p.stack
	}

	return result
}

type panicError struct {
	value any
	stack string
}

func (p *panicError) Error() string {
	return fmt.Sprint(p.value)
}

func (e *Engine) runSafely(ctx context.Context, step models.Step, execCtx *models.ExecutionContext) (o outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			o = outcome{fault: &panicError{value: rec, stack: string(debug.Stack())}}
		}
	}()

	return outcome{result: e.runner.Run(ctx, step, execCtx)}
}

func criticalSteps(results []models.StepResult) []string {
	var failed []string

	for _, r := range results {
		if r.IsCritical() {
			failed = append(failed, r.StepName)
		}
	}

	return failed
}

func (e *Engine) publish(ctx context.Context, execCtx *models.ExecutionContext, event eventbus.Event) {
	if err := e.publisher.Publish(ctx, execCtx.ExecutionID, event); err != nil {
		e.logger.Warn("failed to publish flow event",
			log.ExecutionID(execCtx.ExecutionID),
			"event_type", event.GetType(),
			log.Error(err),
		)
	}
}

func (e *Engine) publishStep(ctx context.Context, execCtx *models.ExecutionContext, result models.StepResult) {
	e.publish(ctx, execCtx, events.FlowStepCompleted{
		BaseEvent:  events.NewBaseEvent(e.publisher.GenerateID(), events.FlowStepCompletedEvent, execCtx),
		StepName:   result.StepName,
		Status:     result.Status,
		StatusCode: result.StatusCode,
		Error:      result.Error,
		DurationMs: result.Duration.Milliseconds(),
	})
}
