// Package events defines the lifecycle notifications emitted while a flow runs.
package events

import (
	"time"

	"github.com/dukex/orchestrator/pkg/models"
)

type EventType string

// Topic carries every flow lifecycle event.
const Topic = "orchestrator.flow.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	FlowExecutionStartedEvent   EventType = "flow.execution.started"
	FlowStepCompletedEvent      EventType = "flow.step.completed"
	FlowExecutionCompletedEvent EventType = "flow.execution.completed"
	FlowExecutionAbortedEvent   EventType = "flow.execution.aborted"
)

type BaseEvent struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	ExecutionID string          `json:"execution_id"`
	FlowName    models.FlowName `json:"flow_name"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

func NewBaseEvent(id string, eventType EventType, execCtx *models.ExecutionContext) BaseEvent {
	return BaseEvent{
		ID:          id,
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		ExecutionID: execCtx.ExecutionID,
		FlowName:    execCtx.FlowName,
	}
}

type FlowExecutionStarted struct {
	BaseEvent

	UserID     string   `json:"user_id"`
	SessionID  string   `json:"session_id"`
	StepNames  []string `json:"step_names"`
	GroupCount int      `json:"group_count"`
}

func (e FlowExecutionStarted) GetType() EventType {
	return FlowExecutionStartedEvent
}

type FlowStepCompleted struct {
	BaseEvent

	StepName   string            `json:"step_name"`
	Status     models.StepStatus `json:"status"`
	StatusCode int               `json:"status_code,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

func (e FlowStepCompleted) GetType() EventType {
	return FlowStepCompletedEvent
}

type FlowExecutionCompleted struct {
	BaseEvent

	Summary  models.StatusSummary `json:"summary"`
	Duration time.Duration        `json:"duration"`
}

func (e FlowExecutionCompleted) GetType() EventType {
	return FlowExecutionCompletedEvent
}

// FlowExecutionAborted is emitted when a critical error stops dispatch.
type FlowExecutionAborted struct {
	BaseEvent

	FailedSteps []string             `json:"failed_steps"`
	Summary     models.StatusSummary `json:"summary"`
	Duration    time.Duration        `json:"duration"`
}

func (e FlowExecutionAborted) GetType() EventType {
	return FlowExecutionAbortedEvent
}

// Decode returns an empty value of the concrete event for eventType, or nil
// if the type is unknown.
func Decode(eventType EventType) any {
	switch eventType {
	case FlowExecutionStartedEvent:
		return &FlowExecutionStarted{}
	case FlowStepCompletedEvent:
		return &FlowStepCompleted{}
	case FlowExecutionCompletedEvent:
		return &FlowExecutionCompleted{}
	case FlowExecutionAbortedEvent:
		return &FlowExecutionAborted{}
	default:
		return nil
	}
}
