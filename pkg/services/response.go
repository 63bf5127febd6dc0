package services

import (
	"time"

	"github.com/dukex/orchestrator/pkg/flow"
	"github.com/dukex/orchestrator/pkg/models"
)

// Response is the body returned for an orchestration request and sent to
// the completion webhook.
type Response struct {
	ExecutionID string          `json:"execution_id"`
	FlowName    models.FlowName `json:"flow_name"`
	UserID      string          `json:"user_id,omitempty"`
	SessionID   string          `json:"session_id,omitempty"`
	Duration    float64         `json:"duration"` // Seconds
	Timestamp   string          `json:"timestamp,omitempty"`
	Message     string          `json:"message,omitempty"`
	State       flow.RunState   `json:"state,omitempty"`

	Identifier  any `json:"identifier,omitempty"`
	VacancyID   any `json:"vacancy_id,omitempty"`
	VacancyName any `json:"vacancy_name,omitempty"`
	PositionID  any `json:"position_id,omitempty"`
	CareerName  any `json:"career_name,omitempty"`

	Summary           *models.StatusSummary `json:"summary,omitempty"`
	Steps             []StepReport          `json:"steps,omitempty"`
	HasCriticalErrors bool                  `json:"has_critical_errors,omitempty"`
}

type StepReport struct {
	StepName    string            `json:"step_name"`
	Status      models.StepStatus `json:"status"`
	Duration    float64           `json:"duration"` // Seconds
	StartedAt   string            `json:"started_at"`
	CompletedAt string            `json:"completed_at"`
	Error       *string           `json:"error"`
	StatusCode  *int              `json:"status_code"`
}

const timestampLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func newStepReport(r models.StepResult) StepReport {
	report := StepReport{
		StepName:    r.StepName,
		Status:      r.Status,
		Duration:    r.Duration.Seconds(),
		StartedAt:   formatTime(r.StartedAt),
		CompletedAt: formatTime(r.CompletedAt),
	}

	if r.Error != "" {
		report.Error = &r.Error
	}

	if r.StatusCode != 0 {
		report.StatusCode = &r.StatusCode
	}

	return report
}

func buildResponse(execCtx *models.ExecutionContext, results []models.StepResult, state flow.RunState, duration time.Duration) *Response {
	summary := models.Summarize(results)

	resp := &Response{
		ExecutionID:       execCtx.ExecutionID,
		FlowName:          execCtx.FlowName,
		UserID:            execCtx.UserID,
		SessionID:         execCtx.SessionID,
		Duration:          duration.Seconds(),
		Timestamp:         formatTime(time.Now()),
		State:             state,
		Summary:           &summary,
		Steps:             make([]StepReport, len(results)),
		HasCriticalErrors: summary.CriticalErrors > 0,
	}

	echo := func(key string) any {
		if models.Truthy(execCtx.RequestData, key) {
			return execCtx.RequestData[key]
		}

		return nil
	}

	resp.Identifier = echo("identifier")
	resp.VacancyID = echo("vacancy_id")
	resp.VacancyName = echo("vacancy_name")
	resp.PositionID = echo("position_id")
	resp.CareerName = echo("career_name")

	for i, r := range results {
		resp.Steps[i] = newStepReport(r)
	}

	return resp
}
