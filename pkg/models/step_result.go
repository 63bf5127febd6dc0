package models

import "time"

// StepStatus is the uniform outcome of an attempted step.
type StepStatus string

const (
	StepStatusSuccess       StepStatus = "success"
	StepStatusFailed        StepStatus = "failed"         // Remote call completed unsuccessfully, does not abort
	StepStatusSkipped       StepStatus = "skipped"        // Skip rule matched or target not configured
	StepStatusCriticalError StepStatus = "critical_error" // Unexpected fault, aborts the remaining flow
)

// StepResult is created once per attempted step and never modified afterwards.
type StepResult struct {
	StepName     string        `json:"step_name"`
	Status       StepStatus    `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  time.Time     `json:"completed_at"`
	Duration     time.Duration `json:"duration"`
	Response     any           `json:"response,omitempty"`
	Error        string        `json:"error,omitempty"`
	ErrorDetails string        `json:"error_details,omitempty"`
	URL          string        `json:"url,omitempty"`
	StatusCode   int           `json:"status_code,omitempty"`
}

func (r StepResult) IsCritical() bool {
	return r.Status == StepStatusCriticalError
}

// StatusSummary counts results per status.
type StatusSummary struct {
	Total          int `json:"total_steps"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
	Skipped        int `json:"skipped"`
	CriticalErrors int `json:"critical_errors"`
}

func Summarize(results []StepResult) StatusSummary {
	summary := StatusSummary{Total: len(results)}

	for _, r := range results {
		switch r.Status {
		case StepStatusSuccess:
			summary.Successful++
		case StepStatusFailed:
			summary.Failed++
		case StepStatusSkipped:
			summary.Skipped++
		case StepStatusCriticalError:
			summary.CriticalErrors++
		}
	}

	return summary
}
