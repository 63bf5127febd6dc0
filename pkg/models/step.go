// Package models defines the data model of a flow run: step and flow
// declarations, step results and the per-run execution context.
package models

import (
	"strings"
	"time"
)

// StepClass selects how a step's payload and credentials are shaped.
type StepClass string

const (
	StepClassDefault    StepClass = "default"
	StepClassEmbeddings StepClass = "embeddings" // Keyed by session identity alone
	StepClassVacancy    StepClass = "vacancy"
	StepClassProfession StepClass = "profession" // Profession and career steps
)

const DefaultStepTimeout = 120 * time.Second

// Step describes one unit of work: a single outbound call to a downstream service.
type Step struct {
	Name           string        `json:"name"                     validate:"required"`
	Target         string        `json:"target"` // Target reference, resolved to an address at run time
	Timeout        time.Duration `json:"timeout"                  validate:"gte=0"`
	ParallelGroup  string        `json:"parallel_group,omitempty"` // Empty means strictly sequential
	Class          StepClass     `json:"class"                    validate:"required,oneof=default embeddings vacancy profession"`
	RequiredParams []string      `json:"required_params,omitempty"`
}

// NewStep declares a step and derives its class from the step name.
func NewStep(name, target string, opts ...StepOption) Step {
	step := Step{
		Name:    name,
		Target:  target,
		Timeout: DefaultStepTimeout,
		Class:   ClassifyStep(name),
	}

	for _, opt := range opts {
		opt(&step)
	}

	return step
}

type StepOption func(*Step)

func WithTimeout(timeout time.Duration) StepOption {
	return func(s *Step) { s.Timeout = timeout }
}

func WithParallelGroup(group string) StepOption {
	return func(s *Step) { s.ParallelGroup = group }
}

func WithClass(class StepClass) StepOption {
	return func(s *Step) { s.Class = class }
}

func WithRequiredParams(params ...string) StepOption {
	return func(s *Step) { s.RequiredParams = params }
}

// IsParallel reports whether the step carries a group tag.
func (s Step) IsParallel() bool {
	return s.ParallelGroup != ""
}

// ClassifyStep maps a step name to its class. Embeddings steps must be
// declared explicitly with WithClass.
func ClassifyStep(name string) StepClass {
	switch {
	case strings.Contains(name, "vacancy"):
		return StepClassVacancy
	case strings.Contains(name, "profession"), strings.Contains(name, "carreira"):
		return StepClassProfession
	default:
		return StepClassDefault
	}
}
