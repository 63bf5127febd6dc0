package router

import (
	"github.com/dukex/orchestrator/pkg/models"
)

// SkipEvaluator decides whether a step should be skipped for a request. It
// must be a pure function of its inputs.
type SkipEvaluator interface {
	ShouldSkip(step models.Step, params map[string]any) (bool, string)
}

type SkipEvaluatorFunc func(step models.Step, params map[string]any) (bool, string)

func (f SkipEvaluatorFunc) ShouldSkip(step models.Step, params map[string]any) (bool, string) {
	return f(step, params)
}

// SkipRule skips Step when every parameter in AllOf is truthy.
type SkipRule struct {
	Step   string
	AllOf  []string
	Reason string
}

func (r SkipRule) matches(step models.Step, params map[string]any) bool {
	if step.Name != r.Step || len(r.AllOf) == 0 {
		return false
	}

	for _, key := range r.AllOf {
		if !models.Truthy(params, key) {
			return false
		}
	}

	return true
}

// SkipRules evaluates rules in order; the first match wins.
type SkipRules []SkipRule

func (rules SkipRules) ShouldSkip(step models.Step, params map[string]any) (bool, string) {
	for _, rule := range rules {
		if rule.matches(step, params) {
			return true, rule.Reason
		}
	}

	return false, ""
}

// DefaultSkipRules skips matching steps whose answer the caller already supplied.
func DefaultSkipRules() SkipRules {
	return SkipRules{
		{Step: "match_usuario_profissao", AllOf: []string{"position_id"}, Reason: "position_id provided"},
		{Step: "match_candidato", AllOf: []string{"vacancy_id"}, Reason: "vacancy_id provided"},
		{Step: "match_usuario_carreira", AllOf: []string{"position_id", "career_name"}, Reason: "both position_id and career_name provided"},
	}
}
