// Package router selects the flow for a request and narrows its steps.
package router

import (
	"log/slog"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/models"
)

// Request flags that drive flow selection and step filtering.
const (
	ParamProcessOnlyProfessionCourse = "process_only_profession_course"
	ParamProcessOnlyProfessionSkills = "process_only_profession_skills"
	ParamProcessOnlyVacancyCourse    = "process_only_vacancy_course"
	ParamProcessOnlyVacancySkills    = "process_only_vacancy_skills"
	ParamCreateUserEmbedding         = "create_user_embedding"
	ParamProcessVacancy              = "process_vacancy_orchestrator"
	ParamProcessProfession           = "process_profession_orchestrator"
	ParamUserID                      = "user_id"
	ParamSessionID                   = "session_id"
)

type Router struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func New(c *catalog.Catalog, logger *slog.Logger) *Router {
	return &Router{
		catalog: c,
		logger:  logger,
	}
}

var flowSelectors = []struct {
	param  string
	flow   models.FlowName
	reason string
}{
	{ParamProcessOnlyProfessionCourse, models.FlowCourseToProfession, "process_only_profession_course=true"},
	{ParamProcessOnlyProfessionSkills, models.FlowAnalysisToProfession, "process_only_profession_skills=true"},
	{ParamProcessOnlyVacancyCourse, models.FlowCourseToVacancy, "process_only_vacancy_course=true"},
	{ParamProcessOnlyVacancySkills, models.FlowAnalysisToVacancy, "process_only_vacancy_skills=true"},
	{ParamCreateUserEmbedding, models.FlowUpdateProfile, "create_user_embedding=true"},
}

// DetermineFlow picks the flow for a request. The "process only" flags take
// precedence over embeddings creation; first_login is the fallback.
func (r *Router) DetermineFlow(params map[string]any) models.FlowName {
	for _, sel := range flowSelectors {
		if models.Truthy(params, sel.param) {
			r.logger.Info("flow selected", "flow_name", sel.flow, "reason", sel.reason)

			return sel.flow
		}
	}

	r.logger.Info("flow selected", "flow_name", models.FlowFirstLogin, "reason", "default_flow")

	return models.FlowFirstLogin
}

func (r *Router) FlowDefinition(name models.FlowName) (models.Flow, error) {
	flow, err := r.catalog.Flow(name)
	if err != nil {
		r.logger.Error("unknown flow", "flow_name", name)

		return models.Flow{}, err
	}

	return flow, nil
}

// FilterSteps drops vacancy or profession steps when the request disables
// that side of the orchestration. Both sides are enabled by default.
func (r *Router) FilterSteps(flow models.Flow, params map[string]any) []models.Step {
	processVacancy := models.BoolParam(params, ParamProcessVacancy, true)
	processProfession := models.BoolParam(params, ParamProcessProfession, true)

	if processVacancy && processProfession {
		return flow.Steps
	}

	filtered := make([]models.Step, 0, len(flow.Steps))

	for _, step := range flow.Steps {
		if step.Class == models.StepClassVacancy && !processVacancy {
			r.logger.Debug("step filtered out", "step_name", step.Name, "reason", "vacancy_disabled")

			continue
		}

		if step.Class == models.StepClassProfession && !processProfession {
			r.logger.Debug("step filtered out", "step_name", step.Name, "reason", "profession_disabled")

			continue
		}

		filtered = append(filtered, step)
	}

	r.logger.Info("steps filtered",
		"original_count", len(flow.Steps),
		"filtered_count", len(filtered),
		"process_vacancy", processVacancy,
		"process_profession", processProfession,
	)

	return filtered
}

// ValidateFlowParams lists the parameters missing for the flow.
func (r *Router) ValidateFlowParams(name models.FlowName, params map[string]any) []string {
	var errs []string

	if !models.Truthy(params, ParamUserID) {
		errs = append(errs, "Missing required parameter: user_id")
	}

	if !models.Truthy(params, ParamSessionID) {
		errs = append(errs, "Missing required parameter: session_id")
	}

	if flow, err := r.catalog.Flow(name); err == nil {
		if flow.RequiresEmbeddings && !models.Truthy(params, ParamSessionID) {
			errs = append(errs, "Flow requires embeddings but session_id is missing")
		}
	}

	if len(errs) > 0 {
		r.logger.Warn("flow validation failed", "flow_name", name, "errors", errs)
	}

	return errs
}
