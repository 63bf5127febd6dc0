package flow

import (
	"fmt"

	"github.com/dukex/orchestrator/pkg/models"
)

// Credential keys tried, in order, when the request carries no token for
// the step itself.
var fallbackTokenKeys = map[models.StepClass][]string{
	models.StepClassVacancy: {
		"match_candidato_token",
		"match_analysis_user_vacancy_token",
		"gap_analysis_user_vacancy_token",
		"suggest_course_vacancy_token",
	},
	models.StepClassProfession: {
		"match_user_profession_token",
		"match_user_career_token",
		"match_analysis_user_profession_token",
		"gap_analysis_user_profession_token",
		"suggest_course_profession_token",
	},
}

// TokenFor finds the credential for step. The step specific
// "<step>_token" wins when truthy; otherwise the first fallback key present
// in the request is used, even if its value turns out to be empty.
func TokenFor(step models.Step, params map[string]any) (token string, source string) {
	key := step.Name + "_token"
	if models.Truthy(params, key) {
		return stringify(params[key]), key
	}

	for _, fallback := range fallbackTokenKeys[step.Class] {
		if v, ok := params[fallback]; ok {
			if !models.Truthy(params, fallback) {
				return "", ""
			}

			return stringify(v), fallback
		}
	}

	return "", ""
}

// BuildHeaders returns the per-step headers. Defaults such as Content-Type
// are added by the transport.
func BuildHeaders(step models.Step, execCtx *models.ExecutionContext) map[string]string {
	headers := make(map[string]string)

	if token, _ := TokenFor(step, execCtx.RequestData); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return headers
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
