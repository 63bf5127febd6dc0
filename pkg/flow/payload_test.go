package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/models"
)

func newExecCtx(params map[string]any) *models.ExecutionContext {
	return models.NewExecutionContext("exec-1", "user-1", "session-1", models.FlowFirstLogin, params)
}

func stepNamed(name string) models.Step {
	decl := catalog.DefaultDeclaration()
	for _, s := range decl.Steps {
		if s.Name == name {
			return s
		}
	}

	return models.NewStep(name, "")
}

func TestBuildPayload(t *testing.T) {
	params := map[string]any{
		"vacancy_id":    "v1",
		"vacancy_name":  "Engineer",
		"position_id":   "p1",
		"career_name":   nil,
		"position_name": "Backend",
		"other":         "ignored",
	}

	tests := []struct {
		step string
		want map[string]any
	}{
		{catalog.StepCreateEmbeddings, map[string]any{"sessionId": "session-1"}},
		{catalog.StepMatchAnalysisUserVacancy, map[string]any{"user_id": "user-1", "vacancy_id": "v1", "vacancy_name": "Engineer"}},
		{catalog.StepMatchUsuarioCarreira, map[string]any{"user_id": "user-1", "position_id": "p1", "position_name": "Backend"}},
		{catalog.StepMatchAnalysisUserProfession, map[string]any{"user_id": "user-1", "position_id": "p1", "position_name": "Backend"}},
		{catalog.StepMatchCandidato, map[string]any{"user_id": "user-1"}},
		{catalog.StepMatchUsuarioProfissao, map[string]any{"user_id": "user-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPayload(stepNamed(tt.step), newExecCtx(params)))
		})
	}
}

func TestBuildPayload_KeepsFalsyPresentValues(t *testing.T) {
	payload := BuildPayload(stepNamed(catalog.StepSuggestCourseVacancy), newExecCtx(map[string]any{"vacancy_description": ""}))

	assert.Equal(t, map[string]any{"user_id": "user-1", "vacancy_description": ""}, payload)
}

func TestTokenFor(t *testing.T) {
	tests := []struct {
		name       string
		step       string
		params     map[string]any
		wantToken  string
		wantSource string
	}{
		{
			name:       "step specific token",
			step:       catalog.StepMatchAnalysisUserVacancy,
			params:     map[string]any{"match_analysis_user_vacancy_token": "own", "match_candidato_token": "generic"},
			wantToken:  "own",
			wantSource: "match_analysis_user_vacancy_token",
		},
		{
			name:       "empty step token falls back",
			step:       catalog.StepSuggestCourseVacancy,
			params:     map[string]any{"suggest_course_vacancy_token": "", "gap_analysis_user_vacancy_token": "gap"},
			wantToken:  "gap",
			wantSource: "gap_analysis_user_vacancy_token",
		},
		{
			name:       "vacancy fallback order",
			step:       catalog.StepGapAnalysisUserVacancy,
			params:     map[string]any{"suggest_course_vacancy_token": "last", "match_candidato_token": "first"},
			wantToken:  "first",
			wantSource: "match_candidato_token",
		},
		{
			name:       "profession fallback",
			step:       catalog.StepMatchUsuarioCarreira,
			params:     map[string]any{"gap_analysis_user_profession_token": "gap"},
			wantToken:  "gap",
			wantSource: "gap_analysis_user_profession_token",
		},
		{
			name:   "first present fallback wins even when empty",
			step:   catalog.StepGapAnalysisUserProfession,
			params: map[string]any{"match_user_profession_token": "", "match_user_career_token": "career"},
		},
		{
			name:   "default class has no fallback",
			step:   catalog.StepMatchUsuarioProfissao,
			params: map[string]any{"match_user_profession_token": "t"},
		},
		{
			name:   "no token",
			step:   catalog.StepMatchCandidato,
			params: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, source := TokenFor(stepNamed(tt.step), tt.params)

			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestBuildHeaders(t *testing.T) {
	headers := BuildHeaders(stepNamed(catalog.StepMatchCandidato), newExecCtx(map[string]any{"match_candidato_token": "abc"}))
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"}, headers)

	headers = BuildHeaders(stepNamed(catalog.StepMatchCandidato), newExecCtx(nil))
	assert.Empty(t, headers)
}
