package catalog

import (
	"time"

	"github.com/dukex/orchestrator/pkg/models"
)

const (
	StepCreateEmbeddings            = "create_embeddings"
	StepMatchCandidato              = "match_candidato"
	StepMatchAnalysisUserVacancy    = "match_analysis_user_vacancy"
	StepGapAnalysisUserVacancy      = "gap_analysis_user_vacancy"
	StepSuggestCourseVacancy        = "suggest_course_vacancy"
	StepMatchUsuarioProfissao       = "match_usuario_profissao"
	StepMatchUsuarioCarreira        = "match_usuario_carreira"
	StepMatchAnalysisUserProfession = "match_analysis_user_profession"
	StepGapAnalysisUserProfession   = "gap_analysis_user_profession"
	StepSuggestCourseProfession     = "suggest_course_profession"
	VacancyParallelGroup            = "vacancy_parallel"
	ProfessionParallelGroup         = "profession_parallel"
	embeddingsTimeout               = 300 * time.Second
)

// DefaultDeclaration returns the built-in steps and flows.
func DefaultDeclaration() Declaration {
	return Declaration{
		Steps: []models.Step{
			models.NewStep(StepCreateEmbeddings, "DEFAULT_CREATE_USER_EMBEDDINGS_URL",
				models.WithTimeout(embeddingsTimeout),
				models.WithClass(models.StepClassEmbeddings),
				models.WithRequiredParams("session_id"),
			),

			models.NewStep(StepMatchCandidato, "DEFAULT_MATCH_CANDIDATO_URL",
				models.WithRequiredParams("user_id")),
			models.NewStep(StepMatchAnalysisUserVacancy, "DEFAULT_MATCH_ANALYSIS_USER_VACANCY_URL",
				models.WithParallelGroup(VacancyParallelGroup),
				models.WithRequiredParams("user_id")),
			models.NewStep(StepGapAnalysisUserVacancy, "DEFAULT_GAP_ANALYSIS_USER_VACANCY_URL",
				models.WithRequiredParams("user_id")),
			models.NewStep(StepSuggestCourseVacancy, "DEFAULT_SUGGEST_COURSE_VACANCY_URL",
				models.WithParallelGroup(VacancyParallelGroup),
				models.WithRequiredParams("user_id")),

			models.NewStep(StepMatchUsuarioProfissao, "MATCH_USUARIO_PROFISSAO_URL",
				models.WithRequiredParams("user_id")),
			models.NewStep(StepMatchUsuarioCarreira, "MATCH_USUARIO_CARREIRA_URL",
				models.WithParallelGroup(ProfessionParallelGroup),
				models.WithRequiredParams("user_id")),
			models.NewStep(StepMatchAnalysisUserProfession, "MATCH_ANALYSIS_USER_PROFESSION_URL",
				models.WithParallelGroup(ProfessionParallelGroup),
				models.WithRequiredParams("user_id")),
			models.NewStep(StepGapAnalysisUserProfession, "GAP_ANALYSIS_USER_PROFESSION_URL",
				models.WithRequiredParams("user_id")),
			models.NewStep(StepSuggestCourseProfession, "SUGGEST_COURSE_PROFESSION_URL",
				models.WithRequiredParams("user_id")),
		},
		Flows: []FlowDeclaration{
			{
				Name:               models.FlowUpdateProfile,
				Description:        "Full flow including user embeddings creation",
				RequiresEmbeddings: true,
				Steps:              append([]string{StepCreateEmbeddings}, fullFlowSteps()...),
			},
			{
				Name:        models.FlowFirstLogin,
				Description: "Initial flow without embeddings creation",
				Steps:       fullFlowSteps(),
			},
			{
				Name:        models.FlowCourseToProfession,
				Description: "Course suggestions for a profession only",
				Steps:       []string{StepSuggestCourseProfession},
			},
			{
				Name:        models.FlowAnalysisToProfession,
				Description: "Skills analysis for a profession",
				Steps:       []string{StepMatchAnalysisUserProfession, StepGapAnalysisUserProfession},
			},
			{
				Name:        models.FlowCourseToVacancy,
				Description: "Course suggestions for a vacancy only",
				Steps:       []string{StepSuggestCourseVacancy},
			},
			{
				Name:        models.FlowAnalysisToVacancy,
				Description: "Skills analysis for a vacancy",
				Steps:       []string{StepMatchAnalysisUserVacancy, StepGapAnalysisUserVacancy},
			},
		},
	}
}

func fullFlowSteps() []string {
	return []string{
		StepMatchUsuarioProfissao,
		StepMatchCandidato,
		StepMatchUsuarioCarreira,
		StepMatchAnalysisUserProfession,
		StepGapAnalysisUserProfession,
		StepSuggestCourseProfession,
		StepMatchAnalysisUserVacancy,
		StepGapAnalysisUserVacancy,
		StepSuggestCourseVacancy,
	}
}

// Default builds the catalog from DefaultDeclaration.
func Default(resolver Resolver) *Catalog {
	c, err := Build(DefaultDeclaration(), resolver)
	if err != nil {
		panic(err)
	}

	return c
}
