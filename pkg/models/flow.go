package models

// FlowName identifies one orchestration use case.
type FlowName string

const (
	FlowUpdateProfile        FlowName = "update_profile"
	FlowFirstLogin           FlowName = "first_login"
	FlowCourseToProfession   FlowName = "course_to_profession"
	FlowAnalysisToProfession FlowName = "analysis_to_profession"
	FlowCourseToVacancy      FlowName = "course_to_vacancy"
	FlowAnalysisToVacancy    FlowName = "analysis_to_vacancy"
)

// Flow is an ordered list of steps. Contiguous runs of steps sharing a
// parallel group execute together; everything else runs in sequence.
type Flow struct {
	Name               FlowName `json:"name"                validate:"required"`
	Description        string   `json:"description"`
	RequiresEmbeddings bool     `json:"requires_embeddings"`
	Steps              []Step   `json:"steps"               validate:"dive"`
}

func (f Flow) StepNames() []string {
	names := make([]string, len(f.Steps))
	for i, step := range f.Steps {
		names[i] = step.Name
	}

	return names
}
