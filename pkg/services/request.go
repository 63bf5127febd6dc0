package services

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dukex/orchestrator/pkg/models"
)

//go:embed schema/request.json
var requestSchemaJSON []byte

var requestSchema = mustLoadSchema(requestSchemaJSON)

var requiredFields = []string{"user_id", "session_id"}

var booleanFields = []string{
	"create_user_embedding",
	"process_profession_orchestrator",
	"process_vacancy_orchestrator",
	"process_only_profession_course",
	"process_only_profession_skills",
	"process_only_vacancy_course",
	"process_only_vacancy_skills",
}

var tokenFields = []string{
	"create_user_embeddings_token",
	"match_candidato_token",
	"match_analysis_user_vacancy_token",
	"gap_analysis_user_vacancy_token",
	"suggest_course_vacancy_token",
	"match_user_profession_token",
	"match_user_career_token",
	"match_analysis_user_profession_token",
	"gap_analysis_user_profession_token",
	"suggest_course_profession_token",
}

func mustLoadSchema(data []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Errorf("invalid request schema: %w", err))
	}

	return schema
}

// ValidateRequest checks the request body against the request schema and
// returns one message per offending field, in a stable order.
func ValidateRequest(params map[string]any) ([]string, error) {
	problems := make(map[string]string)

	for _, field := range requiredFields {
		if !models.Truthy(params, field) {
			problems[field] = "Missing required field: " + field
		}
	}

	if params == nil {
		params = map[string]any{}
	}

	result, err := requestSchema.Validate(gojsonschema.NewGoLoader(params))
	if err != nil {
		return nil, fmt.Errorf("failed to validate request: %w", err)
	}

	for _, re := range result.Errors() {
		field := re.Field()
		if re.Type() == "required" {
			field = fmt.Sprint(re.Details()["property"])
		}

		if _, reported := problems[field]; reported {
			continue
		}

		problems[field] = fieldMessage(field, re)
	}

	return orderProblems(problems), nil
}

func fieldMessage(field string, re gojsonschema.ResultError) string {
	switch {
	case slices.Contains(requiredFields, field):
		return fmt.Sprintf("Field '%s' must be a string", field)
	case slices.Contains(booleanFields, field):
		return fmt.Sprintf("Field '%s' must be a boolean", field)
	case slices.Contains(tokenFields, field):
		return fmt.Sprintf("Field '%s' must be a string if provided", field)
	default:
		return re.String()
	}
}

func orderProblems(problems map[string]string) []string {
	var errs []string

	for _, fields := range [][]string{requiredFields, booleanFields, tokenFields} {
		for _, field := range fields {
			if msg, ok := problems[field]; ok {
				errs = append(errs, msg)
				delete(problems, field)
			}
		}
	}

	rest := make([]string, 0, len(problems))
	for _, msg := range problems {
		rest = append(rest, msg)
	}

	sort.Strings(rest)

	return append(errs, rest...)
}
