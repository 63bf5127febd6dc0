package flow

import "github.com/dukex/orchestrator/pkg/models"

// PayloadBuilder shapes the request body of a step from the execution context.
type PayloadBuilder func(execCtx *models.ExecutionContext) map[string]any

var (
	vacancyParams    = []string{"vacancy_id", "vacancy_name", "vacancy_description"}
	professionParams = []string{"position_id", "career_name", "position_name"}
)

var payloadBuilders = map[models.StepClass]PayloadBuilder{
	models.StepClassEmbeddings: func(execCtx *models.ExecutionContext) map[string]any {
		return map[string]any{"sessionId": execCtx.SessionID}
	},
	models.StepClassVacancy: func(execCtx *models.ExecutionContext) map[string]any {
		return withPresent(basePayload(execCtx), execCtx, vacancyParams)
	},
	models.StepClassProfession: func(execCtx *models.ExecutionContext) map[string]any {
		return withPresent(basePayload(execCtx), execCtx, professionParams)
	},
	models.StepClassDefault: basePayload,
}

// BuildPayload returns the body sent to step. Unknown classes get the base
// payload.
func BuildPayload(step models.Step, execCtx *models.ExecutionContext) map[string]any {
	build, ok := payloadBuilders[step.Class]
	if !ok {
		build = basePayload
	}

	return build(execCtx)
}

func basePayload(execCtx *models.ExecutionContext) map[string]any {
	return map[string]any{"user_id": execCtx.UserID}
}

func withPresent(payload map[string]any, execCtx *models.ExecutionContext, keys []string) map[string]any {
	for _, key := range keys {
		if v, ok := execCtx.Param(key); ok {
			payload[key] = v
		}
	}

	return payload
}
