package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   []string
	}{
		{
			name:   "valid",
			params: map[string]any{"user_id": "u1", "session_id": "s1", "create_user_embedding": true, "match_candidato_token": nil},
		},
		{
			name:   "missing required",
			params: map[string]any{},
			want:   []string{"Missing required field: user_id", "Missing required field: session_id"},
		},
		{
			name:   "nil params",
			params: nil,
			want:   []string{"Missing required field: user_id", "Missing required field: session_id"},
		},
		{
			name:   "empty string is missing",
			params: map[string]any{"user_id": "", "session_id": "s1"},
			want:   []string{"Missing required field: user_id"},
		},
		{
			name:   "non string identity",
			params: map[string]any{"user_id": float64(42), "session_id": "s1"},
			want:   []string{"Field 'user_id' must be a string"},
		},
		{
			name: "boolean flags and tokens",
			params: map[string]any{
				"user_id":                      "u1",
				"session_id":                   "s1",
				"process_only_vacancy_skills":  "yes",
				"create_user_embedding":        float64(1),
				"suggest_course_vacancy_token": float64(7),
			},
			want: []string{
				"Field 'create_user_embedding' must be a boolean",
				"Field 'process_only_vacancy_skills' must be a boolean",
				"Field 'suggest_course_vacancy_token' must be a string if provided",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRequest(tt.params)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got)
		})
	}
}
