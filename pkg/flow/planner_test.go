package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukex/orchestrator/pkg/models"
)

func step(name, tag string) models.Step {
	return models.NewStep(name, name+"_URL", models.WithParallelGroup(tag))
}

func flatten(groups []Group) []models.Step {
	var out []models.Step
	for _, g := range groups {
		out = append(out, g...)
	}

	return out
}

func groupNames(groups []Group) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = g.StepNames()
	}

	return out
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name  string
		steps []models.Step
		want  [][]string
	}{
		{
			name:  "empty",
			steps: nil,
			want:  [][]string{},
		},
		{
			name:  "untagged steps are singletons",
			steps: []models.Step{step("a", ""), step("b", ""), step("c", "")},
			want:  [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name:  "contiguous tag merges",
			steps: []models.Step{step("a", ""), step("b", "X"), step("c", "X"), step("d", "")},
			want:  [][]string{{"a"}, {"b", "c"}, {"d"}},
		},
		{
			name:  "interrupted tag does not merge",
			steps: []models.Step{step("a", "X"), step("b", ""), step("c", "X")},
			want:  [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name:  "different adjacent tags split",
			steps: []models.Step{step("a", "X"), step("b", "X"), step("c", "Y"), step("d", "Y")},
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "single tagged step is its own group",
			steps: []models.Step{step("a", "X")},
			want:  [][]string{{"a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := Plan(tt.steps)

			assert.Equal(t, tt.want, groupNames(groups))
			assert.Equal(t, len(tt.steps), len(flatten(groups)))
		})
	}
}

func TestPlan_Lossless(t *testing.T) {
	tags := []string{"", "X", "X", "", "Y", "X", "X", "X", "", "Y", "Y"}

	steps := make([]models.Step, len(tags))
	for i, tag := range tags {
		steps[i] = step(string(rune('a'+i)), tag)
	}

	groups := Plan(steps)

	assert.Equal(t, steps, flatten(groups))

	for i, g := range groups {
		assert.NotEmpty(t, g)

		for _, s := range g {
			assert.Equal(t, g.Tag(), s.ParallelGroup, "group %d mixes tags", i)
		}

		if g.Tag() == "" {
			assert.Len(t, g, 1)
		}

		if i > 0 && g.Tag() != "" {
			assert.NotEqual(t, groups[i-1].Tag(), g.Tag(), "adjacent groups %d and %d share a tag", i-1, i)
		}
	}
}

func TestGroup_Accessors(t *testing.T) {
	assert.False(t, Group{}.Parallel())
	assert.Empty(t, Group{}.Tag())

	g := Group{step("a", "X"), step("b", "X")}
	assert.True(t, g.Parallel())
	assert.Equal(t, "X", g.Tag())
	assert.Equal(t, []string{"a", "b"}, g.StepNames())
}
