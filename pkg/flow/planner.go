// Package flow executes the steps of a flow as ordered groups.
package flow

import "github.com/dukex/orchestrator/pkg/models"

// Group is a maximal run of adjacent steps sharing a parallel tag, or a
// single untagged step.
type Group []models.Step

func (g Group) Parallel() bool {
	return len(g) > 1
}

// Tag returns the parallel tag shared by the group, "" for untagged steps.
func (g Group) Tag() string {
	if len(g) == 0 {
		return ""
	}

	return g[0].ParallelGroup
}

func (g Group) StepNames() []string {
	names := make([]string, len(g))
	for i, step := range g {
		names[i] = step.Name
	}

	return names
}

// Plan partitions steps into groups in a single pass. Only adjacent steps
// with the same tag merge; a tag that reappears after an interruption opens
// a new group. Flattening the result yields steps unchanged.
func Plan(steps []models.Step) []Group {
	var (
		groups  []Group
		current Group
		tag     string
	)

	flush := func() {
		if len(current) > 0 {
			groups = append(groups, current)
			current = nil
		}
	}

	for _, step := range steps {
		switch {
		case !step.IsParallel():
			flush()
			groups = append(groups, Group{step})
			tag = ""
		case len(current) > 0 && step.ParallelGroup == tag:
			current = append(current, step)
		default:
			flush()
			current = Group{step}
			tag = step.ParallelGroup
		}
	}

	flush()

	return groups
}
