// Package web provides HTTP request and response types for the orchestration API.
package web

import (
	"time"

	"github.com/dukex/orchestrator/pkg/flow"
	"github.com/dukex/orchestrator/pkg/models"
)

// FlowPathParams identifies a flow in the URL.
type FlowPathParams struct {
	Name string `json:"name" validate:"required,max=64,excludesall=/ "`
}

// StepResponse represents a declared step.
type StepResponse struct {
	Name          string           `json:"name"`
	Class         models.StepClass `json:"class"`
	Target        string           `json:"target"`
	Configured    bool             `json:"configured"`
	TimeoutSecond float64          `json:"timeout_seconds"`
	ParallelGroup string           `json:"parallel_group,omitempty"`
}

// GroupResponse represents one execution group of a flow.
type GroupResponse struct {
	Parallel bool           `json:"parallel"`
	Tag      string         `json:"tag,omitempty"`
	Steps    []StepResponse `json:"steps"`
}

// FlowResponse represents a flow and the groups it executes as.
type FlowResponse struct {
	Name               models.FlowName `json:"name"`
	Description        string          `json:"description"`
	RequiresEmbeddings bool            `json:"requires_embeddings"`
	Groups             []GroupResponse `json:"groups"`
}

func newFlowResponse(f models.Flow, configured func(models.Step) bool) FlowResponse {
	resp := FlowResponse{
		Name:               f.Name,
		Description:        f.Description,
		RequiresEmbeddings: f.RequiresEmbeddings,
	}

	for _, g := range flow.Plan(f.Steps) {
		group := GroupResponse{Parallel: g.Parallel(), Tag: g.Tag()}

		for _, s := range g {
			group.Steps = append(group.Steps, StepResponse{
				Name:          s.Name,
				Class:         s.Class,
				Target:        s.Target,
				Configured:    configured(s),
				TimeoutSecond: s.Timeout.Seconds(),
				ParallelGroup: s.ParallelGroup,
			})
		}

		resp.Groups = append(resp.Groups, group)
	}

	return resp
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Service   string  `json:"service"`
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
