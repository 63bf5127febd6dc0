package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/models"
	"github.com/dukex/orchestrator/pkg/services"
)

const (
	ServiceName    = "ml-orchestrator"
	ServiceTitle   = "ML Orchestrator"
	ServiceVersion = "1.0.0"
)

// Orchestrator runs one orchestration request.
type Orchestrator interface {
	Handle(ctx context.Context, params map[string]any) (*services.Response, error)
}

type APIHandlers struct {
	orchestrator Orchestrator
	catalog      *catalog.Catalog
	validator    *validator.Validate
}

func NewAPIHandlers(orchestrator Orchestrator, c *catalog.Catalog, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		orchestrator: orchestrator,
		catalog:      c,
		validator:    validator,
	}
}

func (h *APIHandlers) Root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": ServiceTitle,
		"version": ServiceVersion,
		"status":  "running",
		"endpoints": fiber.Map{
			"orchestrate": "/orchestrate",
			"health":      "/health",
			"flows":       "/flows",
		},
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if h.orchestrator == nil {
		problem := fiber.Map{"detail": "Service not ready"}

		return c.Status(http.StatusServiceUnavailable).JSON(problem)
	}

	return c.JSON(HealthResponse{
		Status:    "healthy",
		Timestamp: unixSeconds(time.Now()),
		Service:   ServiceName,
	})
}

// Orchestrate runs the flow selected by the request body. Flows that hit a
// critical error still answer 200 with partial results.
func (h *APIHandlers) Orchestrate(c fiber.Ctx) error {
	var params map[string]any
	if err := json.Unmarshal(c.Body(), &params); err != nil || params == nil {
		return badRequest(c, "Invalid request: body must be a JSON object")
	}

	resp, err := h.orchestrator.Handle(c.Context(), params)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(resp)
}

func (h *APIHandlers) ListFlows(c fiber.Ctx) error {
	flows := h.catalog.Flows()

	out := make([]FlowResponse, len(flows))
	for i, f := range flows {
		out[i] = newFlowResponse(f, h.configured)
	}

	return c.JSON(fiber.Map{
		"flows":       out,
		"total_count": len(out),
	})
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	params := FlowPathParams{Name: c.Params("name")}
	if err := h.validator.Struct(params); err != nil {
		return badRequest(c, "Invalid flow name: "+err.Error())
	}

	f, err := h.catalog.Flow(models.FlowName(params.Name))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(newFlowResponse(f, h.configured))
}

func (h *APIHandlers) configured(step models.Step) bool {
	return h.catalog.Resolve(step) != ""
}
