// Package catalog holds the immutable flow and step declarations the
// orchestrator is started with.
package catalog

import (
	"fmt"
	"sort"

	"github.com/dukex/orchestrator/pkg/models"
	"github.com/go-playground/validator/v10"
)

// FlowDeclaration lists a flow's steps by name.
type FlowDeclaration struct {
	Name               models.FlowName
	Description        string
	RequiresEmbeddings bool
	Steps              []string
}

// Declaration is the static input a Catalog is built from.
type Declaration struct {
	Steps []models.Step
	Flows []FlowDeclaration
}

// Catalog maps flow names to flow definitions and step names to steps. It is
// built once at startup and only read afterwards.
type Catalog struct {
	steps    map[string]models.Step
	flows    map[models.FlowName]models.Flow
	resolver Resolver
}

func Build(decl Declaration, resolver Resolver) (*Catalog, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if resolver == nil {
		resolver = EnvResolver{}
	}

	c := &Catalog{
		steps:    make(map[string]models.Step, len(decl.Steps)),
		flows:    make(map[models.FlowName]models.Flow, len(decl.Flows)),
		resolver: resolver,
	}

	for _, step := range decl.Steps {
		if err := validate.Struct(step); err != nil {
			return nil, &Error{Op: "declare step", Name: step.Name, Err: fmt.Errorf("%w: %v", ErrInvalidCatalog, err)}
		}

		if _, exists := c.steps[step.Name]; exists {
			return nil, &Error{Op: "declare step", Name: step.Name, Err: ErrDuplicateStep}
		}

		c.steps[step.Name] = step
	}

	for _, fd := range decl.Flows {
		flow := models.Flow{
			Name:               fd.Name,
			Description:        fd.Description,
			RequiresEmbeddings: fd.RequiresEmbeddings,
			Steps:              make([]models.Step, 0, len(fd.Steps)),
		}

		for _, name := range fd.Steps {
			step, ok := c.steps[name]
			if !ok {
				return nil, &Error{Op: "declare flow " + string(fd.Name), Name: name, Err: ErrUnknownStep}
			}

			flow.Steps = append(flow.Steps, step)
		}

		if err := validate.Struct(flow); err != nil {
			return nil, &Error{Op: "declare flow", Name: string(fd.Name), Err: fmt.Errorf("%w: %v", ErrInvalidCatalog, err)}
		}

		c.flows[fd.Name] = flow
	}

	return c, nil
}

func (c *Catalog) Flow(name models.FlowName) (models.Flow, error) {
	flow, ok := c.flows[name]
	if !ok {
		return models.Flow{}, &Error{Op: "get flow", Name: string(name), Err: ErrUnknownFlow}
	}

	steps := make([]models.Step, len(flow.Steps))
	copy(steps, flow.Steps)
	flow.Steps = steps

	return flow, nil
}

func (c *Catalog) Step(name string) (models.Step, bool) {
	step, ok := c.steps[name]

	return step, ok
}

// Flows returns every flow ordered by name.
func (c *Catalog) Flows() []models.Flow {
	flows := make([]models.Flow, 0, len(c.flows))
	for _, flow := range c.flows {
		flows = append(flows, flow)
	}

	sort.Slice(flows, func(i, j int) bool { return flows[i].Name < flows[j].Name })

	return flows
}

// Resolve returns the address configured for the step, or "" if none.
func (c *Catalog) Resolve(step models.Step) string {
	return c.resolver.Resolve(step.Target)
}

func (c *Catalog) Resolver() Resolver {
	return c.resolver
}
