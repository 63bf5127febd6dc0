package catalog

import (
	"fmt"
	"os"
	"time"

	"github.com/dukex/orchestrator/pkg/models"
	"gopkg.in/yaml.v3"
)

// Overlay adjusts the built-in declaration from a YAML file. Only the fields
// set in the file are changed.
//
//	steps:
//	  match_candidato:
//	    target: MATCH_URL
//	    timeout: 45s
//	    parallel_group: vacancy_parallel
//	targets:
//	  MATCH_URL: http://match.internal/run
type Overlay struct {
	Steps   map[string]StepOverlay `yaml:"steps"`
	Targets map[string]string      `yaml:"targets"`
}

type StepOverlay struct {
	Target        *string `yaml:"target"`
	Timeout       *string `yaml:"timeout"`
	ParallelGroup *string `yaml:"parallel_group"`
}

func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	return ParseOverlay(data)
}

func ParseOverlay(data []byte) (*Overlay, error) {
	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	return &overlay, nil
}

// Apply returns a copy of decl with the overlay's step changes applied.
func (o *Overlay) Apply(decl Declaration) (Declaration, error) {
	out := Declaration{
		Steps: make([]models.Step, len(decl.Steps)),
		Flows: decl.Flows,
	}
	copy(out.Steps, decl.Steps)

	index := make(map[string]int, len(out.Steps))
	for i, step := range out.Steps {
		index[step.Name] = i
	}

	for name, so := range o.Steps {
		i, ok := index[name]
		if !ok {
			return Declaration{}, &Error{Op: "apply overlay", Name: name, Err: ErrUnknownStep}
		}

		step := &out.Steps[i]

		if so.Target != nil {
			step.Target = *so.Target
		}

		if so.ParallelGroup != nil {
			step.ParallelGroup = *so.ParallelGroup
		}

		if so.Timeout != nil {
			timeout, err := time.ParseDuration(*so.Timeout)
			if err != nil {
				return Declaration{}, &Error{Op: "apply overlay", Name: name, Err: fmt.Errorf("%w: %v", ErrInvalidCatalog, err)}
			}

			step.Timeout = timeout
		}
	}

	return out, nil
}

// Resolver returns a resolver serving the overlay's targets before falling
// back to next.
func (o *Overlay) Resolver(next Resolver) Resolver {
	if len(o.Targets) == 0 {
		return next
	}

	return ChainResolver{MapResolver(o.Targets), next}
}

// Load builds the catalog from the built-in declaration, applying the overlay
// file at path when path is not empty.
func Load(path string) (*Catalog, error) {
	decl := DefaultDeclaration()
	var resolver Resolver = EnvResolver{}

	if path != "" {
		overlay, err := LoadOverlay(path)
		if err != nil {
			return nil, err
		}

		decl, err = overlay.Apply(decl)
		if err != nil {
			return nil, err
		}

		resolver = overlay.Resolver(resolver)
	}

	return Build(decl, resolver)
}
