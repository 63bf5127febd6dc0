package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/flow"
)

// FlowsCommand prints every flow with its execution groups and whether each
// step target resolves in the current environment.
func FlowsCommand() *cli.Command {
	return &cli.Command{
		Name:  "flows",
		Usage: "List flows and their execution groups",
		Flags: []cli.Flag{
			catalogFlag(),
		},
		Action: func(_ context.Context, command *cli.Command) error {
			c, err := catalog.Load(command.String("catalog-file"))
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			var out io.Writer = os.Stdout
			if w := command.Root().Writer; w != nil {
				out = w
			}

			return printFlows(out, c)
		},
	}
}

func printFlows(out io.Writer, c *catalog.Catalog) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	for _, f := range c.Flows() {
		fmt.Fprintf(w, "%s\t%s\n", f.Name, f.Description)

		for i, g := range flow.Plan(f.Steps) {
			mode := "sequential"
			if g.Parallel() {
				mode = "parallel:" + g.Tag()
			}

			var steps []string

			for _, s := range g {
				status := "configured"
				if c.Resolve(s) == "" {
					status = "unconfigured"
				}

				steps = append(steps, fmt.Sprintf("%s (%s)", s.Name, status))
			}

			fmt.Fprintf(w, "  %d\t%s\t%s\n", i+1, mode, strings.Join(steps, ", "))
		}
	}

	return w.Flush()
}
