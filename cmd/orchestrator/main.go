// Package main provides the orchestrator server and its companion commands.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/orchestrator/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:                  "orchestrator",
		Usage:                 "Orchestrate ML flows across remote services",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			RunCommand(),
			FlowsCommand(),
			HealthcheckCommand(),
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.WithModule("orchestrator").ErrorContext(ctx, "Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
