package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dukex/orchestrator/pkg/web"
)

// HealthcheckCommand probes /health of a running server. It exits non-zero
// when the server is unreachable or reports itself unhealthy.
func HealthcheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "healthcheck",
		Usage: "Check the health endpoint of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Sources: cli.EnvVars("HEALTH_CHECK_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			url := "http://" + net.JoinHostPort(command.String("host"), strconv.Itoa(command.Int("port"))) + "/health"

			health, err := checkHealth(ctx, url)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			fmt.Fprintf(command.Root().Writer, "Service is healthy: %s\n", health.Service)

			return nil
		},
	}
}

func checkHealth(ctx context.Context, url string) (*web.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to service at %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	var health web.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid health response: %w", err)
	}

	if health.Status != "healthy" {
		return nil, fmt.Errorf("service unhealthy: %s", health.Status)
	}

	return &health, nil
}
