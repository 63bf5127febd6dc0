package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/orchestrator/pkg/dedup"
)

// NewTracker returns a Redis backed tracker when redisURL is set, otherwise
// an in-memory one with periodic cleanup.
func NewTracker(ctx context.Context, redisURL string, logger *slog.Logger) (dedup.Tracker, error) {
	if redisURL != "" {
		return dedup.NewRedisTracker(ctx, redisURL, logger)
	}

	return dedup.NewMemoryTracker(logger, dedup.DefaultCleanupSchedule)
}
