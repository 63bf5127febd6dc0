package cmd

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/orchestrator/pkg/dedup"
)

func TestNewTracker(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("memory", func(t *testing.T) {
		tracker, err := NewTracker(context.Background(), "", logger)
		require.NoError(t, err)
		assert.IsType(t, &dedup.MemoryTracker{}, tracker)
		assert.NoError(t, tracker.Close())
	})

	t.Run("redis", func(t *testing.T) {
		server := miniredis.RunT(t)

		tracker, err := NewTracker(context.Background(), "redis://"+server.Addr(), logger)
		require.NoError(t, err)
		assert.IsType(t, &dedup.RedisTracker{}, tracker)
		assert.NoError(t, tracker.Close())
	})
}
