package dedup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultCleanupSchedule = "@every 1m"

type entry struct {
	seenAt time.Time
	ttl    time.Duration
}

// MemoryTracker keeps keys in process memory. Expired keys are purged by a
// cron job and ignored on lookup.
type MemoryTracker struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	cron    *cron.Cron
	logger  *slog.Logger
}

type MemoryOption func(*MemoryTracker)

func WithClock(now func() time.Time) MemoryOption {
	return func(t *MemoryTracker) { t.now = now }
}

// NewMemoryTracker starts the cleanup job on schedule, a robfig/cron spec.
// An empty schedule disables periodic cleanup.
func NewMemoryTracker(logger *slog.Logger, schedule string, opts ...MemoryOption) (*MemoryTracker, error) {
	t := &MemoryTracker{
		entries: make(map[string]entry),
		now:     time.Now,
		logger:  logger,
	}

	for _, opt := range opts {
		opt(t)
	}

	if schedule == "" {
		return t, nil
	}

	t.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := t.cron.AddFunc(schedule, func() { t.Cleanup() }); err != nil {
		return nil, err
	}

	t.cron.Start()

	return t, nil
}

func (t *MemoryTracker) Seen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[key]; ok && now.Sub(e.seenAt) < e.ttl {
		return true, nil
	}

	t.entries[key] = entry{seenAt: now, ttl: ttl}

	return false, nil
}

// Cleanup drops expired keys and returns how many were removed.
func (t *MemoryTracker) Cleanup() int {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0

	for key, e := range t.entries {
		if now.Sub(e.seenAt) > e.ttl {
			delete(t.entries, key)
			removed++
		}
	}

	if removed > 0 {
		t.logger.Debug("expired keys removed", "removed", removed, "remaining", len(t.entries))
	}

	return removed
}

func (t *MemoryTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

func (t *MemoryTracker) Close() error {
	if t.cron != nil {
		<-t.cron.Stop().Done()
	}

	return nil
}
