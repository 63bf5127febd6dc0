// Package dedup remembers recently processed requests so duplicates can be
// reported. Duplicates are never rejected.
package dedup

import (
	"context"
	"time"
)

const DefaultTTL = 5 * time.Minute

// Tracker records request keys for a limited time.
type Tracker interface {
	// Seen reports whether key was recorded within ttl. An unseen key is
	// recorded; a seen key keeps its first timestamp.
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Close() error
}

// Key builds the tracking key of a request.
func Key(userID, sessionID, identifier string) string {
	return userID + "_" + sessionID + "_" + identifier
}
