package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockTracker is a mock implementation of dedup.Tracker interface.
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)

	return args.Bool(0), args.Error(1)
}

func (m *MockTracker) Close() error {
	args := m.Called()

	return args.Error(0)
}
