package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dukex/orchestrator/pkg/transport"
)

// MockTransport is a mock implementation of transport.Transport interface.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Invoke(ctx context.Context, req transport.Request) (*transport.Response, error) {
	args := m.Called(ctx, req)

	resp, _ := args.Get(0).(*transport.Response)

	return resp, args.Error(1)
}
