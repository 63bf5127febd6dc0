package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status":"healthy","service":"ml-orchestrator"}`},
		{name: "unhealthy", status: http.StatusOK, body: `{"status":"degraded"}`, wantErr: "service unhealthy: degraded"},
		{name: "bad status", status: http.StatusServiceUnavailable, body: `{}`, wantErr: "status 503"},
		{name: "bad body", status: http.StatusOK, body: `nope`, wantErr: "invalid health response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			health, err := checkHealth(context.Background(), srv.URL+"/health")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ml-orchestrator", health.Service)
		})
	}
}

func TestCheckHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := checkHealth(context.Background(), url+"/health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot connect")
}
