package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/flow"
	"github.com/dukex/orchestrator/pkg/router"
	"github.com/dukex/orchestrator/pkg/services"
	"github.com/dukex/orchestrator/pkg/transport"
)

func setupTestApp(t *testing.T, stepURL string) *fiber.App {
	t.Helper()

	c := catalog.Default(catalog.MapResolver{"SUGGEST_COURSE_PROFESSION_URL": stepURL})
	logger := slog.Default()

	runner := flow.NewRunner(transport.NewHTTPTransport(logger), c.Resolver(), router.DefaultSkipRules())
	orchestrator := services.NewOrchestrator(router.New(c, logger), flow.NewEngine(runner), logger)

	return NewAPI(logger, c, orchestrator).App()
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body []byte) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, raw
}

func TestAPI_RootEndpoint(t *testing.T) {
	status, body := doRequest(t, setupTestApp(t, ""), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"running"`)
}

func TestAPI_Liveness(t *testing.T) {
	status, body := doRequest(t, setupTestApp(t, ""), http.MethodGet, "/livez", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))
}

func TestAPI_Health(t *testing.T) {
	status, body := doRequest(t, setupTestApp(t, ""), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestAPI_Orchestrate_EndToEnd(t *testing.T) {
	var calls atomic.Int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		assert.Equal(t, "ml-orchestrator", r.Header.Get("X-Orchestrator"))

		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "user-1", payload["user_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	app := setupTestApp(t, backend.URL)

	body := []byte(`{"user_id":"user-1","session_id":"s-1","process_only_profession_course":true}`)

	for _, path := range []string{"/orchestrate", "/"} {
		status, raw := doRequest(t, app, http.MethodPost, path, body)
		require.Equal(t, http.StatusOK, status, string(raw))

		var resp services.Response
		require.NoError(t, json.Unmarshal(raw, &resp))

		assert.Equal(t, "course_to_profession", string(resp.FlowName))
		assert.Equal(t, flow.RunStateCompleted, resp.State)
		require.Len(t, resp.Steps, 1)
		assert.Equal(t, "suggest_course_profession", resp.Steps[0].StepName)
		assert.Equal(t, 1, resp.Summary.Successful)
		assert.False(t, resp.HasCriticalErrors)
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestAPI_Orchestrate_ValidationError(t *testing.T) {
	status, raw := doRequest(t, setupTestApp(t, ""), http.MethodPost, "/orchestrate", []byte(`{"session_id":"s-1"}`))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "Missing required field: user_id")
}

func TestAPI_Flows(t *testing.T) {
	app := setupTestApp(t, "http://course")

	status, raw := doRequest(t, app, http.MethodGet, "/flows", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"total_count":6`)

	status, raw = doRequest(t, app, http.MethodGet, "/flows/course_to_profession", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "suggest_course_profession")

	status, _ = doRequest(t, app, http.MethodGet, "/flows/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPrintFlows(t *testing.T) {
	c := catalog.Default(catalog.MapResolver{"SUGGEST_COURSE_PROFESSION_URL": "http://course"})

	var out strings.Builder
	require.NoError(t, printFlows(&out, c))

	text := out.String()
	assert.Contains(t, text, "first_login")
	assert.Contains(t, text, "suggest_course_profession (configured)")
	assert.Contains(t, text, "match_candidato (unconfigured)")
	assert.Contains(t, text, "parallel:profession_parallel")
}
