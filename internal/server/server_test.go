package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/qsim/internal/config"
	"github.com/aristath/qsim/internal/di"
	"github.com/aristath/qsim/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()

	cfg := &config.Config{
		DataDir:     t.TempDir(),
		Port:        8080,
		Workers:     1,
		CORSOrigins: []string{"*"},
	}

	container, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)

	sched := scheduler.New(container.EventManager, zerolog.Nop())

	srv := New(Config{
		Log:       zerolog.Nop(),
		Config:    cfg,
		Container: container,
		Scheduler: sched,
		Port:      cfg.Port,
		DevMode:   true,
	})

	t.Cleanup(func() {
		container.SimulationService.Shutdown()
		container.Close()
	})

	return srv, container
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "qsim", body["service"])
}

func TestRouter_ServesModuleRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/settings", http.StatusOK},
		{http.MethodGet, "/api/circuits/algorithms", http.StatusOK},
		{http.MethodGet, "/api/simulations/cache/stats", http.StatusOK},
		{http.MethodGet, "/api/system/status", http.StatusOK},
		{http.MethodGet, "/api/system/jobs", http.StatusOK},
		{http.MethodGet, "/api/system/database/stats", http.StatusOK},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_RunSimulation(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/simulations/run",
		strings.NewReader(`{"algorithm":"bell","qubits":2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			Algorithm string  `json:"algorithm"`
			Fidelity  float64 `json:"fidelity"`
			RunID     string  `json:"run_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bell", body.Data.Algorithm)
	assert.NotEmpty(t, body.Data.RunID)
	assert.InDelta(t, 0.98, body.Data.Fidelity, 1e-9)
}

func TestRouter_UpdateSettingThroughAPI(t *testing.T) {
	srv, container := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/settings/max_qubits",
		strings.NewReader(`{"value":8}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 8, container.SettingsService.MaxQubits())
}

func TestLoggingMiddleware_PassesRequestsThrough(t *testing.T) {
	srv, _ := newTestServer(t)

	probe := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, probe)

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
