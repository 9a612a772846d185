package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kafkanator/internal/config"
	"github.com/aristath/kafkanator/internal/di"
)

func setupTestServer(t *testing.T) (*Server, *di.JobInstances) {
	t.Helper()
	cfg := &config.Config{
		DataDir:             t.TempDir(),
		Port:                8080,
		DevMode:             true,
		ClusterWorkers:      2,
		SchedulerEnabled:    true,
		HealthCheckSchedule: "@hourly",
		S3:                  &config.S3Config{},
	}
	log := zerolog.New(nil).Level(zerolog.Disabled)

	container, jobs, err := di.Wire(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	return New(Config{Log: log, Config: cfg, Container: container}), jobs
}

func request(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	}
	return w, response
}

func TestHealth(t *testing.T) {
	s, _ := setupTestServer(t)

	w, response := request(t, s, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "kafkanator", data["service"])
}

func TestHealth_DatabaseClosed(t *testing.T) {
	s, _ := setupTestServer(t)
	require.NoError(t, s.container.ReportsDB.Close())

	w, response := request(t, s, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", response["data"].(map[string]interface{})["status"])
}

func TestRoutes_Indices(t *testing.T) {
	s, _ := setupTestServer(t)

	w, response := request(t, s, "POST", "/api/indices/compute", `{"kind":"robin-hood","values":[5,3,5,6,9]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 3.8/28, response["data"].(map[string]interface{})["value"].(float64), 1e-12)

	w, response = request(t, s, "POST", "/api/indices/compute", `{"kind":"gini","values":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "domain", response["error"].(map[string]interface{})["kind"])
}

func TestRoutes_FairnessAndReports(t *testing.T) {
	s, _ := setupTestServer(t)

	w, _ := request(t, s, "POST", "/api/fairness/parity",
		`{"source":{"kind":"inline","columns":["sex","Prediction"],"rows":[["f","1"],["m","0"]]},"sensitive":"sex"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, response := request(t, s, "POST", "/api/reports",
		`{"name":"r","source":{"kind":"inline","columns":["g","x"],"rows":[["a","1"],["a","3"]]},"group_column":"g","income_column":"x","kind":"gini","schedule":"@daily"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := response["data"].(map[string]interface{})["id"].(string)

	w, response = request(t, s, "GET", "/api/system/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	jobs := response["data"].(map[string]interface{})["jobs"].([]interface{})
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.(map[string]interface{})["name"].(string))
	}
	assert.Equal(t, []string{"health_check", "report:" + id}, names)

	w, _ = request(t, s, "DELETE", "/api/reports/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, s.container.Scheduler.Jobs(), 1)
}

func TestSystemStatus(t *testing.T) {
	s, _ := setupTestServer(t)

	w, response := request(t, s, "GET", "/api/system/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.NotEmpty(t, data["go_version"])
	assert.Equal(t, "reports", data["database"].(map[string]interface{})["name"])
}

func TestTriggerHealthCheck(t *testing.T) {
	s, jobs := setupTestServer(t)

	w, _ := request(t, s, "POST", "/api/system/jobs/health-check", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.SetJobs(jobs.HealthCheck)
	w, response := request(t, s, "POST", "/api/system/jobs/health-check", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", response["data"].(map[string]interface{})["status"])
}

func TestCORSPreflight(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/indices/compute", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
