package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dga_gateway/internal/handlers"
	"dga_gateway/internal/metrics"
	"dga_gateway/internal/models"
	"dga_gateway/internal/repository/citizens"
	"dga_gateway/internal/services/pipeline"
	"dga_gateway/internal/transport/auth"
)

type stubBroker struct{}

func (stubBroker) AgentID() string                             { return "agent-1" }
func (stubBroker) ObtainToken(context.Context) (string, error) { return "T", nil }

type stubRetriever struct{}

func (stubRetriever) Retrieve(context.Context, string, string, string) (models.CitizenRecord, error) {
	return models.CitizenRecord{UserID: "U1", CitizenID: "1234567890123", Firstname: "Somchai", Lastname: "Srisuk"}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := citizens.NewMemoryStore()
	p := pipeline.NewService(pipeline.Deps{Broker: stubBroker{}, Citizens: stubRetriever{}, Store: store, Metrics: m})
	h := handlers.New(p, nil, "ckey", map[string]handlers.Pinger{"store": store})

	hash, err := auth.HashKey("admin")
	require.NoError(t, err)

	return NewRouter(Options{
		APIPrefix:    "/test5/api",
		AdminKeyHash: hash,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, h)
}

func TestRoutesMountedAtRootAndPrefix(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/validate", "/test5/api/validate", "/health", "/test5/api/env-config"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestLoginThenMetrics(t *testing.T) {
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/test5/api/login", strings.NewReader(`{"appId":"A1","mToken":"M1"}`)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `dga_gateway_pipeline_runs_total{outcome="success",stage="done"} 1`)
}

func TestExportRequiresAdminKey(t *testing.T) {
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/export", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/test5/api/export", nil)
	req.Header.Set("Authorization", "Bearer admin")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	// authorized, but export is not configured
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestWrongMethod(t *testing.T) {
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
