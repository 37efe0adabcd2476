package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pageforge/internal/build"
	"github.com/conneroisu/pageforge/internal/viewcache"
)

func TestMetricsCountRequests(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest(StateRender)
	m.ObserveRequest(StateRender)
	m.ObserveRequest(StateNotReady)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestsTotal.WithLabelValues(StateRender)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues(StateNotReady)))
}

func TestMetricsRebuilds(t *testing.T) {
	m := NewMetrics()

	m.ObserveRebuild(nil, 10*time.Millisecond)
	m.ObserveRebuild(errors.New("x"), 20*time.Millisecond)
	m.ObserveRebuild(nil, 30*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.rebuildsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rebuildsTotal.WithLabelValues("failure")))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(StateRender)
		m.ObserveRender(200, time.Millisecond)
		m.ObserveRebuild(nil, time.Millisecond)
		m.HotClientConnected(1)
	})
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	stats := viewcache.Stats{Hits: 3, Misses: 1, Entries: 2}
	m.RegisterCacheStats(func() viewcache.Stats { return stats })
	m.ObserveRender(http.StatusNotFound, 5*time.Millisecond)
	m.HotClientConnected(2)
	m.HotClientConnected(-1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "test_view_cache_entries 2")
	assert.Contains(t, body, "test_view_cache_hits 3")
	assert.Contains(t, body, "test_hot_reload_clients 1")
	assert.Contains(t, body, `test_render_duration_seconds_count{status="Not Found"} 1`)
	assert.Same(t, reg, m.Registry())
}

func TestHealthMonitorHealthy(t *testing.T) {
	hm := NewHealthMonitor(nil, "v1.2.3")
	hm.RegisterCheck(ReadyHealthChecker(func() bool { return true }, false))
	hm.RegisterCheck(DirectoryHealthChecker("build_dir", t.TempDir(), true))
	hm.RegisterCheck(GoroutineHealthChecker())

	health := hm.GetHealth(context.Background())
	assert.Equal(t, HealthStatusHealthy, health.Status)
	assert.Equal(t, "v1.2.3", health.Version)
	require.Len(t, health.Checks, 3)
	assert.Equal(t, "build", health.Checks[0].Name)
	assert.Equal(t, "build_dir", health.Checks[1].Name)
	assert.Equal(t, "goroutines", health.Checks[2].Name)
}

func TestHealthMonitorStatuses(t *testing.T) {
	notReady := func() bool { return false }

	t.Run("dev waiting is degraded", func(t *testing.T) {
		hm := NewHealthMonitor(nil, "")
		hm.RegisterCheck(ReadyHealthChecker(notReady, true))
		assert.Equal(t, HealthStatusDegraded, hm.GetHealth(context.Background()).Status)
	})

	t.Run("production without build is unhealthy", func(t *testing.T) {
		hm := NewHealthMonitor(nil, "")
		hm.RegisterCheck(ReadyHealthChecker(notReady, false))
		assert.Equal(t, HealthStatusUnhealthy, hm.GetHealth(context.Background()).Status)
	})

	t.Run("non critical failure is degraded", func(t *testing.T) {
		hm := NewHealthMonitor(nil, "")
		hm.RegisterCheck(DirectoryHealthChecker("static", "/definitely/missing", false))
		assert.Equal(t, HealthStatusDegraded, hm.GetHealth(context.Background()).Status)
	})
}

func TestHealthHTTPHandler(t *testing.T) {
	hm := NewHealthMonitor(nil, "")
	hm.RegisterCheck(ReadyHealthChecker(func() bool { return false }, false))

	rec := httptest.NewRecorder()
	hm.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, HealthStatusUnhealthy, body.Status)
	require.Len(t, body.Checks, 1)
	assert.Equal(t, "No build installed", body.Checks[0].Message)
	assert.True(t, body.Checks[0].Critical)
}

func TestRebuildHealthChecker(t *testing.T) {
	stats := build.BuildStats{TotalBuilds: 4, SuccessfulBuilds: 3, FailedBuilds: 1}
	checker := RebuildHealthChecker(func() build.BuildStats { return stats })

	check := checker.Check(context.Background())
	assert.Equal(t, "rebuild", check.Name)
	assert.Equal(t, HealthStatusHealthy, check.Status)
	assert.Equal(t, float64(75), check.Metadata["success_rate"])

	stats.LastError = errors.New("syntax error")
	check = checker.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, check.Status)
	assert.Equal(t, "syntax error", check.Metadata["last_error"])
	assert.False(t, check.Critical)
}

func TestHotReloadHealthChecker(t *testing.T) {
	check := HotReloadHealthChecker(func() int { return 2 }).Check(context.Background())
	assert.Equal(t, HealthStatusHealthy, check.Status)
	assert.Equal(t, 2, check.Metadata["clients"])
}
