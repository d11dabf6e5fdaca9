package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHealthCheck_NoCheckers(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Empty(t, response.Checks)
	assert.False(t, response.Timestamp.IsZero())
}

func TestHealthCheck_AggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Status
	}{
		{"all healthy", map[string]Status{"a": StatusHealthy, "b": StatusHealthy}, StatusHealthy},
		{"one degraded", map[string]Status{"a": StatusHealthy, "b": StatusDegraded}, StatusDegraded},
		{"unhealthy wins", map[string]Status{"a": StatusDegraded, "b": StatusUnhealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("1.0.0", zaptest.NewLogger(t))
			for name, status := range tt.statuses {
				hc.Register(name, newMockChecker(status))
			}

			response := hc.Check(context.Background())

			assert.Equal(t, tt.want, response.Status)
			require.Len(t, response.Checks, len(tt.statuses))
			assert.Equal(t, "a", response.Checks[0].Name)
			assert.Equal(t, "b", response.Checks[1].Name)
		})
	}
}

func TestHealthCheck_CachesResponse(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	checker := newMockChecker(StatusHealthy)
	hc.Register("db", checker)

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, 1, checker.calls())

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, 2, checker.calls())
}

func TestHealthCheck_Timeout(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.timeout = 20 * time.Millisecond
	hc.Register("slow", newMockChecker(StatusHealthy).withDelay(time.Second))

	response := hc.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, response.Status)
	assert.Equal(t, "Context cancelled", response.Checks[0].Message)
}

func TestHealthCheck_Recorder(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	recorder := &recordingRecorder{}
	hc.SetRecorder(recorder)
	hc.Register("db", newMockChecker(StatusHealthy))

	hc.Check(context.Background())

	require.Len(t, recorder.checks, 1)
	assert.Equal(t, "db", recorder.checks[0].Name)
}

func TestHealthCheck_ReadinessHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		hc := New("1.0.0", zaptest.NewLogger(t))
		hc.Register("db", newMockChecker(StatusHealthy))

		rec := httptest.NewRecorder()
		hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})

	t.Run("degraded is not ready", func(t *testing.T) {
		hc := New("1.0.0", zaptest.NewLogger(t))
		hc.Register("llm", newMockChecker(StatusDegraded).withMessage("not configured"))

		rec := httptest.NewRecorder()
		hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body["status"])
	})
}

func TestHealthCheck_Handler(t *testing.T) {
	hc := New("2.0.0", zaptest.NewLogger(t))
	hc.Register("db", newMockChecker(StatusUnhealthy).withMessage("connection refused"))

	rec := httptest.NewRecorder()
	hc.Handler()(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "2.0.0", body["version"])
	assert.Contains(t, body, "total_duration_ms")
}

func TestHealthCheck_LivenessHandler(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.Register("db", newMockChecker(StatusUnhealthy))

	rec := httptest.NewRecorder()
	hc.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

func TestDatabaseChecker(t *testing.T) {
	healthy := NewDatabaseChecker(fakePinger{}, "sqlite").Check(context.Background())
	assert.Equal(t, StatusHealthy, healthy.Status)
	assert.Equal(t, map[string]interface{}{"driver": "sqlite"}, healthy.Metadata)

	down := NewDatabaseChecker(fakePinger{err: errors.New("database is locked")}, "sqlite").Check(context.Background())
	assert.Equal(t, StatusUnhealthy, down.Status)
	assert.Equal(t, "database is locked", down.Message)
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()

	existing := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(existing, []byte(`{"pantry":[]}`), 0o644))
	assert.Equal(t, StatusHealthy, NewFileChecker(existing).Check(context.Background()).Status)

	notYet := NewFileChecker(filepath.Join(dir, "recipes.json")).Check(context.Background())
	assert.Equal(t, StatusHealthy, notYet.Status)
	assert.Contains(t, notYet.Message, "created on first write")

	missingDir := NewFileChecker(filepath.Join(dir, "nope", "db.json")).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, missingDir.Status)

	assert.Equal(t, StatusUnhealthy, NewFileChecker(dir).Check(context.Background()).Status)
}

func TestCustomChecker(t *testing.T) {
	checker := NewCustomChecker("llm", func(ctx context.Context) (Status, string, interface{}) {
		return StatusDegraded, "not configured", map[string]string{"provider": "watsonx"}
	})

	check := checker.Check(context.Background())

	assert.Equal(t, "llm", check.Name)
	assert.Equal(t, StatusDegraded, check.Status)
	assert.Equal(t, "not configured", check.Message)
}

func TestHealthMetrics_RecordCheck(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHealthMetrics(reg, DefaultMetricsConfig())

	metrics.RecordCheck(Check{Name: "database", Status: StatusHealthy, Duration: time.Millisecond})
	metrics.RecordCheck(Check{Name: "database", Status: StatusUnhealthy})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.checksTotal.WithLabelValues("database", "healthy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.checksTotal.WithLabelValues("database", "unhealthy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.healthStatus.WithLabelValues("database")))
}
