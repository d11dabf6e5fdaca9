package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"

	"github.com/pantrychef/backend/internal/infrastructure/persistence/gorm"
	"github.com/pantrychef/backend/internal/infrastructure/persistence/memory"
	"github.com/pantrychef/backend/internal/ports/outbound"
	"github.com/pantrychef/backend/test/testutils"
)

func TestMetricsCollector_HTTPMiddleware(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Delete("/api/pantry/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/api/pantry", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/pantry/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/pantry", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("DELETE", "/api/pantry/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/pantry", "200")))
}

func TestMetricsCollector_GenerationMetrics(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))

	m.ObserveGeneration("home", "parsed")
	m.ObserveGeneration("home", "parsed")
	m.ObserveGeneration("professional", "fallback")
	m.ObserveLLMRequest("watsonx", "success", 1200*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generationsTotal.WithLabelValues("home", "parsed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationsTotal.WithLabelValues("professional", "fallback")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.llmRequestDuration))
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))
	m.ObserveGeneration("home", "heuristic")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `pantrychef_generations_total{mode="home",source="heuristic"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestInstrumentGorm(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))
	db := testutils.NewSQLiteDB(t, true)
	require.NoError(t, InstrumentGorm(db, m))

	require.NoError(t, db.Create(&gorm.PantryItemModel{Name: "Rice", Quantity: 1, Unit: "kg"}).Error)
	var items []gorm.PantryItemModel
	require.NoError(t, db.Find(&items).Error)

	count, err := testutil.GatherAndCount(m.Registry(), "pantrychef_db_query_duration_seconds")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)
}

func TestInstrumentCache(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))
	cache := InstrumentCache(memory.NewCacheRepository(0), m)
	ctx := context.Background()

	_, err := cache.Get(ctx, "generation:abc")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "generation:abc", []byte("{}"), time.Minute))
	_, err = cache.Get(ctx, "generation:abc")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheOperations.WithLabelValues("get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheOperations.WithLabelValues("get", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheOperations.WithLabelValues("set", "ok")))
}

func TestTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(TracingConfig{ServiceName: "pantrychef", Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.Enabled())
	ctx, span := tp.StartSpan(context.Background(), "noop")
	span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestTraceIDFromContext(t *testing.T) {
	provider := sdktrace.NewTracerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	ctx, span := provider.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	id := TraceIDFromContext(ctx)
	assert.Len(t, id, 32)
	assert.False(t, strings.Trim(id, "0") == "")
}
