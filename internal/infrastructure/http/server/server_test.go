package server

import (
	"bytes"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/application/generator"
	"github.com/pantrychef/backend/internal/application/kitchen"
	pantryapp "github.com/pantrychef/backend/internal/application/pantry"
	"github.com/pantrychef/backend/internal/application/prompt"
	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/infrastructure/ai"
	"github.com/pantrychef/backend/internal/infrastructure/config"
	"github.com/pantrychef/backend/internal/infrastructure/http/handlers"
	"github.com/pantrychef/backend/internal/infrastructure/http/middleware"
	"github.com/pantrychef/backend/internal/infrastructure/monitoring"
	gormstore "github.com/pantrychef/backend/internal/infrastructure/persistence/gorm"
	"github.com/pantrychef/backend/pkg/healthcheck"
	"github.com/pantrychef/backend/test/testutils"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "pantrychef", Version: "test", Environment: "test"},
		Server: config.ServerConfig{
			Host:              "127.0.0.1",
			Port:              8000,
			RequestTimeout:    5 * time.Second,
			AllowedOrigins:    []string{"http://localhost:3000"},
			EnableCompression: true,
		},
		Monitoring: config.MonitoringConfig{EnableMetrics: true},
	}
}

func mustSQLDB(t *testing.T, db *gorm.DB) *sql.DB {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	return sqlDB
}

type ServerTestSuite struct {
	suite.Suite
	server  *Server
	metrics *monitoring.MetricsCollector
	is      *testutils.HTTPAssertions
}

func (suite *ServerTestSuite) SetupTest() {
	logger := zaptest.NewLogger(suite.T())
	db := testutils.NewSQLiteDB(suite.T(), true)
	repo := gormstore.NewPantryRepository(db)

	gen := generator.NewGenerator(nil, nil, nil, generator.Config{}, logger)
	kitchenService := kitchen.NewService(repo, gormstore.NewRecipeLogRepository(db), prompt.NewBuilder(), gen, logger)
	pantryService := pantryapp.NewService(repo, pantryapp.Config{UpsertByName: true}, logger)

	registry := healthcheck.New("test", logger)
	registry.Register("database", healthcheck.NewDatabaseChecker(mustSQLDB(suite.T(), db), "sqlite"))

	suite.metrics = monitoring.NewMetricsCollector(logger)
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 2}, logger)

	suite.server = NewServer(testConfig(), logger, Handlers{
		Pantry:  handlers.NewPantryHandlers(pantryService, logger),
		Kitchen: handlers.NewKitchenHandlers(kitchenService, logger),
		Health:  handlers.NewHealthHandlers(registry, ai.NewHealthChecker(nil, false, logger), kitchenService, "test", logger),
	}, suite.metrics, limiter)
	suite.is = testutils.NewHTTPAssertions(suite.T())
}

func (suite *ServerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:40000"
	rec := httptest.NewRecorder()
	suite.server.Router().ServeHTTP(rec, req)
	return rec
}

func (suite *ServerTestSuite) TestPantryRouteAliases() {
	var item pantry.Item
	suite.is.Success(suite.do(http.MethodPost, "/api/pantry", `{"name":"Rice","quantity":1,"unit":"kg"}`), http.StatusCreated, &item)
	suite.is.Success(suite.do(http.MethodPost, "/api/pantry/add", `{"name":"Salt"}`), http.StatusCreated, nil)
	suite.is.Success(suite.do(http.MethodPost, "/pantry", `{"name":"Pepper"}`), http.StatusCreated, nil)

	for _, path := range []string{"/api/pantry", "/pantry"} {
		var items []pantry.Item
		suite.is.Success(suite.do(http.MethodGet, path, ""), http.StatusOK, &items)
		suite.Len(items, 3, path)
	}

	suite.is.Success(suite.do(http.MethodPut, "/api/pantry/"+item.ID, `{"quantity":2}`), http.StatusOK, nil)
	suite.is.Success(suite.do(http.MethodPut, "/api/pantry/update/"+item.ID, `{"unit":"g"}`), http.StatusOK, nil)

	suite.is.Success(suite.do(http.MethodDelete, "/api/pantry/delete/"+item.ID, ""), http.StatusOK, nil)
	suite.is.ErrorResponse(suite.do(http.MethodDelete, "/pantry/"+item.ID, ""), http.StatusNotFound, "PANTRY_ITEM_NOT_FOUND")

	for _, path := range []string{"/api/shopping-list", "/shopping-list"} {
		suite.is.Success(suite.do(http.MethodPost, path, `{"ingredients":["salt","Saffron"]}`), http.StatusOK, nil)
	}
}

func (suite *ServerTestSuite) TestHealthRoutes() {
	for _, path := range []string{"/api/health", "/health"} {
		rec := suite.do(http.MethodGet, path, "")
		suite.Equal(http.StatusOK, rec.Code, path)
		suite.Contains(rec.Body.String(), `"watsonx_status":"not configured"`)
	}

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/api/ready", "").Code)
}

func (suite *ServerTestSuite) TestGenerationIsRateLimited() {
	suite.is.Success(suite.do(http.MethodPost, "/api/pantry", `{"name":"Chicken","quantity":500,"unit":"g"}`), http.StatusCreated, nil)

	suite.is.Success(suite.do(http.MethodPost, "/api/generate_recipe", `{"mode":"home"}`), http.StatusOK, nil)
	suite.is.Success(suite.do(http.MethodPost, "/plan-meal", `{}`), http.StatusOK, nil)

	rec := suite.do(http.MethodPost, "/api/meal-plan", `{"cookingMode":"home"}`)
	suite.is.ErrorResponse(rec, http.StatusTooManyRequests, "TOO_MANY_REQUESTS")
	suite.NotEmpty(rec.Header().Get("Retry-After"))

	// pantry routes share no bucket with generation
	suite.is.Success(suite.do(http.MethodGet, "/api/pantry", ""), http.StatusOK, nil)
}

func (suite *ServerTestSuite) TestUnknownRoutes() {
	suite.is.ErrorResponse(suite.do(http.MethodGet, "/api/recipes", ""), http.StatusNotFound, "NOT_FOUND")

	rec := suite.do(http.MethodPatch, "/api/shopping-list", "")
	suite.Equal(http.StatusMethodNotAllowed, rec.Code)
}

func (suite *ServerTestSuite) TestMiddleware() {
	rec := suite.do(http.MethodGet, "/api/pantry", "")

	suite.is.SecurityHeaders(rec)
	suite.NotEmpty(rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodOptions, "/api/pantry", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	suite.server.Router().ServeHTTP(rec, req)
	suite.Equal("http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func (suite *ServerTestSuite) TestMetricsEndpoint() {
	suite.do(http.MethodGet, "/api/pantry", "")

	rec := suite.do(http.MethodGet, "/metrics", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.True(strings.Contains(rec.Body.String(), "pantrychef_http_requests_total"))
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestNewServer_Address(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	cfg.Server.EnableCompression = false

	s := NewServer(cfg, logger, Handlers{
		Pantry:  handlers.NewPantryHandlers(nil, logger),
		Kitchen: handlers.NewKitchenHandlers(nil, logger),
		Health:  handlers.NewHealthHandlers(healthcheck.New("test", logger), ai.NewHealthChecker(nil, false, logger), kitchen.NewService(nil, nil, prompt.NewBuilder(), generator.NewGenerator(nil, nil, nil, generator.Config{}, logger), logger), "test", logger),
	}, nil, nil)

	assert.Equal(t, "127.0.0.1:8000", s.server.Addr)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
