// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/application/generator"
	"github.com/pantrychef/backend/internal/application/kitchen"
	pantryapp "github.com/pantrychef/backend/internal/application/pantry"
	"github.com/pantrychef/backend/internal/application/prompt"
	"github.com/pantrychef/backend/internal/infrastructure/ai"
	"github.com/pantrychef/backend/internal/infrastructure/ai/ollama"
	"github.com/pantrychef/backend/internal/infrastructure/ai/watsonx"
	"github.com/pantrychef/backend/internal/infrastructure/config"
	"github.com/pantrychef/backend/internal/infrastructure/http/handlers"
	"github.com/pantrychef/backend/internal/infrastructure/http/middleware"
	"github.com/pantrychef/backend/internal/infrastructure/http/server"
	"github.com/pantrychef/backend/internal/infrastructure/monitoring"
	"github.com/pantrychef/backend/internal/infrastructure/persistence/database"
	gormstore "github.com/pantrychef/backend/internal/infrastructure/persistence/gorm"
	"github.com/pantrychef/backend/internal/infrastructure/persistence/jsonfile"
	"github.com/pantrychef/backend/internal/infrastructure/persistence/memory"
	rediscache "github.com/pantrychef/backend/internal/infrastructure/persistence/redis"
	"github.com/pantrychef/backend/internal/ports/inbound"
	"github.com/pantrychef/backend/internal/ports/outbound"
	"github.com/pantrychef/backend/pkg/healthcheck"
	"github.com/pantrychef/backend/pkg/logger"
)

// Storage drivers
const (
	StorageGorm = "gorm"
	StorageFile = "file"
)

// ConfigPath is the optional configuration file passed on the command line
type ConfigPath string

// New returns the application graph for the given configuration file
func New(configPath string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(configPath)),
		Module,
	)
}

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	StorageModule,
	CacheModule,
	AIModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// loggerConfig enables development output for debug runs and the development environment
func loggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug || cfg.IsDevelopment(),
	}
}

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, *viper.Viper, error) {
		return config.LoadWithViper(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(loggerConfig(cfg))
	},
)

// MonitoringModule provides metrics, tracing and the health registry
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
	NewHealthRegistry,
)

// DatabaseModule provides the relational connection. It is nil when the
// pantry lives in JSON files.
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger, metrics *monitoring.MetricsCollector) (*gorm.DB, error) {
		if cfg.Storage.Driver == StorageFile {
			return nil, nil
		}

		db, err := database.Open(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, cfg.Database, log); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		if err := monitoring.InstrumentGorm(db, metrics); err != nil {
			log.Warn("Failed to instrument database queries", zap.Error(err))
		}

		return db, nil
	},
)

// StorageModule provides the pantry store and the recipe log
var StorageModule = fx.Provide(
	func(cfg *config.Config, db *gorm.DB, log *zap.Logger) outbound.PantryRepository {
		if db == nil {
			log.Info("Using JSON file pantry store", zap.String("path", cfg.Storage.PantryFile))
			return jsonfile.NewPantryStore(cfg.Storage.PantryFile, log)
		}
		return gormstore.NewPantryRepository(db)
	},
	func(cfg *config.Config, db *gorm.DB) outbound.RecipeLog {
		if db == nil {
			return jsonfile.NewRecipeLog(cfg.Storage.RecipesFile)
		}
		return gormstore.NewRecipeLogRepository(db)
	},
)

// CacheModule provides the generation cache. The Redis client is nil unless
// cache.driver is "redis".
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, error) {
		if cfg.Cache.Driver != "redis" {
			return nil, nil
		}
		return rediscache.NewClient(cfg.Redis, log)
	},
	func(lc fx.Lifecycle, client goredis.UniversalClient, metrics *monitoring.MetricsCollector, log *zap.Logger) outbound.CacheRepository {
		if client != nil {
			lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
			return monitoring.InstrumentCache(rediscache.NewCacheRepository(client, log), metrics)
		}

		log.Info("Using in-memory generation cache")
		cache := memory.NewCacheRepository(time.Minute)
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			cache.Close()
			return nil
		}})
		return monitoring.InstrumentCache(cache, metrics)
	},
)

// AIModule provides the text generator. It is nil in mock mode, which makes
// every generation use the fallback planners.
var AIModule = fx.Provide(
	NewTextGenerator,
	func(cfg *config.Config, client outbound.TextGenerator, log *zap.Logger) *ai.HealthChecker {
		return ai.NewHealthChecker(client, !cfg.UseMockAI(), log)
	},
)

// NewTextGenerator selects the provider named by ai.provider
func NewTextGenerator(cfg *config.Config, log *zap.Logger) (outbound.TextGenerator, error) {
	if cfg.UseMockAI() {
		log.Info("Using mock text generation")
		return nil, nil
	}

	switch strings.ToLower(cfg.AI.Provider) {
	case "watsonx", "":
		client := watsonx.NewClient(watsonx.Config{
			APIKey:    cfg.Watsonx.APIKey,
			ProjectID: cfg.Watsonx.ProjectID,
			URL:       cfg.Watsonx.URL,
			ModelID:   cfg.Watsonx.ModelID,
			IAMURL:    cfg.Watsonx.IAMURL,
			Version:   cfg.Watsonx.Version,
			Timeout:   cfg.AI.Timeout,
		}, log)
		if !cfg.WatsonxConfigured() {
			log.Warn("watsonx credentials missing, recipes will use fallbacks")
		}
		return client, nil
	case "ollama":
		return ollama.NewClient(ollama.Config{
			Host:    cfg.Ollama.Host,
			Model:   cfg.Ollama.Model,
			Timeout: cfg.AI.Timeout,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	prompt.NewBuilder,
	func(
		cfg *config.Config,
		client outbound.TextGenerator,
		cache outbound.CacheRepository,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) *generator.Generator {
		if !cfg.AI.EnableCache {
			cache = nil
		}
		return generator.NewGenerator(client, cache, metrics, generator.Config{
			Timeout:     cfg.AI.Timeout,
			EnableCache: cfg.AI.EnableCache,
			CacheTTL:    cfg.AI.CacheTTL,
		}, log)
	},
	func(cfg *config.Config, repo outbound.PantryRepository, log *zap.Logger) inbound.PantryService {
		return pantryapp.NewService(repo, pantryapp.Config{UpsertByName: cfg.Pantry.UpsertByName}, log)
	},
	fx.Annotate(
		kitchen.NewService,
		fx.As(new(inbound.KitchenService)),
	),
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	handlers.NewPantryHandlers,
	handlers.NewKitchenHandlers,
	func(
		cfg *config.Config,
		registry *healthcheck.HealthCheck,
		llm *ai.HealthChecker,
		kitchen inbound.KitchenService,
		log *zap.Logger,
	) *handlers.HealthHandlers {
		return handlers.NewHealthHandlers(registry, llm, kitchen, cfg.App.Version, log)
	},
	func(cfg *config.Config, log *zap.Logger) *middleware.RateLimiter {
		if !cfg.RateLimit.Enable {
			return nil
		}
		return middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			CleanupInterval:   cfg.RateLimit.CleanupInterval,
		}, log)
	},
	func(
		cfg *config.Config,
		log *zap.Logger,
		pantry *handlers.PantryHandlers,
		kitchen *handlers.KitchenHandlers,
		health *handlers.HealthHandlers,
		metrics *monitoring.MetricsCollector,
		limiter *middleware.RateLimiter,
	) *server.Server {
		return server.NewServer(cfg, log, server.Handlers{
			Pantry:  pantry,
			Kitchen: kitchen,
			Health:  health,
		}, metrics, limiter)
	},
)

// HealthDeps are the optional dependencies probed by the readiness check
type HealthDeps struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Metrics *monitoring.MetricsCollector
	DB      *gorm.DB
	Redis   goredis.UniversalClient
}

// NewHealthRegistry registers the storage and cache checks. The LLM is left
// out: mock or unconfigured providers must not keep the service unready.
func NewHealthRegistry(deps HealthDeps) (*healthcheck.HealthCheck, error) {
	registry := healthcheck.New(deps.Config.App.Version, deps.Logger)
	registry.SetRecorder(healthcheck.NewHealthMetrics(deps.Metrics.Registry(), healthcheck.DefaultMetricsConfig()))

	if deps.DB != nil {
		sqlDB, err := deps.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		registry.Register("database", healthcheck.NewDatabaseChecker(sqlDB, deps.Config.Database.Driver))
	} else {
		registry.Register("storage", healthcheck.NewFileChecker(deps.Config.Storage.PantryFile))
	}

	if deps.Redis != nil {
		registry.Register("redis", healthcheck.NewRedisChecker(deps.Redis))
	}

	return registry, nil
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// LifecycleDeps are the components started and stopped with the application
type LifecycleDeps struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Viper      *viper.Viper
	Logger     *zap.Logger
	DB         *gorm.DB
	Server     *server.Server
	Tracing    *monitoring.TracingProvider
	Limiter    *middleware.RateLimiter
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(deps LifecycleDeps) {
	log := deps.Logger
	cfg := deps.Config
	ctx, cancel := context.WithCancel(context.Background())

	deps.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("Starting PantryChef backend",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("storage", cfg.Storage.Driver),
				zap.String("ai_provider", cfg.AI.Provider),
				zap.Bool("mock_ai", cfg.UseMockAI()),
			)

			config.Watch(deps.Viper, log)

			if deps.Limiter != nil {
				go deps.Limiter.Run(ctx)
			}

			// Start HTTP server
			go func() {
				if err := deps.Server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = deps.Shutdowner.Shutdown()
				}
			}()

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			log.Info("Shutting down PantryChef backend")
			cancel()

			// Shutdown HTTP server
			if err := deps.Server.Shutdown(stopCtx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			if err := deps.Tracing.Shutdown(stopCtx); err != nil {
				log.Error("Failed to flush traces", zap.Error(err))
			}

			// Close database connections
			if deps.DB != nil {
				if err := database.Close(deps.DB); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			// Flush logs
			_ = log.Sync()

			return nil
		},
	})
}
