// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every environment override (PANTRYCHEF_SERVER_PORT)
const EnvPrefix = "PANTRYCHEF"

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Pantry     PantryConfig     `mapstructure:"pantry"`
	AI         AIConfig         `mapstructure:"ai"`
	Watsonx    WatsonxConfig    `mapstructure:"watsonx"`
	Ollama     OllamaConfig     `mapstructure:"ollama"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// DatabaseConfig contains relational database configuration
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// StorageConfig selects the pantry store
type StorageConfig struct {
	// Driver is "gorm" or "file"
	Driver      string `mapstructure:"driver"`
	PantryFile  string `mapstructure:"pantry_file"`
	RecipesFile string `mapstructure:"recipes_file"`
}

// PantryConfig contains pantry behaviour switches
type PantryConfig struct {
	UpsertByName bool `mapstructure:"upsert_by_name"`
}

// AIConfig contains text generation configuration
type AIConfig struct {
	// Provider is "watsonx", "ollama" or "mock"
	Provider    string        `mapstructure:"provider"`
	UseMock     bool          `mapstructure:"use_mock"`
	Timeout     time.Duration `mapstructure:"timeout"`
	EnableCache bool          `mapstructure:"enable_cache"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// WatsonxConfig contains IBM watsonx.ai credentials
type WatsonxConfig struct {
	APIKey    string `mapstructure:"api_key"`
	ProjectID string `mapstructure:"project_id"`
	URL       string `mapstructure:"url"`
	ModelID   string `mapstructure:"model_id"`
	IAMURL    string `mapstructure:"iam_url"`
	Version   string `mapstructure:"version"`
}

// OllamaConfig contains the local Ollama endpoint
type OllamaConfig struct {
	Host  string `mapstructure:"host"`
	Model string `mapstructure:"model"`
}

// CacheConfig selects the generation cache backend
type CacheConfig struct {
	// Driver is "memory" or "redis"
	Driver string `mapstructure:"driver"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics bool    `mapstructure:"enable_metrics"`
	EnableTracing bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	SamplingRate  float64 `mapstructure:"sampling_rate"`
}

// RateLimitConfig limits generation requests per client IP
type RateLimitConfig struct {
	Enable            bool          `mapstructure:"enable"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// legacyEnv maps config keys to the unprefixed variables older deployments use
var legacyEnv = map[string]string{
	"watsonx.api_key":    "WATSONX_API_KEY",
	"watsonx.project_id": "WATSONX_PROJECT_ID",
	"watsonx.url":        "WATSONX_URL",
	"database.dsn":       "DATABASE_URL",
	"ollama.host":        "OLLAMA_HOST",
	"server.port":        "PORT",
}

// Load loads configuration from file and environment variables.
// A .env file in the working directory is read first when present.
func Load(configPath string) (*Config, error) {
	config, _, err := LoadWithViper(configPath)
	return config, err
}

// LoadWithViper is Load that also returns the viper instance, for Watch
func LoadWithViper(configPath string) (*Config, *viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pantrychef")
	}

	// Enable environment variable override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyLegacySwitches(&config)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, v, nil
}

// applyLegacySwitches honours USE_WATSONX=false, which forced the mock
// planner, and a postgres DATABASE_URL, which implied the postgres driver
func applyLegacySwitches(c *Config) {
	if value, ok := os.LookupEnv("USE_WATSONX"); ok && strings.EqualFold(strings.TrimSpace(value), "false") {
		c.AI.UseMock = true
	}

	dsn := strings.ToLower(c.Database.DSN)
	if c.Database.Driver == "sqlite" && (strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")) {
		c.Database.Driver = "postgres"
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "PantryChef")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.max_header_bytes", 1<<20) // 1MB
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.enable_compression", true)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "pantrychef.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// Storage defaults
	v.SetDefault("storage.driver", "gorm")
	v.SetDefault("storage.pantry_file", "db.json")
	v.SetDefault("storage.recipes_file", "recipes.json")

	v.SetDefault("pantry.upsert_by_name", true)

	// AI defaults
	v.SetDefault("ai.provider", "watsonx")
	v.SetDefault("ai.use_mock", false)
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.enable_cache", true)
	v.SetDefault("ai.cache_ttl", "1h")

	v.SetDefault("watsonx.url", "https://us-south.ml.cloud.ibm.com")
	v.SetDefault("watsonx.model_id", "meta-llama/llama-3-70b-instruct")
	v.SetDefault("watsonx.iam_url", "https://iam.cloud.ibm.com/identity/token")
	v.SetDefault("watsonx.version", "2024-05-31")

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2:3b")

	// Cache defaults
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.sampling_rate", 0.1)

	// Rate limit defaults
	v.SetDefault("rate_limit.enable", true)
	v.SetDefault("rate_limit.requests_per_second", 1.0)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("rate_limit.cleanup_interval", "5m")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate required fields
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	// Validate port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Storage.Driver {
	case "gorm":
		switch c.Database.Driver {
		case "sqlite":
			if c.Database.Path == "" && c.Database.DSN == "" {
				return fmt.Errorf("database.path is required for sqlite")
			}
		case "postgres":
			if c.Database.DSN == "" {
				return fmt.Errorf("database.dsn is required for postgres")
			}
		default:
			return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
		}
	case "file":
		if c.Storage.PantryFile == "" {
			return fmt.Errorf("storage.pantry_file is required for the file store")
		}
	default:
		return fmt.Errorf("storage.driver must be gorm or file, got %q", c.Storage.Driver)
	}

	switch c.AI.Provider {
	case "watsonx", "ollama", "mock":
	default:
		return fmt.Errorf("ai.provider must be watsonx, ollama or mock, got %q", c.AI.Provider)
	}

	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be memory or redis, got %q", c.Cache.Driver)
	}

	if c.RateLimit.Enable && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be positive")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// UseMockAI reports whether generation should skip the LLM entirely
func (c *Config) UseMockAI() bool {
	return c.AI.UseMock || c.AI.Provider == "mock"
}

// WatsonxConfigured reports whether watsonx credentials are present
func (c *Config) WatsonxConfigured() bool {
	return c.Watsonx.APIKey != "" && c.Watsonx.ProjectID != ""
}

// Address returns host:port for the HTTP listener
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Watch logs configuration file changes. Values are read once at startup,
// so a change takes effect on the next restart.
func Watch(v *viper.Viper, logger *zap.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}

	log := logger.Named("config")
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Warn("Configuration file changed; restart to apply",
			zap.String("file", e.Name),
			zap.String("op", e.Op.String()))
	})
	v.WatchConfig()
}
