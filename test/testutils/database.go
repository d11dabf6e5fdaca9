// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/infrastructure/config"
	"github.com/pantrychef/backend/internal/infrastructure/persistence/database"
)

// NewSQLiteDB opens a private in-memory database with the schema applied.
// autoMigrate selects gorm AutoMigrate over the embedded SQL migrations.
func NewSQLiteDB(t *testing.T, autoMigrate bool) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:      database.DriverSQLite,
		Path:        ":memory:",
		LogLevel:    "silent",
		AutoMigrate: autoMigrate,
	}
	logger := zaptest.NewLogger(t)

	db, err := database.Open(cfg, logger)
	require.NoError(t, err, "Failed to open sqlite database")
	require.NoError(t, database.Migrate(db, cfg, logger), "Failed to migrate sqlite database")

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}

// PostgresConfig holds test database configuration
type PostgresConfig struct {
	Image    string
	Database string
	Username string
	Password string
	Port     string
}

// DefaultPostgresConfig returns the default test database configuration
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Image:    "postgres:15-alpine",
		Database: "pantrychef_test",
		Username: "test_user",
		Password: "test_password",
		Port:     "5432",
	}
}

// TestDatabase is a postgres container with a migrated gorm connection
type TestDatabase struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// SetupPostgres starts postgres in a container and applies the SQL
// migrations. The test is skipped in short mode or without Docker.
func SetupPostgres(t *testing.T) *TestDatabase {
	t.Helper()
	skipWithoutContainers(t)

	cfg := DefaultPostgresConfig()
	ctx := context.Background()
	port := nat.Port(cfg.Port + "/tcp")
	buildDSN := func(host string, p nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Username, cfg.Password, host, p.Port(), cfg.Database)
	}

	container := startContainer(t, ctx, testcontainers.ContainerRequest{
		Image:        cfg.Image,
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"POSTGRES_DB":       cfg.Database,
			"POSTGRES_USER":     cfg.Username,
			"POSTGRES_PASSWORD": cfg.Password,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
			wait.ForSQL(port, "postgres", buildDSN),
		),
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	dsn := buildDSN(host, mapped)
	dbCfg := config.DatabaseConfig{
		Driver:       database.DriverPostgres,
		DSN:          dsn,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		LogLevel:     "silent",
	}
	logger := zaptest.NewLogger(t)

	db, err := database.Open(dbCfg, logger)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db, dbCfg, logger), "Failed to migrate test database")

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return &TestDatabase{Container: container, DB: db, DSN: dsn}
}

// Truncate empties the given tables between tests
func (td *TestDatabase) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	for _, table := range tables {
		require.NoError(t, td.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY", table)).Error)
	}
}

// SetupRedis starts redis in a container and returns its address.
// The test is skipped in short mode or without Docker.
func SetupRedis(t *testing.T) string {
	t.Helper()
	skipWithoutContainers(t)

	ctx := context.Background()
	port := nat.Port("6379/tcp")

	container := startContainer(t, ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{string(port)},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func skipWithoutContainers(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

// startContainer skips the test when Docker is unreachable
func startContainer(t *testing.T, ctx context.Context, req testcontainers.ContainerRequest) (container testcontainers.Container) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("docker unavailable: %v", r)
		}
	}()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	return container
}
