// Package main provides a standalone health check command for the PantryChef backend
// This command can be used for Docker health checks, monitoring scripts, and debugging
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/infrastructure/config"
	"github.com/pantrychef/backend/internal/infrastructure/persistence/database"
	"github.com/pantrychef/backend/pkg/healthcheck"
	"github.com/pantrychef/backend/pkg/logger"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Options holds command-line configuration
type Options struct {
	URL            string
	Timeout        time.Duration
	Verbose        bool
	OutputFormat   string
	ExpectedStatus string
	RetryCount     int
	RetryDelay     time.Duration
	ConfigPath     string
	LocalCheck     bool
}

func main() {
	opts := parseFlags()

	if opts.LocalCheck {
		os.Exit(runLocalHealthCheck(opts, os.Stdout))
	}
	os.Exit(runRemoteHealthCheck(opts, os.Stdout))
}

// parseFlags parses command-line flags
func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.URL, "url", "", "Health endpoint URL (default http://localhost:8000/api/health)")
	flag.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Request timeout")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	flag.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, compact")
	flag.StringVar(&opts.ExpectedStatus, "expect", "healthy", "Expected status: healthy, degraded")
	flag.IntVar(&opts.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&opts.RetryDelay, "retry-delay", 1*time.Second, "Delay between retries")
	flag.StringVar(&opts.ConfigPath, "config", "", "Configuration file path")
	flag.BoolVar(&opts.LocalCheck, "local", false, "Check the configured storage directly instead of calling the API")

	flag.Parse()

	if opts.URL == "" && !opts.LocalCheck {
		opts.URL = defaultURL()
	}

	return opts
}

// defaultURL honours HEALTH_CHECK_URL, then PANTRYCHEF_SERVER_PORT and PORT
func defaultURL() string {
	if url := os.Getenv("HEALTH_CHECK_URL"); url != "" {
		return url
	}
	port := os.Getenv("PANTRYCHEF_SERVER_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8000"
	}
	return "http://localhost:" + port + "/api/health"
}

// runRemoteHealthCheck performs a remote health check via HTTP
func runRemoteHealthCheck(opts Options, out io.Writer) int {
	client := &http.Client{Timeout: opts.Timeout}

	var lastError error
	for attempt := 0; attempt <= opts.RetryCount; attempt++ {
		if attempt > 0 {
			if opts.Verbose {
				fmt.Fprintf(out, "Retrying in %v... (attempt %d/%d)\n", opts.RetryDelay, attempt, opts.RetryCount)
			}
			time.Sleep(opts.RetryDelay)
		}

		resp, err := client.Get(opts.URL)
		if err != nil {
			lastError = err
			if opts.Verbose {
				fmt.Fprintf(out, "Request failed: %v\n", err)
			}
			continue
		}

		return handleResponse(resp, opts, out)
	}

	fmt.Fprintf(out, "Health check failed after %d attempts: %v\n", opts.RetryCount+1, lastError)
	return exitCodeError
}

// runLocalHealthCheck checks the configured pantry storage without the API
func runLocalHealthCheck(opts Options, out io.Writer) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(out, "Failed to load configuration: %v\n", err)
		return exitCodeError
	}

	log, err := logger.New(logger.Config{
		Level:  "error",
		Format: "json",
	})
	if err != nil {
		fmt.Fprintf(out, "Failed to create logger: %v\n", err)
		return exitCodeError
	}

	hc := healthcheck.New(cfg.App.Version, log)
	closeFn, err := registerStorageCheck(hc, cfg, log)
	if err != nil {
		fmt.Fprintf(out, "Failed to open storage: %v\n", err)
		return exitCodeFailure
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	return outputResult(hc.Check(ctx), opts, out)
}

// registerStorageCheck registers the check matching storage.driver
func registerStorageCheck(hc *healthcheck.HealthCheck, cfg *config.Config, log *zap.Logger) (func(), error) {
	if cfg.Storage.Driver == "file" {
		hc.Register("storage", healthcheck.NewFileChecker(cfg.Storage.PantryFile))
		return func() {}, nil
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	hc.Register("database", healthcheck.NewDatabaseChecker(sqlDB, cfg.Database.Driver))

	return func() { _ = database.Close(db) }, nil
}

// handleResponse handles the HTTP response
func handleResponse(resp *http.Response, opts Options, out io.Writer) int {
	defer resp.Body.Close()

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		fmt.Fprintf(out, "Failed to decode response: %v\n", err)
		return exitCodeError
	}
	if resp.StatusCode >= http.StatusInternalServerError && response["status"] == nil {
		response["status"] = string(healthcheck.StatusUnhealthy)
	}

	return outputResult(response, opts, out)
}

// outputResult prints the result and maps its status onto an exit code
func outputResult(result interface{}, opts Options, out io.Writer) int {
	status := extractStatus(result)

	switch opts.OutputFormat {
	case "json":
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(out, string(data))
	case "compact":
		data, _ := json.Marshal(result)
		fmt.Fprintln(out, string(data))
	default: // text
		outputText(result, status, opts.Verbose, out)
	}

	expectedStatus := healthcheck.Status(opts.ExpectedStatus)
	switch {
	case status == expectedStatus:
		return exitCodeSuccess
	case status == healthcheck.StatusUnhealthy:
		return exitCodeFailure
	case status == healthcheck.StatusDegraded && expectedStatus == healthcheck.StatusHealthy:
		return exitCodeFailure
	}
	return exitCodeSuccess
}

// extractStatus normalizes the API vocabulary (ok, ready, degraded,
// not_ready) onto healthcheck statuses
func extractStatus(result interface{}) healthcheck.Status {
	switch r := result.(type) {
	case healthcheck.Response:
		return r.Status
	case map[string]interface{}:
		status, _ := r["status"].(string)
		switch status {
		case "ok", "ready", "alive", string(healthcheck.StatusHealthy):
			return healthcheck.StatusHealthy
		case string(healthcheck.StatusDegraded):
			return healthcheck.StatusDegraded
		}
	}

	return healthcheck.StatusUnhealthy
}

// outputText outputs the result in text format
func outputText(result interface{}, status healthcheck.Status, verbose bool, out io.Writer) {
	fmt.Fprintf(out, "Status: %s\n", status)

	switch r := result.(type) {
	case healthcheck.Response:
		fmt.Fprintf(out, "Version: %s\n", r.Version)
		fmt.Fprintf(out, "Duration: %dms\n", r.TotalDuration.Milliseconds())

		if verbose && len(r.Checks) > 0 {
			fmt.Fprintln(out, "\nChecks:")
			for _, check := range r.Checks {
				fmt.Fprintf(out, "  %s: %s", check.Name, check.Status)
				if check.Message != "" {
					fmt.Fprintf(out, " (%s)", check.Message)
				}
				fmt.Fprintf(out, " [%dms]\n", check.Duration.Milliseconds())
			}
		}

	case map[string]interface{}:
		if llm, ok := r["watsonx_status"].(string); ok {
			fmt.Fprintf(out, "LLM: %s (%v)\n", llm, r["provider"])
		}
		if verbose {
			data, _ := json.MarshalIndent(r, "", "  ")
			fmt.Fprintln(out, string(data))
		}
	}
}
