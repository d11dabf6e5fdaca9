// Package ai provides health check integration for text generation providers
package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/ports/outbound"
	"github.com/pantrychef/backend/pkg/healthcheck"
)

// Connection states reported by the health endpoint
const (
	StateConnected     = "connected"
	StateNotConfigured = "not configured"
	StateUnreachable   = "unreachable"
)

// ProviderStatus represents the health of the configured text generator
type ProviderStatus struct {
	Provider   string    `json:"provider"`
	Configured bool      `json:"configured"`
	State      string    `json:"state"`
	Detail     string    `json:"detail,omitempty"`
	LastCheck  time.Time `json:"last_check"`
}

// HealthChecker reports provider health. Configuration is always reported;
// reachability is only probed when probe is enabled, and the result is cached.
type HealthChecker struct {
	client   outbound.TextGenerator
	probe    bool
	timeout  time.Duration
	cacheTTL time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	last *ProviderStatus
}

// NewHealthChecker creates a provider health checker. client may be nil.
func NewHealthChecker(client outbound.TextGenerator, probe bool, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		client:   client,
		probe:    probe,
		timeout:  10 * time.Second,
		cacheTTL: time.Minute,
		logger:   logger.Named("ai-health"),
	}
}

// Status returns the provider state without contacting it
func (h *HealthChecker) Status() ProviderStatus {
	if h.client == nil {
		return ProviderStatus{Provider: "mock", State: StateNotConfigured, LastCheck: time.Now().UTC()}
	}
	status := ProviderStatus{
		Provider:   h.client.Name(),
		Configured: h.client.Configured(),
		LastCheck:  time.Now().UTC(),
	}
	if status.Configured {
		status.State = StateConnected
	} else {
		status.State = StateNotConfigured
	}
	return status
}

// CheckHealth probes the provider when probing is enabled
func (h *HealthChecker) CheckHealth(ctx context.Context) ProviderStatus {
	status := h.Status()
	if !status.Configured || !h.probe {
		return status
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil && time.Since(h.last.LastCheck) < h.cacheTTL {
		return *h.last
	}

	healthCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.client.HealthCheck(healthCtx); err != nil {
		status.State = StateUnreachable
		status.Detail = fmt.Sprintf("%s health check failed: %v", status.Provider, err)
		h.logger.Warn("Text generator health check failed",
			zap.String("provider", status.Provider),
			zap.Error(err))
	} else {
		h.logger.Debug("Text generator health check passed", zap.String("provider", status.Provider))
	}

	h.last = &status
	return status
}

// Check implements healthcheck.Checker. An unconfigured or unreachable
// provider is degraded, never unhealthy: generation still answers with fallbacks.
func (h *HealthChecker) Check(ctx context.Context) healthcheck.Check {
	start := time.Now()
	status := h.CheckHealth(ctx)

	check := healthcheck.Check{
		Name:        "llm",
		Status:      healthcheck.StatusHealthy,
		LastChecked: start,
		Duration:    time.Since(start),
		Metadata: map[string]interface{}{
			"provider": status.Provider,
			"state":    status.State,
		},
	}
	if status.State != StateConnected {
		check.Status = healthcheck.StatusDegraded
		check.Message = status.State
		if status.Detail != "" {
			check.Message = status.Detail
		}
	}
	return check
}
