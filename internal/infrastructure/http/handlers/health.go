package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/infrastructure/ai"
	"github.com/pantrychef/backend/internal/ports/inbound"
	"github.com/pantrychef/backend/pkg/healthcheck"
)

// HealthResponse is the flat document served by /api/health
type HealthResponse struct {
	Status        string              `json:"status"`
	Message       string              `json:"message"`
	WatsonxStatus string              `json:"watsonx_status"`
	Provider      string              `json:"provider"`
	Version       string              `json:"version,omitempty"`
	Timestamp     string              `json:"timestamp"`
	Checks        []healthcheck.Check `json:"checks"`
}

// LLMStatusReporter reports the text generator behind the generation routes.
// inbound.KitchenService satisfies it.
type LLMStatusReporter interface {
	LLMStatus(ctx context.Context) inbound.LLMStatus
}

// HealthHandlers serves the liveness report and the readiness probe
type HealthHandlers struct {
	responder
	registry *healthcheck.HealthCheck
	llm      *ai.HealthChecker
	kitchen  LLMStatusReporter
	version  string
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(registry *healthcheck.HealthCheck, llm *ai.HealthChecker, kitchen LLMStatusReporter, version string, logger *zap.Logger) *HealthHandlers {
	return &HealthHandlers{
		responder: responder{logger: logger.Named("health-api")},
		registry:  registry,
		llm:       llm,
		kitchen:   kitchen,
		version:   version,
	}
}

// Health handles GET /api/health. It always answers 200; failing
// dependencies turn the status to "degraded".
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	report := h.registry.Check(r.Context())
	llmCheck := h.llm.Check(r.Context())
	provider := h.kitchen.LLMStatus(r.Context())

	checks := make([]healthcheck.Check, 0, len(report.Checks)+1)
	checks = append(checks, report.Checks...)
	checks = append(checks, llmCheck)

	// an unconfigured provider is expected in mock mode and does not degrade
	status := "ok"
	if report.Status != healthcheck.StatusHealthy ||
		(provider.Configured && llmCheck.Status != healthcheck.StatusHealthy) {
		status = "degraded"
	}

	watsonxStatus := ai.StateNotConfigured
	if provider.Configured {
		watsonxStatus = ai.StateConnected
	}

	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Message:       "PantryChef backend running",
		WatsonxStatus: watsonxStatus,
		Provider:      provider.Provider,
		Version:       h.version,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Checks:        checks,
	})
}

// Ready handles GET /api/ready
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	h.registry.ReadinessHandler()(w, r)
}
