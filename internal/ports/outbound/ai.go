package outbound

import (
	"context"
	"time"
)

// GenerationParams are the decoding parameters sent with a prompt
type GenerationParams struct {
	DecodingMethod    string
	MaxNewTokens      int
	Temperature       float64
	TopP              float64
	RepetitionPenalty float64
	StopSequences     []string
}

// TextGenerator is a large-language-model text completion provider
type TextGenerator interface {
	// Name identifies the provider in logs and metrics
	Name() string
	// Configured reports whether credentials are present
	Configured() bool
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
	HealthCheck(ctx context.Context) error
}

// GenerationMetrics records generation outcomes
type GenerationMetrics interface {
	ObserveGeneration(mode, source string)
	ObserveLLMRequest(provider, outcome string, duration time.Duration)
}
