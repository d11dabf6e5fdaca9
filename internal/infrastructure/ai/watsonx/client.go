// Package watsonx provides IBM watsonx.ai text generation
package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/ports/outbound"
)

// Defaults used when the configuration leaves a field empty
const (
	DefaultURL     = "https://us-south.ml.cloud.ibm.com"
	DefaultIAMURL  = "https://iam.cloud.ibm.com/identity/token"
	DefaultModelID = "meta-llama/llama-3-70b-instruct"
	DefaultVersion = "2024-05-31"

	// tokenRefreshMargin renews the IAM token this long before it expires
	tokenRefreshMargin = 60 * time.Second

	apiKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"
)

// ErrNotConfigured is returned when the API key or project id is missing
var ErrNotConfigured = errors.New("watsonx credentials are not configured")

// Config holds watsonx credentials and endpoints
type Config struct {
	APIKey    string
	ProjectID string
	URL       string
	ModelID   string
	IAMURL    string
	Version   string
	Timeout   time.Duration
}

// Client implements the TextGenerator interface using the watsonx.ai REST API
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewClient creates a new watsonx client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.IAMURL == "" {
		cfg.IAMURL = DefaultIAMURL
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		config: cfg,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("watsonx-client"),
		now:    time.Now,
	}

	if c.Configured() {
		c.logger.Info("Watsonx client initialized",
			zap.String("url", cfg.URL),
			zap.String("model_id", cfg.ModelID))
	} else {
		c.logger.Warn("WATSONX_API_KEY or WATSONX_PROJECT_ID not set, generation will use fallbacks")
	}

	return c
}

var _ outbound.TextGenerator = (*Client)(nil)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Expiration  int64  `json:"expiration"`
}

// GenerationRequest is the text generation request body
type GenerationRequest struct {
	ModelID    string               `json:"model_id"`
	Input      string               `json:"input"`
	ProjectID  string               `json:"project_id"`
	Parameters GenerationParameters `json:"parameters"`
}

// GenerationParameters are the decoding options
type GenerationParameters struct {
	DecodingMethod    string   `json:"decoding_method"`
	MaxNewTokens      int      `json:"max_new_tokens"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	RepetitionPenalty float64  `json:"repetition_penalty"`
	StopSequences     []string `json:"stop_sequences,omitempty"`
}

// GenerationResponse is the text generation response body
type GenerationResponse struct {
	ModelID string `json:"model_id"`
	Results []struct {
		GeneratedText       string `json:"generated_text"`
		GeneratedTokenCount int    `json:"generated_token_count"`
		StopReason          string `json:"stop_reason"`
	} `json:"results"`
}

// Name identifies the provider
func (c *Client) Name() string {
	return "watsonx"
}

// Configured reports whether both the API key and project id are set
func (c *Client) Configured() bool {
	return c.config.APIKey != "" && c.config.ProjectID != ""
}

// Generate completes the prompt with the configured model
func (c *Client) Generate(ctx context.Context, prompt string, params outbound.GenerationParams) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	decoding := params.DecodingMethod
	if decoding == "" {
		decoding = "greedy"
	}

	jsonBody, err := json.Marshal(GenerationRequest{
		ModelID:   c.config.ModelID,
		Input:     prompt,
		ProjectID: c.config.ProjectID,
		Parameters: GenerationParameters{
			DecodingMethod:    decoding,
			MaxNewTokens:      params.MaxNewTokens,
			Temperature:       params.Temperature,
			TopP:              params.TopP,
			RepetitionPenalty: params.RepetitionPenalty,
			StopSequences:     params.StopSequences,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/ml/v1/text/generation?version=%s", c.config.URL, url.QueryEscape(c.config.Version))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var genResp GenerationResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(genResp.Results) == 0 {
		return "", fmt.Errorf("no results in watsonx response")
	}

	c.logger.Debug("Watsonx generation successful",
		zap.String("model_id", genResp.ModelID),
		zap.Int("generated_tokens", genResp.Results[0].GeneratedTokenCount),
		zap.String("stop_reason", genResp.Results[0].StopReason))

	return genResp.Results[0].GeneratedText, nil
}

// HealthCheck verifies the credentials by obtaining an IAM token
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	_, err := c.accessToken(ctx)
	return err
}

// accessToken returns the cached IAM token, exchanging the API key for a new
// one when it is missing or within tokenRefreshMargin of expiry
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Before(c.expiry.Add(-tokenRefreshMargin)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", apiKeyGrantType)
	form.Set("apikey", c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.IAMURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("IAM token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("IAM error %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("IAM response carried no access token")
	}

	switch {
	case tok.ExpiresIn > 0:
		c.expiry = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	case tok.Expiration > 0:
		c.expiry = time.Unix(tok.Expiration, 0)
	default:
		c.expiry = now.Add(time.Hour)
	}
	c.token = tok.AccessToken

	c.logger.Debug("IAM token refreshed", zap.Time("expires_at", c.expiry))
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiry = time.Time{}
}
