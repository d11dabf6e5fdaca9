package watsonx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pantrychef/backend/internal/ports/outbound"
)

type fakeWatsonx struct {
	tokenCalls  atomic.Int32
	genStatus   int
	genBody     string
	lastRequest GenerationRequest
	lastAuth    string
	lastVersion string
}

func (f *fakeWatsonx) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, apiKeyGrantType, r.PostForm.Get("grant_type"))
		if r.PostForm.Get("apikey") != "good-key" {
			http.Error(w, `{"errorMessage":"invalid key"}`, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600,"token_type":"Bearer"}`))
	})
	mux.HandleFunc("/ml/v1/text/generation", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		f.lastVersion = r.URL.Query().Get("version")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastRequest))
		if f.genStatus != 0 {
			w.WriteHeader(f.genStatus)
		}
		_, _ = w.Write([]byte(f.genBody))
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeWatsonx, apiKey string) (*Client, func()) {
	server := httptest.NewServer(fake.handler(t))
	client := NewClient(Config{
		APIKey:    apiKey,
		ProjectID: "proj-1",
		URL:       server.URL,
		IAMURL:    server.URL + "/identity/token",
		ModelID:   "ibm/granite-13b-chat-v2",
		Timeout:   2 * time.Second,
	}, zaptest.NewLogger(t))
	return client, server.Close
}

func TestClient_Generate(t *testing.T) {
	fake := &fakeWatsonx{genBody: `{"model_id":"ibm/granite-13b-chat-v2","results":[{"generated_text":"{\"recipes\":[]}","generated_token_count":5,"stop_reason":"eos_token"}]}`}
	client, closeFn := newTestClient(t, fake, "good-key")
	defer closeFn()

	text, err := client.Generate(context.Background(), "cook", outbound.GenerationParams{
		MaxNewTokens:      2500,
		Temperature:       0.2,
		TopP:              0.9,
		RepetitionPenalty: 1.0,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"recipes":[]}`, text)
	assert.Equal(t, "Bearer tok-1", fake.lastAuth)
	assert.Equal(t, DefaultVersion, fake.lastVersion)
	assert.Equal(t, "ibm/granite-13b-chat-v2", fake.lastRequest.ModelID)
	assert.Equal(t, "proj-1", fake.lastRequest.ProjectID)
	assert.Equal(t, "cook", fake.lastRequest.Input)
	assert.Equal(t, "greedy", fake.lastRequest.Parameters.DecodingMethod)
	assert.Equal(t, 2500, fake.lastRequest.Parameters.MaxNewTokens)
}

func TestClient_TokenIsCached(t *testing.T) {
	fake := &fakeWatsonx{genBody: `{"results":[{"generated_text":"ok"}]}`}
	client, closeFn := newTestClient(t, fake, "good-key")
	defer closeFn()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.Generate(ctx, "p", outbound.GenerationParams{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), fake.tokenCalls.Load())

	// within the refresh margin the token is exchanged again
	base := time.Now()
	client.now = func() time.Time { return base.Add(time.Hour - 30*time.Second) }
	_, err := client.Generate(ctx, "p", outbound.GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), fake.tokenCalls.Load())
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		status int
		body   string
		want   string
	}{
		{name: "bad api key", apiKey: "bad-key", want: "IAM error 400"},
		{name: "server error", apiKey: "good-key", status: http.StatusInternalServerError, body: `{"errors":[]}`, want: "API error 500"},
		{name: "no results", apiKey: "good-key", body: `{"results":[]}`, want: "no results"},
		{name: "malformed", apiKey: "good-key", body: `<html>`, want: "failed to unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeWatsonx{genStatus: tt.status, genBody: tt.body}
			client, closeFn := newTestClient(t, fake, tt.apiKey)
			defer closeFn()

			_, err := client.Generate(context.Background(), "p", outbound.GenerationParams{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClient_UnauthorizedDropsToken(t *testing.T) {
	fake := &fakeWatsonx{genStatus: http.StatusUnauthorized, genBody: `{}`}
	client, closeFn := newTestClient(t, fake, "good-key")
	defer closeFn()

	_, err := client.Generate(context.Background(), "p", outbound.GenerationParams{})
	require.Error(t, err)

	fake.genStatus = 0
	fake.genBody = `{"results":[{"generated_text":"ok"}]}`
	text, err := client.Generate(context.Background(), "p", outbound.GenerationParams{})

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), fake.tokenCalls.Load())
}

func TestClient_HealthCheck(t *testing.T) {
	fake := &fakeWatsonx{}
	client, closeFn := newTestClient(t, fake, "good-key")
	defer closeFn()

	assert.NoError(t, client.HealthCheck(context.Background()))
	assert.Equal(t, "watsonx", client.Name())
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(Config{APIKey: "only-key"}, zaptest.NewLogger(t))

	assert.False(t, client.Configured())
	_, err := client.Generate(context.Background(), "p", outbound.GenerationParams{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, client.HealthCheck(context.Background()), ErrNotConfigured)
}
