package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pantrychef/backend/internal/ports/outbound"
)

func TestClient_Generate(t *testing.T) {
	var got GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(GenerateResponse{Model: "llama3.2:3b", Response: `{"recipes": []}`, Done: true})
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL + "/", Model: "llama3.2:3b"}, zaptest.NewLogger(t))

	text, err := client.Generate(context.Background(), "cook", outbound.GenerationParams{
		MaxNewTokens:      2500,
		Temperature:       0.2,
		TopP:              0.9,
		RepetitionPenalty: 1.0,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"recipes": []}`, text)
	assert.Equal(t, "llama3.2:3b", got.Model)
	assert.Equal(t, "cook", got.Prompt)
	assert.False(t, got.Stream)
	assert.Equal(t, 2500.0, got.Options["num_predict"])
	assert.Equal(t, 0.2, got.Options["temperature"])
	assert.Equal(t, 1.0, got.Options["repeat_penalty"])
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "non-200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			want: "API error 404",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			want: "failed to unmarshal",
		},
		{
			name: "incomplete",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"response": "half", "done": false}`))
			},
			want: "incomplete response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(Config{Host: server.URL, Model: "m"}, zaptest.NewLogger(t))
			_, err := client.Generate(context.Background(), "p", outbound.GenerationParams{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClient_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL, Model: "m", Timeout: time.Second}, zaptest.NewLogger(t))

	assert.NoError(t, client.HealthCheck(context.Background()))
	assert.True(t, client.Configured())
	assert.Equal(t, "ollama", client.Name())
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(Config{}, zaptest.NewLogger(t))

	assert.False(t, client.Configured())
}
