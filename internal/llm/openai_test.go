package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer serves /v1/chat/completions with handler. The returned func lists the
// decoded request bodies received so far.
func chatServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) (*httptest.Server, func() []map[string]any) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return append([]map[string]any(nil), bodies...)
	}
}

func writeCompletion(w http.ResponseWriter, contents ...string) {
	choices := make([]map[string]any, 0, len(contents))
	for i, c := range contents {
		choices = append(choices, map[string]any{
			"index":         i,
			"message":       map[string]any{"role": "assistant", "content": c},
			"finish_reason": "stop",
		})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": choices,
	})
}

func TestOpenAIProvider_Generate(t *testing.T) {
	srv, bodies := chatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		writeCompletion(w, "  The contract is compliant.  ")
	})
	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	c := NewClient(p, nil, WithDefaults(0.2, 300))

	out, err := c.Generate(context.Background(), "Is it compliant?", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "The contract is compliant.", out)

	require.Len(t, bodies(), 1)
	body := bodies()[0]
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 300, body["max_tokens"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-6)
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "Is it compliant?"}, msgs[0])

	_, err = c.Generate(context.Background(), "again", GenerateOptions{Model: "gpt-4o", MaxTokens: 50, Temperature: 0.7})
	require.NoError(t, err)
	require.Len(t, bodies(), 2)
	body = bodies()[1]
	assert.Equal(t, "gpt-4o", body["model"])
	assert.EqualValues(t, 50, body["max_tokens"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-6)
}

func TestOpenAIProvider_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	t.Cleanup(srv.Close)
	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "sk-wrong", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	c := NewClient(p, nil)

	_, err = c.Generate(context.Background(), "p", GenerateOptions{})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "openai", perr.Provider)
	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
}

func TestOpenAIProvider_EmptyResponse(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
	}{
		{"no choices", nil},
		{"blank content", []string{"   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := chatServer(t, func(w http.ResponseWriter, _ map[string]any) {
				writeCompletion(w, tt.contents...)
			})
			p, err := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
			require.NoError(t, err)

			_, err = NewClient(p, nil).Generate(context.Background(), "p", GenerateOptions{})
			var perr *ProviderError
			require.ErrorAs(t, err, &perr)
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestOllamaProvider_Generate(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/v1/chat/completions" || body["model"] != DefaultOllamaModel {
			http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
			return
		}
		writeCompletion(w, "local answer")
	}))
	t.Cleanup(srv.Close)

	p := NewOllamaProvider(ProviderConfig{BaseURL: srv.URL + "/v1"})
	assert.Equal(t, ProviderOllama, p.Name())
	out, err := NewClient(p, nil).Generate(context.Background(), "hello", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "local answer", out)
	assert.Equal(t, "Bearer ollama", <-auth)
}

func TestOllamaProvider_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewOllamaProvider(ProviderConfig{BaseURL: url + "/v1"})
	_, err := NewClient(p, nil).Generate(context.Background(), "hello", GenerateOptions{})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ProviderOllama, perr.Provider)
}
