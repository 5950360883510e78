package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-recipes/internal/core/ai/provider"
	"storefront-recipes/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(url string) *OpenRouterService {
	return NewOpenRouterService(config.OpenRouterConfig{
		APIKey:    "sk-test",
		BaseURL:   url,
		Model:     "test/model",
		MaxTokens: 500,
		Timeout:   2 * time.Second,
	})
}

func TestGenerate_Success(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"title\":\"Hola\"}"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	resp, err := newTestService(srv.URL).Complete(context.Background(), provider.Prompt{
		System: "solo JSON",
		User:   "hola",
		JSON:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Hola"}`, resp.Content)
	assert.Equal(t, 42, resp.TotalTokens)
	assert.Equal(t, "test/model", resp.Model)
	assert.Equal(t, "test/model", got["model"])
	assert.EqualValues(t, 500, got["max_tokens"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, got["response_format"])

	messages, ok := got["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
}

func TestGenerate_PlainPromptOmitsSystemAndFormat(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"routed/model","choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	resp, err := newTestService(srv.URL).Complete(context.Background(), provider.Prompt{User: "hola", MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "routed/model", resp.Model)
	assert.EqualValues(t, 50, got["max_tokens"])
	assert.NotContains(t, got, "response_format")
	assert.Len(t, got["messages"], 1)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non 200", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`},
		{name: "error payload", status: http.StatusOK, body: `{"error":{"message":"bad model"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestService(srv.URL).Complete(context.Background(), provider.Prompt{User: "hola"})
			assert.Error(t, err)
		})
	}
}
