package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/decker-cli/internal/core/domain"
	"github.com/custodia-labs/decker-cli/internal/core/ports/driven"
)

func newTestServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(generateResponse{Response: response, Done: true})
	}))
}

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator(Config{})
	assert.Equal(t, DefaultModel, g.ModelName())
}

func TestGenerate(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(generateResponse{Response: "a completion", Done: true})
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})

	out, err := g.Generate(context.Background(), "say something", driven.GenerateOptions{
		MaxTokens:   60,
		Temperature: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "a completion", out)
	assert.Empty(t, gotReq.Format, "free-text generation must not force JSON mode")
	assert.EqualValues(t, 60, gotReq.Options["num_predict"])
	assert.EqualValues(t, 0.5, gotReq.Options["temperature"])
}

func TestGenerateStructured(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(generateResponse{Response: `{"name": "deck", "count": 3}`, Done: true})
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})

	var target struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, g.GenerateStructured(context.Background(), "describe", &target))
	assert.Equal(t, "json", gotReq.Format)
	assert.Equal(t, "deck", target.Name)
	assert.Equal(t, 3, target.Count)
}

func TestGenerateStructured_MalformedResponse(t *testing.T) {
	server := newTestServer(t, "not json at all")
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})

	var target struct{ Name string }
	err := g.GenerateStructured(context.Background(), "describe", &target)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Error: "model not loaded"})
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})

	_, err := g.Generate(context.Background(), "hi", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestGenerate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	g := NewGenerator(Config{BaseURL: server.URL})

	_, err := g.Generate(context.Background(), "hi", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
