package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/slidescript/config"
	"github.com/ByLCY/slidescript/dsl"
)

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestGenerateLlama(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "slidescript.generate")
	defer teardown()
	//
	var got chatRequest
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completion("Sure! Here it is:\n```markdown\n{\n# Go\n- fast\n}\n```\nHope this helps")))
	}))
	defer srv.Close()

	settings := config.Settings{Selected: config.ProviderLlama, LlamaURL: srv.URL + "/", LlamaModelName: "llama3"}
	out, err := New(settings, srv.Client()).Generate(context.Background(), "  Go  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n# Go\n- fast\n}", out)

	assert.Equal(t, "/v1/chat/completions", path)
	assert.Empty(t, auth)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, Temperature, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.True(t, strings.HasSuffix(got.Messages[0].Content, `Topic: "Go"`))
	assert.Equal(t, message{Role: "user", Content: "Go"}, got.Messages[1])

	doc := dsl.Compile(out)
	require.Equal(t, 1, doc.Len())
	assert.Equal(t, "Go", doc.Slides[0].Title.Plain())
}

func TestGenerateOpenRouterSendsKey(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(completion("{\n# A\n}")))
	}))
	defer srv.Close()

	c := New(config.Settings{Selected: config.ProviderOpenRouter, OpenRouterAPIKey: "sk-1", OpenRouterModelName: "m"}, srv.Client())
	c.OpenRouterURL = srv.URL
	_, err := c.Generate(context.Background(), "topic")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-1", auth)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	c := New(config.Settings{Selected: config.ProviderOpenRouter, OpenRouterAPIKey: "x"}, srv.Client())
	c.OpenRouterURL = srv.URL
	_, err := c.Generate(context.Background(), "topic")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "API Error (401): bad key", err.Error())
}

func TestGenerateNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	settings := config.Settings{Selected: config.ProviderLlama, LlamaURL: srv.URL}
	_, err := New(settings, nil).Generate(context.Background(), "topic")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	c := New(config.Default(), nil)
	_, err := c.Generate(context.Background(), "topic")
	assert.ErrorIs(t, err, config.ErrNotConfigured)
	_, err = c.Generate(context.Background(), "   ")
	assert.Error(t, err)
}
