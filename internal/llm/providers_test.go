package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-2.5-flash:generateContent"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gen, _ := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", gen["responseMimeType"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"suggestions\":[]}"}]}}],
			"modelVersion": "gemini-2.5-flash"
		}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.Endpoint = srv.URL

	client, err := NewGeminiClient(context.Background(), cfg, NoopObserver{})
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:         TaskRecommend,
		SystemPrompt: "sys",
		UserPrompt:   "user",
		Schema:       &Schema{Type: TypeObject, Properties: map[string]*Schema{"suggestions": {Type: TypeArray, Items: &Schema{Type: TypeString}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"suggestions":[]}`, resp.Text)
	assert.Equal(t, ProviderGemini, client.Provider())
}

func TestGeminiClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "API key not valid", "status": "PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIKey = "bad-key"
	cfg.Endpoint = srv.URL

	client, err := NewGeminiClient(context.Background(), cfg, NoopObserver{})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskRecommend, UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrRetryExhausted)
}

func TestGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAIClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		rf, _ := body["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", rf["type"])
		msgs, _ := body["messages"].([]any)
		assert.Len(t, msgs, 2)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"suggestions\":[]}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.Model = "gpt-4o-mini"
	cfg.APIKey = "sk-test"
	cfg.Endpoint = srv.URL + "/v1"

	client, err := NewOpenAIClient(cfg, NoopObserver{})
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:         TaskRecommend,
		SystemPrompt: "sys",
		UserPrompt:   "user",
		Schema:       &Schema{Type: TypeObject},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"suggestions":[]}`, resp.Text)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x", "object": "chat.completion", "model": "m", "choices": []}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.APIKey = "sk-test"
	cfg.Endpoint = srv.URL + "/v1"

	client, err := NewOpenAIClient(cfg, NoopObserver{})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskRecommend, UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestSchema_MarshalJSON(t *testing.T) {
	s := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"alert": {Type: TypeString, Nullable: true},
			"role":  {Type: TypeString, Enum: []string{"a", "b"}},
		},
		Required: []string{"role"},
	}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	props := got["properties"].(map[string]any)
	assert.Equal(t, []any{"string", "null"}, props["alert"].(map[string]any)["type"])
	assert.Equal(t, []any{"a", "b"}, props["role"].(map[string]any)["enum"])
	assert.Equal(t, []any{"role"}, got["required"])
}

func TestSchema_ToGenAI(t *testing.T) {
	s := &Schema{
		Type:  TypeArray,
		Items: &Schema{Type: TypeString, Nullable: true, Enum: []string{"x"}},
	}
	g := s.toGenAI()
	require.NotNil(t, g.Items)
	assert.Equal(t, "ARRAY", string(g.Type))
	assert.Equal(t, "STRING", string(g.Items.Type))
	require.NotNil(t, g.Items.Nullable)
	assert.True(t, *g.Items.Nullable)
	assert.Equal(t, []string{"x"}, g.Items.Enum)
}
