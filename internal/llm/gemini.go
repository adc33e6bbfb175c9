package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client *genai.Client
}

// NewGeminiClient creates an LLMClient backed by the Gemini API. An empty
// API key is reported as ErrNotConfigured rather than deferred to the
// first call.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", ErrNotConfigured)
	}
	cfg.Provider = ProviderGemini

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newClient(cfg, &geminiBackend{client: gc}, observer), nil
}

func (b *geminiBackend) call(ctx context.Context, req resolvedRequest) (string, string, error) {
	gcfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		gcfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		gcfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Schema != nil {
		gcfg.ResponseMIMEType = "application/json"
		gcfg.ResponseSchema = req.Schema.toGenAI()
	}

	resp, err := b.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.UserPrompt), gcfg)
	if err != nil {
		return "", "", err
	}
	text := resp.Text()
	if text == "" {
		return "", "", fmt.Errorf("%w: empty gemini response", ErrInvalidOutput)
	}
	return text, resp.ModelVersion, nil
}

// available only checks that a client exists; the Gemini API has no cheap
// unauthenticated health probe.
func (b *geminiBackend) available(context.Context) bool {
	return b.client != nil
}
