package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/philippgille/chromem-go"
	"google.golang.org/genai"

	"github.com/essentialrag/ragbot/internal/config"
)

// NewEmbeddingFunc builds the embedding function for the configured
// provider. The default is a local Ollama instance, so documents never
// leave the machine during indexing; gemini and openai-compatible remote
// providers are available for deployments without a local model.
//
// The same function must be used for indexing and querying: mixing
// providers or models produces vectors in incompatible spaces.
func NewEmbeddingFunc(ctx context.Context, cfg config.EmbeddingConfig) (chromem.EmbeddingFunc, error) {
	switch cfg.Provider {
	case "ollama":
		return chromem.NewEmbeddingFuncOllama(cfg.Model, cfg.BaseURL), nil
	case "openai":
		if cfg.BaseURL != "" {
			return chromem.NewEmbeddingFuncOpenAICompat(cfg.BaseURL, cfg.APIKey, cfg.Model, nil), nil
		}
		return chromem.NewEmbeddingFuncOpenAI(cfg.APIKey, chromem.EmbeddingModelOpenAI(cfg.Model)), nil
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		return geminiEmbeddingFunc(client, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// geminiEmbeddingFunc wraps genai EmbedContent with retry and quota backoff.
func geminiEmbeddingFunc(client *genai.Client, model string) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		var lastErr error
		for attempt := 0; attempt < 5; attempt++ {
			resp, err := client.Models.EmbedContent(ctx, model,
				[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
			if err == nil {
				if len(resp.Embeddings) == 0 {
					return nil, fmt.Errorf("empty embedding response")
				}
				return resp.Embeddings[0].Values, nil
			}
			lastErr = err

			wait := time.Duration(1<<attempt) * time.Second
			if strings.Contains(err.Error(), "429") || strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
				wait = time.Duration(10*(attempt+1)) * time.Second
			}
			slog.Warn("embed failed, retrying", "attempt", attempt+1, "wait", wait, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		return nil, fmt.Errorf("embed failed after 5 attempts: %w", lastErr)
	}
}
