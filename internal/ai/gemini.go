package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/essentialrag/ragbot/internal/config"
)

type geminiClient struct {
	client    *genai.Client
	model     string
	temp      float32
	maxTokens int32
	limiter   *rateLimiter
}

func newGeminiClient(ctx context.Context, cfg config.LLMConfig) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &geminiClient{
		client:    client,
		model:     cfg.Model,
		temp:      cfg.Temperature,
		maxTokens: int32(cfg.MaxTokens),
		limiter:   newRateLimiter(cfg.RPMLimit),
	}, nil
}

func (c *geminiClient) Generate(ctx context.Context, systemPrompt string, history []Turn, userMsg string) (string, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		var role genai.Role = genai.RoleUser
		if t.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(userMsg, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(c.temp),
		MaxOutputTokens:   c.maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err != nil {
			lastErr = err
			wait := time.Duration(1<<attempt) * time.Second
			if strings.Contains(err.Error(), "429") || strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
				wait = time.Duration(10*(attempt+1)) * time.Second
				slog.Warn("model quota exceeded, backing off", "model", c.model, "attempt", attempt+1, "wait", wait)
			} else {
				slog.Warn("generate failed, retrying", "model", c.model, "attempt", attempt+1, "error", err)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		slog.Debug("generated reply", "model", c.model)
		return resp.Text(), nil
	}
	return "", fmt.Errorf("generate failed after 3 attempts: %w", lastErr)
}
