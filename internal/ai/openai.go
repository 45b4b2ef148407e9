package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/essentialrag/ragbot/internal/config"
)

// openAIClient speaks the OpenAI chat-completions protocol. With the base
// URL pointed at DeepSeek (the default) it serves as the DeepSeek client.
type openAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
	limiter     *rateLimiter
}

func newOpenAIClient(cfg config.LLMConfig) *openAIClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openAIClient{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: float64(cfg.Temperature),
		maxTokens:   int64(cfg.MaxTokens),
		limiter:     newRateLimiter(cfg.RPMLimit),
	}
}

func (c *openAIClient) Generate(ctx context.Context, systemPrompt string, history []Turn, userMsg string) (string, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, t := range history {
		if t.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(t.Content))
		} else {
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userMsg))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err
			slog.Warn("chat completion failed, retrying", "model", c.model, "attempt", attempt+1, "error", err)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			}
			continue
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("empty completion response")
		}
		slog.Debug("generated reply", "model", c.model)
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("chat completion failed after 3 attempts: %w", lastErr)
}
