package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/essentialrag/ragbot/internal/config"
)

// Turn is one prior exchange in the conversation. Role is "user" or
// "assistant"; providers map it to their own message types.
type Turn struct {
	Role    string
	Content string
}

// ChatClient generates an answer from a system prompt, prior turns and the
// current user message.
type ChatClient interface {
	Generate(ctx context.Context, systemPrompt string, history []Turn, userMsg string) (string, error)
}

// NewChatClient builds the chat client for the configured provider.
// "deepseek" and "openai" both speak the OpenAI chat-completions protocol
// and differ only in base URL and model.
func NewChatClient(ctx context.Context, cfg config.LLMConfig) (ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key is required (set in config or %s_API_KEY env)", strings.ToUpper(cfg.Provider))
	}
	switch cfg.Provider {
	case "deepseek", "openai":
		return newOpenAIClient(cfg), nil
	case "gemini":
		return newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
