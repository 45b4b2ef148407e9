package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Company   CompanyConfig   `mapstructure:"company"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	RAG       RAGConfig       `mapstructure:"rag"`
	Data      DataConfig      `mapstructure:"data"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	Chat      ChatConfig      `mapstructure:"chat"`
}

type CompanyConfig struct {
	ProfileFile string `mapstructure:"profile_file"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // deepseek | openai | gemini
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	RPMLimit    int     `mapstructure:"rpm_limit"`
}

type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"` // ollama | gemini | openai
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
}

type ChunkingConfig struct {
	Size    int `mapstructure:"size"`    // max characters per chunk
	Overlap int `mapstructure:"overlap"` // characters shared between neighbors
}

type RAGConfig struct {
	VectorsDir    string  `mapstructure:"vectors_dir"`
	ManifestFile  string  `mapstructure:"manifest_file"`
	TopK          int     `mapstructure:"top_k"`
	MinSimilarity float32 `mapstructure:"min_similarity"`
}

type DataConfig struct {
	ContentDir  string `mapstructure:"content_dir"`
	ContentFile string `mapstructure:"content_file"`
	SessionsDir string `mapstructure:"sessions_dir"`
}

type ScrapeConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	URLs     []string `mapstructure:"urls"`
	Selector string   `mapstructure:"selector"`
}

type PromptConfig struct {
	SystemPrompt string `mapstructure:"system_prompt"`
}

type ChatConfig struct {
	MaxContextTurns int `mapstructure:"max_context_turns"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// API keys are usually kept out of the config file
	if key := apiKeyFromEnv(v.GetString("llm.provider")); key != "" {
		v.Set("llm.api_key", key)
	}
	if key := apiKeyFromEnv(v.GetString("embedding.provider")); key != "" {
		v.Set("embedding.api_key", key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func apiKeyFromEnv(provider string) string {
	switch provider {
	case "deepseek":
		return os.Getenv("DEEPSEEK_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("company.profile_file", "data/profile.json")

	v.SetDefault("llm.provider", "deepseek")
	v.SetDefault("llm.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.rpm_limit", 60)

	v.SetDefault("embedding.provider", "ollama")
	v.SetDefault("embedding.model", "nomic-embed-text")

	v.SetDefault("chunking.size", 500)
	v.SetDefault("chunking.overlap", 50)

	v.SetDefault("rag.vectors_dir", "indices/vectors")
	v.SetDefault("rag.manifest_file", "indices/manifest.json")
	v.SetDefault("rag.top_k", 3)
	v.SetDefault("rag.min_similarity", 0)

	v.SetDefault("data.content_dir", "data/documents")
	v.SetDefault("data.content_file", "data/content.txt")
	v.SetDefault("data.sessions_dir", "data/sessions")

	v.SetDefault("chat.max_context_turns", 10)
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "deepseek", "openai", "gemini":
	default:
		return fmt.Errorf("unknown llm.provider %q (want deepseek, openai or gemini)", c.LLM.Provider)
	}
	switch c.Embedding.Provider {
	case "ollama", "gemini", "openai":
	default:
		return fmt.Errorf("unknown embedding.provider %q (want ollama, gemini or openai)", c.Embedding.Provider)
	}
	if c.Embedding.Provider != "ollama" && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required for provider %q", c.Embedding.Provider)
	}

	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, size), got %d", c.Chunking.Overlap)
	}
	if c.RAG.TopK < 1 {
		return fmt.Errorf("rag.top_k must be at least 1, got %d", c.RAG.TopK)
	}
	return nil
}
