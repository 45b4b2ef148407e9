package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/essentialrag/ragbot/internal/ai"
	"github.com/essentialrag/ragbot/internal/bot"
	"github.com/essentialrag/ragbot/internal/chat"
	"github.com/essentialrag/ragbot/internal/config"
	"github.com/essentialrag/ragbot/internal/persona"
	"github.com/essentialrag/ragbot/internal/rag"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	ask := flag.String("ask", "", "one-shot question (answer and exit)")
	retrieve := flag.String("retrieve", "", "retrieval-only query: print ranked chunks without calling the LLM")
	showContext := flag.Bool("show-context", false, "print the retrieved context with one-shot answers")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	embedFunc, err := ai.NewEmbeddingFunc(ctx, cfg.Embedding)
	if err != nil {
		slog.Error("create embedding func failed", "error", err)
		os.Exit(1)
	}

	store, err := rag.NewStore(cfg.RAG.VectorsDir, embedFunc)
	if err != nil {
		slog.Warn("load vector store failed, retrieval disabled", "error", err)
		store = nil
	} else if store.Count() == 0 {
		slog.Warn("vector store is empty; run the indexer first", "dir", cfg.RAG.VectorsDir)
	}
	if m, err := rag.LoadManifest(cfg.RAG.ManifestFile); err == nil {
		slog.Info("index manifest",
			"chunks", m.TotalChunks,
			"embedding", m.EmbeddingProvider+"/"+m.EmbeddingModel,
			"built_at", m.BuiltAt,
		)
	}
	retriever := rag.NewRetriever(store, cfg.RAG.TopK, cfg.RAG.MinSimilarity)

	// Retrieval-only mode needs no LLM client or API key.
	if *retrieve != "" {
		runRetrieve(ctx, retriever, *retrieve)
		return
	}

	llm, err := ai.NewChatClient(ctx, cfg.LLM)
	if err != nil {
		slog.Error("create chat client failed", "error", err)
		os.Exit(1)
	}
	slog.Info("chat client initialized", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	chatMgr, err := chat.NewManager(cfg.Chat.MaxContextTurns, cfg.Data.SessionsDir)
	if err != nil {
		slog.Error("create chat manager failed", "error", err)
		os.Exit(1)
	}

	var profile *persona.Profile
	if cfg.Company.ProfileFile != "" {
		profile, err = persona.LoadFromFile(cfg.Company.ProfileFile)
		if err != nil {
			slog.Warn("load company profile failed, using generic assistant", "error", err)
		}
	}

	b := bot.New(cfg, llm, chatMgr, retriever, profile)

	if *ask != "" {
		ans := b.Ask(ctx, *ask, *showContext)
		fmt.Println(ans.Answer)
		if len(ans.Sources) > 0 {
			fmt.Printf("\nSources: %v\n", ans.Sources)
		}
		if *showContext {
			fmt.Printf("\n--- retrieved context ---\n%s\n", ans.Context)
		}
		b.Stop()
		return
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		slog.Info("shutting down...")
		b.Stop()
		cancel()
		os.Exit(0)
	}()

	if err := b.RunInteractive(ctx, os.Stdin, os.Stdout); err != nil {
		slog.Error("chat loop failed", "error", err)
		os.Exit(1)
	}
}

func runRetrieve(ctx context.Context, retriever *rag.Retriever, query string) {
	chunks, err := retriever.Retrieve(ctx, query)
	if err != nil {
		slog.Error("retrieve failed", "error", err)
		os.Exit(1)
	}
	if len(chunks) == 0 {
		fmt.Println("No matching chunks.")
		return
	}
	for _, c := range chunks {
		fmt.Printf("#%d [%.3f] %s\n%s\n\n", c.Rank, c.Score, c.Section, c.Text)
	}
}
