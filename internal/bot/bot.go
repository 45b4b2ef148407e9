package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/essentialrag/ragbot/internal/ai"
	"github.com/essentialrag/ragbot/internal/chat"
	"github.com/essentialrag/ragbot/internal/config"
	"github.com/essentialrag/ragbot/internal/persona"
	"github.com/essentialrag/ragbot/internal/rag"
)

const fallbackAnswer = "Sorry, I could not reach the answering service right now. Please try again in a moment."

// Bot runs the full query pipeline: retrieve context, assemble prompts,
// call the LLM, return the answer with cited sources.
type Bot struct {
	cfg       *config.Config
	llm       ai.ChatClient
	chat      *chat.Manager
	retriever *rag.Retriever
	profile   *persona.Profile
}

func New(cfg *config.Config, llm ai.ChatClient, chatMgr *chat.Manager, retriever *rag.Retriever, profile *persona.Profile) *Bot {
	return &Bot{
		cfg:       cfg,
		llm:       llm,
		chat:      chatMgr,
		retriever: retriever,
		profile:   profile,
	}
}

// Answer is the result of one query through the pipeline.
type Answer struct {
	Answer  string
	Sources []string
	Query   string

	// set only when the caller asked to see the retrieval
	Context string
	Chunks  []rag.ScoredChunk
}

// Ask runs one query through retrieval and generation. LLM failures
// degrade to a fallback answer rather than an error, so the conversation
// surface stays up when the hosted API is flaky.
func (b *Bot) Ask(ctx context.Context, query string, showContext bool) *Answer {
	b.chat.AddUserMessage(query)

	chunks, err := b.retriever.Retrieve(ctx, query)
	if err != nil {
		slog.Error("retrieval failed, answering without context", "error", err)
	}

	contextText, sources := ai.FormatContext(chunks)
	userMsg := ai.BuildUserMessage(contextText, query)

	history := b.historyTurns()
	// the final element is the query we just recorded; it goes in as userMsg
	if len(history) > 0 {
		history = history[:len(history)-1]
	}

	reply, err := b.llm.Generate(ctx, b.systemPrompt(), history, userMsg)
	if err != nil {
		slog.Error("generate failed, retrying without history", "error", err)
		reply, err = b.llm.Generate(ctx, b.systemPrompt(), nil, userMsg)
		if err != nil {
			slog.Error("generate failed again, using fallback answer", "error", err)
			reply = fallbackAnswer
			sources = nil
		}
	}

	b.chat.AddBotReply(reply)
	go func() {
		if err := b.chat.Save(); err != nil {
			slog.Error("save session failed", "error", err)
		}
	}()

	ans := &Answer{Answer: reply, Sources: sources, Query: query}
	if showContext {
		ans.Context = contextText
		ans.Chunks = chunks
	}
	return ans
}

// RunInteractive is the terminal chat loop.
func (b *Bot) RunInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	b.printBanner(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		switch strings.ToLower(query) {
		case "exit", "quit":
			fmt.Fprintln(out, "\nThank you! Goodbye!")
			return b.chat.Save()
		case "help":
			b.printHelp(out)
			continue
		}

		ans := b.Ask(ctx, query, false)
		fmt.Fprintf(out, "\nAssistant: %s\n", ans.Answer)
		if len(ans.Sources) > 0 {
			n := len(ans.Sources)
			if n > 3 {
				n = 3
			}
			fmt.Fprintf(out, "\nSources: %s\n", strings.Join(ans.Sources[:n], ", "))
		}

		if ctx.Err() != nil {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return b.chat.Save()
}

// Stop flushes the session before shutdown.
func (b *Bot) Stop() {
	if err := b.chat.Save(); err != nil {
		slog.Error("save session failed", "error", err)
	}
}

func (b *Bot) systemPrompt() string {
	if b.cfg.Prompt.SystemPrompt != "" {
		return b.cfg.Prompt.SystemPrompt
	}
	profileText := ""
	if b.profile != nil {
		profileText = b.profile.FormatForPrompt()
	}
	return ai.BuildSystemPrompt(profileText)
}

func (b *Bot) historyTurns() []ai.Turn {
	msgs := b.chat.History()
	turns := make([]ai.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, ai.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

func (b *Bot) printBanner(out io.Writer) {
	name := "Knowledge Base"
	description := ""
	if b.profile != nil {
		name = b.profile.Name
		description = b.profile.Description
	}

	line := strings.Repeat("=", 70)
	fmt.Fprintln(out, line)
	fmt.Fprintf(out, "%s - AI Assistant\n", name)
	fmt.Fprintln(out, line)
	if description != "" {
		fmt.Fprintln(out, description)
	}
	fmt.Fprintln(out, "\nAsk questions about our knowledge base...")
	fmt.Fprintln(out, "\nCommands: 'exit' to quit, 'help' for examples")
}

func (b *Bot) printHelp(out io.Writer) {
	fmt.Fprintln(out, "\nExample questions:")
	fmt.Fprintln(out, "  - What services do you offer?")
	fmt.Fprintln(out, "  - How can I contact you?")
	fmt.Fprintln(out, "  - Tell me about your products")
	fmt.Fprintln(out, "  - What are your pricing options?")
}
