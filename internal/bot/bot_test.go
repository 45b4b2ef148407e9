package bot

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/philippgille/chromem-go"

	"github.com/essentialrag/ragbot/internal/ai"
	"github.com/essentialrag/ragbot/internal/chat"
	"github.com/essentialrag/ragbot/internal/config"
	"github.com/essentialrag/ragbot/internal/persona"
	"github.com/essentialrag/ragbot/internal/rag"
)

type fakeLLM struct {
	reply    string
	failures int // number of Generate calls that return an error

	calls      int
	lastSystem string
	lastUser   string
	lastTurns  []ai.Turn
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt string, history []ai.Turn, userMsg string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userMsg
	f.lastTurns = history
	if f.calls <= f.failures {
		return "", errors.New("upstream unavailable")
	}
	return f.reply, nil
}

func fakeEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.Contains(text, "alpha") {
		return []float32{1, 0, 0}, nil
	}
	return []float32{0, 0, 1}, nil
}

func newTestBot(t *testing.T, llm *fakeLLM, withStore bool) *Bot {
	t.Helper()

	var store *rag.Store
	if withStore {
		var err error
		store, err = rag.NewStore(t.TempDir(), fakeEmbedding)
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		docs := []chromem.Document{
			{ID: "chunk_00000", Content: "alpha tour schedule", Metadata: map[string]string{"source": "content.txt", "section": "tours.txt"}},
		}
		if err := store.AddDocuments(context.Background(), docs, 1); err != nil {
			t.Fatalf("AddDocuments: %v", err)
		}
	}

	chatMgr, err := chat.NewManager(10, t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	profile := &persona.Profile{Name: "Acme Tours", Description: "Small group tours"}
	return New(&config.Config{}, llm, chatMgr, rag.NewRetriever(store, 3, 0), profile)
}

func TestAsk_AnswersWithSources(t *testing.T) {
	llm := &fakeLLM{reply: "We run alpha tours every weekend."}
	b := newTestBot(t, llm, true)

	ans := b.Ask(context.Background(), "when do alpha tours run?", false)

	if ans.Answer != "We run alpha tours every weekend." {
		t.Fatalf("unexpected answer: %q", ans.Answer)
	}
	if len(ans.Sources) != 1 || ans.Sources[0] != "tours.txt" {
		t.Fatalf("unexpected sources: %v", ans.Sources)
	}
	if !strings.Contains(llm.lastUser, "alpha tour schedule") {
		t.Fatalf("retrieved context not in user message: %q", llm.lastUser)
	}
	if !strings.Contains(llm.lastSystem, "Acme Tours") {
		t.Fatalf("profile not in system prompt: %q", llm.lastSystem)
	}
}

func TestAsk_CurrentQueryNotDuplicatedInHistory(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	b := newTestBot(t, llm, false)

	b.Ask(context.Background(), "first question", false)
	b.Ask(context.Background(), "second question", false)

	// History passed to the LLM ends with the first exchange; the second
	// question travels only inside userMsg.
	for _, turn := range llm.lastTurns {
		if strings.Contains(turn.Content, "second question") {
			t.Fatalf("current query leaked into history: %+v", llm.lastTurns)
		}
	}
	if len(llm.lastTurns) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(llm.lastTurns))
	}
}

func TestAsk_FallsBackWhenLLMFails(t *testing.T) {
	llm := &fakeLLM{failures: 2}
	b := newTestBot(t, llm, true)

	ans := b.Ask(context.Background(), "alpha?", false)

	if ans.Answer != fallbackAnswer {
		t.Fatalf("expected fallback answer, got %q", ans.Answer)
	}
	if ans.Sources != nil {
		t.Fatalf("fallback must not cite sources, got %v", ans.Sources)
	}
	if llm.calls != 2 {
		t.Fatalf("expected retry without history (2 calls), got %d", llm.calls)
	}
}

func TestAsk_ShowContext(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	b := newTestBot(t, llm, true)

	ans := b.Ask(context.Background(), "alpha?", true)

	if !strings.Contains(ans.Context, "alpha tour schedule") {
		t.Fatalf("context not exposed: %q", ans.Context)
	}
	if len(ans.Chunks) != 1 {
		t.Fatalf("chunks not exposed: %v", ans.Chunks)
	}
}

func TestRunInteractive_ExitCommand(t *testing.T) {
	llm := &fakeLLM{reply: "hello there"}
	b := newTestBot(t, llm, false)

	in := strings.NewReader("what do you offer?\nexit\n")
	var out bytes.Buffer
	if err := b.RunInteractive(context.Background(), in, &out); err != nil {
		t.Fatalf("RunInteractive: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Acme Tours - AI Assistant") {
		t.Fatalf("banner missing:\n%s", got)
	}
	if !strings.Contains(got, "Assistant: hello there") {
		t.Fatalf("answer missing:\n%s", got)
	}
	if !strings.Contains(got, "Goodbye!") {
		t.Fatalf("exit farewell missing:\n%s", got)
	}
}

func TestRunInteractive_HelpSkipsLLM(t *testing.T) {
	llm := &fakeLLM{reply: "unused"}
	b := newTestBot(t, llm, false)

	in := strings.NewReader("help\nquit\n")
	var out bytes.Buffer
	if err := b.RunInteractive(context.Background(), in, &out); err != nil {
		t.Fatalf("RunInteractive: %v", err)
	}

	if llm.calls != 0 {
		t.Fatalf("help must not call the LLM, got %d calls", llm.calls)
	}
	if !strings.Contains(out.String(), "Example questions:") {
		t.Fatalf("help text missing:\n%s", out.String())
	}
}
