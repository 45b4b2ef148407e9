package chat

import (
	"testing"
)

func TestManager_TrimsToMaxTurns(t *testing.T) {
	m, err := NewManager(2, t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for i := 0; i < 5; i++ {
		m.AddUserMessage("question")
		m.AddBotReply("answer")
	}

	history := m.History()
	if len(history) != 4 {
		t.Fatalf("expected 4 retained messages (2 turns), got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Fatalf("unexpected roles after trim: %s, %s", history[0].Role, history[1].Role)
	}
}

func TestManager_SaveAndRestore(t *testing.T) {
	dir := t.TempDir()

	m, err := NewManager(10, dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.AddUserMessage("do you run winter tours?")
	m.AddBotReply("yes, from December to March")
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored, err := NewManager(10, dir)
	if err != nil {
		t.Fatalf("reopen manager: %v", err)
	}
	history := restored.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 restored messages, got %d", len(history))
	}
	if history[1].Content != "yes, from December to March" {
		t.Fatalf("unexpected restored content: %q", history[1].Content)
	}
}

func TestManager_HistoryReturnsCopy(t *testing.T) {
	m, err := NewManager(10, t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.AddUserMessage("original")

	history := m.History()
	history[0].Content = "mutated"

	if m.History()[0].Content != "original" {
		t.Fatal("History must return a copy, not the internal slice")
	}
}
