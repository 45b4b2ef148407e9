package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Message struct {
	Role      string    `json:"role"` // "user" / "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Session struct {
	Messages   []Message `json:"messages"`
	LastActive time.Time `json:"last_active"`
}

// Manager keeps the rolling conversation window and persists it between
// runs so a restarted chatbot remembers the recent exchange.
type Manager struct {
	mu          sync.Mutex
	session     *Session
	maxTurns    int
	sessionFile string
}

func NewManager(maxTurns int, sessionDir string) (*Manager, error) {
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	m := &Manager{
		maxTurns:    maxTurns,
		sessionFile: filepath.Join(sessionDir, "session.json"),
	}

	if data, err := os.ReadFile(m.sessionFile); err == nil {
		var s Session
		if json.Unmarshal(data, &s) == nil {
			m.session = &s
		}
	}
	if m.session == nil {
		m.session = &Session{LastActive: time.Now()}
	}
	return m, nil
}

func (m *Manager) AddUserMessage(content string) {
	m.add("user", content)
}

func (m *Manager) AddBotReply(content string) {
	m.add("assistant", content)
}

func (m *Manager) add(role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session.Messages = append(m.session.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	m.session.LastActive = time.Now()
	m.trim()
}

// History returns a copy of the retained messages, oldest first.
func (m *Manager) History() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.session.Messages))
	copy(out, m.session.Messages)
	return out
}

func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return os.WriteFile(m.sessionFile, data, 0644)
}

func (m *Manager) trim() {
	// one turn = 1 user + 1 assistant message
	max := m.maxTurns * 2
	if len(m.session.Messages) > max {
		m.session.Messages = m.session.Messages[len(m.session.Messages)-max:]
	}
}
