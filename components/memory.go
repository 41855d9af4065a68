package components

import (
	"sync"

	"github.com/MVdovychenko/agentic-ai/schema"
)

// Memory is the append-only conversation log shared by all pipeline stages.
// The orchestrator owns one instance per process and hands it to the active
// stage; stages only ever append. Threadsafe.
type Memory struct {
	// history is the ordered list of messages
	history []Message
	// turnID is the ID of the current turn
	turnID string
	// maxMessages is the maximum number of messages to keep in history.
	// When exceeded, oldest messages are removed first. Zero means unbounded.
	maxMessages int
	mtx         *sync.RWMutex
}

// NewMemory initializes the Memory with an empty history and optional constraints.
func NewMemory(maxMessages int) *Memory {
	return &Memory{
		maxMessages: maxMessages,
		history:     make([]Message, 0, maxMessages+1),
		mtx:         new(sync.RWMutex),
	}
}

// MaxMessages returns the max number of messages
func (m *Memory) MaxMessages() int {
	return m.maxMessages
}

// SetMaxMessages set the max number of messages
func (m *Memory) SetMaxMessages(maxMessages int) *Memory {
	m.maxMessages = maxMessages
	return m
}

// TurnID returns the current turn ID
func (m *Memory) TurnID() string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.turnID
}

// NewTurn starts a new turn by generating a random turn ID.
func (m *Memory) NewTurn() string {
	m.mtx.Lock()
	m.turnID = NewTurnID()
	m.mtx.Unlock()
	return m.turnID
}

// NewMessage appends a message to the conversation log and manages overflow.
func (m *Memory) NewMessage(role MessageRole, content schema.Schema) *Message {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	msg := NewMessage(role, content).SetTurnID(m.turnID)
	m.history = append(m.history, *msg)
	if l := len(m.history); m.maxMessages > 0 && l > m.maxMessages {
		m.history = m.history[1:]
	}
	return &m.history[len(m.history)-1]
}

// SetHistory replaces the log with a copy of the given history
func (m *Memory) SetHistory(history []Message) *Memory {
	m.mtx.Lock()
	m.history = make([]Message, len(history))
	copy(m.history, history)
	m.mtx.Unlock()
	return m
}

// History returns a copy of the conversation log.
func (m *Memory) History() []Message {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	history := make([]Message, len(m.history))
	copy(history, m.history)
	return history
}

// LastUserMessage returns the most recent user message in the log.
func (m *Memory) LastUserMessage() (*Message, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Role() == UserRole {
			msg := m.history[i]
			return &msg, true
		}
	}
	return nil, false
}

// Reset clears the conversation log.
func (m *Memory) Reset() *Memory {
	m.mtx.Lock()
	m.history = make([]Message, 0, m.maxMessages)
	m.turnID = ""
	m.mtx.Unlock()
	return m
}

// MessageCount returns the number of messages in the conversation log.
func (m *Memory) MessageCount() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.history)
}
