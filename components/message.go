package components

import (
	"encoding/json"

	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/MVdovychenko/agentic-ai/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message represents a single entry in the conversation log.
// Messages are created once per turn and never mutated afterwards.
type Message struct {
	content schema.Schema
	// role is the role of the message sender
	role MessageRole
	// sourceAgent identifies which agent produced this message, if any
	sourceAgent string
	// turnID is the unique identifier for the turn this message belongs to
	turnID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// SetSourceAgent set the agent that produced the message
func (m *Message) SetSourceAgent(name string) *Message {
	m.sourceAgent = name
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// SourceAgent returns the name of the agent that produced the message
func (m Message) SourceAgent() string {
	return m.sourceAgent
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// StringifiedContent returns the message content in text form
func (m Message) StringifiedContent() string {
	if m.content == nil {
		return ""
	}
	return schema.Stringify(m.content)
}

type messageJSON struct {
	Role        MessageRole `json:"role"`
	Content     string      `json:"content"`
	SourceAgent string      `json:"source_agent,omitempty"`
	TurnID      string      `json:"turn_id,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		Role:        m.role,
		Content:     m.StringifiedContent(),
		SourceAgent: m.sourceAgent,
		TurnID:      m.turnID,
	})
}

func (m *Message) UnmarshalJSON(bs []byte) error {
	var v messageJSON
	if err := json.Unmarshal(bs, &v); err != nil {
		return err
	}
	m.role = v.Role
	m.content = schema.String(v.Content)
	m.sourceAgent = v.SourceAgent
	m.turnID = v.TurnID
	return nil
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	dist.Content = m.StringifiedContent()
	dist.Name = m.sourceAgent
}

// ToAnthropic convert message to anthropic Message
func (m Message) ToAnthropic(dist *anthropic.Message) {
	dist.Role = anthropic.ChatRole(m.role)
	dist.Content = []anthropic.MessageContent{anthropic.NewTextMessageContent(m.StringifiedContent())}
}

// ToCohere convert message to cohere Message
func (m Message) ToCohere(dist *cohere.Message) {
	switch m.role {
	case SystemRole:
		dist.Role = "SYSTEM"
		dist.System = &cohere.ChatMessage{
			Message: m.StringifiedContent(),
		}
	case AssistantRole:
		dist.Role = "CHATBOT"
		dist.Chatbot = &cohere.ChatMessage{
			Message: m.StringifiedContent(),
		}
	default:
		dist.Role = "USER"
		dist.User = &cohere.ChatMessage{
			Message: m.StringifiedContent(),
		}
	}
}
