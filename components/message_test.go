package components

import (
	"encoding/json"
	"testing"

	cohere "github.com/cohere-ai/cohere-go/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/MVdovychenko/agentic-ai/schema"
)

func TestMessageJSONRoundTrip(t *testing.T) {
	msg := NewMessage(AssistantRole, schema.String("done")).
		SetSourceAgent("calendar").
		SetTurnID("t1")
	bs, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	var got Message
	if err := json.Unmarshal(bs, &got); err != nil {
		t.Fatal(err)
	}
	if got.Role() != AssistantRole || got.StringifiedContent() != "done" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if got.SourceAgent() != "calendar" || got.TurnID() != "t1" {
		t.Fatalf("metadata lost: %+v", got)
	}
}

func TestMessageToOpenAI(t *testing.T) {
	msg := NewMessage(AssistantRole, schema.String("done")).SetSourceAgent("calendar")
	var dist openai.ChatCompletionMessage
	msg.ToOpenAI(&dist)
	if dist.Role != AssistantRole || dist.Content != "done" || dist.Name != "calendar" {
		t.Fatalf("unexpected conversion: %+v", dist)
	}
}

func TestMessageToCohereRoles(t *testing.T) {
	var dist cohere.Message
	NewMessage(AssistantRole, schema.String("done")).ToCohere(&dist)
	if dist.Role != "CHATBOT" || dist.Chatbot == nil || dist.Chatbot.Message != "done" {
		t.Fatalf("assistant conversion: %+v", dist)
	}
	dist = cohere.Message{}
	NewMessage(SystemRole, schema.String("rules")).ToCohere(&dist)
	if dist.Role != "SYSTEM" || dist.System == nil {
		t.Fatalf("system conversion: %+v", dist)
	}
	dist = cohere.Message{}
	NewMessage(UserRole, schema.String("hi")).ToCohere(&dist)
	if dist.Role != "USER" || dist.User == nil {
		t.Fatalf("user conversion: %+v", dist)
	}
}

func TestNewTurnIDUnique(t *testing.T) {
	if NewTurnID() == NewTurnID() {
		t.Fatal("turn ids collide")
	}
}
