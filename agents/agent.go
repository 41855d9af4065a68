// Package agents contains the orchestration pipeline: the supervisor router,
// the calendar and research worker agents, the envelope formatter, and the
// orchestrator that wires one user turn through them.
package agents

import (
	"context"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/MVdovychenko/agentic-ai/components"
	"github.com/MVdovychenko/agentic-ai/components/systemprompt"
	"github.com/MVdovychenko/agentic-ai/schema"
)

// Config represents general agent configuration
type Config struct {
	// client for interacting with the language model
	client instructor.Instructor
	// memory holds the conversation the agent reasons over
	memory *components.Memory
	// systemPromptGenerator builds the system prompt
	systemPromptGenerator *systemprompt.Generator
	// model llm model
	model string
	// temperature for response generation, typically ranging from 0 to 1
	temperature float32
	// maxTokens maximum number of tokens allowed in the response
	maxTokens int
	// name is the agent name
	name string
}

// Agent obtains structured output of type O from the language model, given
// the conversation in memory and an optional new user input of type I.
type Agent[I schema.Schema, O schema.Schema] struct {
	Config
}

// NewAgent initializes an Agent
func NewAgent[I schema.Schema, O schema.Schema](options ...Option) *Agent[I, O] {
	ret := new(Agent[I, O])
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = systemprompt.New()
	}
	return ret
}

func (a *Agent[I, O]) SetClient(clt instructor.Instructor) {
	a.client = clt
}

func (a *Agent[I, O]) SetMemory(m *components.Memory) {
	a.memory = m
}

func (a *Agent[I, O]) SetModel(model string) {
	a.model = model
}

func (a *Agent[I, O]) Name() string {
	return a.name
}

func (a *Agent[I, O]) SetName(name string) {
	a.name = name
}

// SystemPrompt returns the generated system prompt
func (a *Agent[I, O]) SystemPrompt() string {
	return a.systemPromptGenerator.Generate()
}

// response obtains a structured response from the language model synchronously
func (a *Agent[I, O]) response(ctx context.Context, response *O, apiResp *components.ApiResponse) error {
	history := a.memory.History()
	messages := make([]components.Message, 0, len(history)+1)
	messages = append(messages, *components.NewMessage(components.SystemRole, schema.String(a.systemPromptGenerator.Generate())))
	messages = append(messages, history...)
	switch clt := a.client.(type) {
	case *instructor.InstructorOpenAI:
		chatReq := openai.ChatCompletionRequest{
			Model:               a.model,
			Temperature:         a.temperature,
			MaxCompletionTokens: a.maxTokens,
		}
		for _, msg := range messages {
			v := new(openai.ChatCompletionMessage)
			msg.ToOpenAI(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		if res, err := clt.CreateChatCompletion(ctx, chatReq, response); err != nil {
			return err
		} else if apiResp != nil {
			apiResp.FromOpenAI(&res)
		}
	case *instructor.InstructorAnthropic:
		chatReq := anthropic.MessagesRequest{
			Model:       anthropic.Model(a.model),
			Temperature: &a.temperature,
			MaxTokens:   a.maxTokens,
		}
		for _, msg := range messages {
			if msg.Role() == components.SystemRole {
				chatReq.System = msg.StringifiedContent()
				continue
			}
			v := new(anthropic.Message)
			msg.ToAnthropic(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		if res, err := clt.CreateMessages(ctx, chatReq, response); err != nil {
			return err
		} else if apiResp != nil {
			apiResp.FromAnthropic(&res)
		}
	case *instructor.InstructorCohere:
		lastIdx := len(messages) - 1
		temperature := float64(a.temperature)
		chatReq := cohere.ChatRequest{
			Model:       &a.model,
			Temperature: &temperature,
			MaxTokens:   &a.maxTokens,
			Message:     messages[lastIdx].StringifiedContent(),
		}
		for idx, msg := range messages {
			if idx >= lastIdx {
				break
			}
			v := new(cohere.Message)
			msg.ToCohere(v)
			chatReq.ChatHistory = append(chatReq.ChatHistory, v)
		}
		if res, err := clt.Chat(ctx, &chatReq, response); err != nil {
			return err
		} else if apiResp != nil {
			apiResp.FromCohere(res)
		}
	}
	return nil
}

// Run runs the agent. A nil userInput means the conversation in memory
// already ends with the message to respond to.
func (a *Agent[I, O]) Run(ctx context.Context, userInput *I, output *O, apiResp *components.ApiResponse) error {
	if userInput != nil {
		a.memory.NewTurn()
		a.memory.NewMessage(components.UserRole, *userInput)
	}
	if err := a.response(ctx, output, apiResp); err != nil {
		return err
	}
	a.memory.NewMessage(components.AssistantRole, *output)
	return nil
}
