package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MVdovychenko/agentic-ai/components"
	"github.com/MVdovychenko/agentic-ai/envelope"
	"github.com/MVdovychenko/agentic-ai/schema"
)

// Worker is a capability-bound agent. Given the conversation log it performs
// zero or more external tool calls, then appends either exactly one fenced
// RESULT_JSON envelope or exactly one clarifying question as its final
// message. Tool failures never escape a worker: they become ok=false
// envelopes. A non-nil error from Execute is an internal contract violation.
type Worker interface {
	Name() string
	Description() string
	Execute(ctx context.Context, log *components.Memory) (*Result, error)
}

// Result is the terminal state of one worker turn.
type Result struct {
	// Clarification is the single disambiguating question the worker asked
	// instead of emitting an envelope. Empty on the envelope path.
	Clarification string
	// Envelope is the emitted envelope, nil on the clarification path.
	Envelope *envelope.Envelope
}

// workerConfig carries the knobs shared by both workers.
type workerConfig struct {
	// timeout bounds each external call; zero means no deadline
	timeout time.Duration
	// maxResults caps research hits carried into the envelope
	maxResults int
}

type WorkerOption func(*workerConfig)

// WithCallTimeout bounds every external call (LLM and tool) the worker
// makes. A deadline hit surfaces as an ok=false "timeout" envelope.
func WithCallTimeout(d time.Duration) WorkerOption {
	return func(c *workerConfig) {
		c.timeout = d
	}
}

// WithMaxResults caps the number of research hits per envelope.
func WithMaxResults(n int) WorkerOption {
	return func(c *workerConfig) {
		c.maxResults = n
	}
}

func (c workerConfig) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// failureMessage maps an external-call error to the envelope message field.
func failureMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}

// emit appends env as the entire content of the worker's final message.
func emit(log *components.Memory, source string, env *envelope.Envelope) (*Result, error) {
	block, err := envelope.Encode(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope for %s: %w", source, err)
	}
	log.NewMessage(components.AssistantRole, schema.String(block)).SetSourceAgent(source)
	return &Result{Envelope: env}, nil
}

// ask appends the single clarifying question and ends the turn without an
// envelope.
func ask(log *components.Memory, source, question string) *Result {
	log.NewMessage(components.AssistantRole, schema.String(question)).SetSourceAgent(source)
	return &Result{Clarification: question}
}

// llmPlanner runs a structured-output agent over a snapshot of the shared
// conversation log. It is the seam that keeps the non-deterministic model
// behind an interface the tests can replace.
type llmPlanner[O schema.Schema] struct {
	agent *Agent[schema.String, O]
}

func (p *llmPlanner[O]) plan(ctx context.Context, history []components.Message) (*O, error) {
	mem := components.NewMemory(0)
	mem.SetHistory(history)
	p.agent.SetMemory(mem)
	out := new(O)
	if err := p.agent.Run(ctx, nil, out, nil); err != nil {
		return nil, err
	}
	return out, nil
}
