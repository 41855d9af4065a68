package agents

import (
	"context"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/MVdovychenko/agentic-ai/components"
	"github.com/MVdovychenko/agentic-ai/envelope"
	"github.com/MVdovychenko/agentic-ai/schema"
)

// Stats are cumulative pipeline counters.
type Stats struct {
	// Turns is the number of completed RunTurn calls
	Turns int64
	// Dispatches is the number of worker hand-offs; equals Turns when the
	// one-dispatch-per-turn contract holds
	Dispatches int64
}

// Orchestrator drives the whole turn pipeline: route, execute the single
// chosen worker, extract the latest envelope from the log, and format it.
// It owns the shared conversation log across turns.
type Orchestrator struct {
	router    *Router
	formatter Formatter
	log       *components.Memory
	logger    *slog.Logger

	turns      atomic.Int64
	dispatches atomic.Int64

	mtx sync.Mutex
}

type OrchestratorOption func(*Orchestrator)

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithConversationLog replaces the orchestrator's conversation log, e.g. to
// resume a persisted session.
func WithConversationLog(log *components.Memory) OrchestratorOption {
	return func(o *Orchestrator) {
		o.log = log
	}
}

func NewOrchestrator(router *Router, opts ...OrchestratorOption) *Orchestrator {
	ret := &Orchestrator{
		router: router,
		log:    components.NewMemory(0),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// RunTurn appends the user's message, routes it to exactly one worker, and
// returns the assistant text for the turn: the worker's clarifying question
// verbatim, or the formatted rendering of the most recent envelope in the
// log. Worker tool failures come back as formatted ok=false envelopes; a
// non-nil error means the pipeline itself broke.
func (o *Orchestrator) RunTurn(ctx context.Context, userText string) (string, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	turnID := o.log.NewTurn()
	o.log.NewMessage(components.UserRole, schema.String(userText))

	worker, err := o.router.Route(ctx, o.log)
	if err != nil {
		return "", err
	}
	o.dispatches.Inc()
	o.logger.Debug("dispatching turn", "turn_id", turnID, "worker", worker.Name())

	result, err := worker.Execute(ctx, o.log)
	if err != nil {
		return "", err
	}
	if result.Clarification != "" {
		o.turns.Inc()
		return result.Clarification, nil
	}

	env, found, scanErr := envelope.Extract(o.log.History())
	if scanErr != nil {
		o.logger.Warn("envelope scan", "turn_id", turnID, "error", scanErr)
	}
	if !found {
		env = nil
	}
	text := o.formatter.Format(env)
	o.log.NewMessage(components.AssistantRole, schema.String(text)).SetSourceAgent(FormatterName)
	o.turns.Inc()
	return text, nil
}

// Stats returns cumulative counters.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Turns:      o.turns.Load(),
		Dispatches: o.dispatches.Load(),
	}
}

// History returns a copy of the conversation log.
func (o *Orchestrator) History() []components.Message {
	return o.log.History()
}
