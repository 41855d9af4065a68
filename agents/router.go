package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/instructor-go/pkg/instructor"

	"github.com/MVdovychenko/agentic-ai/components"
	"github.com/MVdovychenko/agentic-ai/components/systemprompt"
	"github.com/MVdovychenko/agentic-ai/schema"
)

// SupervisorName tags the router's hand-off messages in the log.
const SupervisorName = "supervisor"

// ErrUnknownWorker reports that the decider chose an agent that is not
// registered. This is an internal contract violation, not a user-facing
// condition.
var ErrUnknownWorker = errors.New("router selected an unknown worker")

// Decision names the one worker that will handle the turn.
type Decision struct {
	schema.Base
	// Agent is the name of the chosen worker
	Agent string `json:"agent" jsonschema:"title=agent,enum=calendar,enum=research,description=Name of the single work agent that must handle the user's request." validate:"required"`
	// Reason is a short routing rationale, never shown to the user
	Reason string `json:"reason,omitempty" jsonschema:"title=reason,description=One short sentence explaining the choice."`
}

// Decider makes the routing decision for a turn. The LLM-backed
// implementation is LLMDecider; tests use deterministic stubs.
type Decider interface {
	Decide(ctx context.Context, history []components.Message) (*Decision, error)
}

// Router selects exactly one worker per turn and appends the hand-off to the
// log. It never retries and contributes no user-facing text after dispatch.
type Router struct {
	decider Decider
	workers map[string]Worker
	order   []string
}

func NewRouter(decider Decider, workers ...Worker) *Router {
	ret := &Router{
		decider: decider,
		workers: make(map[string]Worker, len(workers)),
	}
	for _, w := range workers {
		if _, found := ret.workers[w.Name()]; found {
			continue
		}
		ret.workers[w.Name()] = w
		ret.order = append(ret.order, w.Name())
	}
	return ret
}

// Workers returns the registered workers in registration order.
func (r *Router) Workers() []Worker {
	list := make([]Worker, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.workers[name])
	}
	return list
}

// Route decides the worker for the current turn and appends the hand-off
// message. A nil error guarantees exactly one worker was chosen.
func (r *Router) Route(ctx context.Context, log *components.Memory) (Worker, error) {
	decision, err := r.decider.Decide(ctx, log.History())
	if err != nil {
		return nil, fmt.Errorf("routing decision: %w", err)
	}
	worker, found := r.workers[decision.Agent]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorker, decision.Agent)
	}
	log.NewMessage(components.AssistantRole, schema.String(fmt.Sprintf("Handing off to the %s agent.", worker.Name()))).
		SetSourceAgent(SupervisorName)
	return worker, nil
}

// LLMDecider asks the language model which worker should handle the turn.
type LLMDecider struct {
	agent *Agent[schema.String, Decision]
	valid map[string]struct{}
}

// NewLLMDecider builds the supervisor decider over the given workers. The
// prompt mirrors the supervisor policy: pick exactly one work agent, add
// nothing after it returns.
func NewLLMDecider(clt instructor.Instructor, model string, workers ...Worker) *LLMDecider {
	background := []string{
		"- You are a supervisor managing the following work agents:",
	}
	valid := make(map[string]struct{}, len(workers))
	for _, w := range workers {
		background = append(background, fmt.Sprintf("- %s: %s", w.Name(), w.Description()))
		valid[w.Name()] = struct{}{}
	}
	gen := systemprompt.New(
		systemprompt.WithBackground(background),
		systemprompt.WithSteps([]string{
			"- Read the user's request in the conversation.",
			"- Pick exactly one work agent for the request, never zero and never more than one.",
			"- Do not answer the request yourself and do not format results.",
		}),
	)
	agent := NewAgent[schema.String, Decision](
		WithClient(clt),
		WithModel(model),
		WithSystemPromptGenerator(gen),
		WithName(SupervisorName),
	)
	return &LLMDecider{agent: agent, valid: valid}
}

func (d *LLMDecider) Decide(ctx context.Context, history []components.Message) (*Decision, error) {
	mem := components.NewMemory(0)
	mem.SetHistory(history)
	d.agent.SetMemory(mem)
	out := new(Decision)
	if err := d.agent.Run(ctx, nil, out, nil); err != nil {
		return nil, err
	}
	if _, found := d.valid[out.Agent]; !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorker, out.Agent)
	}
	return out, nil
}
