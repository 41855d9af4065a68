package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/bububa/instructor-go/pkg/instructor"

	"github.com/MVdovychenko/agentic-ai/components"
	"github.com/MVdovychenko/agentic-ai/components/systemprompt"
	"github.com/MVdovychenko/agentic-ai/envelope"
	"github.com/MVdovychenko/agentic-ai/schema"
	"github.com/MVdovychenko/agentic-ai/tools/calendar"
)

// CalendarPlan is the structured operation the model extracts from the
// conversation for the calendar worker to execute.
type CalendarPlan struct {
	schema.Base
	// Op is the calendar operation to perform
	Op string `json:"op" jsonschema:"title=op,enum=create,enum=update,enum=delete,enum=move,enum=search,enum=info,description=Calendar operation to perform."`
	// EventID identifies the target event for update, move, delete and info
	EventID string `json:"event_id,omitempty" jsonschema:"title=event_id,description=Identifier of the target event, when known."`
	// Query is the free-text filter for search
	Query string `json:"query,omitempty" jsonschema:"title=query,description=Free text filter for searching events."`
	// Summary is the event title
	Summary string `json:"summary,omitempty" jsonschema:"title=summary,description=Event title."`
	// Start is the event start in ISO 8601 local time (Europe/Berlin)
	Start string `json:"start,omitempty" jsonschema:"title=start,description=Event start in ISO 8601 local time."`
	// End is the event end in ISO 8601 local time (Europe/Berlin)
	End string `json:"end,omitempty" jsonschema:"title=end,description=Event end in ISO 8601 local time."`
	// Location is the event location
	Location string `json:"location,omitempty" jsonschema:"title=location,description=Event location."`
	// Attendees are attendee identifiers
	Attendees []string `json:"attendees,omitempty" jsonschema:"title=attendees,description=Attendee email addresses."`
	// Question is set instead of the fields above when required
	// disambiguating information (date, time, target event) is missing
	Question string `json:"question,omitempty" jsonschema:"title=question,description=Exactly one clarifying question when required information is missing. Leave empty otherwise."`
}

// CalendarPlanner extracts a CalendarPlan from the conversation.
type CalendarPlanner interface {
	Plan(ctx context.Context, history []components.Message) (*CalendarPlan, error)
}

// CalendarLLMPlanner is the model-backed CalendarPlanner.
type CalendarLLMPlanner struct {
	llmPlanner[CalendarPlan]
}

func NewCalendarPlanner(clt instructor.Instructor, model string) *CalendarLLMPlanner {
	gen := systemprompt.New(
		systemprompt.WithBackground([]string{
			"- You are a Calendar work agent.",
			"- You create, search, update, move, and delete events on the user's calendar.",
		}),
		systemprompt.WithSteps([]string{
			"- Read the conversation and decide which single calendar operation the user wants.",
			"- Extract the event fields (summary, start, end, location, attendees) from the conversation.",
			"- All times are in the Europe/Berlin timezone.",
			"- If the date, time, or target event cannot be determined, fill only the question field with exactly one clarifying question.",
		}),
	)
	ret := new(CalendarLLMPlanner)
	ret.agent = NewAgent[schema.String, CalendarPlan](
		WithClient(clt),
		WithModel(model),
		WithSystemPromptGenerator(gen),
		WithName(envelope.AgentCalendar),
	)
	return ret
}

func (p *CalendarLLMPlanner) Plan(ctx context.Context, history []components.Message) (*CalendarPlan, error) {
	return p.plan(ctx, history)
}

// CalendarWorker performs one calendar operation per turn and emits one
// envelope, or asks one clarifying question instead.
type CalendarWorker struct {
	workerConfig
	planner CalendarPlanner
	service *calendar.Service
}

func NewCalendarWorker(planner CalendarPlanner, service *calendar.Service, opts ...WorkerOption) *CalendarWorker {
	ret := &CalendarWorker{
		planner: planner,
		service: service,
	}
	for _, opt := range opts {
		opt(&ret.workerConfig)
	}
	return ret
}

func (w *CalendarWorker) Name() string {
	return envelope.AgentCalendar
}

func (w *CalendarWorker) Description() string {
	return "calendar CRUD (create, update, delete, move, search, info) on the user's calendar"
}

func (w *CalendarWorker) Execute(ctx context.Context, log *components.Memory) (*Result, error) {
	plan, err := w.planWithTimeout(ctx, log)
	if err != nil {
		return w.fail(log, envelope.OpError, err)
	}
	if q := strings.TrimSpace(plan.Question); q != "" {
		return ask(log, w.Name(), q), nil
	}
	if q := missingFieldsQuestion(plan); q != "" {
		return ask(log, w.Name(), q), nil
	}
	callCtx, cancel := w.callContext(ctx)
	defer cancel()
	var (
		data    any
		message string
	)
	switch plan.Op {
	case envelope.OpCreate:
		ev, err := w.service.Create(callCtx, planEvent(plan))
		if err != nil {
			return w.fail(log, plan.Op, err)
		}
		data = toEnvelopeEvent(ev)
		message = fmt.Sprintf("created %q", ev.Summary)
	case envelope.OpUpdate:
		ev, err := w.service.Update(callCtx, plan.EventID, planEvent(plan))
		if err != nil {
			return w.fail(log, plan.Op, err)
		}
		data = toEnvelopeEvent(ev)
		message = fmt.Sprintf("updated %q", ev.Summary)
	case envelope.OpMove:
		ev, err := w.service.Move(callCtx, plan.EventID, plan.Start, plan.End)
		if err != nil {
			return w.fail(log, plan.Op, err)
		}
		data = toEnvelopeEvent(ev)
		message = fmt.Sprintf("moved %q", ev.Summary)
	case envelope.OpDelete:
		if err := w.service.Delete(callCtx, plan.EventID); err != nil {
			return w.fail(log, plan.Op, err)
		}
		message = fmt.Sprintf("deleted event %s", plan.EventID)
	case envelope.OpSearch:
		events, err := w.service.Search(callCtx, plan.Query, w.maxResults)
		if err != nil {
			return w.fail(log, plan.Op, err)
		}
		data = toEnvelopeEvents(events)
		message = fmt.Sprintf("found %d events", len(events))
	case envelope.OpInfo:
		ev, err := w.service.Get(callCtx, plan.EventID)
		if err != nil {
			return w.fail(log, plan.Op, err)
		}
		data = toEnvelopeEvent(ev)
		message = fmt.Sprintf("event %q", ev.Summary)
	default:
		env, err := envelope.NewCalendar(envelope.OpError, false, nil, fmt.Sprintf("unsupported calendar operation %q", plan.Op))
		if err != nil {
			return nil, err
		}
		return emit(log, w.Name(), env)
	}
	env, err := envelope.NewCalendar(plan.Op, true, data, message)
	if err != nil {
		return nil, err
	}
	return emit(log, w.Name(), env)
}

func (w *CalendarWorker) planWithTimeout(ctx context.Context, log *components.Memory) (*CalendarPlan, error) {
	callCtx, cancel := w.callContext(ctx)
	defer cancel()
	return w.planner.Plan(callCtx, log.History())
}

// fail converts an external-call error into an ok=false envelope.
func (w *CalendarWorker) fail(log *components.Memory, op string, cause error) (*Result, error) {
	env, err := envelope.NewCalendar(op, false, nil, failureMessage(cause))
	if err != nil {
		return nil, err
	}
	return emit(log, w.Name(), env)
}

// missingFieldsQuestion is the code-side guard behind the planner: when the
// model neither filled the required fields nor asked a question itself, the
// worker still asks exactly one.
func missingFieldsQuestion(plan *CalendarPlan) string {
	var missing []string
	switch plan.Op {
	case envelope.OpCreate:
		if plan.Summary == "" {
			missing = append(missing, "a title")
		}
		if plan.Start == "" {
			missing = append(missing, "a start time")
		}
		if plan.End == "" {
			missing = append(missing, "an end time")
		}
		if len(missing) > 0 {
			return fmt.Sprintf("To create the event I still need %s. Could you provide that?", strings.Join(missing, ", "))
		}
	case envelope.OpMove:
		if plan.EventID == "" {
			return "Which event should I move?"
		}
		if plan.Start == "" || plan.End == "" {
			return fmt.Sprintf("When should %q take place instead?", plan.EventID)
		}
	case envelope.OpUpdate, envelope.OpDelete, envelope.OpInfo:
		if plan.EventID == "" {
			return "Which event do you mean?"
		}
	}
	return ""
}

func planEvent(plan *CalendarPlan) *calendar.Event {
	return &calendar.Event{
		ID:        plan.EventID,
		Summary:   plan.Summary,
		Start:     plan.Start,
		End:       plan.End,
		Location:  plan.Location,
		Attendees: plan.Attendees,
	}
}

func toEnvelopeEvent(ev *calendar.Event) envelope.Event {
	return envelope.Event{
		ID:        ev.ID,
		Summary:   ev.Summary,
		Start:     ev.Start,
		End:       ev.End,
		Location:  ev.Location,
		Attendees: ev.Attendees,
	}
}

func toEnvelopeEvents(events []calendar.Event) []envelope.Event {
	list := make([]envelope.Event, 0, len(events))
	for idx := range events {
		list = append(list, toEnvelopeEvent(&events[idx]))
	}
	return list
}
