package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/MVdovychenko/agentic-ai/components"
	"github.com/MVdovychenko/agentic-ai/envelope"
)

func researchEnvelope(t *testing.T, hits []envelope.Hit) *envelope.Envelope {
	t.Helper()
	ok := len(hits) > 0
	msg := "found results"
	if !ok {
		msg = "no hits"
	}
	env, err := envelope.NewResearch(ok, hits, msg)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestRunTurnFormatsEnvelope(t *testing.T) {
	worker := &stubWorker{
		name: envelope.AgentResearch,
		result: &Result{Envelope: researchEnvelope(t, []envelope.Hit{
			{Title: "A", URL: "http://a", Snippet: "s1"},
		})},
	}
	orch := NewOrchestrator(NewRouter(stubDecider{agent: envelope.AgentResearch}, worker))

	out, err := orch.RunTurn(context.Background(), "what is the capital of France?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[A](http://a)") {
		t.Fatalf("assistant text not formatted: %q", out)
	}
	if strings.Contains(out, "```") {
		t.Fatalf("assistant text contains a fence: %q", out)
	}
}

func TestRunTurnDispatchesExactlyOnce(t *testing.T) {
	calendarStub := &stubWorker{name: envelope.AgentCalendar, result: &Result{Clarification: "Which day?"}}
	researchStub := &stubWorker{name: envelope.AgentResearch, result: &Result{Envelope: researchEnvelope(t, nil)}}
	orch := NewOrchestrator(NewRouter(stubDecider{agent: envelope.AgentCalendar}, calendarStub, researchStub))

	if _, err := orch.RunTurn(context.Background(), "move my meeting"); err != nil {
		t.Fatal(err)
	}
	if calendarStub.calls != 1 || researchStub.calls != 0 {
		t.Fatalf("calls = %d/%d, want exactly one dispatch to calendar", calendarStub.calls, researchStub.calls)
	}
	stats := orch.Stats()
	if stats.Turns != 1 || stats.Dispatches != 1 {
		t.Fatalf("stats = %+v, want one turn, one dispatch", stats)
	}
}

func TestRunTurnClarificationVerbatim(t *testing.T) {
	const question = "Which Lunch event do you mean, Tuesday or Wednesday?"
	worker := &stubWorker{name: envelope.AgentCalendar, result: &Result{Clarification: question}}
	orch := NewOrchestrator(NewRouter(stubDecider{agent: envelope.AgentCalendar}, worker))

	out, err := orch.RunTurn(context.Background(), "move lunch")
	if err != nil {
		t.Fatal(err)
	}
	if out != question {
		t.Fatalf("clarification altered: %q", out)
	}
	// the formatter must not have appended its own message
	for _, msg := range orch.History() {
		if msg.SourceAgent() == FormatterName {
			t.Fatal("formatter ran on the clarification path")
		}
	}
}

func TestRunTurnFailureEnvelope(t *testing.T) {
	worker := &stubWorker{name: envelope.AgentResearch, result: &Result{Envelope: researchEnvelope(t, nil)}}
	orch := NewOrchestrator(NewRouter(stubDecider{agent: envelope.AgentResearch}, worker))

	out, err := orch.RunTurn(context.Background(), "find nothing")
	if err != nil {
		t.Fatal(err)
	}
	if out != NoSourcesText {
		t.Fatalf("failed research turn = %q, want %q", out, NoSourcesText)
	}
}

func TestRunTurnRoutingErrorSurfaces(t *testing.T) {
	orch := NewOrchestrator(NewRouter(stubDecider{agent: "weather"}, &stubWorker{name: envelope.AgentResearch}))
	if _, err := orch.RunTurn(context.Background(), "hello"); err == nil {
		t.Fatal("routing failure did not surface")
	}
	if got := orch.Stats().Turns; got != 0 {
		t.Fatalf("failed turn counted: %d", got)
	}
}

func TestRunTurnAppendsLogInOrder(t *testing.T) {
	worker := &stubWorker{
		name: envelope.AgentResearch,
		result: &Result{Envelope: researchEnvelope(t, []envelope.Hit{
			{Title: "A", URL: "http://a", Snippet: "s1"},
		})},
	}
	orch := NewOrchestrator(NewRouter(stubDecider{agent: envelope.AgentResearch}, worker))
	if _, err := orch.RunTurn(context.Background(), "look this up"); err != nil {
		t.Fatal(err)
	}
	history := orch.History()
	if len(history) != 4 {
		t.Fatalf("log has %d messages, want user, hand-off, envelope, formatted", len(history))
	}
	if history[0].Role() != components.UserRole {
		t.Fatal("first message is not the user turn")
	}
	if history[1].SourceAgent() != SupervisorName {
		t.Fatal("second message is not the hand-off")
	}
	if !strings.Contains(history[2].StringifiedContent(), envelope.FenceTag) {
		t.Fatal("third message is not the fenced envelope")
	}
	if history[3].SourceAgent() != FormatterName {
		t.Fatal("fourth message is not the formatter output")
	}
	for _, msg := range history {
		if msg.TurnID() == "" {
			t.Fatal("message missing its turn id")
		}
	}
}
