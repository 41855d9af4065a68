package envelope

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateCalendar(t *testing.T) {
	env := &Envelope{
		Agent:    AgentCalendar,
		Op:       OpCreate,
		OK:       true,
		Data:     json.RawMessage(`{"summary":"Lunch","start":"2025-06-01T12:00","end":"2025-06-01T13:00"}`),
		Message:  "created",
		Timezone: CalendarTimezone,
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("valid calendar envelope rejected: %v", err)
	}
}

func TestValidateCalendarTimezone(t *testing.T) {
	env := &Envelope{
		Agent:    AgentCalendar,
		Op:       OpCreate,
		OK:       true,
		Data:     json.RawMessage(`{"summary":"Lunch"}`),
		Timezone: "UTC",
	}
	if err := env.Validate(); err == nil {
		t.Fatal("calendar envelope with wrong timezone accepted")
	}
	env.Timezone = ""
	if err := env.Validate(); err == nil {
		t.Fatal("calendar envelope without timezone accepted")
	}
}

func TestValidateResearch(t *testing.T) {
	env := &Envelope{
		Agent:   AgentResearch,
		Op:      OpSearch,
		OK:      true,
		Data:    json.RawMessage(`[{"title":"A","url":"http://a","snippet":"s1"}]`),
		Message: "found 1 results",
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("valid research envelope rejected: %v", err)
	}
	env.Timezone = CalendarTimezone
	if err := env.Validate(); err == nil {
		t.Fatal("research envelope with timezone accepted")
	}
	env.Timezone = ""
	env.Op = OpCreate
	if err := env.Validate(); err == nil {
		t.Fatal("research envelope with calendar op accepted")
	}
}

func TestValidateUnknownAgent(t *testing.T) {
	env := &Envelope{Agent: "weather", Op: OpSearch, OK: true}
	if err := env.Validate(); err == nil {
		t.Fatal("unknown agent accepted")
	}
}

func TestValidateFailureDataMustBeEmpty(t *testing.T) {
	env := &Envelope{
		Agent:   AgentResearch,
		Op:      OpSearch,
		OK:      false,
		Data:    json.RawMessage(`[{"title":"A","url":"http://a","snippet":"s1"}]`),
		Message: "timeout",
	}
	if err := env.Validate(); err == nil {
		t.Fatal("ok=false envelope with non-empty data accepted")
	}
	for _, empty := range []string{"", "null", "[]", "{}"} {
		env.Data = json.RawMessage(empty)
		if err := env.Validate(); err != nil {
			t.Fatalf("ok=false envelope with data %q rejected: %v", empty, err)
		}
	}
}

func TestNewResearchZeroHits(t *testing.T) {
	env, err := NewResearch(false, nil, "no hits")
	if err != nil {
		t.Fatal(err)
	}
	if string(env.Data) != "[]" {
		t.Fatalf("zero-hit data = %s, want []", env.Data)
	}
	if env.OK {
		t.Fatal("zero-hit envelope should be ok=false")
	}
}

func TestDecodePayloadSingleEvent(t *testing.T) {
	env, err := NewCalendar(OpCreate, true, Event{Summary: "Lunch", Start: "2025-06-01T12:00", End: "2025-06-01T13:00"}, "created")
	if err != nil {
		t.Fatal(err)
	}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatal(err)
	}
	if payload.Kind != PayloadEvents {
		t.Fatalf("kind = %d, want events", payload.Kind)
	}
	if len(payload.Events) != 1 || payload.Events[0].Summary != "Lunch" {
		t.Fatalf("unexpected events: %+v", payload.Events)
	}
}

func TestDecodePayloadEventArray(t *testing.T) {
	events := []Event{{Summary: "A"}, {Summary: "B"}}
	env, err := NewCalendar(OpSearch, true, events, "found 2 events")
	if err != nil {
		t.Fatal(err)
	}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatal(err)
	}
	if payload.Kind != PayloadEvents || len(payload.Events) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodePayloadHits(t *testing.T) {
	env, err := NewResearch(true, []Hit{{Title: "A", URL: "http://a", Snippet: "s1"}}, "found 1 results")
	if err != nil {
		t.Fatal(err)
	}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatal(err)
	}
	if payload.Kind != PayloadHits || len(payload.Hits) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodePayloadRowsFallback(t *testing.T) {
	// summary is a number, so the event decode fails and the generic row
	// decode takes over
	env := &Envelope{
		Agent:    AgentCalendar,
		Op:       OpSearch,
		OK:       true,
		Data:     json.RawMessage(`[{"summary":123,"free":true}]`),
		Timezone: CalendarTimezone,
	}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatal(err)
	}
	if payload.Kind != PayloadRows || len(payload.Rows) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	env.Data = json.RawMessage(`[["not","an","object"]]`)
	if _, err := env.DecodePayload(); err == nil {
		t.Fatal("nested-array data should not decode")
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	env := &Envelope{Agent: AgentResearch, Op: OpSearch, OK: false, Data: json.RawMessage("[]")}
	payload, err := env.DecodePayload()
	if err != nil {
		t.Fatal(err)
	}
	if payload.Kind != PayloadNone {
		t.Fatalf("kind = %d, want none", payload.Kind)
	}
}

func TestEncodeProducesSingleFence(t *testing.T) {
	env, err := NewResearch(true, []Hit{{Title: "A", URL: "http://a", Snippet: "s1"}}, "found 1 results")
	if err != nil {
		t.Fatal(err)
	}
	block, err := Encode(env)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(block, "```"+FenceTag+"\n") {
		t.Fatalf("block does not open with the tagged fence: %q", block)
	}
	if !strings.HasSuffix(block, "\n```") {
		t.Fatalf("block does not close its fence: %q", block)
	}
	if strings.Count(block, "```") != 2 {
		t.Fatalf("block has stray fences: %q", block)
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	env := &Envelope{Agent: AgentResearch, Op: OpCreate, OK: true}
	if _, err := Encode(env); err == nil {
		t.Fatal("invalid envelope encoded")
	}
}
