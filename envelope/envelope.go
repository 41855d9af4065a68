// Package envelope defines the wire contract a worker agent must emit to
// report its result: a single fenced RESULT_JSON block whose body is one JSON
// object of the shape below.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Worker agent identifiers.
const (
	AgentCalendar = "calendar"
	AgentResearch = "research"
)

// Calendar operations. The research agent only ever performs OpSearch.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpMove   = "move"
	OpSearch = "search"
	OpInfo   = "info"
	OpError  = "error"
)

// CalendarTimezone is the fixed timezone stamped on every calendar envelope.
const CalendarTimezone = "Europe/Berlin"

var calendarOps = map[string]struct{}{
	OpCreate: {},
	OpUpdate: {},
	OpDelete: {},
	OpMove:   {},
	OpSearch: {},
	OpInfo:   {},
	OpError:  {},
}

var validate = validator.New()

// Envelope is the inter-agent result contract. A worker emits exactly one
// Envelope per turn as the entire content of its final message.
type Envelope struct {
	// Agent identifies the worker that produced the result
	Agent string `json:"agent" validate:"required,oneof=calendar research"`
	// Op is the operation the worker performed
	Op string `json:"op" validate:"required"`
	// OK reports whether the operation succeeded
	OK bool `json:"ok"`
	// Data is the op-specific payload, decoded via DecodePayload
	Data json.RawMessage `json:"data"`
	// Message is a human-readable status or failure explanation
	Message string `json:"message"`
	// Timezone is present only for the calendar agent, fixed to Europe/Berlin
	Timezone string `json:"timezone,omitempty"`
}

// Validate checks the envelope against the contract: known agent/op pairs,
// the timezone rule, and data emptiness when ok is false.
func (e *Envelope) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}
	switch e.Agent {
	case AgentCalendar:
		if _, ok := calendarOps[e.Op]; !ok {
			return fmt.Errorf("invalid envelope: unknown calendar op %q", e.Op)
		}
		if e.Timezone != CalendarTimezone {
			return fmt.Errorf("invalid envelope: calendar timezone must be %q, got %q", CalendarTimezone, e.Timezone)
		}
	case AgentResearch:
		if e.Op != OpSearch {
			return fmt.Errorf("invalid envelope: unknown research op %q", e.Op)
		}
		if e.Timezone != "" {
			return errors.New("invalid envelope: timezone is only valid for the calendar agent")
		}
	}
	if !e.OK && !isEmptyData(e.Data) {
		return errors.New("invalid envelope: data must be empty when ok is false")
	}
	return nil
}

func isEmptyData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}

// NewCalendar builds a calendar envelope with the fixed timezone stamped.
func NewCalendar(op string, ok bool, data any, message string) (*Envelope, error) {
	raw, err := marshalData(data)
	if err != nil {
		return nil, err
	}
	env := &Envelope{
		Agent:    AgentCalendar,
		Op:       op,
		OK:       ok,
		Data:     raw,
		Message:  message,
		Timezone: CalendarTimezone,
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// NewResearch builds a research envelope. A nil hit list becomes an empty
// JSON array, matching the zero-hit contract (ok=false, data=[]).
func NewResearch(ok bool, hits []Hit, message string) (*Envelope, error) {
	if hits == nil {
		hits = []Hit{}
	}
	raw, err := marshalData(hits)
	if err != nil {
		return nil, err
	}
	env := &Envelope{
		Agent:   AgentResearch,
		Op:      OpSearch,
		OK:      ok,
		Data:    raw,
		Message: message,
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

func marshalData(data any) (json.RawMessage, error) {
	if data == nil {
		return json.RawMessage("null"), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope data: %w", err)
	}
	return raw, nil
}
