package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PayloadKind discriminates the decoded form of an envelope's data field.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadEvents
	PayloadHits
	PayloadRows
)

// Event is a calendar event as carried inside an envelope.
type Event struct {
	ID        string   `json:"id,omitempty"`
	Summary   string   `json:"summary"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// Hit is a single normalized research result.
type Hit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Payload is the decoded data field, tagged by (agent, op): calendar ops
// carry events, research carries hits, anything else falls back to generic
// rows for table rendering.
type Payload struct {
	Kind   PayloadKind
	Events []Event
	Hits   []Hit
	Rows   []map[string]any
}

// DecodePayload decodes the envelope's data field according to its agent and
// op. An empty data field yields PayloadNone.
func (e *Envelope) DecodePayload() (*Payload, error) {
	if isEmptyData(e.Data) {
		return &Payload{Kind: PayloadNone}, nil
	}
	switch e.Agent {
	case AgentCalendar:
		events, err := decodeEvents(e.Data)
		if err == nil {
			return &Payload{Kind: PayloadEvents, Events: events}, nil
		}
	case AgentResearch:
		var hits []Hit
		if err := json.Unmarshal(e.Data, &hits); err == nil {
			return &Payload{Kind: PayloadHits, Hits: hits}, nil
		}
	}
	rows, err := decodeRows(e.Data)
	if err != nil {
		return nil, fmt.Errorf("decode envelope data: %w", err)
	}
	return &Payload{Kind: PayloadRows, Rows: rows}, nil
}

// decodeEvents accepts either a single event object or an array of them.
func decodeEvents(data json.RawMessage) ([]Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var ev Event
		if err := json.Unmarshal(trimmed, &ev); err != nil {
			return nil, err
		}
		return []Event{ev}, nil
	}
	var events []Event
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func decodeRows(data json.RawMessage) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var row map[string]any
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, err
		}
		return []map[string]any{row}, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
