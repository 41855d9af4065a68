package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MVdovychenko/agentic-ai/envelope"
)

// FormatterName tags the formatter's messages in the log.
const FormatterName = "formatter"

const (
	// NotFoundText is returned when no envelope exists in the log.
	NotFoundText = "No tool output was found to format."
	// NoSourcesText is the fixed failed-research rendering.
	NoSourcesText = "no high-quality sources found"
	// NoResultsText is the empty calendar rendering.
	NoResultsText = "no results"

	maxResearchLines = 5
	maxTableColumns  = 6
)

// Formatter deterministically renders an envelope to Markdown. It calls no
// tools and performs no I/O; formatting the same envelope twice yields
// byte-identical output. The output never contains a fenced code block.
type Formatter struct{}

// Format renders the envelope, or the fixed fallback when env is nil.
func (f Formatter) Format(env *envelope.Envelope) string {
	if env == nil {
		return NotFoundText
	}
	switch env.Agent {
	case envelope.AgentResearch:
		return f.renderResearch(env)
	case envelope.AgentCalendar:
		return f.renderCalendar(env)
	}
	return f.renderFallback(env)
}

func (f Formatter) renderResearch(env *envelope.Envelope) string {
	if !env.OK {
		return NoSourcesText
	}
	payload, err := env.DecodePayload()
	if err != nil {
		return NoSourcesText
	}
	if payload.Kind == envelope.PayloadRows {
		return f.renderTable(payload.Rows)
	}
	lines := make([]string, 0, maxResearchLines)
	for _, hit := range payload.Hits {
		if len(lines) == maxResearchLines {
			break
		}
		line := fmt.Sprintf("[%s](%s)", hit.Title, hit.URL)
		if hit.Snippet != "" {
			line += " — " + hit.Snippet
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return NoSourcesText
	}
	return strings.Join(lines, "\n")
}

func (f Formatter) renderCalendar(env *envelope.Envelope) string {
	if !env.OK {
		if env.Message != "" {
			return env.Message
		}
		return NoResultsText
	}
	payload, err := env.DecodePayload()
	if err != nil {
		return f.renderFallback(env)
	}
	if payload.Kind == envelope.PayloadRows {
		return f.renderTable(payload.Rows)
	}
	switch env.Op {
	case envelope.OpSearch, envelope.OpInfo:
		return f.renderEventList(payload.Events)
	case envelope.OpCreate, envelope.OpUpdate, envelope.OpMove, envelope.OpDelete:
		return f.renderConfirmation(env, payload.Events)
	}
	return f.renderFallback(env)
}

func (f Formatter) renderEventList(events []envelope.Event) string {
	if len(events) == 0 {
		return NoResultsText
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, "- "+eventLine(ev))
	}
	return strings.Join(lines, "\n")
}

var confirmationVerbs = map[string]string{
	envelope.OpCreate: "Created",
	envelope.OpUpdate: "Updated",
	envelope.OpMove:   "Moved",
	envelope.OpDelete: "Deleted",
}

// renderConfirmation is a one-line confirmation naming the affected event's
// key fields.
func (f Formatter) renderConfirmation(env *envelope.Envelope, events []envelope.Event) string {
	verb := confirmationVerbs[env.Op]
	if len(events) == 0 {
		if env.Message != "" {
			return fmt.Sprintf("%s: %s", verb, env.Message)
		}
		return verb + " the event."
	}
	return fmt.Sprintf("%s %q — %s", verb, events[0].Summary, eventSpan(events[0]))
}

func eventLine(ev envelope.Event) string {
	parts := []string{fmt.Sprintf("%s — %s", ev.Summary, eventSpan(ev))}
	if ev.Location != "" {
		parts = append(parts, "location: "+ev.Location)
	}
	if len(ev.Attendees) > 0 {
		parts = append(parts, "attendees: "+strings.Join(ev.Attendees, ", "))
	}
	return strings.Join(parts, ", ")
}

func eventSpan(ev envelope.Event) string {
	switch {
	case ev.Start != "" && ev.End != "":
		return fmt.Sprintf("%s to %s", ev.Start, ev.End)
	case ev.Start != "":
		return ev.Start
	default:
		return "unscheduled"
	}
}

// renderFallback handles payloads no dedicated rule covers: arrays of
// objects become a simple table, anything else falls back to the message.
func (f Formatter) renderFallback(env *envelope.Envelope) string {
	payload, err := env.DecodePayload()
	if err == nil && payload.Kind == envelope.PayloadRows {
		return f.renderTable(payload.Rows)
	}
	if env.Message != "" {
		return env.Message
	}
	return NoResultsText
}

// renderTable infers up to six columns from the row keys and renders a
// simple Markdown table. Columns are sorted so rendering stays
// deterministic.
func (f Formatter) renderTable(rows []map[string]any) string {
	if len(rows) == 0 {
		return NoResultsText
	}
	keySet := make(map[string]struct{})
	for _, row := range rows {
		for key := range row {
			keySet[key] = struct{}{}
		}
	}
	columns := make([]string, 0, len(keySet))
	for key := range keySet {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	if len(columns) > maxTableColumns {
		columns = columns[:maxTableColumns]
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	seps := make([]string, len(columns))
	for idx := range seps {
		seps[idx] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |")
	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, col := range columns {
			cells = append(cells, tableCell(row[col]))
		}
		b.WriteString("\n| " + strings.Join(cells, " | ") + " |")
	}
	return b.String()
}

func tableCell(v any) string {
	if v == nil {
		return ""
	}
	cell := fmt.Sprintf("%v", v)
	cell = strings.ReplaceAll(cell, "|", "\\|")
	return strings.ReplaceAll(cell, "\n", " ")
}
