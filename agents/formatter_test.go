package agents

import (
	"strings"
	"testing"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/MVdovychenko/agentic-ai/envelope"
)

// assertPlainMarkdown parses the formatter output and fails on anything that
// would render as a code block, plus on any leftover envelope framing.
func assertPlainMarkdown(t *testing.T, out string) {
	t.Helper()
	if strings.Contains(out, "```") {
		t.Fatalf("output contains a fence: %q", out)
	}
	if strings.Contains(out, envelope.FenceTag) {
		t.Fatalf("output leaks the envelope tag: %q", out)
	}
	md := markdown.New()
	for _, tok := range md.Parse([]byte(out)) {
		switch tok.(type) {
		case *markdown.Fence, *markdown.CodeBlock:
			t.Fatalf("output parses as a code block: %q", out)
		}
	}
}

func TestFormatResearchHits(t *testing.T) {
	env, err := envelope.NewResearch(true, []envelope.Hit{{Title: "A", URL: "http://a", Snippet: "s1"}}, "found 1 results")
	if err != nil {
		t.Fatal(err)
	}
	out := Formatter{}.Format(env)
	if !strings.Contains(out, "[A](http://a) — s1") {
		t.Fatalf("hit line missing: %q", out)
	}
	assertPlainMarkdown(t, out)
}

func TestFormatResearchFailure(t *testing.T) {
	env, err := envelope.NewResearch(false, nil, "timeout")
	if err != nil {
		t.Fatal(err)
	}
	if out := (Formatter{}).Format(env); out != NoSourcesText {
		t.Fatalf("failed research = %q, want %q", out, NoSourcesText)
	}
}

func TestFormatCalendarCreate(t *testing.T) {
	env, err := envelope.NewCalendar(envelope.OpCreate, true, envelope.Event{
		Summary: "Lunch",
		Start:   "2025-06-01T12:00",
		End:     "2025-06-01T13:00",
	}, "created \"Lunch\"")
	if err != nil {
		t.Fatal(err)
	}
	out := Formatter{}.Format(env)
	if strings.Contains(out, "\n") {
		t.Fatalf("confirmation is not one line: %q", out)
	}
	for _, want := range []string{"Lunch", "2025-06-01T12:00", "2025-06-01T13:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("confirmation %q missing %q", out, want)
		}
	}
	assertPlainMarkdown(t, out)
}

func TestFormatNilEnvelope(t *testing.T) {
	if out := (Formatter{}).Format(nil); out != NotFoundText {
		t.Fatalf("nil envelope = %q, want %q", out, NotFoundText)
	}
}

func TestFormatIdempotent(t *testing.T) {
	env, err := envelope.NewResearch(true, []envelope.Hit{
		{Title: "A", URL: "http://a", Snippet: "s1"},
		{Title: "B", URL: "http://b", Snippet: "s2"},
	}, "found 2 results")
	if err != nil {
		t.Fatal(err)
	}
	first := Formatter{}.Format(env)
	second := Formatter{}.Format(env)
	if first != second {
		t.Fatalf("formatting is not deterministic:\n%q\n%q", first, second)
	}
}

func TestFormatResearchCapsLines(t *testing.T) {
	hits := make([]envelope.Hit, 0, 8)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		hits = append(hits, envelope.Hit{Title: name, URL: "http://" + name})
	}
	env, err := envelope.NewResearch(true, hits, "found 8 results")
	if err != nil {
		t.Fatal(err)
	}
	out := Formatter{}.Format(env)
	if got := len(strings.Split(out, "\n")); got != 5 {
		t.Fatalf("rendered %d lines, want 5", got)
	}
}

func TestFormatCalendarSearchList(t *testing.T) {
	env, err := envelope.NewCalendar(envelope.OpSearch, true, []envelope.Event{
		{Summary: "Standup", Start: "2025-06-02T09:00", End: "2025-06-02T09:15"},
		{Summary: "Review", Start: "2025-06-02T11:00", End: "2025-06-02T12:00", Location: "Room 2"},
	}, "found 2 events")
	if err != nil {
		t.Fatal(err)
	}
	out := Formatter{}.Format(env)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("want one bullet per event, got %q", out)
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "- ") {
			t.Fatalf("not a bullet: %q", line)
		}
	}
	if !strings.Contains(out, "Room 2") {
		t.Fatalf("location missing: %q", out)
	}
	assertPlainMarkdown(t, out)
}

func TestFormatCalendarEmptySearch(t *testing.T) {
	env, err := envelope.NewCalendar(envelope.OpSearch, true, []envelope.Event{}, "found 0 events")
	if err != nil {
		t.Fatal(err)
	}
	if out := (Formatter{}).Format(env); out != NoResultsText {
		t.Fatalf("empty search = %q, want %q", out, NoResultsText)
	}
}

func TestFormatCalendarFailureMessage(t *testing.T) {
	env, err := envelope.NewCalendar(envelope.OpDelete, false, nil, "timeout")
	if err != nil {
		t.Fatal(err)
	}
	if out := (Formatter{}).Format(env); out != "timeout" {
		t.Fatalf("failure rendering = %q, want the envelope message", out)
	}
}

func TestFormatGenericRowsAsTable(t *testing.T) {
	rows := []map[string]any{
		{"day": "Mon", "slots": 3, "note": "a|b"},
		{"day": "Tue", "slots": 1},
	}
	env, err := envelope.NewCalendar(envelope.OpInfo, true, rows, "availability")
	if err != nil {
		t.Fatal(err)
	}
	// force the generic decode path with a non-event field type
	env.Data = []byte(`[{"day":"Mon","slots":3,"note":"a|b","summary":1},{"day":"Tue","slots":1,"summary":2}]`)
	out := Formatter{}.Format(env)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("want header, separator and two rows, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "| day |") {
		t.Fatalf("columns not sorted: %q", lines[0])
	}
	if !strings.Contains(out, `a\|b`) {
		t.Fatalf("cell pipe not escaped: %q", out)
	}
	assertPlainMarkdown(t, out)
}

func TestFormatTableColumnCap(t *testing.T) {
	env := &envelope.Envelope{
		Agent:    envelope.AgentCalendar,
		Op:       envelope.OpInfo,
		OK:       true,
		Data:     []byte(`[{"a":1,"b":2,"c":3,"d":4,"e":5,"f":6,"g":7,"h":8,"summary":1}]`),
		Timezone: envelope.CalendarTimezone,
	}
	out := Formatter{}.Format(env)
	header := strings.Split(out, "\n")[0]
	if got := strings.Count(header, "|") - 1; got != 6 {
		t.Fatalf("table has %d columns, want 6", got)
	}
}
