// Package calendar is a JSON-over-HTTP client for an event CRUD service.
// Credentials live entirely outside the core: the bearer token comes in via
// configuration and is attached to every request as-is.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/MVdovychenko/agentic-ai/tools"
)

// Timezone is stamped on every event the service returns.
const Timezone = "Europe/Berlin"

// Event is a calendar event keyed by calendar id and event id.
type Event struct {
	ID        string   `json:"id,omitempty"`
	Summary   string   `json:"summary"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
	Timezone  string   `json:"timezone,omitempty"`
}

type Config struct {
	tools.Config
	baseURL    string
	calendarID string
	authToken  string
	httpClient *http.Client
}

// Service is the calendar CRUD client used by the calendar worker.
type Service struct {
	Config
}

func New(opts ...Option) *Service {
	ret := new(Service)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("CalendarTool")
	}
	if ret.calendarID == "" {
		ret.calendarID = "primary"
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

// CalendarID returns the calendar the service operates on.
func (s *Service) CalendarID() string {
	return s.calendarID
}

// Create adds a new event to the calendar.
func (s *Service) Create(ctx context.Context, ev *Event) (*Event, error) {
	out := new(Event)
	if err := s.do(ctx, http.MethodPost, s.eventsURL(""), ev, out); err != nil {
		return nil, err
	}
	return stamp(out), nil
}

// Update replaces the fields of an existing event.
func (s *Service) Update(ctx context.Context, id string, ev *Event) (*Event, error) {
	out := new(Event)
	if err := s.do(ctx, http.MethodPut, s.eventsURL(id), ev, out); err != nil {
		return nil, err
	}
	return stamp(out), nil
}

// Move reschedules an existing event to a new start/end.
func (s *Service) Move(ctx context.Context, id, start, end string) (*Event, error) {
	patch := map[string]string{"start": start, "end": end}
	out := new(Event)
	if err := s.do(ctx, http.MethodPatch, s.eventsURL(id), patch, out); err != nil {
		return nil, err
	}
	return stamp(out), nil
}

// Delete removes an event from the calendar.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, s.eventsURL(id), nil, nil)
}

// Get fetches a single event by id.
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	out := new(Event)
	if err := s.do(ctx, http.MethodGet, s.eventsURL(id), nil, out); err != nil {
		return nil, err
	}
	return stamp(out), nil
}

// Search lists events matching the free-text query.
func (s *Service) Search(ctx context.Context, query string, maxResults int) ([]Event, error) {
	values := url.Values{}
	if query != "" {
		values.Set("q", query)
	}
	if maxResults > 0 {
		values.Set("max_results", strconv.Itoa(maxResults))
	}
	target := s.eventsURL("")
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	var out []Event
	if err := s.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	for idx := range out {
		stamp(&out[idx])
	}
	return out, nil
}

func (s *Service) eventsURL(eventID string) string {
	base := fmt.Sprintf("%s/calendars/%s/events", s.baseURL, url.PathEscape(s.calendarID))
	if eventID == "" {
		return base
	}
	return base + "/" + url.PathEscape(eventID)
}

func (s *Service) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(bs)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if s.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.authToken)
	}
	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("error calling calendar service: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("calendar service returned status %d", httpResp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode calendar response: %w", err)
	}
	return nil
}

func stamp(ev *Event) *Event {
	ev.Timezone = Timezone
	return ev
}
