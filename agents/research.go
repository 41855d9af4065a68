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
	"github.com/MVdovychenko/agentic-ai/tools/searxng"
)

// DefaultMaxHits caps the hits a research envelope carries.
const DefaultMaxHits = 5

// SearchPlan is the set of search queries the model derives from the
// conversation for the research worker.
type SearchPlan struct {
	schema.Base
	// Queries are the web search queries to run
	Queries []string `json:"queries" jsonschema:"title=queries,description=Between one and three web search queries covering the user's request."`
}

// SearchPlanner derives a SearchPlan from the conversation.
type SearchPlanner interface {
	Plan(ctx context.Context, history []components.Message) (*SearchPlan, error)
}

// ResearchLLMPlanner is the model-backed SearchPlanner.
type ResearchLLMPlanner struct {
	llmPlanner[SearchPlan]
}

func NewResearchPlanner(clt instructor.Instructor, model string) *ResearchLLMPlanner {
	gen := systemprompt.New(
		systemprompt.WithBackground([]string{
			"- You are a Research work agent.",
			"- You perform only research tasks using a web search engine.",
		}),
		systemprompt.WithSteps([]string{
			"- Read the conversation and identify what the user wants researched.",
			"- Derive between one and three focused search queries.",
		}),
	)
	ret := new(ResearchLLMPlanner)
	ret.agent = NewAgent[schema.String, SearchPlan](
		WithClient(clt),
		WithModel(model),
		WithSystemPromptGenerator(gen),
		WithName(envelope.AgentResearch),
	)
	return ret
}

func (p *ResearchLLMPlanner) Plan(ctx context.Context, history []components.Message) (*SearchPlan, error) {
	return p.plan(ctx, history)
}

// ResearchWorker searches the web and emits one envelope with normalized
// hits. Zero hits yield ok=false with an empty data array.
type ResearchWorker struct {
	workerConfig
	planner SearchPlanner
	tool    *searxng.SearxngSearch
}

func NewResearchWorker(planner SearchPlanner, tool *searxng.SearxngSearch, opts ...WorkerOption) *ResearchWorker {
	ret := &ResearchWorker{
		planner: planner,
		tool:    tool,
	}
	for _, opt := range opts {
		opt(&ret.workerConfig)
	}
	if ret.maxResults == 0 {
		ret.maxResults = DefaultMaxHits
	}
	return ret
}

func (w *ResearchWorker) Name() string {
	return envelope.AgentResearch
}

func (w *ResearchWorker) Description() string {
	return "open-ended research via web search"
}

func (w *ResearchWorker) Execute(ctx context.Context, log *components.Memory) (*Result, error) {
	plan, err := w.planWithTimeout(ctx, log)
	if err != nil {
		return w.fail(log, err)
	}
	queries := plan.Queries
	if len(queries) == 0 {
		// Planner produced nothing usable, fall back to the raw request.
		if msg, found := log.LastUserMessage(); found {
			queries = []string{msg.StringifiedContent()}
		}
	}
	callCtx, cancel := w.callContext(ctx)
	defer cancel()
	items, err := w.tool.Search(callCtx, queries, searxng.GeneralCategory)
	if err != nil {
		return w.fail(log, err)
	}
	hits := normalizeHits(items, w.maxResults)
	var env *envelope.Envelope
	if len(hits) == 0 {
		env, err = envelope.NewResearch(false, nil, fmt.Sprintf("no hits for %q", strings.Join(queries, ", ")))
	} else {
		env, err = envelope.NewResearch(true, hits, fmt.Sprintf("found %d results", len(hits)))
	}
	if err != nil {
		return nil, err
	}
	return emit(log, w.Name(), env)
}

func (w *ResearchWorker) planWithTimeout(ctx context.Context, log *components.Memory) (*SearchPlan, error) {
	callCtx, cancel := w.callContext(ctx)
	defer cancel()
	return w.planner.Plan(callCtx, log.History())
}

func (w *ResearchWorker) fail(log *components.Memory, cause error) (*Result, error) {
	env, err := envelope.NewResearch(false, nil, failureMessage(cause))
	if err != nil {
		return nil, err
	}
	return emit(log, w.Name(), env)
}

// normalizeHits maps heterogeneous search results onto the envelope's
// {title, url, snippet} shape.
func normalizeHits(items []searxng.SearchResultItem, max int) []envelope.Hit {
	hits := make([]envelope.Hit, 0, len(items))
	for _, item := range items {
		hits = append(hits, envelope.Hit{
			Title:   item.Title,
			URL:     item.URL,
			Snippet: item.Content,
		})
		if max > 0 && len(hits) == max {
			break
		}
	}
	return hits
}
