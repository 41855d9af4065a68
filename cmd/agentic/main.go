package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/MVdovychenko/agentic-ai/agents"
	"github.com/MVdovychenko/agentic-ai/config"
	"github.com/MVdovychenko/agentic-ai/tools/calendar"
	"github.com/MVdovychenko/agentic-ai/tools/searxng"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	clt := newInstructor(cfg.LLM)

	searchTool := searxng.New(
		searxng.WithBaseURL(cfg.Search.BaseURL),
		searxng.WithLanguage(cfg.Search.Language),
		searxng.WithMaxResults(cfg.Search.MaxResults),
	)
	calendarService := calendar.New(
		calendar.WithBaseURL(cfg.Calendar.BaseURL),
		calendar.WithCalendarID(cfg.Calendar.CalendarID),
		calendar.WithAuthToken(cfg.Calendar.AuthToken),
	)

	calendarWorker := agents.NewCalendarWorker(
		agents.NewCalendarPlanner(clt, cfg.LLM.Model),
		calendarService,
		agents.WithCallTimeout(cfg.CallTimeout.Std()),
		agents.WithMaxResults(cfg.Search.MaxResults),
	)
	researchWorker := agents.NewResearchWorker(
		agents.NewResearchPlanner(clt, cfg.LLM.Model),
		searchTool,
		agents.WithCallTimeout(cfg.CallTimeout.Std()),
		agents.WithMaxResults(cfg.Search.MaxResults),
	)
	router := agents.NewRouter(
		agents.NewLLMDecider(clt, cfg.LLM.Model, calendarWorker, researchWorker),
		calendarWorker,
		researchWorker,
	)
	orch := agents.NewOrchestrator(router, agents.WithLogger(logger))

	chatLoop(orch)
}

func chatLoop(orch *agents.Orchestrator) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("User: ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/exit" || line == "/quit" {
			return
		}
		reply, err := orch.RunTurn(ctx, line)
		if err != nil {
			slog.Error("turn failed", "error", err)
			continue
		}
		fmt.Printf("Agent: %s\n", reply)
	}
}

func newInstructor(cfg config.LLM) instructor.Instructor {
	switch cfg.Provider {
	case "anthropic":
		opts := make([]anthropic.ClientOption, 0, 1)
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		clt := anthropic.NewClient(cfg.APIKey, opts...)
		return instructor.FromAnthropic(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
	case "cohere":
		opts := make([]cohereOption.RequestOption, 0, 2)
		opts = append(opts, cohereOption.WithToken(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, cohereOption.WithBaseURL(cfg.BaseURL))
		}
		clt := cohereClient.NewClient(opts...)
		return instructor.FromCohere(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
	default:
		openaiCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			openaiCfg.BaseURL = cfg.BaseURL
		}
		clt := openai.NewClientWithConfig(openaiCfg)
		return instructor.FromOpenAI(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
