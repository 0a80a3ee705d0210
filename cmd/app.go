// Package cmd implements the CLI application to run and query UnifyIQ.
package cmd

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
	"github.com/ferrary7/unifyiq-aryan/agent"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package calls Register() to set up the subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "service")

	c.Register(&askCmd{}, "query")
	c.Register(&accountsCmd{}, "query")
	c.Register(&summaryCmd{}, "query")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var baseURL = flag.String("base-url", "http://localhost:8000", "Base URL of the raw account and issue source")
var timeout = flag.Duration("timeout", 10*time.Second, "Timeout for each outbound call")

// appConfig assembles the process configuration from flags and environment.
func appConfig() unifyiq.Config {
	return unifyiq.Config{
		BaseURL:      *baseURL,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Timeout:      *timeout,
	}
}

// newService builds the Service every command works against.
func newService() *unifyiq.Service {
	return unifyiq.NewService(appConfig())
}

// newAgent builds the query agent. Without an API key it still works,
// planning through guardrails and the heuristic fallback only.
func newAgent(ctx context.Context, svc *unifyiq.Service) *agent.Agent {
	cfg := appConfig()
	var planner *agent.Planner
	if cfg.GeminiAPIKey != "" {
		p, err := agent.NewPlanner(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("warning, LLM planner unavailable: %v", err)
		} else {
			planner = p
		}
	}
	return agent.New(agent.NewServiceAPI(svc), planner)
}
