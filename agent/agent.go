package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
)

// Response is the full answer to one agent query.
type Response struct {
	Query       string   `json:"query"`
	Intent      string   `json:"intent"`
	Warnings    []string `json:"warnings"`
	Plan        *Plan    `json:"plan,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	Result      any      `json:"result"`
	Meta        Meta     `json:"meta"`
}

// Agent answers natural-language questions over the unified view. It owns
// the three planning tiers and the plan executor.
type Agent struct {
	exec    *Executor
	planner *Planner // nil disables the LLM tier
}

// New builds an Agent. A nil planner (no credential configured) silently
// skips the LLM tier.
func New(api API, planner *Planner) *Agent {
	return &Agent{exec: NewExecutor(api), planner: planner}
}

const dontKnowAnswer = "Sorry, I don't know how to answer that yet."

// Query compiles the question into a plan, executes it, and renders the
// answer. format "csv" forces CSV output regardless of the plan's intent.
func (a *Agent) Query(ctx context.Context, q, format string) (*Response, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty query: %w", unifyiq.ErrPlanShape)
	}

	warnings := []string{}

	// Tier 1: hard guardrails.
	if plan, answerCtx := Guardrail(q); plan != nil {
		return a.run(ctx, q, format, plan, answerCtx, warnings)
	}

	// Tier 2: LLM planning, recovered locally on any failure.
	var plan *Plan
	if a.planner != nil {
		p, err := a.planner.Plan(ctx, q)
		if err != nil {
			log.Printf("warning: %v", err)
			warnings = append(warnings, "LLM planning failed. Fallback used.")
		} else {
			plan = p
		}
	}

	// Tier 3: deterministic fallback.
	if plan == nil {
		plan = FallbackPlan(q)
	}

	// An empty plan is an honest "I don't know", not an error.
	if len(plan.Steps) == 0 {
		return &Response{
			Query:    q,
			Intent:   "answer",
			Warnings: append(warnings, "No valid plan could be generated."),
			Answer:   dontKnowAnswer,
			Result:   []Row{},
			Meta:     Meta{Fetches: []FetchTrace{}},
		}, nil
	}

	return a.run(ctx, q, format, plan, firstFetchContext(plan), warnings)
}

// run executes a compiled plan and assembles the response.
func (a *Agent) run(ctx context.Context, q, format string, plan *Plan, answerCtx map[string]any, warnings []string) (*Response, error) {
	rows, meta, err := a.exec.Run(ctx, plan)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Query:    q,
		Intent:   plan.Intent,
		Warnings: warnings,
		Plan:     plan,
		Meta:     *meta,
	}

	if format == "csv" || plan.Intent == "csv" {
		text, err := CSV(rows)
		if err != nil {
			return nil, fmt.Errorf("encoding CSV: %v", err)
		}
		resp.ContentType = "text/csv"
		resp.Result = text
		return resp, nil
	}

	resp.Answer = RenderAnswer(plan.AnswerTemplate, rows, answerCtx)
	resp.Result = rows
	return resp, nil
}

// firstFetchContext carries the first fetch's priority and group_by into
// the answer renderer.
func firstFetchContext(plan *Plan) map[string]any {
	for _, step := range plan.Steps {
		if step.Op == OpFetch && step.Fetch != nil {
			ctx := map[string]any{}
			if v, ok := step.Fetch.Params["priority"]; ok {
				ctx["priority"] = v
			}
			if v, ok := step.Fetch.Params["group_by"]; ok {
				ctx["group_by"] = v
			}
			return ctx
		}
	}
	return map[string]any{}
}
