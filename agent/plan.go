// Package agent compiles free-form natural-language questions into small
// declarative query plans and executes them deterministically against the
// unified account view.
//
// Planning runs through three ordered tiers, each short-circuiting on
// success: hard guardrails for request shapes that must never reach a
// probabilistic planner, an optional Gemini planner, and a deterministic
// rule-based fallback. A plan is either empty, meaning "cannot answer this
// yet", or a fully well-formed step list; it is never left partially
// invalid.
package agent

import (
	"fmt"
	"strings"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
)

// Fetchable endpoints. Plans reference operations by these names, and the
// executor resolves them in process.
const (
	EndpointTopRevenue = "/insights/top-revenue"
	EndpointRenewals   = "/insights/renewals-with"
	EndpointCritical   = "/insights/accounts-with-critical"
	EndpointSummary    = "/insights/summary"
	EndpointGroupBy    = "/insights/group-by"
	EndpointAccounts   = "/mcp/accounts"
)

// Step operations.
const (
	OpFetch     = "fetch"
	OpFilter    = "filter"
	OpSelect    = "select"
	OpSort      = "sort"
	OpTop       = "top"
	OpGroup     = "group"
	OpSummarize = "summarize"
)

// maxTop bounds the top step.
const maxTop = 2000

// FetchArgs name the operation a fetch step resolves, plus its parameters.
type FetchArgs struct {
	Endpoint string         `json:"endpoint"`
	Params   map[string]any `json:"params,omitempty"`
}

// FilterCond is one row predicate; conditions of a filter step are ANDed.
type FilterCond struct {
	Field string `json:"field"`
	Op    string `json:"op"` // =, !=, >, >=, <, <=, contains, in
	Value any    `json:"value"`
}

// SortSpec orders rows by a field.
type SortSpec struct {
	By    string `json:"by"`
	Order string `json:"order"` // asc or desc, default desc
}

// GroupSpec buckets rows by a field.
type GroupSpec struct {
	By    string `json:"by"`
	Agg   string `json:"agg"`             // count or sum, default count
	Field string `json:"field,omitempty"` // summed field, default ARR
}

// Step is one plan operation. Only the field matching Op is populated.
type Step struct {
	Op     string       `json:"op"`
	Fetch  *FetchArgs   `json:"fetch,omitempty"`
	Filter []FilterCond `json:"filter,omitempty"`
	Select []string     `json:"select,omitempty"`
	Sort   *SortSpec    `json:"sort,omitempty"`
	Top    int          `json:"top,omitempty"`
	Group  *GroupSpec   `json:"group,omitempty"`
}

// Plan is a typed, ordered list of query-execution steps compiled from a
// natural-language request.
type Plan struct {
	Intent         string `json:"intent"` // answer, csv or debug
	Steps          []Step `json:"steps"`
	AnswerTemplate string `json:"answer_template,omitempty"` // {{name}} placeholders
}

// defaultParams returns the endpoint-specific fetch defaults. Caller
// parameters win on conflict.
func defaultParams(endpoint string) map[string]any {
	switch endpoint {
	case EndpointTopRevenue:
		return map[string]any{"priority": unifyiq.P1, "limit": 10}
	case EndpointRenewals:
		return map[string]any{"priority": unifyiq.P1, "days": 60, "limit": 100}
	case EndpointCritical:
		return map[string]any{"priority": unifyiq.P1, "min": 3, "limit": 10}
	case EndpointGroupBy:
		return map[string]any{"priority": unifyiq.P1, "group_by": "region"}
	case EndpointAccounts:
		return map[string]any{"limit": 100, "offset": 0}
	}
	return map[string]any{}
}

var knownEndpoints = map[string]bool{
	EndpointTopRevenue: true,
	EndpointRenewals:   true,
	EndpointCritical:   true,
	EndpointSummary:    true,
	EndpointGroupBy:    true,
	EndpointAccounts:   true,
}

var knownFilterOps = map[string]bool{
	"=": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true,
	"contains": true, "in": true,
}

// Validate checks the plan against the schema and normalizes defaulted
// enum fields in place. A plan that fails validation is rejected whole;
// the planner tiers never hand a partially valid plan to the executor.
func (p *Plan) Validate() error {
	switch p.Intent {
	case "":
		p.Intent = "answer"
	case "answer", "csv", "debug":
	default:
		return fmt.Errorf("unknown intent %q: %w", p.Intent, unifyiq.ErrPlanShape)
	}
	for i := range p.Steps {
		s := &p.Steps[i]
		switch s.Op {
		case OpFetch:
			if s.Fetch == nil {
				return fmt.Errorf("fetch step missing args: %w", unifyiq.ErrPlanShape)
			}
			if !knownEndpoints[s.Fetch.Endpoint] {
				return fmt.Errorf("unknown endpoint %q: %w", s.Fetch.Endpoint, unifyiq.ErrPlanShape)
			}
		case OpFilter:
			for _, c := range s.Filter {
				if c.Field == "" || !knownFilterOps[c.Op] {
					return fmt.Errorf("invalid filter condition %q %q: %w", c.Field, c.Op, unifyiq.ErrPlanShape)
				}
			}
		case OpSelect:
			// empty select is a no-op, accepted
		case OpSort:
			if s.Sort == nil || s.Sort.By == "" {
				return fmt.Errorf("sort step missing field: %w", unifyiq.ErrPlanShape)
			}
			switch strings.ToLower(s.Sort.Order) {
			case "":
				s.Sort.Order = "desc"
			case "asc", "desc":
				s.Sort.Order = strings.ToLower(s.Sort.Order)
			default:
				return fmt.Errorf("unknown sort order %q: %w", s.Sort.Order, unifyiq.ErrPlanShape)
			}
		case OpTop:
			if s.Top < 0 || s.Top > maxTop {
				return fmt.Errorf("top %d out of range [1,%d]: %w", s.Top, maxTop, unifyiq.ErrPlanShape)
			}
		case OpGroup:
			if s.Group == nil || s.Group.By == "" {
				return fmt.Errorf("group step missing field: %w", unifyiq.ErrPlanShape)
			}
			switch s.Group.Agg {
			case "":
				s.Group.Agg = "count"
			case "count", "sum":
			default:
				return fmt.Errorf("unknown aggregation %q: %w", s.Group.Agg, unifyiq.ErrPlanShape)
			}
		case OpSummarize:
			// reserved, no payload
		default:
			return fmt.Errorf("unknown op %q: %w", s.Op, unifyiq.ErrPlanShape)
		}
	}
	return nil
}
