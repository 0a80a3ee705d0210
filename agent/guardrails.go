package agent

import "strings"

// Hard guardrails: request shapes that are matched deterministically
// before any planner runs, so that an unavailable or creative LLM can
// never change their behavior.

const groupByTemplate = "Grouped by {{group_by}} with open {{priority}} issues. Groups: {{count}}. Total open: {{sum_total_open}}."

// groupByPlan builds the canonical 2-step plan for "group by <dimension>"
// requests. Shared by the guardrail tier and the fallback tier.
func groupByPlan(text, dimension string) (*Plan, map[string]any) {
	params := defaultParams(EndpointGroupBy)
	params["group_by"] = strings.ToLower(dimension)
	params["priority"] = priorityFromText(text)
	if bugsOnlyRE.MatchString(text) {
		params["issue_type"] = "bug"
	}
	plan := &Plan{
		Intent: "answer",
		Steps: []Step{
			{Op: OpFetch, Fetch: &FetchArgs{Endpoint: EndpointGroupBy, Params: params}},
			{Op: OpSort, Sort: &SortSpec{By: "total_open", Order: "desc"}},
		},
		AnswerTemplate: groupByTemplate,
	}
	context := map[string]any{
		"group_by": params["group_by"],
		"priority": params["priority"],
	}
	return plan, context
}

// showAllPlan builds the raw fetch plan for "show/list/display all" style
// requests: the full unified list sorted by ARR descending.
func showAllPlan() *Plan {
	params := defaultParams(EndpointAccounts)
	return &Plan{
		Intent: "answer",
		Steps: []Step{
			{Op: OpFetch, Fetch: &FetchArgs{Endpoint: EndpointAccounts, Params: params}},
			{Op: OpSort, Sort: &SortSpec{By: "ARR", Order: "desc"}},
			{Op: OpTop, Top: params["limit"].(int)},
		},
	}
}

// Guardrail matches the query against the hard-guardrail shapes, in order:
// group-by requests, explicit AccountID lookups, and "show all" requests.
// It returns nil when no guardrail applies. The context feeds the answer
// renderer.
func Guardrail(q string) (*Plan, map[string]any) {
	if m := groupByRE.FindStringSubmatch(q); m != nil {
		return groupByPlan(q, m[1])
	}

	if m := accountIDRE.FindString(q); m != "" {
		plan := &Plan{
			Intent: "answer",
			Steps: []Step{
				{Op: OpFetch, Fetch: &FetchArgs{Endpoint: EndpointAccounts, Params: defaultParams(EndpointAccounts)}},
				{Op: OpFilter, Filter: []FilterCond{{Field: "AccountID", Op: "=", Value: strings.ToUpper(m)}}},
				{Op: OpTop, Top: 1},
			},
		}
		return plan, nil
	}

	if showAllRE.MatchString(q) {
		return showAllPlan(), nil
	}

	return nil, nil
}
