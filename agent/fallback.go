package agent

import (
	"strconv"
	"strings"
)

// FallbackPlan classifies the query with ordered deterministic rules and
// always returns a well-formed plan. An empty step list signals that the
// question is out of scope.
func FallbackPlan(q string) *Plan {
	low := strings.ToLower(q)

	// Out-of-scope vocabulary wins over everything: better an honest
	// "I don't know" than a wrong but confident answer.
	if outOfScopeRE.MatchString(low) {
		return &Plan{Intent: "answer", Steps: []Step{}}
	}

	if m := groupByRE.FindStringSubmatch(low); m != nil {
		plan, _ := groupByPlan(low, m[1])
		return plan
	}

	// Raw list requests, with any filters the text implies.
	if showAllRE.MatchString(low) || (strings.Contains(low, "accounts") && !strings.Contains(low, "group by")) {
		params := defaultParams(EndpointAccounts)
		steps := []Step{{Op: OpFetch, Fetch: &FetchArgs{Endpoint: EndpointAccounts, Params: params}}}
		if filters := filtersFromText(low); len(filters) > 0 {
			steps = append(steps, Step{Op: OpFilter, Filter: filters})
		}
		steps = append(steps,
			Step{Op: OpSort, Sort: &SortSpec{By: "ARR", Order: "desc"}},
			Step{Op: OpTop, Top: params["limit"].(int)},
		)
		return &Plan{Intent: "answer", Steps: steps}
	}

	// Default insight flows: pick the endpoint by keyword, then infer
	// parameters from the text.
	intent := "answer"
	endpoint := EndpointTopRevenue
	params := defaultParams(endpoint)

	if strings.Contains(low, "renewal") || strings.Contains(low, "renewing") {
		endpoint = EndpointRenewals
		params = defaultParams(endpoint)
		if d, ok := inferDays(low); ok {
			params["days"] = d
		}
	}

	if strings.Contains(low, "critical") || strings.Contains(low, "at least") || numRangeRE.MatchString(low) {
		endpoint = EndpointCritical
		params = defaultParams(endpoint)
		if m := atLeastRE.FindStringSubmatch(low); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				params["min"] = n
			}
		}
		if m := numRangeRE.FindStringSubmatch(low); m != nil {
			a, _ := strconv.Atoi(m[1])
			b, _ := strconv.Atoi(m[2])
			if a > b {
				a, b = b, a
			}
			params["min"], params["max"] = a, b
		}
	}

	if m := severityRE.FindStringSubmatch(low); m != nil {
		params["priority"] = priorityToken(m[1])
	}

	if m := regionTokRE.FindStringSubmatch(low); m != nil {
		region := strings.ToLower(m[1])
		if alias, ok := regionAliases[region]; ok {
			region = alias
		}
		params["region"] = region
	}
	if m := industryEqRE.FindStringSubmatch(low); m != nil {
		params["industry"] = strings.TrimSpace(m[1])
	}
	if m := stageEqRE.FindStringSubmatch(low); m != nil {
		params["stage"] = strings.TrimSpace(m[1])
	}
	if bugsOnlyRE.MatchString(low) {
		params["issue_type"] = "bug"
	}

	if csvRE.MatchString(low) {
		intent = "csv"
	}

	steps := []Step{{Op: OpFetch, Fetch: &FetchArgs{Endpoint: endpoint, Params: params}}}
	switch endpoint {
	case EndpointTopRevenue, EndpointCritical:
		steps = append(steps,
			Step{Op: OpSort, Sort: &SortSpec{By: "ARR", Order: "desc"}},
			Step{Op: OpTop, Top: params["limit"].(int)},
		)
	case EndpointRenewals:
		steps = append(steps, Step{Op: OpTop, Top: params["limit"].(int)})
	}

	return &Plan{Intent: intent, Steps: steps}
}
