package agent

import "testing"

func TestFallbackOutOfScope(t *testing.T) {
	for _, q := range []string{
		"what is our churn rate",
		"show me NPS by region",
		"customer retention trends",
	} {
		plan := FallbackPlan(q)
		if len(plan.Steps) != 0 {
			t.Errorf("FallbackPlan(%q) returned %d steps, want empty plan", q, len(plan.Steps))
		}
	}
}

func TestFallbackGroupBy(t *testing.T) {
	plan := FallbackPlan("please group by stage")
	if len(plan.Steps) != 2 || plan.Steps[0].Fetch.Endpoint != EndpointGroupBy {
		t.Fatalf("plan = %+v, want the 2-step group-by plan", plan)
	}
	if plan.Steps[0].Fetch.Params["group_by"] != "stage" {
		t.Errorf("group_by = %v, want stage", plan.Steps[0].Fetch.Params["group_by"])
	}
}

func TestFallbackAccountsList(t *testing.T) {
	plan := FallbackPlan("list accounts in apac with arr >= 200k")
	if plan.Steps[0].Fetch.Endpoint != EndpointAccounts {
		t.Fatalf("endpoint = %q, want accounts", plan.Steps[0].Fetch.Endpoint)
	}
	// fetch, filter, sort, top
	if len(plan.Steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(plan.Steps))
	}
	if plan.Steps[1].Op != OpFilter || len(plan.Steps[1].Filter) == 0 {
		t.Errorf("step 1 = %+v, want inferred filters", plan.Steps[1])
	}
	if plan.Steps[2].Sort.By != "ARR" || plan.Steps[3].Top != 100 {
		t.Errorf("tail steps = %+v, want sort ARR then top 100", plan.Steps[2:])
	}
}

func TestFallbackTopRevenueDefault(t *testing.T) {
	plan := FallbackPlan("highest revenue with open p1 issues")
	if plan.Steps[0].Fetch.Endpoint != EndpointTopRevenue {
		t.Fatalf("endpoint = %q, want top-revenue", plan.Steps[0].Fetch.Endpoint)
	}
	if len(plan.Steps) != 3 || plan.Steps[2].Top != 10 {
		t.Errorf("steps = %+v, want fetch, sort, top 10", plan.Steps)
	}
}

func TestFallbackRenewals(t *testing.T) {
	plan := FallbackPlan("who is renewing in 30 days with p2 issues")
	fetch := plan.Steps[0].Fetch
	if fetch.Endpoint != EndpointRenewals {
		t.Fatalf("endpoint = %q, want renewals", fetch.Endpoint)
	}
	if fetch.Params["days"] != 30 || fetch.Params["priority"] != "P2" {
		t.Errorf("params = %v, want days 30 and P2", fetch.Params)
	}
	// renewals keep the endpoint's own order, no sort step
	if len(plan.Steps) != 2 || plan.Steps[1].Op != OpTop {
		t.Errorf("steps = %+v, want fetch then top", plan.Steps)
	}
}

func TestFallbackAccountsWordWinsOverInsights(t *testing.T) {
	// Mentioning accounts routes to the raw listing even when other
	// insight keywords appear later in the question.
	plan := FallbackPlan("which accounts are renewing soon")
	if plan.Steps[0].Fetch.Endpoint != EndpointAccounts {
		t.Errorf("endpoint = %q, want accounts", plan.Steps[0].Fetch.Endpoint)
	}
}

func TestFallbackRenewalsRelative(t *testing.T) {
	plan := FallbackPlan("renewals this quarter")
	if plan.Steps[0].Fetch.Params["days"] != 90 {
		t.Errorf("days = %v, want 90 for this quarter", plan.Steps[0].Fetch.Params["days"])
	}
}

func TestFallbackCriticalAtLeast(t *testing.T) {
	plan := FallbackPlan("customers with at least 5 critical issues")
	fetch := plan.Steps[0].Fetch
	if fetch.Endpoint != EndpointCritical {
		t.Fatalf("endpoint = %q, want critical", fetch.Endpoint)
	}
	if fetch.Params["min"] != 5 {
		t.Errorf("min = %v, want 5", fetch.Params["min"])
	}
}

func TestFallbackCriticalRange(t *testing.T) {
	plan := FallbackPlan("who has 2 to 6 open p1 issues")
	fetch := plan.Steps[0].Fetch
	if fetch.Endpoint != EndpointCritical {
		t.Fatalf("endpoint = %q, want critical", fetch.Endpoint)
	}
	if fetch.Params["min"] != 2 || fetch.Params["max"] != 6 {
		t.Errorf("params = %v, want min 2 max 6", fetch.Params)
	}
}

func TestFallbackRegionParam(t *testing.T) {
	plan := FallbackPlan("top revenue at risk in na")
	if plan.Steps[0].Fetch.Params["region"] != "north america" {
		t.Errorf("region = %v, want the na alias expanded", plan.Steps[0].Fetch.Params["region"])
	}
}

func TestFallbackBugsOnly(t *testing.T) {
	plan := FallbackPlan("top revenue impacted, bugs only")
	if plan.Steps[0].Fetch.Params["issue_type"] != "bug" {
		t.Errorf("params = %v, want issue_type bug", plan.Steps[0].Fetch.Params)
	}
}

func TestFallbackCSVIntent(t *testing.T) {
	plan := FallbackPlan("download top revenue as csv")
	if plan.Intent != "csv" {
		t.Errorf("intent = %q, want csv", plan.Intent)
	}
}
