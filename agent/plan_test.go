package agent

import (
	"errors"
	"testing"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
)

func TestPlanValidateDefaults(t *testing.T) {
	p := &Plan{
		Steps: []Step{
			{Op: OpFetch, Fetch: &FetchArgs{Endpoint: EndpointSummary}},
			{Op: OpSort, Sort: &SortSpec{By: "ARR"}},
			{Op: OpGroup, Group: &GroupSpec{By: "Region"}},
		},
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Intent != "answer" {
		t.Errorf("intent = %q, want defaulted answer", p.Intent)
	}
	if p.Steps[1].Sort.Order != "desc" {
		t.Errorf("sort order = %q, want defaulted desc", p.Steps[1].Sort.Order)
	}
	if p.Steps[2].Group.Agg != "count" {
		t.Errorf("agg = %q, want defaulted count", p.Steps[2].Group.Agg)
	}
}

func TestPlanValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		plan Plan
	}{
		{"unknown intent", Plan{Intent: "explode"}},
		{"fetch without args", Plan{Steps: []Step{{Op: OpFetch}}}},
		{"unknown endpoint", Plan{Steps: []Step{{Op: OpFetch, Fetch: &FetchArgs{Endpoint: "/insights/made-up"}}}}},
		{"filter without field", Plan{Steps: []Step{{Op: OpFilter, Filter: []FilterCond{{Op: "="}}}}}},
		{"filter unknown op", Plan{Steps: []Step{{Op: OpFilter, Filter: []FilterCond{{Field: "ARR", Op: "~"}}}}}},
		{"sort without field", Plan{Steps: []Step{{Op: OpSort, Sort: &SortSpec{}}}}},
		{"sort bad order", Plan{Steps: []Step{{Op: OpSort, Sort: &SortSpec{By: "ARR", Order: "sideways"}}}}},
		{"top out of range", Plan{Steps: []Step{{Op: OpTop, Top: maxTop + 1}}}},
		{"group without field", Plan{Steps: []Step{{Op: OpGroup, Group: &GroupSpec{}}}}},
		{"group bad agg", Plan{Steps: []Step{{Op: OpGroup, Group: &GroupSpec{By: "Region", Agg: "median"}}}}},
		{"unknown op", Plan{Steps: []Step{{Op: "transmogrify"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.plan.Validate()
			if !errors.Is(err, unifyiq.ErrPlanShape) {
				t.Errorf("Validate() = %v, want ErrPlanShape", err)
			}
		})
	}
}

func TestDefaultParams(t *testing.T) {
	tests := []struct {
		endpoint string
		key      string
		want     any
	}{
		{EndpointTopRevenue, "limit", 10},
		{EndpointTopRevenue, "priority", unifyiq.P1},
		{EndpointRenewals, "days", 60},
		{EndpointRenewals, "limit", 100},
		{EndpointCritical, "min", 3},
		{EndpointGroupBy, "group_by", "region"},
		{EndpointAccounts, "limit", 100},
		{EndpointAccounts, "offset", 0},
	}
	for _, tc := range tests {
		params := defaultParams(tc.endpoint)
		if params[tc.key] != tc.want {
			t.Errorf("defaultParams(%s)[%s] = %v, want %v", tc.endpoint, tc.key, params[tc.key], tc.want)
		}
	}
	if len(defaultParams(EndpointSummary)) != 0 {
		t.Error("summary takes no default parameters")
	}
}
