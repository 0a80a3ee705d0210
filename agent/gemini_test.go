package agent

import (
	"errors"
	"testing"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
)

func TestParsePlan(t *testing.T) {
	text := `{
		"intent": "answer",
		"steps": [
			{"op": "fetch", "fetch": {"endpoint": "/insights/top-revenue", "params": {"priority": "P1", "limit": 5}}},
			{"op": "sort", "sort": {"by": "ARR", "order": "desc"}},
			{"op": "top", "top": 5}
		]
	}`
	plan, err := ParsePlan(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Steps) != 3 || plan.Steps[0].Fetch.Endpoint != EndpointTopRevenue {
		t.Errorf("plan = %+v", plan)
	}
}

func TestParsePlanStripsFences(t *testing.T) {
	text := "```json\n{\"intent\": \"answer\", \"steps\": []}\n```"
	plan, err := ParsePlan(text)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Intent != "answer" || len(plan.Steps) != 0 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestParsePlanNonJSON(t *testing.T) {
	if _, err := ParsePlan("the top accounts are Globex and Initech"); err == nil {
		t.Error("prose must not parse as a plan")
	}
}

func TestParsePlanInvalid(t *testing.T) {
	_, err := ParsePlan(`{"steps": [{"op": "fetch", "fetch": {"endpoint": "/made/up"}}]}`)
	if !errors.Is(err, unifyiq.ErrPlanShape) {
		t.Errorf("error = %v, want ErrPlanShape", err)
	}
}
