package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const plannerModel = "gemini-2.5-flash"

// plannerTimeout bounds one planning call; on expiry the fallback tier
// takes over, never the caller's error path.
const plannerTimeout = 15 * time.Second

// instructions is the fixed document submitted with every planning call:
// the allowed endpoints, the parameter vocabulary, the severity and time
// phrase mappings, and the explicit out-of-scope topics.
const instructions = `
You are a planning agent for a data platform.
Return a JSON object ONLY that matches the Plan schema.
No code. No prose. No Markdown. JSON only.

Core rules
1) Single fetch when one endpoint answers the ask. Chain at most 2 fetches only if strictly needed.
2) If the query contains "group by <region|stage|industry>", fetch /insights/group-by with group_by set to that value. Do not fetch /insights/top-revenue for grouping.
3) If the user says "csv", set intent to "csv". Keep the same plan, but the client will request CSV output.
4) If the user says "bugs only", "bug only", or "not counting enhancements", set issue_type="bug".
5) Severity mapping: p0, sev0, sev1, high, severity high -> P1. sev2, medium -> P2. sev3, low -> P3.
6) Relative time: "next month" -> days=30. "this quarter" or "next quarter" -> days=90. "this week" or "next week" -> days=7, unless the user gave a number of days.
7) Prefer sorting that matches intent:
   - top-revenue -> sort by ARR desc
   - accounts-with-critical -> sort by priority count desc then ARR desc
   - renewals-with -> sort by RenewalDate asc then ARR desc
   - group-by -> sort by total_open desc
8) Respect filters if present: region, stage, industry, account_name_contains, arr_min, arr_max.
9) Keep parameters minimal. Do not invent fields outside the allowed params.
10) If the request is outside the available tools (e.g., churn, NPS, cohorts, LTV, CAC, funnels, conversion rates, retention, engagement), RETURN an empty plan:
    {"intent":"answer","steps":[]}.

Raw data usage
- Use /mcp/accounts when the user asks for "show all", "list all accounts", "raw", "everything", or asks for fields/filters not supported by /insights (e.g., filtering by AccountID, name contains, ARR thresholds).
- After fetching /mcp/accounts, use filter/select/sort/top steps to shape the result.

Available tools
- /insights/top-revenue
  params: priority, limit, region, stage, industry, account_name_contains, arr_min, arr_max, issue_type
- /insights/renewals-with
  params: priority, days, today, limit, region, stage, industry, account_name_contains, arr_min, arr_max, issue_type
- /insights/accounts-with-critical
  params: priority, min, max, limit, region, stage, industry, account_name_contains, arr_min, arr_max, issue_type
- /insights/group-by
  params: priority, group_by=region|stage|industry, issue_type
- /mcp/accounts
  params: limit, offset

Planning patterns
- "show all data" -> fetch /mcp/accounts (limit 100), sort ARR desc, top 100.
- "list accounts in apac with arr > 100k" -> /mcp/accounts then filter Region="APAC", filter ARR>100000, sort ARR desc.
- "account A1001" -> /mcp/accounts then filter AccountID="A1001".
- "with p1 >= 3" -> /mcp/accounts then filter OpenP1Issues>=3.
- "group by region with bugs only for p1" -> /insights/group-by with priority=P1, issue_type=bug, sort total_open desc.

Output
- Always return a valid Plan JSON matching the schema. No extra keys. No comments.
`

// Planner is the optional LLM planning tier. A nil Planner simply skips
// the tier.
type Planner struct {
	client *genai.Client
	model  string
}

// NewPlanner initializes the Gemini client with the given credential.
func NewPlanner(ctx context.Context, apiKey string) (*Planner, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing Gemini client: %w", err)
	}
	return &Planner{client: client, model: plannerModel}, nil
}

// Plan submits the query with the instruction document and parses the
// response into a validated Plan. Any transport failure, non-JSON response
// or schema violation is an error; the caller recovers by falling back,
// never by surfacing it.
func (p *Planner) Plan(ctx context.Context, q string) (*Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, plannerTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}
	prompt := instructions + "\n\nUser query: " + q + "\n\nReturn the Plan JSON only. No prose."
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("planning call failed: %w", err)
	}
	return ParsePlan(resp.Text())
}

// ParsePlan decodes a planner response into a validated Plan, stripping
// markdown code fences the model sometimes wraps around the JSON.
func ParsePlan(text string) (*Plan, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var plan Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, fmt.Errorf("planner returned non JSON: %v (response: %.200s)", err, text)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("planner returned invalid plan: %w", err)
	}
	return &plan, nil
}
