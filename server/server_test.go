package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
	"github.com/ferrary7/unifyiq-aryan/agent"
)

// newTestServer starts a fake raw source and wires the full stack on top
// of it: normalization, unification, insights and the agent without the
// model tier.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/salesforce":
			json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
				{"AccountID": "A1001", "AccountName": "Globex", "ARR": 500000, "RenewalDate": "2026-11-01", "Stage": "Customer", "Region": "North America", "Industry": "Manufacturing"},
				{"AccountID": "A1002", "AccountName": "Initech", "ARR": 120000, "RenewalDate": "2026-09-15", "Stage": "Customer", "Region": "Europe", "Industry": "Software"},
			}})
		case "/jira":
			json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
				{"IssueID": "J-1", "Summary": "Login fails", "Priority": "Critical", "Status": "Open", "CreatedDate": "2026-08-01", "EpicLink": "E-100"},
				{"IssueID": "J-2", "Summary": "Slow exports", "Priority": "Medium", "Status": "Open", "CreatedDate": "2026-08-02", "EpicLink": "E-200"},
				{"IssueID": "J-3", "Summary": "Orphaned ticket", "Priority": "High", "Status": "Open", "CreatedDate": "2026-08-03"},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(source.Close)

	svc := unifyiq.NewService(unifyiq.Config{BaseURL: source.URL})
	a := agent.New(agent.NewServiceAPI(svc), nil)
	return New(svc, a), source
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRoot(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "UnifyIQ API is live") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAccounts(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/mcp/accounts")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /mcp/accounts = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	var page unifyiq.AccountsPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || page.Count != 2 {
		t.Errorf("total=%d count=%d, want 2 and 2", page.Total, page.Count)
	}
	// J-3 has no epic link, it cannot map to any account.
	if page.Meta.Orphans != 1 {
		t.Errorf("orphans = %d, want 1", page.Meta.Orphans)
	}

	// E-100 -> A1001 and E-200 -> A1002 by sorted round robin.
	first := page.Items[0]
	if first.AccountID != "A1001" || first.OpenP1Issues != 1 {
		t.Errorf("first account = %q with P1=%d, want A1001 with 1", first.AccountID, first.OpenP1Issues)
	}
}

func TestAccountByID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/mcp/accounts/A1002")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /mcp/accounts/A1002 = %d, want 200", rec.Code)
	}
	var a unifyiq.UnifiedAccount
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatal(err)
	}
	if a.AccountName != "Initech" || a.OpenP2Issues != 1 {
		t.Errorf("got %q with P2=%d, want Initech with 1", a.AccountName, a.OpenP2Issues)
	}

	if rec := get(t, s, "/mcp/accounts/A9999"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown account = %d, want 404", rec.Code)
	}
}

func TestInsightEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/insights/top-revenue?priority=P1&limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("top-revenue = %d, want 200", rec.Code)
	}
	var top unifyiq.TopRevenueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &top); err != nil {
		t.Fatal(err)
	}
	if top.Count != 1 || top.Items[0].AccountID != "A1001" {
		t.Errorf("top-revenue count=%d items=%v, want A1001 only", top.Count, top.Items)
	}

	rec = get(t, s, "/insights/renewals-with?priority=P2&days=30&today=2026-09-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("renewals-with = %d, want 200", rec.Code)
	}
	var ren unifyiq.RenewalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ren); err != nil {
		t.Fatal(err)
	}
	if ren.Count != 1 || ren.Items[0].AccountID != "A1002" {
		t.Errorf("renewals count=%d items=%v, want A1002 only", ren.Count, ren.Items)
	}

	rec = get(t, s, "/insights/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary = %d, want 200", rec.Code)
	}
	var sum unifyiq.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.TotalAccounts != 2 || sum.P1.TotalOpen != 1 {
		t.Errorf("summary = %+v, want 2 accounts and 1 open P1", sum)
	}

	rec = get(t, s, "/insights/group-by?group_by=region&priority=P2")
	if rec.Code != http.StatusOK {
		t.Fatalf("group-by = %d, want 200", rec.Code)
	}
	var grp unifyiq.GroupByResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &grp); err != nil {
		t.Fatal(err)
	}
	if grp.Count != 1 || grp.Items[0].Group != "Europe" {
		t.Errorf("group-by = %+v, want single Europe group", grp)
	}
}

func TestInsightBadArguments(t *testing.T) {
	s, _ := newTestServer(t)

	if rec := get(t, s, "/insights/top-revenue?priority=P9"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad priority = %d, want 400", rec.Code)
	}
	if rec := get(t, s, "/insights/group-by?group_by=owner"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad dimension = %d, want 400", rec.Code)
	}
}

func TestUpstreamFailure(t *testing.T) {
	s, source := newTestServer(t)
	source.Close()

	if rec := get(t, s, "/mcp/accounts"); rec.Code != http.StatusBadGateway {
		t.Errorf("dead upstream = %d, want 502", rec.Code)
	}
}

func TestAgentQuery(t *testing.T) {
	s, _ := newTestServer(t)

	body := strings.NewReader(`{"q": "group by region for P1 issues"}`)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("POST", "/agent/query", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /agent/query = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	var resp agent.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Answer, "Grouped by region") {
		t.Errorf("answer = %q, want a grouped answer", resp.Answer)
	}
	if len(resp.Meta.Fetches) != 1 {
		t.Errorf("fetches = %d, want exactly 1", len(resp.Meta.Fetches))
	}
}

func TestAgentQueryEmptyBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("POST", "/agent/query", strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("POST", "/agent/query", strings.NewReader(`{"q": ""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty question = %d, want 400", rec.Code)
	}
}
