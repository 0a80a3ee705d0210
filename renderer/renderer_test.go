package renderer

import (
	"strings"
	"testing"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
)

func TestUSD(t *testing.T) {
	got := USD(1250000)
	if got != "$1,250,000.00" {
		t.Errorf("USD(1250000) = %q, want %q", got, "$1,250,000.00")
	}
}

func TestRenderAccounts(t *testing.T) {
	page := &unifyiq.AccountsPage{
		Total: 2, Limit: 100, Offset: 0, Count: 2,
		Items: []unifyiq.UnifiedAccount{
			{AccountID: "A1001", AccountName: "Globex", ARR: 500000, Stage: "Customer", Region: "North America", OpenIssues: 3, OpenP1Issues: 1, OpenP2Issues: 2},
			{AccountID: "A1002", AccountName: "Initech", ARR: 120000, Stage: "Prospect", Region: "Europe"},
		},
		Meta: unifyiq.AccountsMeta{Orphans: 1},
	}
	got := RenderAccounts(page)
	for _, want := range []string{
		"# Unified Accounts",
		"Showing 2 of 2 accounts",
		"| A1001 | Globex | $500,000.00 | Customer | North America | 3 | 1 | 2 | 0 |",
		"1 issue(s) reference accounts outside this dataset.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderAccounts missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderAccount(t *testing.T) {
	a := &unifyiq.UnifiedAccount{
		AccountID: "A1001", AccountName: "Globex", ARR: 500000,
		Stage: "Customer", Region: "North America", Industry: "Manufacturing",
		RenewalDate: "2026-11-01", OpenIssues: 1, OpenP1Issues: 1,
		LinkedIssues: []unifyiq.LinkedIssue{
			{IssueID: "J-1", Summary: "Login fails", Priority: "P1", Status: "Open", CreatedDate: "2026-08-01"},
		},
	}
	got := RenderAccount(a)
	for _, want := range []string{
		"# Globex (A1001)",
		"- Renewal: 2026-11-01",
		"| J-1 | Login fails | P1 | Open | 2026-08-01 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderAccount missing %q in:\n%s", want, got)
		}
	}

	empty := RenderAccount(&unifyiq.UnifiedAccount{AccountID: "A1", AccountName: "X"})
	if !strings.Contains(empty, "No issues mapped to this account.") {
		t.Errorf("expected empty-issue notice, got:\n%s", empty)
	}
}

func TestRenderSummary(t *testing.T) {
	s := &unifyiq.SummaryResponse{
		TotalAccounts: 5,
		P1:            unifyiq.SummaryBucket{AccountsWithOpen: 2, TotalOpen: 4, MedianARR: 310000},
	}
	got := RenderSummary(s)
	if !strings.Contains(got, "Total accounts: 5") {
		t.Errorf("RenderSummary missing total in:\n%s", got)
	}
	if !strings.Contains(got, "| P1 | 2 | 4 | 310000 |") {
		t.Errorf("RenderSummary missing P1 row in:\n%s", got)
	}
}

func TestRenderGroups(t *testing.T) {
	g := &unifyiq.GroupByResponse{
		Priority: "P1", GroupBy: "region", Count: 2,
		Items: []unifyiq.GroupByItem{
			{Group: "North America", AccountsWithOpen: 3, TotalOpen: 7},
			{Group: "Europe", AccountsWithOpen: 1, TotalOpen: 2},
		},
	}
	got := RenderGroups(g)
	if !strings.Contains(got, "# P1 Issues by region") {
		t.Errorf("RenderGroups missing title in:\n%s", got)
	}
	na := strings.Index(got, "| North America | 3 | 7 |")
	eu := strings.Index(got, "| Europe | 1 | 2 |")
	if na < 0 || eu < 0 || na > eu {
		t.Errorf("RenderGroups rows wrong or out of order:\n%s", got)
	}
}
