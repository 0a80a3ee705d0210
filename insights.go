package unifyiq

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ferrary7/unifyiq-aryan/date"
	"github.com/shopspring/decimal"
)

// The insights engine: pure query functions over the unified account
// collection. Every function takes the full list plus parameters and
// returns a filtered, sorted, limited projection.

// Filters are the optional account-level filters shared by all insight
// queries. String matches are case-insensitive; either ARR bound may be
// nil for an open interval.
type Filters struct {
	Region       string
	Stage        string
	Industry     string
	NameContains string
	ARRMin       *int
	ARRMax       *int
}

func (f Filters) passes(a *UnifiedAccount) bool {
	if f.Region != "" && !strings.EqualFold(a.Region, f.Region) {
		return false
	}
	if f.Stage != "" && !strings.EqualFold(a.Stage, f.Stage) {
		return false
	}
	if f.Industry != "" && !strings.EqualFold(a.Industry, f.Industry) {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(a.AccountName), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.ARRMin != nil && a.ARR < *f.ARRMin {
		return false
	}
	if f.ARRMax != nil && a.ARR > *f.ARRMax {
		return false
	}
	return true
}

// openKey validates a priority and returns the unified field it counts in.
func openKey(priority string) (string, error) {
	switch strings.ToUpper(priority) {
	case P1:
		return "OpenP1Issues", nil
	case P2:
		return "OpenP2Issues", nil
	case P3:
		return "OpenP3Issues", nil
	}
	return "", fmt.Errorf("priority must be one of P1, P2, P3, got %q: %w", priority, ErrInvalidArgument)
}

func openCount(a *UnifiedAccount, priority string) int {
	switch strings.ToUpper(priority) {
	case P1:
		return a.OpenP1Issues
	case P2:
		return a.OpenP2Issues
	case P3:
		return a.OpenP3Issues
	}
	return 0
}

// openBugCount recomputes the open count from LinkedIssues, keeping only
// issues whose summary does not mention enhancements. Used when a query
// asks for bugs only, since there is no precomputed bug counter.
func openBugCount(a *UnifiedAccount, priority string) int {
	prio := strings.ToUpper(priority)
	n := 0
	for _, i := range a.LinkedIssues {
		if i.Status == StatusClosed || i.Priority != prio {
			continue
		}
		if strings.Contains(strings.ToLower(i.Summary), "enhancement") {
			continue
		}
		n++
	}
	return n
}

// counters returns the three projection pointers with only the requested
// priority populated, matching the sparse per-item counters of the API.
func counters(a *UnifiedAccount, priority string) (p1, p2, p3 *int) {
	n := openCount(a, priority)
	switch strings.ToUpper(priority) {
	case P1:
		return &n, nil, nil
	case P2:
		return nil, &n, nil
	case P3:
		return nil, nil, &n
	}
	return nil, nil, nil
}

type TopRevenueItem struct {
	AccountID    string `json:"AccountID"`
	AccountName  string `json:"AccountName"`
	ARR          int    `json:"ARR"`
	RenewalDate  string `json:"RenewalDate,omitempty"`
	Region       string `json:"Region"`
	Stage        string `json:"Stage"`
	OpenP1Issues *int   `json:"OpenP1Issues,omitempty"`
	OpenP2Issues *int   `json:"OpenP2Issues,omitempty"`
	OpenP3Issues *int   `json:"OpenP3Issues,omitempty"`
}

type TopRevenueResponse struct {
	Priority string           `json:"priority"`
	Count    int              `json:"count"`
	Items    []TopRevenueItem `json:"items"`
}

// TopRevenue returns the accounts with the highest ARR among those having
// open issues at the given priority. Sorted by ARR descending, stable on
// ties.
func TopRevenue(accounts []UnifiedAccount, priority string, limit int, f Filters) (*TopRevenueResponse, error) {
	if _, err := openKey(priority); err != nil {
		return nil, err
	}
	var impacted []*UnifiedAccount
	for i := range accounts {
		a := &accounts[i]
		if openCount(a, priority) > 0 && f.passes(a) {
			impacted = append(impacted, a)
		}
	}
	sort.SliceStable(impacted, func(i, j int) bool { return impacted[i].ARR > impacted[j].ARR })

	items := make([]TopRevenueItem, 0, limit)
	for _, a := range impacted {
		if len(items) >= limit {
			break
		}
		p1, p2, p3 := counters(a, priority)
		items = append(items, TopRevenueItem{
			AccountID:    a.AccountID,
			AccountName:  a.AccountName,
			ARR:          a.ARR,
			RenewalDate:  a.RenewalDate,
			Region:       a.Region,
			Stage:        a.Stage,
			OpenP1Issues: p1,
			OpenP2Issues: p2,
			OpenP3Issues: p3,
		})
	}
	return &TopRevenueResponse{Priority: strings.ToUpper(priority), Count: len(items), Items: items}, nil
}

type RenewalsItem struct {
	AccountID    string `json:"AccountID"`
	AccountName  string `json:"AccountName"`
	ARR          int    `json:"ARR"`
	RenewalDate  string `json:"RenewalDate,omitempty"`
	OpenIssues   int    `json:"OpenIssues"`
	Region       string `json:"Region"`
	Stage        string `json:"Stage"`
	OpenP1Issues *int   `json:"OpenP1Issues,omitempty"`
	OpenP2Issues *int   `json:"OpenP2Issues,omitempty"`
	OpenP3Issues *int   `json:"OpenP3Issues,omitempty"`
}

type RenewalsResponse struct {
	Priority   string         `json:"priority"`
	AsOf       string         `json:"as_of"`
	WindowDays int            `json:"window_days"`
	Count      int            `json:"count"`
	Items      []RenewalsItem `json:"items"`
}

// RenewalsWithin returns the accounts renewing inside [asOf, asOf+days]
// that have open issues at the given priority, nearest renewal first,
// ties broken by ARR descending.
func RenewalsWithin(accounts []UnifiedAccount, priority string, days int, asOf date.Date, limit int, f Filters) (*RenewalsResponse, error) {
	if _, err := openKey(priority); err != nil {
		return nil, err
	}
	horizon := asOf.Add(days)

	var impacted []*UnifiedAccount
	for i := range accounts {
		a := &accounts[i]
		rd, err := date.Parse(a.RenewalDate)
		if err != nil || rd.Before(asOf) || rd.After(horizon) {
			continue
		}
		if openCount(a, priority) > 0 && f.passes(a) {
			impacted = append(impacted, a)
		}
	}
	sort.SliceStable(impacted, func(i, j int) bool {
		// RenewalDate is ISO so string order is day order.
		if impacted[i].RenewalDate != impacted[j].RenewalDate {
			return impacted[i].RenewalDate < impacted[j].RenewalDate
		}
		return impacted[i].ARR > impacted[j].ARR
	})

	items := make([]RenewalsItem, 0, limit)
	for _, a := range impacted {
		if len(items) >= limit {
			break
		}
		p1, p2, p3 := counters(a, priority)
		items = append(items, RenewalsItem{
			AccountID:    a.AccountID,
			AccountName:  a.AccountName,
			ARR:          a.ARR,
			RenewalDate:  a.RenewalDate,
			OpenIssues:   a.OpenIssues,
			Region:       a.Region,
			Stage:        a.Stage,
			OpenP1Issues: p1,
			OpenP2Issues: p2,
			OpenP3Issues: p3,
		})
	}
	return &RenewalsResponse{
		Priority:   strings.ToUpper(priority),
		AsOf:       asOf.String(),
		WindowDays: days,
		Count:      len(items),
		Items:      items,
	}, nil
}

type CriticalItem struct {
	AccountID     string `json:"AccountID"`
	AccountName   string `json:"AccountName"`
	ARR           int    `json:"ARR"`
	OpenIssues    int    `json:"OpenIssues"`
	LastIssueDate string `json:"LastIssueDate,omitempty"`
	Region        string `json:"Region"`
	OpenP1Issues  *int   `json:"OpenP1Issues,omitempty"`
	OpenP2Issues  *int   `json:"OpenP2Issues,omitempty"`
	OpenP3Issues  *int   `json:"OpenP3Issues,omitempty"`
}

type CriticalResponse struct {
	Priority  string         `json:"priority"`
	Threshold int            `json:"threshold"`
	Count     int            `json:"count"`
	Items     []CriticalItem `json:"items"`
}

// CriticalThreshold returns the accounts whose open count at the given
// priority is within [min, max], max being unbounded when nil. Sorted by
// open count descending, ties broken by ARR descending.
func CriticalThreshold(accounts []UnifiedAccount, priority string, min int, max *int, limit int, f Filters) (*CriticalResponse, error) {
	if _, err := openKey(priority); err != nil {
		return nil, err
	}
	var flagged []*UnifiedAccount
	for i := range accounts {
		a := &accounts[i]
		cnt := openCount(a, priority)
		if cnt < min {
			continue
		}
		if max != nil && cnt > *max {
			continue
		}
		if !f.passes(a) {
			continue
		}
		flagged = append(flagged, a)
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		ci, cj := openCount(flagged[i], priority), openCount(flagged[j], priority)
		if ci != cj {
			return ci > cj
		}
		return flagged[i].ARR > flagged[j].ARR
	})

	items := make([]CriticalItem, 0, limit)
	for _, a := range flagged {
		if len(items) >= limit {
			break
		}
		p1, p2, p3 := counters(a, priority)
		items = append(items, CriticalItem{
			AccountID:     a.AccountID,
			AccountName:   a.AccountName,
			ARR:           a.ARR,
			OpenIssues:    a.OpenIssues,
			LastIssueDate: a.LastIssueDate,
			Region:        a.Region,
			OpenP1Issues:  p1,
			OpenP2Issues:  p2,
			OpenP3Issues:  p3,
		})
	}
	return &CriticalResponse{Priority: strings.ToUpper(priority), Threshold: min, Count: len(items), Items: items}, nil
}

type SummaryBucket struct {
	AccountsWithOpen int     `json:"accounts_with_open"`
	TotalOpen        int     `json:"total_open"`
	MedianARR        float64 `json:"median_arr_impacted"`
}

type SummaryResponse struct {
	TotalAccounts int           `json:"total_accounts"`
	P1            SummaryBucket `json:"p1"`
	P2            SummaryBucket `json:"p2"`
	P3            SummaryBucket `json:"p3"`
}

// Summarize rolls up the open issue exposure independently for each of
// P1, P2 and P3.
func Summarize(accounts []UnifiedAccount) *SummaryResponse {
	collect := func(priority string) SummaryBucket {
		var b SummaryBucket
		var arrs []int
		for i := range accounts {
			a := &accounts[i]
			cnt := openCount(a, priority)
			b.TotalOpen += cnt
			if cnt > 0 {
				b.AccountsWithOpen++
				arrs = append(arrs, a.ARR)
			}
		}
		b.MedianARR = medianARR(arrs)
		return b
	}
	return &SummaryResponse{
		TotalAccounts: len(accounts),
		P1:            collect(P1),
		P2:            collect(P2),
		P3:            collect(P3),
	}
}

// medianARR is the median of the given ARR values; 0 for the empty set.
// Even-sized sets average the middle pair exactly before converting back
// to float.
func medianARR(arrs []int) float64 {
	if len(arrs) == 0 {
		return 0
	}
	sorted := append([]int(nil), arrs...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	a := decimal.NewFromInt(int64(sorted[mid-1]))
	b := decimal.NewFromInt(int64(sorted[mid]))
	return a.Add(b).Div(decimal.NewFromInt(2)).InexactFloat64()
}

type GroupByItem struct {
	Group            string `json:"group"`
	AccountsWithOpen int    `json:"accounts_with_open"`
	TotalOpen        int    `json:"total_open"`
}

type GroupByResponse struct {
	Priority string        `json:"priority"`
	GroupBy  string        `json:"group_by"`
	Count    int           `json:"count"`
	Items    []GroupByItem `json:"items"`
}

// GroupBy buckets the accounts with open issues at the given priority by
// one of region, stage or industry. When issueType is "bug" the open count
// is recomputed from LinkedIssues excluding enhancements; otherwise the
// precomputed counters are used. Buckets are sorted by total open count
// descending.
func GroupBy(accounts []UnifiedAccount, priority, dimension, issueType string, f Filters) (*GroupByResponse, error) {
	if _, err := openKey(priority); err != nil {
		return nil, err
	}
	var dim func(*UnifiedAccount) string
	switch strings.ToLower(dimension) {
	case "region":
		dim = func(a *UnifiedAccount) string { return a.Region }
	case "stage":
		dim = func(a *UnifiedAccount) string { return a.Stage }
	case "industry":
		dim = func(a *UnifiedAccount) string { return a.Industry }
	default:
		return nil, fmt.Errorf("group_by must be one of region, stage, industry, got %q: %w", dimension, ErrInvalidArgument)
	}

	bug := strings.EqualFold(issueType, "bug")
	var order []string
	buckets := make(map[string]*GroupByItem)
	for i := range accounts {
		a := &accounts[i]
		if !f.passes(a) {
			continue
		}
		cnt := openCount(a, priority)
		if bug {
			cnt = openBugCount(a, priority)
		}
		if cnt <= 0 {
			continue
		}
		key := dim(a)
		if key == "" {
			key = "Unknown"
		}
		b, ok := buckets[key]
		if !ok {
			b = &GroupByItem{Group: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.AccountsWithOpen++
		b.TotalOpen += cnt
	}

	items := make([]GroupByItem, 0, len(order))
	for _, key := range order {
		items = append(items, *buckets[key])
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].TotalOpen > items[j].TotalOpen })

	return &GroupByResponse{
		Priority: strings.ToUpper(priority),
		GroupBy:  strings.ToLower(dimension),
		Count:    len(items),
		Items:    items,
	}, nil
}
