package unifyiq

import (
	"context"
	"sort"
	"time"

	"github.com/ferrary7/unifyiq-aryan/date"
)

// Config carries the configuration injected once at process start. No
// component reads the environment on its own.
type Config struct {
	// BaseURL of the raw tabular service.
	BaseURL string
	// GeminiAPIKey enables the LLM planning tier of the agent when set.
	GeminiAPIKey string
	// Timeout bounds each outbound call; zero picks a default.
	Timeout time.Duration
}

// sourcePageSize is how many raw records one unification pass pulls from
// each dataset.
const sourcePageSize = 1000

// Service performs the request-scoped fetch-and-recompute cycle and exposes
// the unification and insight operations on top of it. It holds no shared
// mutable state, so it is safe for concurrent use.
type Service struct {
	src *Source
}

// NewService builds a Service from the configuration.
func NewService(cfg Config) *Service {
	return &Service{src: NewSource(cfg.BaseURL, cfg.Timeout)}
}

// Unify fetches both datasets, normalizes them and joins them. Every call
// recomputes from scratch.
func (s *Service) Unify(ctx context.Context) (*Unified, error) {
	rawAccounts, err := s.src.ListAccounts(ctx, sourcePageSize, 0)
	if err != nil {
		return nil, err
	}
	rawIssues, err := s.src.ListIssues(ctx, sourcePageSize, 0)
	if err != nil {
		return nil, err
	}
	return Unify(NormalizeAccounts(rawAccounts), NormalizeIssues(rawIssues)), nil
}

// AccountsMeta is the meta block of an accounts page.
type AccountsMeta struct {
	Orphans    int               `json:"orphans"`
	EpicSample map[string]string `json:"epic_to_account_sample"`
}

// AccountsPage is one page of the unified account list.
type AccountsPage struct {
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Count  int              `json:"count"`
	Items  []UnifiedAccount `json:"items"`
	Meta   AccountsMeta     `json:"meta"`
}

// Accounts returns one page of the unified account list with join metadata.
func (s *Service) Accounts(ctx context.Context, limit, offset int) (*AccountsPage, error) {
	limit = clamp(limit, 1, 1000, 100)
	if offset < 0 {
		offset = 0
	}
	u, err := s.Unify(ctx)
	if err != nil {
		return nil, err
	}
	total := len(u.Accounts)
	lo := offset
	if lo > total {
		lo = total
	}
	hi := lo + limit
	if hi > total {
		hi = total
	}
	items := u.Accounts[lo:hi]
	return &AccountsPage{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Count:  len(items),
		Items:  items,
		Meta: AccountsMeta{
			Orphans:    u.Orphans,
			EpicSample: epicSample(u.EpicMap, 5),
		},
	}, nil
}

// Account returns a single unified account by AccountID.
func (s *Service) Account(ctx context.Context, id string) (*UnifiedAccount, error) {
	u, err := s.Unify(ctx)
	if err != nil {
		return nil, err
	}
	return u.Account(id)
}

// TopRevenue runs the top-revenue insight against a fresh unified view.
func (s *Service) TopRevenue(ctx context.Context, priority string, limit int, f Filters) (*TopRevenueResponse, error) {
	limit = clamp(limit, 1, 1000, 10)
	u, err := s.Unify(ctx)
	if err != nil {
		return nil, err
	}
	return TopRevenue(u.Accounts, priority, limit, f)
}

// Renewals runs the renewals-with insight. A zero asOf means today.
func (s *Service) Renewals(ctx context.Context, priority string, days int, asOf date.Date, limit int, f Filters) (*RenewalsResponse, error) {
	limit = clamp(limit, 1, 1000, 100)
	days = clamp(days, 1, 365, 60)
	if asOf.IsZero() {
		asOf = date.Today()
	}
	u, err := s.Unify(ctx)
	if err != nil {
		return nil, err
	}
	return RenewalsWithin(u.Accounts, priority, days, asOf, limit, f)
}

// Critical runs the accounts-with-critical insight.
func (s *Service) Critical(ctx context.Context, priority string, min int, max *int, limit int, f Filters) (*CriticalResponse, error) {
	limit = clamp(limit, 1, 1000, 10)
	min = clamp(min, 1, 50, 3)
	u, err := s.Unify(ctx)
	if err != nil {
		return nil, err
	}
	return CriticalThreshold(u.Accounts, priority, min, max, limit, f)
}

// Summary runs the portfolio summary insight.
func (s *Service) Summary(ctx context.Context) (*SummaryResponse, error) {
	u, err := s.Unify(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(u.Accounts), nil
}

// GroupBy runs the group-by insight.
func (s *Service) GroupBy(ctx context.Context, priority, dimension, issueType string, f Filters) (*GroupByResponse, error) {
	u, err := s.Unify(ctx)
	if err != nil {
		return nil, err
	}
	return GroupBy(u.Accounts, priority, dimension, issueType, f)
}

// epicSample keeps the response byte-stable: the first n epics in
// lexicographic order.
func epicSample(m map[string]string, n int) map[string]string {
	epics := make([]string, 0, len(m))
	for e := range m {
		epics = append(epics, e)
	}
	sort.Strings(epics)
	if len(epics) > n {
		epics = epics[:n]
	}
	sample := make(map[string]string, len(epics))
	for _, e := range epics {
		sample[e] = m[e]
	}
	return sample
}

// clamp bounds v to [min, max], substituting def when v is unset (<= 0).
func clamp(v, min, max, def int) int {
	if v <= 0 {
		v = def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
