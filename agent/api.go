package agent

import (
	"context"
	"fmt"
	"strings"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
	"github.com/ferrary7/unifyiq-aryan/date"
)

// ServiceAPI resolves fetch steps in process against the unification
// service, translating the loosely typed plan parameters into the typed
// operation signatures.
type ServiceAPI struct {
	svc *unifyiq.Service
}

// NewServiceAPI wraps the service for plan execution.
func NewServiceAPI(svc *unifyiq.Service) *ServiceAPI {
	return &ServiceAPI{svc: svc}
}

// Fetch implements API.
func (s *ServiceAPI) Fetch(ctx context.Context, endpoint string, params map[string]any) (any, error) {
	switch endpoint {
	case EndpointTopRevenue:
		return s.svc.TopRevenue(ctx, paramString(params, "priority"), paramInt(params, "limit"), paramFilters(params))

	case EndpointRenewals:
		var asOf date.Date
		if today := paramString(params, "today"); today != "" {
			if d, err := date.Parse(today); err == nil {
				asOf = d
			}
		}
		return s.svc.Renewals(ctx, paramString(params, "priority"), paramInt(params, "days"), asOf, paramInt(params, "limit"), paramFilters(params))

	case EndpointCritical:
		var max *int
		if m, ok := params["max"]; ok {
			if n, ok := asInt(m); ok {
				max = &n
			}
		}
		return s.svc.Critical(ctx, paramString(params, "priority"), paramInt(params, "min"), max, paramInt(params, "limit"), paramFilters(params))

	case EndpointSummary:
		return s.svc.Summary(ctx)

	case EndpointGroupBy:
		return s.svc.GroupBy(ctx, paramString(params, "priority"), paramString(params, "group_by"), paramString(params, "issue_type"), paramFilters(params))

	case EndpointAccounts:
		return s.svc.Accounts(ctx, paramInt(params, "limit"), paramInt(params, "offset"))
	}
	return nil, fmt.Errorf("unknown endpoint %q: %w", endpoint, unifyiq.ErrPlanShape)
}

func paramString(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		return strings.TrimSpace(formatValue(v))
	}
	return ""
}

func paramInt(params map[string]any, key string) int {
	if n, ok := asInt(params[key]); ok {
		return n
	}
	return 0
}

func paramFilters(params map[string]any) unifyiq.Filters {
	f := unifyiq.Filters{
		Region:       paramString(params, "region"),
		Stage:        paramString(params, "stage"),
		Industry:     paramString(params, "industry"),
		NameContains: paramString(params, "account_name_contains"),
	}
	if v, ok := params["arr_min"]; ok {
		if n, ok := asInt(v); ok {
			f.ARRMin = &n
		}
	}
	if v, ok := params["arr_max"]; ok {
		if n, ok := asInt(v); ok {
			f.ARRMax = &n
		}
	}
	return f
}
