package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
)

// Row is the interpreter's untyped transit format: a string-keyed view of
// one result row. Typed responses are flattened into rows at the fetch
// boundary and stay untyped for the rest of the plan.
type Row = map[string]any

// FetchTrace records one resolved fetch call.
type FetchTrace struct {
	Endpoint string         `json:"endpoint"`
	Params   map[string]any `json:"params"`
}

// Meta is the execution trace returned with every result.
type Meta struct {
	Fetches []FetchTrace `json:"fetches"`
}

// API resolves a fetch step to the matching operation. Implementations
// return one of the typed insight responses or an accounts page.
type API interface {
	Fetch(ctx context.Context, endpoint string, params map[string]any) (any, error)
}

// Executor interprets plans step by step.
type Executor struct {
	api API
}

// NewExecutor returns an Executor resolving fetches through api.
func NewExecutor(api API) *Executor {
	return &Executor{api: api}
}

// Run executes the plan's steps strictly in declared order and returns the
// final rows plus the fetch trace. A failing fetch aborts the whole plan.
func (e *Executor) Run(ctx context.Context, plan *Plan) ([]Row, *Meta, error) {
	rows := []Row{}
	meta := &Meta{Fetches: []FetchTrace{}}

	for _, step := range plan.Steps {
		switch step.Op {
		case OpFetch:
			if step.Fetch == nil {
				return nil, nil, fmt.Errorf("fetch step missing args: %w", unifyiq.ErrPlanShape)
			}
			params := defaultParams(step.Fetch.Endpoint)
			for k, v := range step.Fetch.Params {
				params[k] = v
			}
			data, err := e.api.Fetch(ctx, step.Fetch.Endpoint, params)
			if err != nil {
				return nil, nil, err
			}
			meta.Fetches = append(meta.Fetches, FetchTrace{Endpoint: step.Fetch.Endpoint, Params: params})
			rows, err = extractRows(data)
			if err != nil {
				return nil, nil, err
			}

		case OpFilter:
			rows = applyFilter(rows, step.Filter)

		case OpSelect:
			if len(step.Select) > 0 {
				rows = applySelect(rows, step.Select)
			}

		case OpSort:
			if step.Sort != nil {
				applySort(rows, step.Sort)
			}

		case OpTop:
			if step.Top > 0 {
				rows = applyTop(rows, step.Top)
			}

		case OpGroup:
			if step.Group != nil {
				rows = applyGroup(rows, step.Group)
			}

		case OpSummarize:
			// reserved for forward compatibility

		default:
			return nil, nil, fmt.Errorf("unknown op %q: %w", step.Op, unifyiq.ErrPlanShape)
		}
	}

	return rows, meta, nil
}

// extractRows flattens a fetch response into rows. An object carrying an
// "items" list unwraps to those items; any other single object becomes a
// one-element row list; lists pass through unchanged.
func extractRows(data any) ([]Row, error) {
	buf, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("cannot flatten fetch response: %v: %w", err, unifyiq.ErrPlanShape)
	}
	var generic any
	if err := json.Unmarshal(buf, &generic); err != nil {
		return nil, fmt.Errorf("cannot flatten fetch response: %v: %w", err, unifyiq.ErrPlanShape)
	}

	switch v := generic.(type) {
	case map[string]any:
		if items, ok := v["items"].([]any); ok {
			return toRows(items), nil
		}
		return []Row{v}, nil
	case []any:
		return toRows(v), nil
	}
	return []Row{}, nil
}

func toRows(items []any) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

// applyFilter keeps rows satisfying every condition. Numeric operators
// against non-numeric values make the row non-matching, never an error.
func applyFilter(rows []Row, conds []FilterCond) []Row {
	out := rows[:0:0]
	for _, r := range rows {
		if matchesAll(r, conds) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r Row, conds []FilterCond) bool {
	for _, c := range conds {
		val := r[c.Field]
		switch c.Op {
		case "=":
			if !equalLoose(val, c.Value) {
				return false
			}
		case "!=":
			if equalLoose(val, c.Value) {
				return false
			}
		case ">", ">=", "<", "<=":
			a, aok := asFloat(val)
			b, bok := asFloat(c.Value)
			if !aok || !bok {
				return false
			}
			switch c.Op {
			case ">":
				if !(a > b) {
					return false
				}
			case ">=":
				if !(a >= b) {
					return false
				}
			case "<":
				if !(a < b) {
					return false
				}
			case "<=":
				if !(a <= b) {
					return false
				}
			}
		case "contains":
			needle, ok := c.Value.(string)
			if !ok || needle == "" {
				return false
			}
			if !strings.Contains(strings.ToLower(formatValue(val)), strings.ToLower(needle)) {
				return false
			}
		case "in":
			set, ok := c.Value.([]any)
			if !ok {
				return false
			}
			found := false
			for _, candidate := range set {
				if equalLoose(val, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// applySelect projects each row to exactly the named fields; absent fields
// become nulls.
func applySelect(rows []Row, cols []string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		p := make(Row, len(cols))
		for _, k := range cols {
			p[k] = r[k] // missing keys project to nil
		}
		out = append(out, p)
	}
	return out
}

// applySort sorts rows stably by a field. Null or missing values sort
// before present values regardless of direction; order only flips the
// comparison of present values.
func applySort(rows []Row, spec *SortSpec) {
	desc := spec.Order == "desc"
	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := rows[i][spec.By], rows[j][spec.By]
		if vi == nil || vj == nil {
			return vi == nil && vj != nil
		}
		c := compareValues(vi, vj)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func applyTop(rows []Row, n int) []Row {
	if n < 1 {
		n = 1
	}
	if n > maxTop {
		n = maxTop
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// applyGroup buckets rows by a field value (absent becomes "Unknown") and
// emits one row per bucket with group, count and sum. The sum accumulates
// only values that parse as integers.
func applyGroup(rows []Row, spec *GroupSpec) []Row {
	sumField := spec.Field
	if sumField == "" {
		sumField = "ARR"
	}

	var order []string
	buckets := make(map[string]Row)
	for _, r := range rows {
		g := "Unknown"
		if v, ok := r[spec.By]; ok && v != nil {
			g = formatValue(v)
		}
		b, ok := buckets[g]
		if !ok {
			b = Row{"group": g, "count": 0, "sum": 0}
			buckets[g] = b
			order = append(order, g)
		}
		b["count"] = b["count"].(int) + 1
		if spec.Agg == "sum" {
			if n, ok := asInt(r[sumField]); ok {
				b["sum"] = b["sum"].(int) + n
			}
		}
	}

	out := make([]Row, 0, len(order))
	for _, g := range order {
		out = append(out, buckets[g])
	}
	key := "count"
	if spec.Agg == "sum" {
		key = "sum"
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i][key].(int) > out[j][key].(int)
	})
	return out
}

// asFloat reads a value as a number.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// asInt reads a value as an integer, tolerating floats and numeric strings.
func asInt(v any) (int, bool) {
	if f, ok := asFloat(v); ok {
		return int(f), true
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// equalLoose compares two values, treating 1 and 1.0 as equal since rows
// and plan values travel through JSON independently.
func equalLoose(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return formatValue(a) == formatValue(b)
}

// compareValues orders two non-nil values: numerically when both are
// numbers, as strings otherwise.
func compareValues(a, b any) int {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(formatValue(a), formatValue(b))
}

// formatValue renders a row value the way it appeared in the source JSON:
// whole floats print without a decimal part, nil prints empty.
func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	case int:
		return strconv.Itoa(n)
	}
	return fmt.Sprint(v)
}
