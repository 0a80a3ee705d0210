package agent

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
)

// The answer renderer: fills a plan's answer template with aggregate
// statistics derived from the result rows, and encodes rows as CSV for
// download intents.

// sumFields is the fixed list of numeric fields summed into the template
// context as sum_<field>.
var sumFields = []string{
	"ARR",
	"OpenIssues",
	"OpenP1Issues",
	"OpenP2Issues",
	"OpenP3Issues",
	"total_open",
	"accounts_with_open",
}

// RenderAnswer substitutes every {{key}} occurrence in the template.
// The context holds count, any non-nil side-context entries, and the
// sum_<field> aggregates; missing or non-numeric values contribute 0 to
// the sums. Unresolved placeholders are left verbatim. Without a template
// a generic sentence is produced.
func RenderAnswer(template string, rows []Row, context map[string]any) string {
	if template == "" {
		if len(rows) == 0 {
			return "No matching accounts found."
		}
		sample := len(rows)
		if sample > 3 {
			sample = 3
		}
		return fmt.Sprintf("Found %d result(s). Showing %d sample row(s).", len(rows), sample)
	}

	kv := map[string]any{"count": len(rows)}
	for k, v := range context {
		if v != nil {
			kv[k] = v
		}
	}
	for _, field := range sumFields {
		total := 0
		for _, r := range rows {
			if n, ok := asInt(r[field]); ok {
				total += n
			}
		}
		kv["sum_"+field] = total
	}

	out := template
	for k, v := range kv {
		out = strings.ReplaceAll(out, "{{"+k+"}}", formatValue(v))
	}
	return out
}

// CSV encodes rows as CSV text. The header is the union of all row keys,
// each row's new keys appended in sorted order, so identical inputs always
// encode identically; the overall order is still not guaranteed when field
// sets differ across rows. Empty input encodes to the empty string.
func CSV(rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	var fields []string
	seen := make(map[string]bool)
	for _, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		fields = append(fields, keys...)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return "", err
	}
	record := make([]string, len(fields))
	for _, r := range rows {
		for i, k := range fields {
			record[i] = formatValue(r[k])
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}
