package unifyiq

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// This file canonicalizes raw source fields into the fixed vocabulary used
// by the unifier. Normalization never fails: unrecognized values fall back
// to a documented default, unparseable dates become empty strings.

var priorityMap = map[string]string{
	"critical": P1,
	"blocker":  P1,
	"high":     P1,
	"medium":   P2,
	"low":      P3,
}

var statusMap = map[string]string{
	"open":        StatusOpen,
	"backlog":     StatusOpen,
	"todo":        StatusOpen,
	"in progress": StatusInProgress,
	"done":        StatusClosed,
	"closed":      StatusClosed,
	"resolved":    StatusClosed,
}

// NormalizePriority maps a raw priority to P1, P2 or P3. Unrecognized or
// absent values default to P3, the lowest severity.
func NormalizePriority(raw string) string {
	if p, ok := priorityMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return p
	}
	return P3
}

// NormalizeStatus maps a raw status to the canonical vocabulary,
// defaulting to Open.
func NormalizeStatus(raw string) string {
	if s, ok := statusMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusOpen
}

// isoFormats is the ordered list of accepted date layouts. The first match
// wins, so ambiguous strings like 03/04/2024 resolve by list order, not by
// locale inference.
var isoFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
}

// ToISODate converts a raw date string to ISO-8601 (YYYY-MM-DD). On total
// failure a last-resort heuristic splits on separators and zero-pads the
// segments when the first segment is 4 digits (assumed year-first).
// It returns "" when nothing works; parsing never raises.
func ToISODate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range isoFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	parts := strings.Split(strings.ReplaceAll(s, "/", "-"), "-")
	if len(parts) == 3 && len(parts[0]) == 4 {
		return parts[0] + "-" + zeroPad(parts[1]) + "-" + zeroPad(parts[2])
	}
	return ""
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// NormalizeAccounts converts raw account records to their canonical form.
func NormalizeAccounts(records []Record) []NormalizedAccount {
	out := make([]NormalizedAccount, 0, len(records))
	for _, r := range records {
		out = append(out, NormalizedAccount{
			AccountID:     fieldString(r, "AccountID"),
			AccountName:   strings.TrimSpace(fieldString(r, "AccountName")),
			Owner:         fieldString(r, "Owner"),
			Region:        fieldString(r, "Region"),
			Industry:      fieldString(r, "Industry"),
			ARR:           fieldInt(r, "ARR"),
			RenewalDate:   ToISODate(fieldString(r, "RenewalDate")),
			Stage:         fieldString(r, "Stage"),
			CustomerSince: ToISODate(fieldString(r, "CustomerSince")),
		})
	}
	return out
}

// NormalizeIssues converts raw issue records to their canonical form.
func NormalizeIssues(records []Record) []NormalizedIssue {
	out := make([]NormalizedIssue, 0, len(records))
	for _, r := range records {
		status := NormalizeStatus(fieldString(r, "Status"))
		out = append(out, NormalizedIssue{
			IssueID:      fieldString(r, "IssueID"),
			Summary:      strings.TrimSpace(fieldString(r, "Summary")),
			Status:       status,
			Priority:     NormalizePriority(fieldString(r, "Priority")),
			Assignee:     fieldString(r, "Assignee"),
			Reporter:     fieldString(r, "Reporter"),
			CreatedDate:  ToISODate(fieldString(r, "CreatedDate")),
			ResolvedDate: ToISODate(fieldString(r, "ResolvedDate")),
			StoryPoints:  fieldInt(r, "StoryPoints"),
			EpicLink:     fieldString(r, "EpicLink"),
			IsOpen:       status != StatusClosed,
		})
	}
	return out
}

// fieldString reads a record field as a string. Numbers are formatted,
// nil becomes "".
func fieldString(r Record, key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; whole values print without decimals.
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// fieldInt reads a record field as an int, tolerating JSON floats and
// numeric strings. Anything else counts as 0.
func fieldInt(r Record, key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(n)
		}
	}
	return 0
}
