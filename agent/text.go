package agent

import (
	"regexp"
	"strconv"
	"strings"

	unifyiq "github.com/ferrary7/unifyiq-aryan"
)

// Pure text classification: everything in this file maps free text to
// structured parameters and knows nothing about transport or execution.

var (
	groupByRE      = regexp.MustCompile(`(?i)group by (region|stage|industry)`)
	bugsOnlyRE     = regexp.MustCompile(`(?i)(bugs? only|bug only|not counting enhancements)`)
	outOfScopeRE   = regexp.MustCompile(`(?i)\b(churn|nps|net promoter|csat|c-sat|cohort|ltv|lifetime value|cac|funnel|conversion rate|ctr|arpu|mau|wau|dau|retention|engagement)\b`)
	showAllRE      = regexp.MustCompile(`(?i)\b(show|list|display)\s+(all|everything|data|accounts)\b|\ball data\b|\braw\b`)
	accountIDRE    = regexp.MustCompile(`(?i)\b[a-z]\d{3,}\b`)
	arrCmpRE       = regexp.MustCompile(`(?i)\barr\s*(>=|>|<=|<|=)\s*([0-9][0-9,\.]*\s*[km]?)`)
	arrRangeRE     = regexp.MustCompile(`(?i)\barr\s*(\d[\d,\.]*\s*[km]?)\s*(?:to|-)\s*(\d[\d,\.]*\s*[km]?)`)
	nameContainsRE = regexp.MustCompile(`(?i)(?:name|account name)\s*(?:contains|like)\s*['"]?([a-z0-9 _-]+)['"]?`)
	pThresholdRE   = regexp.MustCompile(`(?i)\b(p1|p2|p3)\s*(?:issues?|=)?\s*(>=|>|<=|<|=)?\s*(\d+)?`)
	regionTokRE    = regexp.MustCompile(`(?i)\b(apac|europe|emea|north america|na|latam)\b`)
	stageEqRE      = regexp.MustCompile(`(?i)stage\s*=\s*([a-z ]+)`)
	industryEqRE   = regexp.MustCompile(`(?i)industry\s*=\s*([a-z ]+)`)
	severityRE     = regexp.MustCompile(`(?i)\b(p0|p1|p2|p3|sev1|sev2|sev3|high|medium|low)\b`)
	atLeastRE      = regexp.MustCompile(`(?i)(?:at least|>=)\s*(\d+)`)
	numRangeRE     = regexp.MustCompile(`(\d+)\s*(?:to|-)\s*(\d+)`)
	daysRE         = regexp.MustCompile(`(?i)(\d+)\s*days?`)
	csvRE          = regexp.MustCompile(`(?i)\b(csv|download)\b`)
)

// regionAliases expands the shorthand region tokens.
var regionAliases = map[string]string{"na": "north america", "emea": "europe"}

// priorityToken maps a single severity token to a canonical priority,
// defaulting to P1 for unrecognized mentions.
func priorityToken(tok string) string {
	switch strings.ToLower(strings.TrimSpace(tok)) {
	case "p0", "sev0", "sev1", "p1", "critical", "high", "severity high":
		return unifyiq.P1
	case "p2", "sev2", "medium":
		return unifyiq.P2
	case "p3", "sev3", "low":
		return unifyiq.P3
	}
	return unifyiq.P1
}

// priorityFromText scans the whole text for a severity mention, P1 first.
func priorityFromText(text string) string {
	low := strings.ToLower(text)
	for _, k := range []string{"p0", "sev0", "sev1", "high", "severity high", "p1"} {
		if strings.Contains(low, k) {
			return unifyiq.P1
		}
	}
	for _, k := range []string{"p2", "sev2", "medium"} {
		if strings.Contains(low, k) {
			return unifyiq.P2
		}
	}
	for _, k := range []string{"p3", "sev3", "low"} {
		if strings.Contains(low, k) {
			return unifyiq.P3
		}
	}
	return unifyiq.P1
}

// numFromText converts shorthand like "100k", "1.2m" or "250,000" to an
// integer, reporting false when the token is not numeric.
func numFromText(tok string) (int, bool) {
	s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tok)), ",", "")
	mult := 1.0
	if strings.HasSuffix(s, "k") {
		mult, s = 1_000, strings.TrimSpace(strings.TrimSuffix(s, "k"))
	} else if strings.HasSuffix(s, "m") {
		mult, s = 1_000_000, strings.TrimSpace(strings.TrimSuffix(s, "m"))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f * mult), true
}

// relativeTime maps relative time phrases to day windows, checked in order.
var relativeTime = []struct {
	phrase string
	days   int
}{
	{"this quarter", 90},
	{"next quarter", 90},
	{"next month", 30},
	{"this month", 30},
	{"this week", 7},
	{"next week", 7},
}

// inferDays extracts a day window from a relative time phrase or an
// explicit "<N> days" mention.
func inferDays(text string) (int, bool) {
	low := strings.ToLower(text)
	for _, rt := range relativeTime {
		if strings.Contains(low, rt.phrase) {
			return rt.days, true
		}
	}
	if m := daysRE.FindStringSubmatch(low); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// filtersFromText infers row filters for raw account fetches: region,
// stage, industry, name-contains, ARR comparisons and ranges, per-priority
// open thresholds, and explicit AccountIDs.
func filtersFromText(low string) []FilterCond {
	var filters []FilterCond

	if m := regionTokRE.FindStringSubmatch(low); m != nil {
		region := strings.ToLower(m[1])
		if alias, ok := regionAliases[region]; ok {
			region = alias
		}
		filters = append(filters, FilterCond{Field: "Region", Op: "=", Value: titleCase(region)})
	}
	if m := stageEqRE.FindStringSubmatch(low); m != nil {
		filters = append(filters, FilterCond{Field: "Stage", Op: "=", Value: titleCase(strings.TrimSpace(m[1]))})
	}
	if m := industryEqRE.FindStringSubmatch(low); m != nil {
		filters = append(filters, FilterCond{Field: "Industry", Op: "=", Value: titleCase(strings.TrimSpace(m[1]))})
	}
	if m := nameContainsRE.FindStringSubmatch(low); m != nil {
		filters = append(filters, FilterCond{Field: "AccountName", Op: "contains", Value: strings.TrimSpace(m[1])})
	}
	if m := arrCmpRE.FindStringSubmatch(low); m != nil {
		if num, ok := numFromText(m[2]); ok {
			filters = append(filters, FilterCond{Field: "ARR", Op: m[1], Value: num})
		}
	}
	if m := arrRangeRE.FindStringSubmatch(low); m != nil {
		a, aok := numFromText(m[1])
		b, bok := numFromText(m[2])
		if aok && bok {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			filters = append(filters,
				FilterCond{Field: "ARR", Op: ">=", Value: lo},
				FilterCond{Field: "ARR", Op: "<=", Value: hi},
			)
		}
	}
	for _, m := range pThresholdRE.FindAllStringSubmatch(low, -1) {
		field := map[string]string{
			"p1": "OpenP1Issues",
			"p2": "OpenP2Issues",
			"p3": "OpenP3Issues",
		}[strings.ToLower(m[1])]
		op, num := m[2], m[3]
		if num != "" {
			n, _ := strconv.Atoi(num)
			if op == "" {
				op = ">="
			}
			filters = append(filters, FilterCond{Field: field, Op: op, Value: n})
		} else {
			// a bare pX mention means "has at least one"
			filters = append(filters, FilterCond{Field: field, Op: ">=", Value: 1})
		}
	}
	if m := accountIDRE.FindString(low); m != "" {
		filters = append(filters, FilterCond{Field: "AccountID", Op: "=", Value: strings.ToUpper(m)})
	}

	return filters
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
