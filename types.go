package unifyiq

// Canonical priority vocabulary.
const (
	P1 = "P1"
	P2 = "P2"
	P3 = "P3"
)

// Canonical status vocabulary.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusClosed     = "Closed"
)

// Record is a raw row as served by the tabular source, keyed by column name.
type Record = map[string]any

// NormalizedAccount is an account record with canonical field values.
// It lives only for the duration of a single request.
type NormalizedAccount struct {
	AccountID     string
	AccountName   string
	Owner         string
	Region        string
	Industry      string
	ARR           int
	RenewalDate   string // ISO-8601 or empty when unparseable
	Stage         string
	CustomerSince string // ISO-8601 or empty
}

// NormalizedIssue is an issue record with canonical field values.
type NormalizedIssue struct {
	IssueID      string
	Summary      string
	Status       string // one of the Status constants
	Priority     string // one of P1, P2, P3
	Assignee     string
	Reporter     string
	CreatedDate  string // ISO-8601 or empty
	ResolvedDate string // ISO-8601 or empty
	StoryPoints  int
	EpicLink     string
	IsOpen       bool // derived: Status != Closed
}

// LinkedIssue is the projection of an issue carried on a UnifiedAccount.
type LinkedIssue struct {
	IssueID      string `json:"IssueID"`
	Summary      string `json:"Summary"`
	Priority     string `json:"Priority"`
	Status       string `json:"Status"`
	CreatedDate  string `json:"CreatedDate,omitempty"`
	ResolvedDate string `json:"ResolvedDate,omitempty"`
	EpicLink     string `json:"EpicLink,omitempty"`
}

// UnifiedAccount is one account joined with its mapped issues.
//
// Invariant: OpenP1Issues+OpenP2Issues+OpenP3Issues <= OpenIssues. Equality
// holds when every open issue's priority normalized into one of the three
// buckets, but consumers must not assume it.
type UnifiedAccount struct {
	AccountID     string        `json:"AccountID"`
	AccountName   string        `json:"AccountName"`
	ARR           int           `json:"ARR"`
	RenewalDate   string        `json:"RenewalDate,omitempty"`
	Stage         string        `json:"Stage"`
	Region        string        `json:"Region"`
	Industry      string        `json:"Industry"`
	OpenIssues    int           `json:"OpenIssues"`
	OpenP1Issues  int           `json:"OpenP1Issues"`
	OpenP2Issues  int           `json:"OpenP2Issues"`
	OpenP3Issues  int           `json:"OpenP3Issues"`
	LastIssueDate string        `json:"LastIssueDate,omitempty"`
	LinkedIssues  []LinkedIssue `json:"LinkedIssues"`
}
