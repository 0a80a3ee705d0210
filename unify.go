package unifyiq

import "fmt"

// Unified is the per-request join of accounts and issues.
type Unified struct {
	Accounts []UnifiedAccount
	Orphans  int // issues whose epic resolved to no known account
	EpicMap  map[string]string
}

// Unify joins normalized accounts with their mapped issues.
//
// Duplicate AccountIDs are resolved last-one-wins while keeping the
// position of the first occurrence; this is a data-quality assumption of
// the source feed, not something validated here. Issues whose EpicLink is
// absent or unmapped are orphans: excluded from every rollup, only
// counted.
func Unify(accounts []NormalizedAccount, issues []NormalizedIssue) *Unified {
	epicMap := BuildEpicAccountMap(accounts, issues)

	order := make([]string, 0, len(accounts))
	byID := make(map[string]NormalizedAccount, len(accounts))
	for _, a := range accounts {
		if a.AccountID == "" {
			continue
		}
		if _, seen := byID[a.AccountID]; !seen {
			order = append(order, a.AccountID)
		}
		byID[a.AccountID] = a
	}

	issuesByAcc := make(map[string][]NormalizedIssue, len(byID))
	orphans := 0
	for _, issue := range issues {
		accID, mapped := epicMap[issue.EpicLink]
		if _, known := byID[accID]; mapped && known {
			issuesByAcc[accID] = append(issuesByAcc[accID], issue)
		} else {
			orphans++
		}
	}

	unified := make([]UnifiedAccount, 0, len(order))
	for _, accID := range order {
		acc := byID[accID]
		linked := issuesByAcc[accID]

		u := UnifiedAccount{
			AccountID:    accID,
			AccountName:  acc.AccountName,
			ARR:          acc.ARR,
			RenewalDate:  acc.RenewalDate,
			Stage:        acc.Stage,
			Region:       acc.Region,
			Industry:     acc.Industry,
			LinkedIssues: make([]LinkedIssue, 0, len(linked)),
		}
		for _, i := range linked {
			if i.IsOpen {
				u.OpenIssues++
				switch i.Priority {
				case P1:
					u.OpenP1Issues++
				case P2:
					u.OpenP2Issues++
				case P3:
					u.OpenP3Issues++
				}
			}
			// Dates are ISO-8601 so the lexicographic max is the latest day.
			if i.CreatedDate > u.LastIssueDate {
				u.LastIssueDate = i.CreatedDate
			}
			u.LinkedIssues = append(u.LinkedIssues, LinkedIssue{
				IssueID:      i.IssueID,
				Summary:      i.Summary,
				Priority:     i.Priority,
				Status:       i.Status,
				CreatedDate:  i.CreatedDate,
				ResolvedDate: i.ResolvedDate,
				EpicLink:     i.EpicLink,
			})
		}
		unified = append(unified, u)
	}

	return &Unified{Accounts: unified, Orphans: orphans, EpicMap: epicMap}
}

// Account returns the unified account with the given AccountID.
func (u *Unified) Account(id string) (*UnifiedAccount, error) {
	for i := range u.Accounts {
		if u.Accounts[i].AccountID == id {
			return &u.Accounts[i], nil
		}
	}
	return nil, fmt.Errorf("account %q: %w", id, ErrNotFound)
}
