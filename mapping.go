package unifyiq

import "sort"

// BuildEpicAccountMap assigns each distinct epic token to an account,
// round-robin over the sorted distinct AccountIDs: epic[i] maps to
// account[i mod N], both sides in lexicographic order.
//
// The two datasets share no real foreign key, so this is an explicit,
// documented stand-in relationship, not a true key. It is deterministic:
// identical input sets always produce the identical map. The map is empty
// when either side is empty.
func BuildEpicAccountMap(accounts []NormalizedAccount, issues []NormalizedIssue) map[string]string {
	ids := make(map[string]bool)
	for _, a := range accounts {
		if a.AccountID != "" {
			ids[a.AccountID] = true
		}
	}
	epicSet := make(map[string]bool)
	for _, i := range issues {
		if i.EpicLink != "" {
			epicSet[i.EpicLink] = true
		}
	}
	if len(ids) == 0 || len(epicSet) == 0 {
		return map[string]string{}
	}

	accIDs := make([]string, 0, len(ids))
	for id := range ids {
		accIDs = append(accIDs, id)
	}
	sort.Strings(accIDs)

	epics := make([]string, 0, len(epicSet))
	for e := range epicSet {
		epics = append(epics, e)
	}
	sort.Strings(epics)

	mapping := make(map[string]string, len(epics))
	for i, e := range epics {
		mapping[e] = accIDs[i%len(accIDs)]
	}
	return mapping
}
