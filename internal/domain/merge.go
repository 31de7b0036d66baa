package domain

// MergeResult is the outcome of reconciling a local and a remote quote sequence.
type MergeResult struct {
	// Quotes is the reconciled sequence: local order first, then remote-only
	// quotes in the order the remote supplied them.
	Quotes []Quote

	// Conflicted is true when at least one quote existed on both sides with
	// a different category. The remote version was kept.
	Conflicted bool

	// Added counts remote-only quotes appended to the result.
	Added int

	// Updated counts local quotes overwritten by their remote version.
	Updated int
}

// Changed reports whether the merge altered the local sequence.
func (r MergeResult) Changed() bool {
	return r.Added > 0 || r.Updated > 0
}

// Merge reconciles local against remote.
//
// Precedence rule: when the same normalized text appears on both sides with
// different categories, the remote quote replaces the local one in place.
// Remote-only quotes are appended and tagged OriginRemote. Local-only quotes
// are kept unchanged. Remote duplicates collapse to their first occurrence
// and invalid remote entries are ignored.
//
// Merge is idempotent: Merge(Merge(L, R).Quotes, R) returns the same
// sequence and reports Conflicted == false.
func Merge(local, remote []Quote) MergeResult {
	merged := make([]Quote, len(local), len(local)+len(remote))
	copy(merged, local)

	index := make(map[string]int, len(local)+len(remote))
	for i, q := range merged {
		index[q.Key()] = i
	}

	var result MergeResult

	for _, rq := range Dedupe(remote) {
		rq = rq.WithOrigin(OriginRemote)

		i, exists := index[rq.Key()]
		if !exists {
			index[rq.Key()] = len(merged)
			merged = append(merged, rq)
			result.Added++

			continue
		}

		if merged[i].Category != rq.Category {
			merged[i] = rq
			result.Conflicted = true
			result.Updated++
		}
	}

	result.Quotes = merged

	return result
}
