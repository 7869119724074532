package aggregator

import (
	"sort"
	"strings"
)

// Output is the normalized structure handed to the persistence layer
type Output struct {
	Contributors []*ContributorRecord `json:"contributors"`
	Metadata     Metadata             `json:"metadata"`
}

// Output shapes the run's contributor map into the final ordered structure,
// sorted by username case-insensitively.
func (r *Result) Output() *Output {
	contributors := make([]*ContributorRecord, 0, len(r.contributors))
	for _, record := range r.contributors {
		contributors = append(contributors, record)
	}
	sort.Slice(contributors, func(i, j int) bool {
		return strings.ToLower(contributors[i].Username) < strings.ToLower(contributors[j].Username)
	})

	meta := r.meta
	if len(r.skipped) > 0 {
		skipped := make([]string, 0, len(r.skipped))
		for username := range r.skipped {
			skipped = append(skipped, username)
		}
		sort.Strings(skipped)
		meta.SkippedUsers = skipped
	}

	return &Output{Contributors: contributors, Metadata: meta}
}
