package jobrun

import (
	"fmt"
	"sort"

	"github.com/opsdeck/opsdeck/pkg/utils/slices"
)

// SortOrder reorders a record sequence by a named comparator.
//
// Orderers always work on a copy. Ties are broken arbitrarily; the sort is
// not stable.
type SortOrder string

const (
	// descending by creation timestamp.
	SortNewest SortOrder = "Newest"

	// ascending by creation timestamp.
	SortOldest SortOrder = "Oldest"

	// ascending by name, lexicographic and case-sensitive.
	SortAlphabetical SortOrder = "Alphabetical"
)

// AsSortOrder parses s into a SortOrder. Empty means SortNewest.
func AsSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortNewest, SortOldest, SortAlphabetical:
		return SortOrder(s), nil
	case "":
		return SortNewest, nil
	}
	return "", fmt.Errorf(`unknown sort order: "%s"`, s)
}

// Less returns the comparator of o.
func (o SortOrder) Less() func(a, b Record) bool {
	switch o {
	case SortOldest:
		return func(a, b Record) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortAlphabetical:
		return func(a, b Record) bool { return a.Name < b.Name }
	default: // SortNewest
		return func(a, b Record) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}

// Apply returns a newly ordered copy of records. The input is left as-is.
func (o SortOrder) Apply(records []Record) []Record {
	out := slices.Clone(records)
	less := o.Less()
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
