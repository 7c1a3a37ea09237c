package jobrun

import (
	"fmt"

	"github.com/opsdeck/opsdeck/pkg/utils/slices"
)

// StatusFilter selects the subset of records matching a named status
// predicate. Filters preserve the relative order of records and never
// mutate their input.
type StatusFilter string

const (
	// keep records with a non-zero failed counter.
	FilterFailed StatusFilter = "failed"

	// keep records with a non-zero active counter.
	FilterActive StatusFilter = "active"

	// keep records that succeeded and are neither active nor failed.
	//
	// Active and Failed take precedence: a record matching either of those
	// never matches this filter, so failed/active/succeeded partition the
	// record set.
	FilterSucceeded StatusFilter = "succeeded"

	// keep everything.
	FilterAll StatusFilter = "all"
)

// AsStatusFilter parses s into a StatusFilter. Empty means FilterAll.
func AsStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case FilterFailed, FilterActive, FilterSucceeded, FilterAll:
		return StatusFilter(s), nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf(`unknown status filter: "%s"`, s)
}

// Predicate returns the membership test of f.
func (f StatusFilter) Predicate() func(Record) bool {
	switch f {
	case FilterFailed:
		return func(r Record) bool { return r.Failed > 0 }
	case FilterActive:
		return func(r Record) bool { return r.Active > 0 }
	case FilterSucceeded:
		return func(r Record) bool {
			return r.Succeeded > 0 && r.Active == 0 && r.Failed == 0
		}
	default:
		return func(Record) bool { return true }
	}
}

// Apply returns the records matching f, in their original order, as a new
// slice.
func (f StatusFilter) Apply(records []Record) []Record {
	return slices.Filter(records, f.Predicate())
}
