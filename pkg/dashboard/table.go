package dashboard

import (
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/opsdeck/opsdeck/pkg/domain/jobrun"
	"github.com/opsdeck/opsdeck/pkg/utils/humantime"
	"github.com/opsdeck/opsdeck/pkg/utils/slices"
)

// Row is one rendered line of the job-run table.
type Row struct {
	Name     string
	Owner    string
	RunAt    string
	RanFor   string
	Status   string
	ImageTag string
	Command  string
}

const stillRunning = "Still running..."

// BuildRows filters, orders and renders records into table rows.
//
// now anchors the relative phrases so a whole table renders against one
// instant.
func BuildRows(records []jobrun.Record, filter jobrun.StatusFilter, order jobrun.SortOrder, now time.Time) []Row {
	kept := order.Apply(filter.Apply(records))
	return slices.Map(kept, func(r jobrun.Record) Row { return buildRow(r, now) })
}

func buildRow(r jobrun.Record, now time.Time) Row {
	var startedAt time.Time
	if r.StartedAt != nil {
		startedAt = *r.StartedAt
	}

	ranFor := stillRunning
	if finishedAt, finished := r.FinishedAt(); finished {
		anchor := startedAt
		if anchor.IsZero() {
			anchor = now
		}
		if b, ok := humantime.Elapsed(finishedAt, anchor); ok {
			ranFor = b.RanFor()
		}
	}

	owner := r.Owner
	if owner == "" {
		owner = humantime.Unavailable
	}

	return Row{
		Name:     r.Name,
		Owner:    owner,
		RunAt:    humantime.FormatRelative(startedAt, now),
		RanFor:   ranFor,
		Status:   statusLabel(r),
		ImageTag: imageTag(r.Image),
		Command:  commandLabel(r.Command),
	}
}

// statusLabel is the table's display status. Unlike the succeeded filter,
// a single success wins here even while retries are failing or running.
func statusLabel(r jobrun.Record) string {
	switch {
	case r.Succeeded >= 1:
		return "Succeeded"
	case r.Failed >= 1:
		return "Failed"
	default:
		return "Running"
	}
}

func imageTag(image string) string {
	tag, err := name.NewTag(image, name.StrictValidation)
	if err != nil {
		return humantime.Unavailable
	}
	return tag.TagStr()
}

func commandLabel(command []string) string {
	if len(command) == 0 {
		return humantime.Unavailable
	}
	return strings.Join(command, " ")
}
