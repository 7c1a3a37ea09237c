package jobrun

import "time"

// LifecycleState is the derived classification of a job run.
//
// It is computed from the run's counters at observation time, never stored.
type LifecycleState string

const (
	// at least one pod is running, or nothing has finished yet.
	Running LifecycleState = "Running"

	// the run succeeded and nothing is active anymore.
	Succeeded LifecycleState = "Succeeded"

	// at least one pod failed. Failed takes precedence over Succeeded.
	Failed LifecycleState = "Failed"
)

// Identity names a job run. Unique within a namespace at a point in time.
type Identity struct {
	Name      string
	Namespace string
}

// Counters are the completion counters of a job run, as reported by the
// cluster. The lifecycle state is a pure function of these.
type Counters struct {
	Active    int32
	Succeeded int32
	Failed    int32
}

// Record is a single observed job run.
type Record struct {
	Identity
	Counters

	// CreatedAt is when the run object was created. Immutable once set.
	CreatedAt time.Time

	// StartedAt is when the first pod of the run started, if any.
	StartedAt *time.Time

	// CompletedAt is when the run completed, if it has.
	CompletedAt *time.Time

	// LastTransition is the run's most recent condition transition, if any.
	// Used as the duration endpoint for runs without CompletedAt.
	LastTransition *time.Time

	// Owner is the name of the controller owning this run, or the release
	// it was deployed under. Empty when unknown.
	Owner string

	// Image is the image reference of the run's first container.
	Image string

	// Command is the command of the run's first container.
	Command []string
}

// State derives the lifecycle state from the counters.
//
// A record with a non-zero Failed counter is Failed even if Succeeded is
// also non-zero.
func (r Record) State() LifecycleState {
	if r.Failed > 0 {
		return Failed
	}
	if r.Succeeded > 0 && r.Active == 0 {
		return Succeeded
	}
	return Running
}

// FinishedAt reports when the run stopped producing work: CompletedAt when
// set, else the last condition transition.
//
// ok is false while the run is still going.
func (r Record) FinishedAt() (time.Time, bool) {
	if r.CompletedAt != nil {
		return *r.CompletedAt, true
	}
	if r.LastTransition != nil {
		return *r.LastTransition, true
	}
	return time.Time{}, false
}
