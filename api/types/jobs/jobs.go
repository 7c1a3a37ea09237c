package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsdeck/opsdeck/api/types/misc/rfctime"
	"github.com/opsdeck/opsdeck/pkg/domain/jobrun"
)

// Meta identifies a job run on the wire.
type Meta struct {
	Name              string          `json:"name"`
	Namespace         string          `json:"namespace"`
	CreationTimestamp rfctime.RFC3339 `json:"creationTimestamp"`
	Owner             string          `json:"owner,omitempty"`
}

// Spec carries the bits of the run spec the dashboard renders.
type Spec struct {
	Image   string   `json:"image,omitempty"`
	Command []string `json:"command,omitempty"`
}

// Status carries the run's counters and duration endpoints.
type Status struct {
	Active             int32            `json:"active,omitempty"`
	Succeeded          int32            `json:"succeeded,omitempty"`
	Failed             int32            `json:"failed,omitempty"`
	StartTime          *rfctime.RFC3339 `json:"startTime,omitempty"`
	CompletionTime     *rfctime.RFC3339 `json:"completionTime,omitempty"`
	LastTransitionTime *rfctime.RFC3339 `json:"lastTransitionTime,omitempty"`
}

// Detail is a job run as sent over the stream and the list endpoint.
type Detail struct {
	Meta   Meta   `json:"metadata"`
	Spec   Spec   `json:"spec"`
	Status Status `json:"status"`
}

func (d Detail) Equal(o Detail) bool {
	timeEq := func(a, b *rfctime.RFC3339) bool {
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		return a.Equal(*b)
	}
	return d.Meta.Name == o.Meta.Name &&
		d.Meta.Namespace == o.Meta.Namespace &&
		d.Meta.CreationTimestamp.Equal(o.Meta.CreationTimestamp) &&
		d.Meta.Owner == o.Meta.Owner &&
		d.Spec.Image == o.Spec.Image &&
		len(d.Spec.Command) == len(o.Spec.Command) &&
		d.Status.Active == o.Status.Active &&
		d.Status.Succeeded == o.Status.Succeeded &&
		d.Status.Failed == o.Status.Failed &&
		timeEq(d.Status.StartTime, o.Status.StartTime) &&
		timeEq(d.Status.CompletionTime, o.Status.CompletionTime) &&
		timeEq(d.Status.LastTransitionTime, o.Status.LastTransitionTime)
}

// ComposeDetail builds the wire representation of r.
func ComposeDetail(r jobrun.Record) Detail {
	wireTime := func(t *time.Time) *rfctime.RFC3339 {
		if t == nil {
			return nil
		}
		w := rfctime.New(*t)
		return &w
	}
	return Detail{
		Meta: Meta{
			Name:              r.Name,
			Namespace:         r.Namespace,
			CreationTimestamp: rfctime.New(r.CreatedAt),
			Owner:             r.Owner,
		},
		Spec: Spec{
			Image:   r.Image,
			Command: r.Command,
		},
		Status: Status{
			Active:             r.Active,
			Succeeded:          r.Succeeded,
			Failed:             r.Failed,
			StartTime:          wireTime(r.StartedAt),
			CompletionTime:     wireTime(r.CompletedAt),
			LastTransitionTime: wireTime(r.LastTransition),
		},
	}
}

// ToRecord converts d back into its domain form.
func (d Detail) ToRecord() jobrun.Record {
	domainTime := func(t *rfctime.RFC3339) *time.Time {
		if t == nil {
			return nil
		}
		v := t.Time()
		return &v
	}
	return jobrun.Record{
		Identity: jobrun.Identity{
			Name:      d.Meta.Name,
			Namespace: d.Meta.Namespace,
		},
		Counters: jobrun.Counters{
			Active:    d.Status.Active,
			Succeeded: d.Status.Succeeded,
			Failed:    d.Status.Failed,
		},
		CreatedAt:      d.Meta.CreationTimestamp.Time(),
		StartedAt:      domainTime(d.Status.StartTime),
		CompletedAt:    domainTime(d.Status.CompletionTime),
		LastTransition: domainTime(d.Status.LastTransitionTime),
		Owner:          d.Meta.Owner,
		Image:          d.Spec.Image,
		Command:        d.Spec.Command,
	}
}

// StreamStatus is the terminal marker of a job-run stream.
type StreamStatus string

const (
	// all records have been sent; the accumulated set is complete.
	StreamFinished StreamStatus = "finished"

	// the producer gave up; no snapshot can be built from this session.
	StreamErrored StreamStatus = "errored"
)

// Signal is the in-band control message closing a stream session.
type Signal struct {
	StreamStatus StreamStatus `json:"streamStatus"`
	Error        string       `json:"error,omitempty"`
}

// DecodeStreamMessage parses one line of the job-run stream.
//
// Each message is either a data record or a terminal Signal, discriminated
// by the presence of the streamStatus field. Exactly one of the returned
// pointers is non-nil on success.
func DecodeStreamMessage(raw []byte) (*Detail, *Signal, error) {
	var probe struct {
		StreamStatus StreamStatus `json:"streamStatus"`
		Error        string       `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, nil, fmt.Errorf("malformed stream message: %w", err)
	}

	if probe.StreamStatus != "" {
		switch probe.StreamStatus {
		case StreamFinished, StreamErrored:
			return nil, &Signal{StreamStatus: probe.StreamStatus, Error: probe.Error}, nil
		}
		return nil, nil, fmt.Errorf(`unknown streamStatus: "%s"`, probe.StreamStatus)
	}

	var d Detail
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, nil, fmt.Errorf("malformed job run record: %w", err)
	}
	return &d, nil, nil
}
