package jobs_test

import (
	"encoding/json"
	"testing"
	"time"

	apijobs "github.com/opsdeck/opsdeck/api/types/jobs"
	"github.com/opsdeck/opsdeck/api/types/misc/rfctime"
	"github.com/opsdeck/opsdeck/pkg/domain/jobrun"
	"github.com/opsdeck/opsdeck/pkg/utils/try"
)

func TestDecodeStreamMessage(t *testing.T) {
	t.Run("it decodes a data record", func(t *testing.T) {
		raw := []byte(`{
			"metadata": {
				"name": "job-1", "namespace": "ns",
				"creationTimestamp": "2023-10-01T12:00:00.000+00:00",
				"owner": "release-a"
			},
			"spec": {"image": "repo/app:v1.2", "command": ["python", "main.py"]},
			"status": {"succeeded": 1}
		}`)

		d, sig, err := apijobs.DecodeStreamMessage(raw)
		if err != nil {
			t.Fatal(err)
		}
		if sig != nil {
			t.Fatalf("unexpected signal: %+v", sig)
		}
		if d.Meta.Name != "job-1" || d.Meta.Owner != "release-a" {
			t.Errorf("unexpected detail: %+v", d)
		}
		if d.Status.Succeeded != 1 {
			t.Errorf("unexpected status: %+v", d.Status)
		}
	})

	t.Run("it decodes a finished signal", func(t *testing.T) {
		d, sig, err := apijobs.DecodeStreamMessage([]byte(`{"streamStatus":"finished"}`))
		if err != nil {
			t.Fatal(err)
		}
		if d != nil {
			t.Fatalf("unexpected detail: %+v", d)
		}
		if sig.StreamStatus != apijobs.StreamFinished {
			t.Errorf("unexpected signal: %+v", sig)
		}
	})

	t.Run("it decodes an errored signal with its message", func(t *testing.T) {
		_, sig, err := apijobs.DecodeStreamMessage(
			[]byte(`{"streamStatus":"errored","error":"boom"}`),
		)
		if err != nil {
			t.Fatal(err)
		}
		if sig.StreamStatus != apijobs.StreamErrored || sig.Error != "boom" {
			t.Errorf("unexpected signal: %+v", sig)
		}
	})

	t.Run("it rejects non-JSON payloads", func(t *testing.T) {
		if _, _, err := apijobs.DecodeStreamMessage([]byte("not json")); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("it rejects unknown streamStatus values", func(t *testing.T) {
		if _, _, err := apijobs.DecodeStreamMessage([]byte(`{"streamStatus":"paused"}`)); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestComposeDetail(t *testing.T) {
	t.Run("it round-trips via wire form", func(t *testing.T) {
		created := try.To(rfctime.ParseRFC3339DateTime(
			"2023-10-01T12:00:00.000+00:00",
		)).OrFatal(t).Time()
		started := created.Add(time.Minute)
		completed := created.Add(10 * time.Minute)

		orig := jobrun.Record{
			Identity:    jobrun.Identity{Name: "job-1", Namespace: "ns"},
			Counters:    jobrun.Counters{Succeeded: 1},
			CreatedAt:   created,
			StartedAt:   &started,
			CompletedAt: &completed,
			Owner:       "release-a",
			Image:       "repo/app:v1.2",
			Command:     []string{"python", "main.py"},
		}

		b, err := json.Marshal(apijobs.ComposeDetail(orig))
		if err != nil {
			t.Fatal(err)
		}
		var parsed apijobs.Detail
		if err := json.Unmarshal(b, &parsed); err != nil {
			t.Fatal(err)
		}

		back := parsed.ToRecord()
		if back.Name != orig.Name || back.Namespace != orig.Namespace {
			t.Errorf("identity unmatch: %+v", back.Identity)
		}
		if back.Counters != orig.Counters {
			t.Errorf("counters unmatch: %+v", back.Counters)
		}
		if !back.CreatedAt.Equal(orig.CreatedAt) {
			t.Errorf("createdAt unmatch: %s", back.CreatedAt)
		}
		if back.StartedAt == nil || !back.StartedAt.Equal(started) {
			t.Errorf("startedAt unmatch: %v", back.StartedAt)
		}
		if back.CompletedAt == nil || !back.CompletedAt.Equal(completed) {
			t.Errorf("completedAt unmatch: %v", back.CompletedAt)
		}
		if back.LastTransition != nil {
			t.Errorf("lastTransition should stay nil: %v", back.LastTransition)
		}
		if back.Owner != orig.Owner || back.Image != orig.Image {
			t.Errorf("presentation fields unmatch: %+v", back)
		}
	})
}
