package jobstream_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	apijobs "github.com/opsdeck/opsdeck/api/types/jobs"
	"github.com/opsdeck/opsdeck/pkg/dashboard/jobstream"
	"github.com/opsdeck/opsdeck/pkg/domain/jobrun"
	"github.com/opsdeck/opsdeck/pkg/utils/cmp"
	"github.com/opsdeck/opsdeck/pkg/utils/slices"
)

// mockTransport hands the opened handlers back to the test, which then
// plays the producer.
type mockTransport struct {
	mu       sync.Mutex
	handlers map[string]jobstream.Handlers

	Calls struct {
		Open     []string
		Close    []string
		CloseAll int
	}
	OpenError error
}

func newMockTransport() *mockTransport {
	return &mockTransport{handlers: map[string]jobstream.Handlers{}}
}

func (m *mockTransport) Open(id string, url string, h jobstream.Handlers) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Open = append(m.Calls.Open, id)
	if m.OpenError != nil {
		return m.OpenError
	}
	m.handlers[id] = h
	return nil
}

func (m *mockTransport) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Close = append(m.Calls.Close, id)
	delete(m.handlers, id)
}

func (m *mockTransport) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.CloseAll += 1
	m.handlers = map[string]jobstream.Handlers{}
}

func (m *mockTransport) lastHandlers(t *testing.T) jobstream.Handlers {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls.Open) == 0 {
		t.Fatal("no stream opened")
	}
	h, ok := m.handlers[m.Calls.Open[len(m.Calls.Open)-1]]
	if !ok {
		t.Fatal("last opened stream is already closed")
	}
	return h
}

func marshalRecord(t *testing.T, name string, createdAt time.Time) []byte {
	t.Helper()
	b, err := json.Marshal(apijobs.ComposeDetail(jobrun.Record{
		Identity:  jobrun.Identity{Name: name, Namespace: "ns"},
		Counters:  jobrun.Counters{Succeeded: 1},
		CreatedAt: createdAt,
	}))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func recordNames(records []jobrun.Record) []string {
	return slices.Map(records, func(r jobrun.Record) string { return r.Name })
}

func TestController(t *testing.T) {
	base := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("it publishes nothing until the stream finishes", func(t *testing.T) {
		transport := newMockTransport()
		testee := jobstream.New(transport)

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		h := transport.lastHandlers(t)
		h.OnOpen()

		h.OnMessage(marshalRecord(t, "job-a", base))
		h.OnMessage(marshalRecord(t, "job-b", base.Add(time.Hour)))

		if _, ok := testee.Snapshot(); ok {
			t.Error("snapshot should not exist before the finished signal")
		}
		if testee.Phase() != jobstream.Accumulating {
			t.Errorf("unmatch phase:%s", testee.Phase())
		}

		h.OnMessage([]byte(`{"streamStatus":"finished"}`))

		actual, ok := testee.Snapshot()
		if !ok {
			t.Fatal("snapshot should exist after the finished signal")
		}
		if !cmp.SliceEq(recordNames(actual), []string{"job-a", "job-b"}) {
			t.Errorf("unexpected records: %v", recordNames(actual))
		}
		if testee.Phase() != jobstream.Finalized {
			t.Errorf("unmatch phase:%s", testee.Phase())
		}
	})

	t.Run("an errored signal publishes an empty set and reports the cause", func(t *testing.T) {
		transport := newMockTransport()
		testee := jobstream.New(transport)

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		h := transport.lastHandlers(t)
		h.OnOpen()
		h.OnMessage(marshalRecord(t, "job-a", base))
		h.OnMessage([]byte(`{"streamStatus":"errored","error":"boom"}`))

		actual, ok := testee.Snapshot()
		if !ok {
			t.Fatal("an errored stream should still publish")
		}
		if len(actual) != 0 {
			t.Errorf("unexpected records: %v", recordNames(actual))
		}
		if testee.Phase() != jobstream.Errored {
			t.Errorf("unmatch phase:%s", testee.Phase())
		}
		if err := testee.Err(); err == nil {
			t.Error("the cause should be reported")
		} else if err.Error() != "boom" {
			t.Errorf(`unmatch cause: (actual, expected) = ("%s", "boom")`, err.Error())
		}
	})

	t.Run("a malformed message breaks the session but keeps the old snapshot", func(t *testing.T) {
		transport := newMockTransport()
		testee := jobstream.New(transport)

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		h := transport.lastHandlers(t)
		h.OnOpen()
		h.OnMessage(marshalRecord(t, "job-a", base))
		h.OnMessage([]byte(`{"streamStatus":"finished"}`))

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		h = transport.lastHandlers(t)
		h.OnOpen()
		h.OnMessage(marshalRecord(t, "job-b", base))
		h.OnMessage([]byte(`this is not json`))

		if testee.Phase() != jobstream.Errored {
			t.Errorf("unmatch phase:%s", testee.Phase())
		}

		actual, ok := testee.Snapshot()
		if !ok {
			t.Fatal("the old snapshot should survive")
		}
		if !cmp.SliceEq(recordNames(actual), []string{"job-a"}) {
			t.Errorf("unexpected records: %v", recordNames(actual))
		}
	})

	t.Run("resubscribing discards messages of the old session", func(t *testing.T) {
		transport := newMockTransport()
		testee := jobstream.New(transport)

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		hOld := transport.lastHandlers(t)
		hOld.OnOpen()
		hOld.OnMessage(marshalRecord(t, "stale", base))

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		if transport.Calls.CloseAll < 2 {
			t.Errorf("the old session should be torn down before the new one: %d", transport.Calls.CloseAll)
		}
		hNew := transport.lastHandlers(t)
		hNew.OnOpen()

		// late events of the old session land after the new one started.
		hOld.OnMessage(marshalRecord(t, "stale-too", base))
		hOld.OnError(errors.New("old session broke"))

		hNew.OnMessage(marshalRecord(t, "fresh", base))
		hNew.OnMessage([]byte(`{"streamStatus":"finished"}`))

		actual, ok := testee.Snapshot()
		if !ok {
			t.Fatal("snapshot should exist")
		}
		if !cmp.SliceEq(recordNames(actual), []string{"fresh"}) {
			t.Errorf("unexpected records: %v", recordNames(actual))
		}
		if testee.Phase() != jobstream.Finalized {
			t.Errorf("unmatch phase:%s", testee.Phase())
		}
	})

	t.Run("a close before the terminal signal is an error", func(t *testing.T) {
		transport := newMockTransport()
		testee := jobstream.New(transport)

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		h := transport.lastHandlers(t)
		h.OnOpen()
		h.OnMessage(marshalRecord(t, "job-a", base))
		h.OnClose()

		if testee.Phase() != jobstream.Errored {
			t.Errorf("unmatch phase:%s", testee.Phase())
		}
		if _, ok := testee.Snapshot(); ok {
			t.Error("an unfinished sweep should not publish")
		}
	})

	t.Run("a failing open reports immediately", func(t *testing.T) {
		transport := newMockTransport()
		transport.OpenError = errors.New("no route to host")
		testee := jobstream.New(transport)

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err == nil {
			t.Error("expected error, got nil")
		}
		if testee.Phase() != jobstream.Errored {
			t.Errorf("unmatch phase:%s", testee.Phase())
		}
	})

	t.Run("a silent session is cut by the idle timeout", func(t *testing.T) {
		transport := newMockTransport()
		testee := jobstream.New(transport, jobstream.WithIdleTimeout(20*time.Millisecond))

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		h := transport.lastHandlers(t)
		h.OnOpen()
		h.OnMessage(marshalRecord(t, "job-a", base))

		deadline := time.Now().Add(2 * time.Second)
		for testee.Phase() != jobstream.Errored {
			if time.Now().After(deadline) {
				t.Fatalf("session not cut. phase:%s", testee.Phase())
			}
			time.Sleep(5 * time.Millisecond)
		}
		if !errors.Is(testee.Err(), jobstream.ErrStreamIdle) {
			t.Errorf("unexpected cause: %v", testee.Err())
		}
	})

	t.Run("Close drops the session but keeps the snapshot", func(t *testing.T) {
		transport := newMockTransport()
		testee := jobstream.New(transport)

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		h := transport.lastHandlers(t)
		h.OnOpen()
		h.OnMessage(marshalRecord(t, "job-a", base))
		h.OnMessage([]byte(`{"streamStatus":"finished"}`))

		testee.Close()

		if testee.Phase() != jobstream.Idle {
			t.Errorf("unmatch phase:%s", testee.Phase())
		}
		if _, ok := testee.Snapshot(); !ok {
			t.Error("the snapshot should survive Close")
		}
	})

	t.Run("Snapshot hands out copies", func(t *testing.T) {
		transport := newMockTransport()
		testee := jobstream.New(transport)

		if err := testee.Subscribe("http://api.invalid/jobs/stream"); err != nil {
			t.Fatal(err)
		}
		h := transport.lastHandlers(t)
		h.OnOpen()
		h.OnMessage(marshalRecord(t, "job-a", base))
		h.OnMessage([]byte(`{"streamStatus":"finished"}`))

		first, _ := testee.Snapshot()
		first[0].Name = "tampered"

		second, _ := testee.Snapshot()
		if second[0].Name != "job-a" {
			t.Errorf(`the snapshot leaked: "%s"`, second[0].Name)
		}
	})
}

func TestControllerOverHTTP(t *testing.T) {

	t.Run("it consumes an NDJSON stream end to end", func(t *testing.T) {
		base := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			enc := json.NewEncoder(w)
			for i, name := range []string{"job-a", "job-b", "job-c"} {
				enc.Encode(apijobs.ComposeDetail(jobrun.Record{
					Identity:  jobrun.Identity{Name: name, Namespace: "ns"},
					CreatedAt: base.Add(time.Duration(i) * time.Hour),
				}))
				if f, ok := w.(http.Flusher); ok {
					f.Flush()
				}
			}
			enc.Encode(apijobs.Signal{StreamStatus: apijobs.StreamFinished})
		}))
		defer server.Close()

		testee := jobstream.New(jobstream.NewHTTPTransport(server.Client()))
		defer testee.Close()

		if err := testee.Subscribe(server.URL + "/stream"); err != nil {
			t.Fatal(err)
		}

		deadline := time.Now().Add(5 * time.Second)
		for testee.Phase() != jobstream.Finalized {
			if time.Now().After(deadline) {
				t.Fatalf("stream did not finalize. phase:%s, err:%v", testee.Phase(), testee.Err())
			}
			time.Sleep(5 * time.Millisecond)
		}

		actual, ok := testee.Snapshot()
		if !ok {
			t.Fatal("snapshot should exist")
		}
		if !cmp.SliceEq(recordNames(actual), []string{"job-a", "job-b", "job-c"}) {
			t.Errorf("unexpected records: %v", recordNames(actual))
		}
	})

	t.Run("a non-200 response breaks the session", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, fmt.Sprintf(`{"error":"no such namespace"}`), http.StatusNotFound)
		}))
		defer server.Close()

		testee := jobstream.New(jobstream.NewHTTPTransport(server.Client()))
		defer testee.Close()

		if err := testee.Subscribe(server.URL + "/stream"); err != nil {
			t.Fatal(err)
		}

		deadline := time.Now().Add(5 * time.Second)
		for testee.Phase() != jobstream.Errored {
			if time.Now().After(deadline) {
				t.Fatalf("session did not break. phase:%s", testee.Phase())
			}
			time.Sleep(5 * time.Millisecond)
		}
		if _, ok := testee.Snapshot(); ok {
			t.Error("nothing should be published")
		}
	})
}
