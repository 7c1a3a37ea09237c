package jobstream

import (
	"errors"
	"fmt"
	"sync"
	"time"

	apijobs "github.com/opsdeck/opsdeck/api/types/jobs"
	"github.com/opsdeck/opsdeck/pkg/domain/jobrun"
	"github.com/opsdeck/opsdeck/pkg/utils/slices"
)

// Phase is where a stream session stands in its lifecycle.
type Phase string

const (
	// no session has been opened yet, or the controller is closed.
	Idle Phase = "Idle"

	// a session is opened but the producer has not confirmed it.
	Connecting Phase = "Connecting"

	// records are arriving; the buffer is growing but not published.
	Accumulating Phase = "Accumulating"

	// the session ended with a complete sweep; the snapshot is live.
	Finalized Phase = "Finalized"

	// the session broke; the buffer was discarded.
	Errored Phase = "Errored"
)

// Handlers receive the lifecycle events of one opened stream.
type Handlers struct {
	OnOpen    func()
	OnMessage func(raw []byte)
	OnClose   func()
	OnError   func(err error)
}

// Transport opens named streams and feeds their events to Handlers.
//
// Open must not block on the stream itself: events arrive asynchronously.
// Close and CloseAll release streams; closed streams emit no more events
// through the transport, but events already in flight may still land.
type Transport interface {
	Open(id string, url string, h Handlers) error
	Close(id string)
	CloseAll()
}

// ErrStreamIdle is the cause reported when a session is cut for silence.
var ErrStreamIdle = errors.New("stream went idle")

// Controller accumulates job-run records from a stream and publishes them
// atomically.
//
// Records arriving over a session are held in a private buffer. Only a
// "finished" signal publishes the buffer as the new snapshot; any other
// ending discards it, so readers never observe a half-complete sweep. The
// previous snapshot stays visible until a newer complete one replaces it.
type Controller struct {
	mu        sync.Mutex
	transport Transport

	session int
	phase   Phase

	buf         []jobrun.Record
	snapshot    []jobrun.Record
	hasSnapshot bool
	err         error

	idleTimeout time.Duration
	idleTimer   *time.Timer
}

type Option func(*Controller)

// WithIdleTimeout cuts a session that stays silent for d. The buffer is
// discarded as with any other broken session. Zero disables the limit.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.idleTimeout = d
	}
}

func New(transport Transport, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		phase:     Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe opens a new session against url.
//
// Any session already running is closed first and its buffer thrown away.
// Messages still in flight from an old session are ignored.
func (c *Controller) Subscribe(url string) error {
	c.mu.Lock()
	c.transport.CloseAll()
	c.stopIdleTimerLocked()

	c.session += 1
	session := c.session
	id := fmt.Sprintf("job-runs-%d", session)

	c.buf = nil
	c.err = nil
	c.phase = Connecting
	c.mu.Unlock()

	err := c.transport.Open(id, url, Handlers{
		OnOpen:    func() { c.onOpen(session) },
		OnMessage: func(raw []byte) { c.onMessage(session, id, raw) },
		OnClose:   func() { c.onClose(session) },
		OnError:   func(err error) { c.onError(session, err) },
	})
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.session == session {
			c.phase = Errored
			c.err = err
		}
		return err
	}
	return nil
}

func (c *Controller) onOpen(session int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session {
		return
	}
	c.buf = nil
	c.phase = Accumulating
	c.resetIdleTimerLocked(session)
}

func (c *Controller) onMessage(session int, id string, raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session {
		return
	}
	// lines may still be in flight after the terminal signal closed the
	// stream; they belong to no session anymore.
	if c.phase == Finalized || c.phase == Errored {
		return
	}
	c.resetIdleTimerLocked(session)

	detail, signal, err := apijobs.DecodeStreamMessage(raw)
	if err != nil {
		c.buf = nil
		c.phase = Errored
		c.err = err
		c.stopIdleTimerLocked()
		c.transport.Close(id)
		return
	}

	if signal == nil {
		c.buf = append(c.buf, detail.ToRecord())
		return
	}

	c.stopIdleTimerLocked()
	switch signal.StreamStatus {
	case apijobs.StreamFinished:
		c.snapshot = c.buf
		c.hasSnapshot = true
		c.buf = nil
		c.phase = Finalized
	case apijobs.StreamErrored:
		c.snapshot = []jobrun.Record{}
		c.hasSnapshot = true
		c.buf = nil
		c.phase = Errored
		// the producer's message reaches the viewer unmodified.
		c.err = errors.New(signal.Error)
	}
	c.transport.Close(id)
}

func (c *Controller) onClose(session int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session {
		return
	}
	c.stopIdleTimerLocked()
	// a close before the terminal signal means the sweep never completed.
	if c.phase == Connecting || c.phase == Accumulating {
		c.buf = nil
		c.phase = Errored
		c.err = errors.New("stream closed before finishing")
	}
}

func (c *Controller) onError(session int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session {
		return
	}
	if c.phase == Finalized || c.phase == Errored {
		return
	}
	c.stopIdleTimerLocked()
	c.buf = nil
	c.phase = Errored
	c.err = err
}

func (c *Controller) resetIdleTimerLocked(session int) {
	if c.idleTimeout <= 0 {
		return
	}
	c.stopIdleTimerLocked()
	c.idleTimer = time.AfterFunc(c.idleTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.session != session {
			return
		}
		c.transport.CloseAll()
		c.buf = nil
		c.phase = Errored
		c.err = ErrStreamIdle
	})
}

func (c *Controller) stopIdleTimerLocked() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
}

// Snapshot returns the latest published record set.
//
// return: (records, true) once any session has published; records is a
// fresh copy every call. Before the first publication, (nil, false).
func (c *Controller) Snapshot() ([]jobrun.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasSnapshot {
		return nil, false
	}
	return slices.Clone(c.snapshot), true
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns what broke the last session, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close tears every session down. The published snapshot survives.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transport.CloseAll()
	c.stopIdleTimerLocked()
	c.session += 1
	c.buf = nil
	c.phase = Idle
}
