// Package coordinator owns the current snapshot and decides when it is
// re-fetched. At most one fetch cycle runs at a time; requests that arrive
// while one is in flight collapse into a single trailing cycle.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/yabai-cli/internal/logging"
	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/notify"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

// Status is the coordinator's position in its state machine
type Status string

const (
	Idle     Status = "idle"
	Fetching Status = "fetching"
	Ready    Status = "ready"
	Failed   Status = "failed"
)

// DefaultCycleTimeout bounds one probe+fetch cycle
const DefaultCycleTimeout = 15 * time.Second

// Prober gates every cycle
type Prober interface {
	IsAvailable(ctx context.Context) bool
}

// Fetcher produces a complete snapshot or an error
type Fetcher interface {
	Fetch(ctx context.Context) (*models.Snapshot, error)
}

// Publisher receives one event per failed cycle. *notify.Bus satisfies it.
type Publisher interface {
	Publish(e notify.Event)
}

// Coordinator runs refresh cycles. Its zero value is not usable; call New.
type Coordinator struct {
	probe   Prober
	fetcher Fetcher
	events  Publisher
	timeout time.Duration

	base   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	status    Status
	snapshot  *models.Snapshot
	lastErr   error
	issued    uint64 // latest generation handed to a cycle
	committed uint64 // generation of the current snapshot
	inFlight  bool
	pending   bool
	next      chan struct{} // closed when the trailing cycle completes
}

// New creates an idle coordinator. events may be nil.
func New(probe Prober, fetcher Fetcher, events Publisher, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultCycleTimeout
	}
	base, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		probe:   probe,
		fetcher: fetcher,
		events:  events,
		timeout: timeout,
		base:    base,
		cancel:  cancel,
		status:  Idle,
	}
}

// Refresh requests a cycle and returns a channel closed once a cycle that
// started at or after this request has finished. A request made while a
// cycle is running is folded into one trailing cycle.
//
// The cycle runs on the coordinator's own context so one caller giving up
// does not abort a refresh other callers are waiting on. ctx is only used
// for logging.
func (c *Coordinator) Refresh(ctx context.Context) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.base.Err() != nil {
		done := make(chan struct{})
		close(done)
		return done
	}

	if c.inFlight {
		c.pending = true
		if c.next == nil {
			c.next = make(chan struct{})
		}
		logging.Debug().Uint64("generation", c.issued).Msg("refresh coalesced into trailing cycle")
		return c.next
	}

	done := make(chan struct{})
	c.startLocked(done)
	return done
}

// RefreshAndWait requests a cycle and blocks until it completes or ctx ends.
func (c *Coordinator) RefreshAndWait(ctx context.Context) error {
	select {
	case <-c.Refresh(ctx):
		return c.LastError()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the last committed snapshot, nil before the first success
func (c *Coordinator) Snapshot() *models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Status returns the current state
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastError returns the error of the most recent cycle, nil after a success
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Generation returns the latest generation issued
func (c *Coordinator) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issued
}

// Committed returns the generation of the current snapshot, 0 if none
func (c *Coordinator) Committed() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed
}

// Close cancels any running cycle. Results that arrive afterward are
// discarded, the status returns to Idle and further refresh requests
// complete immediately.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()
	c.status = Idle
}

func (c *Coordinator) startLocked(done chan struct{}) {
	c.issued++
	c.inFlight = true
	c.status = Fetching
	go c.run(c.issued, done)
}

func (c *Coordinator) run(gen uint64, done chan struct{}) {
	ctx, cancel := context.WithTimeout(c.base, c.timeout)
	defer cancel()

	start := time.Now()
	snap, err := c.cycle(ctx)

	c.mu.Lock()
	failed := c.finishLocked(gen, snap, err)
	c.mu.Unlock()

	event := logging.Debug()
	if err != nil {
		event = logging.Warn().Err(err).Str("kind", string(wmerr.KindOf(err)))
	}
	event.Uint64("generation", gen).Dur("elapsed", time.Since(start)).Msg("refresh cycle")

	// Published before done closes so waiters observe the notification.
	if failed != nil && c.events != nil {
		c.events.Publish(notify.Event{
			Kind:    notify.Failure,
			Source:  notify.SourceRefresh,
			Title:   failureTitle(failed),
			Message: failed.Error(),
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	close(done)
	if c.pending && c.base.Err() == nil {
		c.pending = false
		next := c.next
		c.next = nil
		c.startLocked(next)
		return
	}

	c.inFlight = false
	c.pending = false
	if c.next != nil {
		close(c.next)
		c.next = nil
	}
}

// cycle is probe then fetch. The fetcher is never called when the probe
// fails. Running out of cycle time is reported as a transport timeout.
func (c *Coordinator) cycle(ctx context.Context) (*models.Snapshot, error) {
	if !c.probe.IsAvailable(ctx) {
		if ctx.Err() != nil {
			return nil, cycleTimeout(ctx)
		}
		return nil, wmerr.ErrManagerUnavailable
	}

	snap, err := c.fetcher.Fetch(ctx)
	if err != nil && ctx.Err() != nil && !wmerr.IsFetchError(err) {
		return nil, cycleTimeout(ctx)
	}
	return snap, err
}

func cycleTimeout(ctx context.Context) error {
	return &wmerr.TransportError{
		Args:     []string{"refresh"},
		ExitCode: -1,
		Timeout:  errors.Is(ctx.Err(), context.DeadlineExceeded),
		Err:      ctx.Err(),
	}
}

// finishLocked applies a cycle result and returns the error to report, if
// any. A result whose generation is not the latest issued, or that arrives
// after Close, is dropped without touching state.
func (c *Coordinator) finishLocked(gen uint64, snap *models.Snapshot, err error) error {
	if c.base.Err() != nil {
		c.status = Idle
		return nil
	}
	if gen != c.issued || gen <= c.committed {
		logging.Debug().Uint64("generation", gen).Uint64("issued", c.issued).Msg("stale refresh result discarded")
		return nil
	}

	if err != nil {
		c.status = Failed
		c.lastErr = err
		return err
	}

	c.snapshot = snap
	c.committed = gen
	c.status = Ready
	c.lastErr = nil
	return nil
}

func failureTitle(err error) string {
	switch wmerr.KindOf(err) {
	case wmerr.KindUnavailable:
		return "yabai is not running"
	case wmerr.KindParse:
		return "Unexpected output from yabai"
	case wmerr.KindTransport:
		return "Could not query yabai"
	default:
		return "Refresh failed"
	}
}
