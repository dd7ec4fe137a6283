package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/notify"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

type fakeProbe struct {
	available atomic.Bool
	calls     atomic.Int32
}

func (p *fakeProbe) IsAvailable(ctx context.Context) bool {
	p.calls.Add(1)
	return p.available.Load()
}

func upProbe() *fakeProbe {
	p := &fakeProbe{}
	p.available.Store(true)
	return p
}

type fakeFetcher struct {
	mu      sync.Mutex
	results []error // consumed in order; nil means success
	gate    chan struct{}

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context) (*models.Snapshot, error) {
	n := f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	if cur > f.maxSeen.Load() {
		f.maxSeen.Store(cur)
	}

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	var err error
	if len(f.results) > 0 {
		err = f.results[0]
		f.results = f.results[1:]
	}
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	windows := []models.Window{{ID: int(n), App: "App", Display: 1, Space: 1}}
	return models.NewSnapshot(windows, nil, nil, time.Now()), nil
}

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not complete")
	}
}

func TestInitialState(t *testing.T) {
	c := New(upProbe(), &fakeFetcher{}, nil, 0)
	defer c.Close()

	assert.Equal(t, Idle, c.Status())
	assert.Nil(t, c.Snapshot())
	assert.Equal(t, uint64(0), c.Generation())
}

func TestRefreshSuccess(t *testing.T) {
	rec := &recorder{}
	c := New(upProbe(), &fakeFetcher{}, rec, 0)
	defer c.Close()

	wait(t, c.Refresh(context.Background()))

	assert.Equal(t, Ready, c.Status())
	require.NotNil(t, c.Snapshot())
	assert.Len(t, c.Snapshot().Windows(), 1)
	assert.Equal(t, uint64(1), c.Generation())
	assert.Equal(t, uint64(1), c.Committed())
	assert.NoError(t, c.LastError())
	assert.Empty(t, rec.Events())
}

func TestProbeUnavailableSkipsFetch(t *testing.T) {
	probe := &fakeProbe{}
	fetcher := &fakeFetcher{}
	rec := &recorder{}
	c := New(probe, fetcher, rec, 0)
	defer c.Close()

	wait(t, c.Refresh(context.Background()))

	assert.Equal(t, Failed, c.Status())
	assert.True(t, errors.Is(c.LastError(), wmerr.ErrManagerUnavailable))
	assert.Equal(t, int32(0), fetcher.calls.Load())
	assert.Equal(t, int32(1), probe.calls.Load())

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.Failure, events[0].Kind)
	assert.Equal(t, notify.SourceRefresh, events[0].Source)
	assert.Equal(t, "yabai is not running", events[0].Title)
}

func TestFailureRetainsSnapshot(t *testing.T) {
	parseErr := &wmerr.ParseError{Query: "windows", Index: 0, Field: "id", Reason: "missing"}
	fetcher := &fakeFetcher{results: []error{nil, parseErr}}
	rec := &recorder{}
	c := New(upProbe(), fetcher, rec, 0)
	defer c.Close()

	wait(t, c.Refresh(context.Background()))
	first := c.Snapshot()
	require.NotNil(t, first)

	wait(t, c.Refresh(context.Background()))

	assert.Equal(t, Failed, c.Status())
	assert.Same(t, first, c.Snapshot())
	assert.Equal(t, uint64(1), c.Committed())
	assert.Equal(t, uint64(2), c.Generation())
	assert.Equal(t, wmerr.KindParse, wmerr.KindOf(c.LastError()))

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Unexpected output from yabai", events[0].Title)

	// recovery
	wait(t, c.Refresh(context.Background()))
	assert.Equal(t, Ready, c.Status())
	assert.NotSame(t, first, c.Snapshot())
	assert.Len(t, rec.Events(), 1)
}

func TestProbeDownAfterSuccessRetainsSnapshot(t *testing.T) {
	probe := upProbe()
	c := New(probe, &fakeFetcher{}, nil, 0)
	defer c.Close()

	wait(t, c.Refresh(context.Background()))
	first := c.Snapshot()

	probe.available.Store(false)
	wait(t, c.Refresh(context.Background()))

	assert.Equal(t, Failed, c.Status())
	assert.Same(t, first, c.Snapshot())
}

func TestRequestsDuringFlightCoalesce(t *testing.T) {
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	c := New(upProbe(), fetcher, nil, 0)
	defer c.Close()

	first := c.Refresh(context.Background())
	assert.Equal(t, Fetching, c.Status())

	second := c.Refresh(context.Background())
	third := c.Refresh(context.Background())
	assert.Equal(t, second, third, "pending requests share one trailing cycle")
	assert.Equal(t, uint64(1), c.Generation())

	close(fetcher.gate)
	wait(t, first)
	wait(t, second)

	assert.Equal(t, int32(2), fetcher.calls.Load())
	assert.Equal(t, int32(1), fetcher.maxSeen.Load())
	// three requests, never more than requests+1 generations
	assert.Equal(t, uint64(2), c.Generation())
	assert.Equal(t, uint64(2), c.Committed())
	assert.Equal(t, Ready, c.Status())
}

func TestConcurrentRequestsNeverOverlap(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := New(upProbe(), fetcher, nil, 0)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wait(t, c.Refresh(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.maxSeen.Load())
	assert.LessOrEqual(t, c.Generation(), uint64(50))
	assert.Equal(t, uint64(fetcher.calls.Load()), c.Generation())
}

func TestCallerContextDoesNotCancelCycle(t *testing.T) {
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	c := New(upProbe(), fetcher, nil, 0)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := c.Refresh(ctx)
	cancel()

	close(fetcher.gate)
	wait(t, done)
	assert.Equal(t, Ready, c.Status())
}

func TestRefreshAndWait(t *testing.T) {
	c := New(&fakeProbe{}, &fakeFetcher{}, nil, 0)
	defer c.Close()

	err := c.RefreshAndWait(context.Background())
	assert.True(t, errors.Is(err, wmerr.ErrManagerUnavailable))
}

func TestCycleTimeout(t *testing.T) {
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	rec := &recorder{}
	c := New(upProbe(), fetcher, rec, 50*time.Millisecond)
	defer c.Close()

	wait(t, c.Refresh(context.Background()))

	assert.Equal(t, Failed, c.Status())
	assert.True(t, errors.Is(c.LastError(), context.DeadlineExceeded))
	assert.Equal(t, wmerr.KindTransport, wmerr.KindOf(c.LastError()))

	var te *wmerr.TransportError
	require.ErrorAs(t, c.LastError(), &te)
	assert.True(t, te.Timeout)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Could not query yabai", events[0].Title)
}

func TestCloseDiscardsInFlight(t *testing.T) {
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	rec := &recorder{}
	c := New(upProbe(), fetcher, rec, 0)

	first := c.Refresh(context.Background())
	pending := c.Refresh(context.Background())
	c.Close()

	wait(t, first)
	wait(t, pending)

	assert.Nil(t, c.Snapshot())
	assert.Equal(t, Idle, c.Status())
	assert.Empty(t, rec.Events())
	assert.Equal(t, int32(1), fetcher.calls.Load())

	wait(t, c.Refresh(context.Background()))
}

func TestCloseAfterReadyReturnsIdle(t *testing.T) {
	c := New(upProbe(), &fakeFetcher{}, nil, 0)

	require.NoError(t, c.RefreshAndWait(context.Background()))
	require.Equal(t, Ready, c.Status())

	c.Close()

	assert.Equal(t, Idle, c.Status())
	assert.NotNil(t, c.Snapshot())
	wait(t, c.Refresh(context.Background()))
	assert.Equal(t, uint64(1), c.Generation())
}
