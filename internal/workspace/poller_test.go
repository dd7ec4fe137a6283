package workspace

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollRefreshesUntilCancelled(t *testing.T) {
	svc, fetcher, _ := newTestService(t, &messenger{})

	ctx, cancel := context.WithCancel(context.Background())
	var cycles atomic.Int32
	done := make(chan struct{})
	go func() {
		svc.Poll(ctx, 10*time.Millisecond, func(err error) {
			assert.NoError(t, err)
			if cycles.Add(1) == 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("poller did not stop")
	}

	assert.Equal(t, int32(3), cycles.Load())
	assert.Equal(t, 3, fetcher.Calls())
}
