package workspace

import (
	"context"
	"time"
)

const defaultPollInterval = 2 * time.Second

// Poll refreshes at a fixed cadence until ctx ends, calling onCycle after
// each refresh completes. Cycles never overlap: the next tick waits for
// the previous refresh.
func (s *Service) Poll(ctx context.Context, interval time.Duration, onCycle func(err error)) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := s.RefreshAndWait(ctx)
		if ctx.Err() != nil {
			return
		}
		if onCycle != nil {
			onCycle(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
