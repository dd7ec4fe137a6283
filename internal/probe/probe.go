// Package probe checks whether yabai is running and answering queries.
package probe

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yourusername/yabai-cli/internal/logging"
)

// DefaultTimeout bounds a probe. It is shorter than a fetch on purpose: a
// manager that cannot answer a displays query quickly is treated as down.
const DefaultTimeout = 2 * time.Second

// Querier is the read-only query surface the probe needs.
type Querier interface {
	Query(ctx context.Context, domain string) ([]byte, error)
}

// Probe is the availability gate in front of every fetch.
type Probe struct {
	q       Querier
	timeout time.Duration
}

// New creates a probe. timeout <= 0 selects DefaultTimeout.
func New(q Querier, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Probe{q: q, timeout: timeout}
}

// IsAvailable issues `query --displays` and reports whether it returned a JSON
// array in time. It never returns an error; every failure reads as false.
func (p *Probe) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.q.Query(ctx, "displays")
	if err != nil {
		logging.Debug().Err(err).Msg("probe: query failed")
		return false
	}

	var displays []json.RawMessage
	if err := json.Unmarshal(out, &displays); err != nil || displays == nil {
		logging.Debug().Int("bytes", len(out)).Msg("probe: malformed output")
		return false
	}
	return true
}
