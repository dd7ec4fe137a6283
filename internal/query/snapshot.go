package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/yabai-cli/internal/logging"
	"github.com/yourusername/yabai-cli/internal/models"
)

// Query domains understood by `yabai -m query`.
const (
	DomainWindows  = "windows"
	DomainDisplays = "displays"
	DomainSpaces   = "spaces"
)

// Querier runs one read-only query and returns its raw JSON output.
type Querier interface {
	Query(ctx context.Context, domain string) ([]byte, error)
}

// Fetcher builds snapshots from three independent queries.
type Fetcher struct {
	q   Querier
	now func() time.Time
}

// NewFetcher creates a fetcher over q
func NewFetcher(q Querier) *Fetcher {
	return &Fetcher{q: q, now: time.Now}
}

// Fetch runs the windows, displays and spaces queries in parallel and parses
// them into a Snapshot. If any query or parse fails the whole fetch fails:
// records from different query times are never mixed into one snapshot.
func (f *Fetcher) Fetch(ctx context.Context) (*models.Snapshot, error) {
	var (
		windows  []models.Window
		displays []models.Display
		spaces   []models.Space
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := f.q.Query(gctx, DomainWindows)
		if err != nil {
			return fmt.Errorf("query windows: %w", err)
		}
		windows, err = ParseWindows(raw)
		return err
	})
	g.Go(func() error {
		raw, err := f.q.Query(gctx, DomainDisplays)
		if err != nil {
			return fmt.Errorf("query displays: %w", err)
		}
		displays, err = ParseDisplays(raw)
		return err
	})
	g.Go(func() error {
		raw, err := f.q.Query(gctx, DomainSpaces)
		if err != nil {
			return fmt.Errorf("query spaces: %w", err)
		}
		spaces, err = ParseSpaces(raw)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := models.NewSnapshot(windows, displays, spaces, f.now())
	logging.Debug().
		Int("windows", len(windows)).
		Int("displays", len(displays)).
		Int("spaces", len(spaces)).
		Msg("snapshot fetched")
	return snap, nil
}
