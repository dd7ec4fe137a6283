// Package workspace is the surface consumers use: the current snapshot and
// status, explicit refresh, the mutating commands and a notification feed.
//
// Every dispatched command is followed by exactly one refresh request,
// whether or not the command succeeded, and produces one notification of
// its own. Input rejected by validation produces a notification and no
// refresh since nothing reached the manager.
package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/yabai-cli/internal/client"
	"github.com/yourusername/yabai-cli/internal/config"
	"github.com/yourusername/yabai-cli/internal/coordinator"
	"github.com/yourusername/yabai-cli/internal/dispatch"
	"github.com/yourusername/yabai-cli/internal/logging"
	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/notify"
	"github.com/yourusername/yabai-cli/internal/probe"
	"github.com/yourusername/yabai-cli/internal/profile"
	"github.com/yourusername/yabai-cli/internal/query"
	"github.com/yourusername/yabai-cli/internal/state"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

// Deps are the collaborators a Service is assembled from
type Deps struct {
	Coordinator *coordinator.Coordinator
	Dispatcher  *dispatch.Dispatcher
	Profiles    *profile.Registry
	Bus         *notify.Bus
	StatePath   string // empty disables profile bookkeeping
}

// Service is safe for concurrent use
type Service struct {
	coord    *coordinator.Coordinator
	dispatch *dispatch.Dispatcher
	profiles *profile.Registry
	bus      *notify.Bus

	statePath string
	stateMu   sync.Mutex
}

// New assembles a service from explicit dependencies
func New(d Deps) *Service {
	bus := d.Bus
	if bus == nil {
		bus = notify.NewBus()
	}
	return &Service{
		coord:     d.Coordinator,
		dispatch:  d.Dispatcher,
		profiles:  d.Profiles,
		bus:       bus,
		statePath: d.StatePath,
	}
}

// FromConfig wires the production stack. runner nil means real processes.
func FromConfig(cfg *config.Config, runner client.Runner) *Service {
	queries := client.NewClient(cfg.Yabai.Path, cfg.QueryTimeout(), runner)
	commands := client.NewClient(cfg.Yabai.Path, cfg.CommandTimeout(), runner)

	bus := notify.NewBus()
	registry := profile.NewRegistry(cfg, runner)
	cycleTimeout := cfg.ProbeTimeout() + cfg.QueryTimeout() + time.Second

	return New(Deps{
		Coordinator: coordinator.New(probe.New(queries, cfg.ProbeTimeout()), query.NewFetcher(queries), bus, cycleTimeout),
		Dispatcher:  dispatch.New(commands, registry),
		Profiles:    registry,
		Bus:         bus,
		StatePath:   state.GetStatePath(),
	})
}

// Snapshot returns the current snapshot, nil before the first success
func (s *Service) Snapshot() *models.Snapshot {
	return s.coord.Snapshot()
}

// Grouped returns the current snapshot's windows grouped by display
func (s *Service) Grouped() (models.GroupedView, bool) {
	snap := s.coord.Snapshot()
	if snap == nil {
		return models.GroupedView{}, false
	}
	return models.GroupByDisplay(snap), true
}

// Status returns the refresh state
func (s *Service) Status() coordinator.Status {
	return s.coord.Status()
}

// LastError returns the most recent refresh failure, nil after a success
func (s *Service) LastError() error {
	return s.coord.LastError()
}

// Generation returns the latest refresh generation issued
func (s *Service) Generation() uint64 {
	return s.coord.Generation()
}

// Refresh requests a refresh; the channel closes when it has completed
func (s *Service) Refresh(ctx context.Context) <-chan struct{} {
	return s.coord.Refresh(ctx)
}

// RefreshAndWait refreshes and returns the cycle's error
func (s *Service) RefreshAndWait(ctx context.Context) error {
	return s.coord.RefreshAndWait(ctx)
}

// Events subscribes to notifications
func (s *Service) Events(buffer int) (<-chan notify.Event, func()) {
	return s.bus.Subscribe(buffer)
}

// Close stops refreshing and closes all subscriptions
func (s *Service) Close() {
	s.coord.Close()
	s.bus.Close()
}

// FocusWindow focuses window id. The returned channel closes when the
// follow-up refresh completes; it is nil when validation failed.
func (s *Service) FocusWindow(ctx context.Context, id int) (<-chan struct{}, error) {
	return s.run(ctx, fmt.Sprintf("Focused window %d", id), "Could not focus window", func() error {
		return s.dispatch.FocusWindow(ctx, id)
	})
}

// MoveWindowToDisplay sends window id to the display at displayIndex
func (s *Service) MoveWindowToDisplay(ctx context.Context, id, displayIndex int) (<-chan struct{}, error) {
	return s.run(ctx, fmt.Sprintf("Moved window %d to display %d", id, displayIndex), "Could not move window", func() error {
		return s.dispatch.MoveWindowToDisplay(ctx, id, displayIndex)
	})
}

// RotateSpace rotates the focused space's tree
func (s *Service) RotateSpace(ctx context.Context, degrees int) (<-chan struct{}, error) {
	return s.run(ctx, fmt.Sprintf("Rotated space %d°", degrees), "Could not rotate space", func() error {
		return s.dispatch.RotateSpace(ctx, degrees)
	})
}

// ApplyProfile runs a registered profile and records the attempt
func (s *Service) ApplyProfile(ctx context.Context, name string) (<-chan struct{}, error) {
	return s.run(ctx, fmt.Sprintf("Applied profile %s", name), "Could not apply profile", func() error {
		err := s.dispatch.ApplyProfile(ctx, name)
		if wmerr.KindOf(err) != wmerr.KindValidation {
			s.recordProfile(name, err)
		}
		return err
	})
}

// FocusDirection moves focus north, south, east or west
func (s *Service) FocusDirection(ctx context.Context, direction string) (<-chan struct{}, error) {
	return s.run(ctx, "Focused "+direction, "Could not move focus", func() error {
		return s.dispatch.FocusDirection(ctx, direction)
	})
}

// ToggleFloat toggles floating on window id
func (s *Service) ToggleFloat(ctx context.Context, id int) (<-chan struct{}, error) {
	return s.run(ctx, fmt.Sprintf("Toggled float on window %d", id), "Could not toggle float", func() error {
		return s.dispatch.ToggleFloat(ctx, id)
	})
}

// FocusSpace focuses the space at index
func (s *Service) FocusSpace(ctx context.Context, index int) (<-chan struct{}, error) {
	return s.run(ctx, fmt.Sprintf("Focused space %d", index), "Could not focus space", func() error {
		return s.dispatch.FocusSpace(ctx, index)
	})
}

// SetSpaceLayout switches the focused space's layout
func (s *Service) SetSpaceLayout(ctx context.Context, layout string) (<-chan struct{}, error) {
	return s.run(ctx, "Layout set to "+layout, "Could not set layout", func() error {
		return s.dispatch.SetSpaceLayout(ctx, layout)
	})
}

// Profiles lists registered profiles
func (s *Service) Profiles() []profile.Profile {
	if s.profiles == nil {
		return nil
	}
	return s.profiles.List()
}

// ProfileInfo describes one registered profile
func (s *Service) ProfileInfo(id string) (profile.Profile, error) {
	if s.profiles == nil {
		return profile.Profile{}, &wmerr.ValidationError{Field: "profile", Value: id, Reason: "no profiles registered"}
	}
	return s.profiles.Info(id)
}

// CurrentProfile returns the last successfully applied profile
func (s *Service) CurrentProfile() (string, time.Time, bool, error) {
	if s.statePath == "" {
		return "", time.Time{}, false, nil
	}
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	st, err := state.LoadStateFrom(s.statePath)
	if err != nil {
		return "", time.Time{}, false, err
	}
	id, at, ok := st.Current()
	return id, at, ok, nil
}

// ProfileHistory returns up to n recorded apply attempts, newest first
func (s *Service) ProfileHistory(n int) ([]state.ProfileEntry, error) {
	if s.statePath == "" {
		return nil, nil
	}
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	st, err := state.LoadStateFrom(s.statePath)
	if err != nil {
		return nil, err
	}
	return st.RecentHistory(n), nil
}

// ResetProfile forgets the current profile and the apply history
func (s *Service) ResetProfile() error {
	if s.statePath == "" {
		return nil
	}
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	st, err := state.LoadStateFrom(s.statePath)
	if err != nil {
		logging.Warn().Err(err).Msg("state unreadable, resetting anyway")
		st = state.NewRuntimeState()
	}
	if err := st.Reset(s.statePath); err != nil {
		return err
	}
	logging.Info().Msg("profile state reset")
	return nil
}

func (s *Service) run(ctx context.Context, okTitle, failTitle string, fn func() error) (<-chan struct{}, error) {
	err := fn()

	switch wmerr.KindOf(err) {
	case "":
		s.bus.Succeeded(notify.SourceCommand, okTitle, "")
	case wmerr.KindValidation:
		s.bus.Failed(notify.SourceCommand, failTitle, err)
		return nil, err
	default:
		s.bus.Failed(notify.SourceCommand, failTitle, err)
	}

	return s.coord.Refresh(ctx), err
}

func (s *Service) recordProfile(id string, runErr error) {
	if s.statePath == "" {
		return
	}
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	st, err := state.LoadStateFrom(s.statePath)
	if err != nil {
		logging.Warn().Err(err).Msg("state unreadable, starting fresh")
		st = state.NewRuntimeState()
	}
	st.RecordProfile(id, time.Now(), runErr)
	if err := st.SaveTo(s.statePath); err != nil {
		logging.Warn().Err(err).Str("profile", id).Msg("failed to save state")
	}
}
