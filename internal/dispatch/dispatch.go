// Package dispatch issues mutating requests to yabai. Each operation
// validates its input, sends exactly one request and reports the outcome.
// Nothing is retried and no snapshot is touched; confirmation comes from
// the next fetch.
package dispatch

import (
	"context"
	"slices"
	"strconv"

	"github.com/yourusername/yabai-cli/internal/logging"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

// Operation kinds, reported in CommandError.Kind and notifications.
const (
	OpFocus          = "focus"
	OpMove           = "move"
	OpRotate         = "rotate"
	OpProfile        = "profile"
	OpFocusDirection = "focus-direction"
	OpToggleFloat    = "float"
	OpFocusSpace     = "focus-space"
	OpSpaceLayout    = "space-layout"
)

// Messenger sends `yabai -m <args...>`. *client.Client satisfies it.
type Messenger interface {
	Message(ctx context.Context, args ...string) ([]byte, error)
}

// ProfileRunner resolves and executes profile scripts. *profile.Registry
// satisfies it.
type ProfileRunner interface {
	Resolve(id string) (string, error)
	Run(ctx context.Context, id string) ([]byte, error)
}

// Directions accepted by FocusDirection.
var Directions = []string{"north", "south", "east", "west"}

// Rotations accepted by RotateSpace.
var Rotations = []int{90, 180, 270}

// Layouts accepted by SetSpaceLayout.
var Layouts = []string{"bsp", "float", "stack"}

// Dispatcher runs commands. Commands against the same target are
// serialized; different targets proceed concurrently.
type Dispatcher struct {
	yabai    Messenger
	profiles ProfileRunner
	locks    *keyedMutex
}

// New creates a dispatcher. profiles may be nil, in which case ApplyProfile
// rejects every name.
func New(yabai Messenger, profiles ProfileRunner) *Dispatcher {
	return &Dispatcher{
		yabai:    yabai,
		profiles: profiles,
		locks:    newKeyedMutex(),
	}
}

// FocusWindow sends `window --focus <id>`.
func (d *Dispatcher) FocusWindow(ctx context.Context, windowID int) error {
	if err := validateWindowID(windowID); err != nil {
		return err
	}
	id := strconv.Itoa(windowID)
	return d.send(ctx, OpFocus, windowKey(windowID), "focus window "+id,
		"window", "--focus", id)
}

// MoveWindowToDisplay sends `window <id> --display <n>`.
func (d *Dispatcher) MoveWindowToDisplay(ctx context.Context, windowID, displayIndex int) error {
	if err := validateWindowID(windowID); err != nil {
		return err
	}
	if displayIndex < 1 {
		return &wmerr.ValidationError{Field: "display index", Value: displayIndex, Reason: "must be a positive integer"}
	}
	id, n := strconv.Itoa(windowID), strconv.Itoa(displayIndex)
	return d.send(ctx, OpMove, windowKey(windowID), "move window "+id+" to display "+n,
		"window", id, "--display", n)
}

// RotateSpace sends `space --rotate <deg>` for the focused space.
func (d *Dispatcher) RotateSpace(ctx context.Context, degrees int) error {
	if !slices.Contains(Rotations, degrees) {
		return &wmerr.ValidationError{Field: "rotation", Value: degrees, Reason: "must be one of 90, 180, 270"}
	}
	deg := strconv.Itoa(degrees)
	return d.send(ctx, OpRotate, "space:focused", "rotate space "+deg+"°",
		"space", "--rotate", deg)
}

// ApplyProfile runs the registered script for name.
func (d *Dispatcher) ApplyProfile(ctx context.Context, name string) error {
	if d.profiles == nil {
		return &wmerr.ValidationError{Field: "profile", Value: name, Reason: "no profiles registered"}
	}
	if _, err := d.profiles.Resolve(name); err != nil {
		return err
	}

	unlock := d.locks.Lock("profile")
	defer unlock()

	if _, err := d.profiles.Run(ctx, name); err != nil {
		return &wmerr.CommandError{Kind: OpProfile, Message: "apply profile " + name, Err: err}
	}
	return nil
}

// FocusDirection sends `window --focus <direction>`.
func (d *Dispatcher) FocusDirection(ctx context.Context, direction string) error {
	if !slices.Contains(Directions, direction) {
		return &wmerr.ValidationError{Field: "direction", Value: direction, Reason: "must be one of north, south, east, west"}
	}
	return d.send(ctx, OpFocusDirection, "window:focused", "focus "+direction,
		"window", "--focus", direction)
}

// ToggleFloat sends `window <id> --toggle float`.
func (d *Dispatcher) ToggleFloat(ctx context.Context, windowID int) error {
	if err := validateWindowID(windowID); err != nil {
		return err
	}
	id := strconv.Itoa(windowID)
	return d.send(ctx, OpToggleFloat, windowKey(windowID), "toggle float on window "+id,
		"window", id, "--toggle", "float")
}

// FocusSpace sends `space --focus <index>`.
func (d *Dispatcher) FocusSpace(ctx context.Context, index int) error {
	if index < 1 {
		return &wmerr.ValidationError{Field: "space index", Value: index, Reason: "must be a positive integer"}
	}
	n := strconv.Itoa(index)
	return d.send(ctx, OpFocusSpace, "space:focused", "focus space "+n,
		"space", "--focus", n)
}

// SetSpaceLayout switches the focused space to bsp, float or stack.
func (d *Dispatcher) SetSpaceLayout(ctx context.Context, layout string) error {
	if !slices.Contains(Layouts, layout) {
		return &wmerr.ValidationError{Field: "layout", Value: layout, Reason: "must be one of bsp, float, stack"}
	}
	return d.send(ctx, OpSpaceLayout, "space:focused", "set space layout "+layout,
		"space", "--layout", layout)
}

func (d *Dispatcher) send(ctx context.Context, op, key, message string, args ...string) error {
	unlock := d.locks.Lock(key)
	defer unlock()

	if _, err := d.yabai.Message(ctx, args...); err != nil {
		logging.Warn().Err(err).Str("cmd", op).Str("target", key).Msg("command failed")
		return &wmerr.CommandError{Kind: op, Message: message, Err: err}
	}
	logging.Info().Str("cmd", op).Str("target", key).Msg("command sent")
	return nil
}

func windowKey(id int) string {
	return "window:" + strconv.Itoa(id)
}

func validateWindowID(id int) error {
	if id < 1 {
		return &wmerr.ValidationError{Field: "window id", Value: id, Reason: "must be a positive integer"}
	}
	return nil
}
