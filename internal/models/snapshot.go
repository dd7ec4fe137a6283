package models

import (
	"fmt"
	"time"
)

// Frame is a rectangle in global display coordinates
type Frame struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Window represents a managed window as reported by yabai
type Window struct {
	ID      int    `json:"id" yaml:"id"`
	App     string `json:"app" yaml:"app"`
	Title   string `json:"title" yaml:"title"`
	Display int    `json:"display" yaml:"display"` // display index
	Space   int    `json:"space" yaml:"space"`     // space index
	Focused bool   `json:"focused" yaml:"focused"`

	PID       int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Frame     *Frame `json:"frame,omitempty" yaml:"frame,omitempty"`
	Floating  bool   `json:"floating,omitempty" yaml:"floating,omitempty"`
	Minimized bool   `json:"minimized,omitempty" yaml:"minimized,omitempty"`
}

// FormatFrame returns a formatted string representation of the window frame
func (w *Window) FormatFrame() string {
	if w.Frame == nil {
		return "-"
	}
	return fmt.Sprintf("%.0fx%.0f @ (%.0f, %.0f)", w.Frame.W, w.Frame.H, w.Frame.X, w.Frame.Y)
}

// Display represents a physical display
type Display struct {
	ID     int    `json:"id" yaml:"id"`
	UUID   string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Index  int    `json:"index" yaml:"index"` // 1-based, stable ordering key
	Frame  Frame  `json:"frame" yaml:"frame"`
	Spaces []int  `json:"spaces" yaml:"spaces"` // space indices on this display
}

// GetResolutionString returns formatted resolution (e.g., "3840x2160")
func (d *Display) GetResolutionString() string {
	return fmt.Sprintf("%.0fx%.0f", d.Frame.W, d.Frame.H)
}

// Space represents a macOS space (virtual desktop)
type Space struct {
	ID      int    `json:"id" yaml:"id"`
	Index   int    `json:"index" yaml:"index"`
	Label   string `json:"label" yaml:"label"`
	Display int    `json:"display" yaml:"display"`
	Visible bool   `json:"visible" yaml:"visible"`

	Type    string `json:"type,omitempty" yaml:"type,omitempty"` // bsp, stack, float
	Windows []int  `json:"windows,omitempty" yaml:"windows,omitempty"`
	Focused bool   `json:"focused,omitempty" yaml:"focused,omitempty"`
}

// GetWindowCount returns the number of windows in this space
func (s *Space) GetWindowCount() int {
	return len(s.Windows)
}

// Snapshot is a point-in-time view of the window manager. It is never
// modified after construction; a refresh builds a replacement.
type Snapshot struct {
	windows   []Window
	displays  []Display
	spaces    []Space
	fetchedAt time.Time
}

// NewSnapshot copies its inputs so later mutation by the caller cannot leak in.
func NewSnapshot(windows []Window, displays []Display, spaces []Space, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		windows:   cloneWindows(windows),
		displays:  cloneDisplays(displays),
		spaces:    cloneSpaces(spaces),
		fetchedAt: fetchedAt,
	}
}

// Windows returns the windows in fetch order
func (s *Snapshot) Windows() []Window { return cloneWindows(s.windows) }

// Displays returns the displays in fetch order
func (s *Snapshot) Displays() []Display { return cloneDisplays(s.displays) }

// Spaces returns the spaces in fetch order
func (s *Snapshot) Spaces() []Space { return cloneSpaces(s.spaces) }

// FetchedAt is when the fetch cycle that built the snapshot completed
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// FindWindowByID finds a window by its ID
func (s *Snapshot) FindWindowByID(id int) (Window, bool) {
	for _, w := range s.windows {
		if w.ID == id {
			return cloneWindow(w), true
		}
	}
	return Window{}, false
}

// FocusedWindow returns the first window flagged as focused.
// yabai reports at most one; nothing here enforces that.
func (s *Snapshot) FocusedWindow() (Window, bool) {
	for _, w := range s.windows {
		if w.Focused {
			return cloneWindow(w), true
		}
	}
	return Window{}, false
}

// DisplayByIndex finds a display by its 1-based index
func (s *Snapshot) DisplayByIndex(index int) (Display, bool) {
	for _, d := range s.displays {
		if d.Index == index {
			d.Spaces = append([]int(nil), d.Spaces...)
			return d, true
		}
	}
	return Display{}, false
}

// VisibleSpaces returns every space flagged visible, in fetch order.
// More than one per display is passed through as reported.
func (s *Snapshot) VisibleSpaces() []Space {
	var out []Space
	for _, sp := range s.spaces {
		if sp.Visible {
			out = append(out, cloneSpace(sp))
		}
	}
	return out
}

// Summary returns counts for status output
func (s *Snapshot) Summary() map[string]interface{} {
	return map[string]interface{}{
		"windows":   len(s.windows),
		"displays":  len(s.displays),
		"spaces":    len(s.spaces),
		"fetchedAt": s.fetchedAt,
	}
}

// View is the serializable form used by --json/--yaml output and MCP tools.
type View struct {
	Windows   []Window  `json:"windows" yaml:"windows"`
	Displays  []Display `json:"displays" yaml:"displays"`
	Spaces    []Space   `json:"spaces" yaml:"spaces"`
	FetchedAt time.Time `json:"fetchedAt" yaml:"fetchedAt"`
}

// View returns a detached, serializable copy
func (s *Snapshot) View() View {
	return View{
		Windows:   s.Windows(),
		Displays:  s.Displays(),
		Spaces:    s.Spaces(),
		FetchedAt: s.fetchedAt,
	}
}

func cloneWindow(w Window) Window {
	if w.Frame != nil {
		f := *w.Frame
		w.Frame = &f
	}
	return w
}

func cloneWindows(in []Window) []Window {
	if in == nil {
		return nil
	}
	out := make([]Window, len(in))
	for i, w := range in {
		out[i] = cloneWindow(w)
	}
	return out
}

func cloneDisplays(in []Display) []Display {
	if in == nil {
		return nil
	}
	out := make([]Display, len(in))
	for i, d := range in {
		d.Spaces = append([]int(nil), d.Spaces...)
		out[i] = d
	}
	return out
}

func cloneSpace(s Space) Space {
	s.Windows = append([]int(nil), s.Windows...)
	return s
}

func cloneSpaces(in []Space) []Space {
	if in == nil {
		return nil
	}
	out := make([]Space, len(in))
	for i, s := range in {
		out[i] = cloneSpace(s)
	}
	return out
}
