package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sys/unix"

	"github.com/yourusername/yabai-cli/internal/models"
)

// LayoutOptions controls RenderLayout
type LayoutOptions struct {
	Width   int
	Height  int
	Unicode bool
	ShowIDs bool
}

// DefaultLayoutOptions sizes the drawing to the terminal
func DefaultLayoutOptions() LayoutOptions {
	w, h := TerminalSize()
	return LayoutOptions{
		Width:   w,
		Height:  clamp(h-4, 10, 40),
		Unicode: supportsUnicode(),
		ShowIDs: true,
	}
}

// RenderLayout draws the visible windows of one display, scaled from
// pixels to characters. Windows without a frame, minimized windows and
// windows on hidden spaces are skipped.
func RenderLayout(snap *models.Snapshot, displayIndex int, opts LayoutOptions) (string, error) {
	display, ok := snap.DisplayByIndex(displayIndex)
	if !ok {
		return "", fmt.Errorf("display %d not found (have %d displays)", displayIndex, len(snap.Displays()))
	}
	if opts.Width < 20 || opts.Height < 6 {
		return "", fmt.Errorf("drawing area %dx%d too small", opts.Width, opts.Height)
	}

	visible := make(map[int]bool)
	for _, sp := range snap.Spaces() {
		if sp.Display == display.Index && sp.Visible {
			visible[sp.Index] = true
		}
	}

	c := newCanvas(opts.Width, opts.Height, opts.Unicode)
	c.rect(0, 0, opts.Width, opts.Height)

	sx := float64(opts.Width-2) / nonZero(display.Frame.W)
	sy := float64(opts.Height-2) / nonZero(display.Frame.H)

	drawn := 0
	var focused *models.Window
	for _, win := range snap.Windows() {
		if win.Display != display.Index || win.Frame == nil || win.Minimized || !visible[win.Space] {
			continue
		}
		if win.Focused {
			w := win
			focused = &w
			continue
		}
		drawWindow(c, win, display.Frame, sx, sy, opts.ShowIDs)
		drawn++
	}
	// focused window last so it sits on top
	if focused != nil {
		drawWindow(c, *focused, display.Frame, sx, sy, opts.ShowIDs)
		drawn++
	}

	header := fmt.Sprintf("Display %d [%s] %d window(s)", display.Index, display.GetResolutionString(), drawn)
	return header + "\n" + c.String() + "\n", nil
}

// WriteLayout renders every display, one after another
func WriteLayout(w io.Writer, snap *models.Snapshot, opts LayoutOptions) error {
	displays := snap.Displays()
	if len(displays) == 0 {
		fmt.Fprintln(w, "No displays found")
		return nil
	}

	cyan := color.New(color.FgCyan)
	for i, d := range displays {
		out, err := RenderLayout(snap, d.Index, opts)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		cyan.Fprint(w, out)
	}
	return nil
}

func drawWindow(c *canvas, win models.Window, origin models.Frame, sx, sy float64, showID bool) {
	x := 1 + int((win.Frame.X-origin.X)*sx)
	y := 1 + int((win.Frame.Y-origin.Y)*sy)
	w := max(int(win.Frame.W*sx), 3)
	h := max(int(win.Frame.H*sy), 2)

	// keep inside the display border
	x = clamp(x, 1, c.w-4)
	y = clamp(y, 1, c.h-3)
	w = min(w, c.w-1-x)
	h = min(h, c.h-1-y)

	c.rect(x, y, w, h)

	label := win.App
	if label == "" {
		label = "?"
	}
	if showID {
		label = fmt.Sprintf("[%d] %s", win.ID, label)
	}
	if win.Focused {
		label = "*" + label
	}
	if w > 2 && h > 2 {
		c.text(x+1, y+1, truncate(label, w-2))
	}
}

func nonZero(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// TerminalSize returns the current terminal dimensions, 80x24 when stdout
// is not a terminal
func TerminalSize() (width, height int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// TerminalWidth returns the terminal column count
func TerminalWidth() int {
	w, _ := TerminalSize()
	return w
}

func supportsUnicode() bool {
	return strings.Contains(os.Getenv("LANG"), "UTF-8") || strings.Contains(os.Getenv("LC_ALL"), "UTF-8")
}
