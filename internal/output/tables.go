package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/profile"
	"github.com/yourusername/yabai-cli/internal/state"
)

// WriteGroupedWindows prints one table per display group, in group order
func WriteGroupedWindows(w io.Writer, view models.GroupedView) {
	if view.Len() == 0 {
		fmt.Fprintln(w, "No windows")
		return
	}

	width := TerminalWidth()
	titleWidth := clamp(width-60, 20, 60)

	for i, key := range view.Keys() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		windows := view.Windows(key)
		fmt.Fprintf(w, "%s (%d)\n", key, len(windows))

		table := tablewriter.NewWriter(w)
		table.Header("ID", "App", "Title", "Space", "Frame", "Flags")
		for _, win := range windows {
			table.Append(
				strconv.Itoa(win.ID),
				truncate(win.App, 20),
				truncate(win.Title, titleWidth),
				strconv.Itoa(win.Space),
				win.FormatFrame(),
				windowFlags(win),
			)
		}
		table.Render()
	}
}

// WriteDisplays prints displays in a table format
func WriteDisplays(w io.Writer, displays []models.Display) {
	table := tablewriter.NewWriter(w)
	table.Header("Index", "ID", "Resolution", "Origin", "Spaces", "UUID")

	for _, d := range displays {
		table.Append(
			strconv.Itoa(d.Index),
			strconv.Itoa(d.ID),
			d.GetResolutionString(),
			fmt.Sprintf("%.0f,%.0f", d.Frame.X, d.Frame.Y),
			formatInts(d.Spaces),
			truncate(d.UUID, 12),
		)
	}

	table.Render()
}

// WriteSpaces prints spaces in a table format
func WriteSpaces(w io.Writer, spaces []models.Space) {
	table := tablewriter.NewWriter(w)
	table.Header("Index", "ID", "Label", "Display", "Type", "Visible", "Windows")

	for _, sp := range spaces {
		visible := ""
		if sp.Visible {
			visible = "yes"
		}
		if sp.Focused {
			visible = "focused"
		}
		label := sp.Label
		if label == "" {
			label = "-"
		}

		table.Append(
			strconv.Itoa(sp.Index),
			strconv.Itoa(sp.ID),
			truncate(label, 20),
			strconv.Itoa(sp.Display),
			sp.Type,
			visible,
			strconv.Itoa(sp.GetWindowCount()),
		)
	}

	table.Render()
}

// WriteProfiles prints registered profiles, marking the current one
func WriteProfiles(w io.Writer, profiles []profile.Profile, current string) {
	table := tablewriter.NewWriter(w)
	table.Header("", "ID", "Name", "Description", "Script")

	for _, p := range profiles {
		marker := ""
		if p.ID == current {
			marker = "*"
		}
		script := "missing"
		if p.Exists {
			script = "ok"
		}

		table.Append(
			marker,
			p.ID,
			p.Name,
			truncate(p.Description, 40),
			script,
		)
	}

	table.Render()
}

// WriteProfileHistory prints apply attempts in the order given
func WriteProfileHistory(w io.Writer, entries []state.ProfileEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No profiles applied yet")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Applied", "Profile", "Result")

	for _, e := range entries {
		result := "ok"
		if !e.Success {
			result = "failed: " + truncate(e.Error, 50)
		}
		table.Append(
			e.AppliedAt.Local().Format("2006-01-02 15:04:05"),
			e.ID,
			result,
		)
	}

	table.Render()
}

// StatusView is what `yb status` reports
type StatusView struct {
	Status     string    `json:"status" yaml:"status"`
	Generation uint64    `json:"generation" yaml:"generation"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind  string    `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	FetchedAt  time.Time `json:"fetchedAt,omitempty" yaml:"fetchedAt,omitempty"`
	Windows    int       `json:"windows" yaml:"windows"`
	Displays   int       `json:"displays" yaml:"displays"`
	Spaces     int       `json:"spaces" yaml:"spaces"`
	Focused    string    `json:"focused,omitempty" yaml:"focused,omitempty"`
	Profile    string    `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// WriteStatus prints a status summary as key/value lines
func WriteStatus(w io.Writer, s StatusView) {
	fmt.Fprintf(w, "Status:     %s\n", s.Status)
	fmt.Fprintf(w, "Generation: %d\n", s.Generation)
	if s.Error != "" {
		fmt.Fprintf(w, "Error:      %s (%s)\n", s.Error, s.ErrorKind)
	}
	if !s.FetchedAt.IsZero() {
		fmt.Fprintf(w, "Fetched:    %s\n", s.FetchedAt.Format(time.RFC3339))
		fmt.Fprintf(w, "Windows:    %d\n", s.Windows)
		fmt.Fprintf(w, "Displays:   %d\n", s.Displays)
		fmt.Fprintf(w, "Spaces:     %d\n", s.Spaces)
	}
	if s.Focused != "" {
		fmt.Fprintf(w, "Focused:    %s\n", s.Focused)
	}
	if s.Profile != "" {
		fmt.Fprintf(w, "Profile:    %s\n", s.Profile)
	}
}

func windowFlags(win models.Window) string {
	var flags []string
	if win.Focused {
		flags = append(flags, "focused")
	}
	if win.Floating {
		flags = append(flags, "float")
	}
	if win.Minimized {
		flags = append(flags, "min")
	}
	return strings.Join(flags, ",")
}

// Helper functions

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func formatInts(ints []int) string {
	if len(ints) == 0 {
		return "-"
	}
	strs := make([]string, len(ints))
	for i, v := range ints {
		strs[i] = strconv.Itoa(v)
	}
	return strings.Join(strs, ", ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
