package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/yourusername/yabai-cli/internal/notify"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

// WriteEvent renders a notification as a single colored line. Colors
// follow color.NoColor.
func WriteEvent(w io.Writer, e notify.Event) {
	mark, c := "✓", successColor
	if e.Kind == notify.Failure {
		mark, c = "✗", failureColor
	}

	c.Fprintf(w, "%s %s", mark, e.Title)
	if e.Message != "" {
		fmt.Fprintf(w, ": %s", e.Message)
	}
	dimColor.Fprintf(w, " [%s %s]", e.Source, e.Time.Format("15:04:05"))
	fmt.Fprintln(w)
}
