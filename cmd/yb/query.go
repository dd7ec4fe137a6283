package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/output"
	"github.com/yourusername/yabai-cli/internal/workspace"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

// fetch refreshes once and returns the snapshot. A refresh failure is only
// fatal when there is nothing to show.
func fetch(cmd *cobra.Command) (*workspace.Service, *models.Snapshot, error) {
	svc, _, err := newService()
	if err != nil {
		return nil, nil, err
	}
	if err := svc.RefreshAndWait(cmd.Context()); err != nil {
		svc.Close()
		return nil, nil, describeFetchError(err)
	}
	return svc, svc.Snapshot(), nil
}

func describeFetchError(err error) error {
	switch wmerr.KindOf(err) {
	case wmerr.KindUnavailable:
		return fmt.Errorf("%w: is yabai running? (yabai --start-service)", err)
	case wmerr.KindParse:
		return fmt.Errorf("unexpected output from yabai: %w", err)
	default:
		return err
	}
}

// statusCmd reports whether yabai is reachable and what it reports
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show refresh status and a state summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		refreshErr := svc.RefreshAndWait(cmd.Context())

		view := output.StatusView{
			Status:     string(svc.Status()),
			Generation: svc.Generation(),
		}
		if refreshErr != nil {
			view.Error = refreshErr.Error()
			view.ErrorKind = string(wmerr.KindOf(refreshErr))
		}
		if snap := svc.Snapshot(); snap != nil {
			view.FetchedAt = snap.FetchedAt()
			view.Windows = len(snap.Windows())
			view.Displays = len(snap.Displays())
			view.Spaces = len(snap.Spaces())
			if w, ok := snap.FocusedWindow(); ok {
				view.Focused = fmt.Sprintf("%s - %s [%d]", w.App, w.Title, w.ID)
			}
		}
		if id, _, ok, err := svc.CurrentProfile(); err == nil && ok {
			view.Profile = id
		}

		if done, err := printData(view); done {
			return err
		}
		output.WriteStatus(os.Stdout, view)
		if refreshErr != nil {
			return describeFetchError(refreshErr)
		}
		return nil
	},
}

// showCmd draws the window layout of one or all displays
var showCmd = &cobra.Command{
	Use:   "show [display-index]",
	Short: "Draw the visible window layout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, snap, err := fetch(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		opts := output.DefaultLayoutOptions()
		if len(args) == 0 {
			return output.WriteLayout(os.Stdout, snap, opts)
		}

		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid display index: %s", args[0])
		}
		out, err := output.RenderLayout(snap, index, opts)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

// listCmd is the parent command for list subcommands
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List windows, displays, or spaces",
}

var listWindowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List windows grouped by display",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, snap, err := fetch(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		grouped := models.GroupByDisplay(snap)
		if done, err := printData(grouped.Map()); done {
			return err
		}
		output.WriteGroupedWindows(os.Stdout, grouped)
		return nil
	},
}

var listDisplaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List displays",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, snap, err := fetch(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		if done, err := printData(snap.Displays()); done {
			return err
		}
		output.WriteDisplays(os.Stdout, snap.Displays())
		return nil
	},
}

var listSpacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "List spaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, snap, err := fetch(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		if done, err := printData(snap.Spaces()); done {
			return err
		}
		output.WriteSpaces(os.Stdout, snap.Spaces())
		return nil
	},
}
