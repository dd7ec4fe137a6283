package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/yabai-cli/internal/dispatch"
	"github.com/yourusername/yabai-cli/internal/logging"
	"github.com/yourusername/yabai-cli/internal/notify"
	"github.com/yourusername/yabai-cli/internal/output"
	"github.com/yourusername/yabai-cli/internal/workspace"
)

// errReported marks a failure that was already printed as a notification.
var errReported = errors.New("command failed")

type commandFunc func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error)

// runCommand dispatches one command, waits for the follow-up refresh and
// prints every notification the two produced.
func runCommand(cmd *cobra.Command, run commandFunc) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	events, cancel := svc.Events(notify.DefaultBuffer)
	defer cancel()

	refreshed, cmdErr := run(cmd.Context(), svc)
	if refreshed != nil {
		select {
		case <-refreshed:
		case <-cmd.Context().Done():
		}
	}

	var collected []notify.Event
	for len(events) > 0 {
		collected = append(collected, <-events)
	}

	f, err := format()
	if err != nil {
		return err
	}
	if f != output.FormatTable {
		if err := output.Encode(os.Stdout, f, collected); err != nil {
			return err
		}
	} else {
		for _, e := range collected {
			output.WriteEvent(os.Stdout, e)
		}
	}

	if cmdErr != nil {
		return errReported
	}
	return nil
}

func intArg(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, value)
	}
	return n, nil
}

// MARK: - Window Commands

// windowCmd is the parent command for window subcommands
var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Window commands",
}

var windowFocusCmd = &cobra.Command{
	Use:   "focus <window-id>",
	Short: "Focus a window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg("window id", args[0])
		if err != nil {
			return err
		}
		return runCommand(cmd, func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error) {
			return svc.FocusWindow(ctx, id)
		})
	},
}

var windowDisplayCmd = &cobra.Command{
	Use:   "display <window-id> <display-index>",
	Short: "Move a window to another display",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg("window id", args[0])
		if err != nil {
			return err
		}
		display, err := intArg("display index", args[1])
		if err != nil {
			return err
		}
		return runCommand(cmd, func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error) {
			return svc.MoveWindowToDisplay(ctx, id, display)
		})
	},
}

var windowFloatCmd = &cobra.Command{
	Use:   "float <window-id>",
	Short: "Toggle floating on a window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg("window id", args[0])
		if err != nil {
			return err
		}
		return runCommand(cmd, func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error) {
			return svc.ToggleFloat(ctx, id)
		})
	},
}

var windowFocusDirCmd = &cobra.Command{
	Use:       "focus-dir <" + strings.Join(dispatch.Directions, "|") + ">",
	Short:     "Move focus to the neighbouring window",
	Args:      cobra.ExactArgs(1),
	ValidArgs: dispatch.Directions,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error) {
			return svc.FocusDirection(ctx, args[0])
		})
	},
}

// MARK: - Space Commands

// spaceCmd is the parent command for space subcommands
var spaceCmd = &cobra.Command{
	Use:   "space",
	Short: "Space commands",
}

var spaceRotateCmd = &cobra.Command{
	Use:   "rotate <90|180|270>",
	Short: "Rotate the focused space",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		degrees, err := intArg("rotation", args[0])
		if err != nil {
			return err
		}
		return runCommand(cmd, func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error) {
			return svc.RotateSpace(ctx, degrees)
		})
	},
}

var spaceFocusCmd = &cobra.Command{
	Use:   "focus <space-index>",
	Short: "Focus a space",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := intArg("space index", args[0])
		if err != nil {
			return err
		}
		return runCommand(cmd, func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error) {
			return svc.FocusSpace(ctx, index)
		})
	},
}

var spaceLayoutCmd = &cobra.Command{
	Use:       "layout <" + strings.Join(dispatch.Layouts, "|") + ">",
	Short:     "Set the focused space's layout",
	Args:      cobra.ExactArgs(1),
	ValidArgs: dispatch.Layouts,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error) {
			return svc.SetSpaceLayout(ctx, args[0])
		})
	},
}

// MARK: - Profile Commands

// profileCmd is the parent command for profile subcommands
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Workspace profiles",
	Long: `Profiles are shell scripts registered in the config file. Only
registered profile ids can be applied.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		profiles := svc.Profiles()
		if done, err := printData(profiles); done {
			return err
		}
		current, _, _, err := svc.CurrentProfile()
		if err != nil {
			logging.Warn().Err(err).Msg("could not read current profile")
		}
		output.WriteProfiles(os.Stdout, profiles, current)
		return nil
	},
}

var profileApplyCmd = &cobra.Command{
	Use:   "apply <profile>",
	Short: "Apply a registered profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, func(ctx context.Context, svc *workspace.Service) (<-chan struct{}, error) {
			return svc.ApplyProfile(ctx, args[0])
		})
	},
}

var profileInfoCmd = &cobra.Command{
	Use:   "info <profile>",
	Short: "Show details about a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		info, err := svc.ProfileInfo(args[0])
		if err != nil {
			return err
		}
		if done, err := printData(info); done {
			return err
		}

		keyColor.Print("Profile: ")
		fmt.Printf("%s (%s)\n", info.Name, info.ID)
		if info.Description != "" {
			keyColor.Print("Description: ")
			fmt.Println(info.Description)
		}
		keyColor.Print("Script: ")
		fmt.Println(info.Script)
		if !info.Exists {
			errorColor.Println("  script not found")
		}
		return nil
	},
}

var profileCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the last applied profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			if err := svc.ResetProfile(); err != nil {
				return err
			}
			successColor.Print("✓ ")
			fmt.Println("Profile state cleared")
			return nil
		}

		id, at, ok, err := svc.CurrentProfile()
		if err != nil {
			return err
		}
		if done, err := printData(map[string]interface{}{"profile": id, "appliedAt": at, "set": ok}); done {
			return err
		}
		if !ok {
			fmt.Println("No profile applied yet")
			return nil
		}
		successColor.Printf("● %s", id)
		fmt.Printf(" (applied %s)\n", at.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var profileHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent profile applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := svc.ProfileHistory(limit)
		if err != nil {
			return err
		}
		if done, err := printData(entries); done {
			return err
		}
		output.WriteProfileHistory(os.Stdout, entries)
		return nil
	},
}
