package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yourusername/yabai-cli/internal/config"
	"github.com/yourusername/yabai-cli/internal/logging"
	"github.com/yourusername/yabai-cli/internal/output"
	"github.com/yourusername/yabai-cli/internal/workspace"
)

const version = "0.1.0"

var (
	configPath string
	timeout    time.Duration
	formatFlag string
	noColor    bool
	debugMode  bool

	// Color functions
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	keyColor     = color.New(color.FgYellow)
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "yb",
	Short: "yabai control surface",
	Long: `yb reads yabai's live state (windows, displays, spaces) and sends it
commands: focus, move, rotate, and apply saved workspace profiles.

Every command is a single best-effort request; yb refreshes its view
afterwards to show what actually happened.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/yabai-cli/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Override yabai query and command timeouts")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listWindowsCmd)
	listCmd.AddCommand(listDisplaysCmd)
	listCmd.AddCommand(listSpacesCmd)

	rootCmd.AddCommand(windowCmd)
	windowCmd.AddCommand(windowFocusCmd)
	windowCmd.AddCommand(windowDisplayCmd)
	windowCmd.AddCommand(windowFloatCmd)
	windowCmd.AddCommand(windowFocusDirCmd)

	rootCmd.AddCommand(spaceCmd)
	spaceCmd.AddCommand(spaceRotateCmd)
	spaceCmd.AddCommand(spaceFocusCmd)
	spaceCmd.AddCommand(spaceLayoutCmd)

	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileApplyCmd)
	profileCmd.AddCommand(profileInfoCmd)
	profileCmd.AddCommand(profileCurrentCmd)
	profileCurrentCmd.Flags().Bool("reset", false, "Forget the current profile and history")
	profileCmd.AddCommand(profileHistoryCmd)
	profileHistoryCmd.Flags().Int("limit", 10, "Number of entries to show (0 for all)")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("interval", 0, "Refresh interval (default from config)")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "stdio or streamable-http (default from config)")
	serveCmd.Flags().Int("port", 0, "Port for streamable-http (default from config)")

	cobra.OnInitialize(func() {
		if noColor {
			color.NoColor = true
		}
		if debugMode {
			logging.SetDebug(true)
		}
	})
}

func main() {
	// Initialize logging
	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			printError(err.Error())
		}
		logging.Close()
		os.Exit(1)
	}
}

// Helper functions

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		cfg.Yabai.QueryTimeout = timeout.String()
		cfg.Yabai.CommandTimeout = timeout.String()
	}
	return cfg, nil
}

func newService() (*workspace.Service, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return workspace.FromConfig(cfg, nil), cfg, nil
}

func format() (output.Format, error) {
	return output.ParseFormat(formatFlag)
}

// printData encodes v when --format is json or yaml and reports whether it
// did, so callers fall through to their table rendering otherwise.
func printData(v interface{}) (bool, error) {
	f, err := format()
	if err != nil {
		return true, err
	}
	if f == output.FormatTable {
		return false, nil
	}
	return true, output.Encode(os.Stdout, f, v)
}

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}
