package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/yabai-cli/internal/mcpserver"
	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/notify"
	"github.com/yourusername/yabai-cli/internal/output"
)

// watchCmd polls yabai and redraws the grouped window list
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh periodically and print the window list",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = cfg.WatchInterval()
		}

		events, cancel := svc.Events(notify.DefaultBuffer)
		defer cancel()
		go func() {
			for e := range events {
				output.WriteEvent(os.Stderr, e)
			}
		}()

		var last time.Time
		svc.Poll(cmd.Context(), interval, func(err error) {
			snap := svc.Snapshot()
			if err != nil || snap == nil || !snap.FetchedAt().After(last) {
				return
			}
			last = snap.FetchedAt()

			fmt.Print("\033[H\033[2J")
			keyColor.Printf("yb watch  every %s  %s\n\n", interval, last.Local().Format("15:04:05"))
			output.WriteGroupedWindows(os.Stdout, models.GroupByDisplay(snap))
		})
		return nil
	},
}

// serveCmd runs the MCP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve yabai tools over MCP",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := newService()
		if err != nil {
			return err
		}
		defer svc.Close()

		serverCfg := mcpserver.Config{
			Transport: cfg.Server.Transport,
			Port:      cfg.Server.Port,
		}
		if t, _ := cmd.Flags().GetString("transport"); t != "" {
			serverCfg.Transport = t
		}
		if p, _ := cmd.Flags().GetInt("port"); p != 0 {
			serverCfg.Port = p
		}

		return mcpserver.New(svc, version).Serve(serverCfg)
	},
}
