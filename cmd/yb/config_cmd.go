package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/yabai-cli/internal/config"
)

// configCmd is the parent command for config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if done, err := printData(cfg); done {
			return err
		}

		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}
		keyColor.Print("# source: ")
		fmt.Println(path)
		return yaml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			path = config.GetConfigPath()
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		successColor.Print("✓ ")
		fmt.Printf("%s is valid (%d profiles)\n", path, len(cfg.Profiles.Known))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		successColor.Print("✓ ")
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}
