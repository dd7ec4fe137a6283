package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".config/yabai-cli"
	DefaultConfigFile = "config.yaml"

	defaultProfilesDir    = "~/Desktop/YABAI/workspace_profiles"
	defaultQueryTimeout   = "5s"
	defaultCommandTimeout = "5s"
	defaultProbeTimeout   = "2s"
	defaultProfileTimeout = "30s"
	defaultWatchInterval  = "2s"
	defaultTransport      = "stdio"
	defaultPort           = 8765
)

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Yabai: YabaiConfig{
			Path:           "yabai",
			QueryTimeout:   defaultQueryTimeout,
			CommandTimeout: defaultCommandTimeout,
			ProbeTimeout:   defaultProbeTimeout,
		},
		Profiles: ProfilesConfig{
			Dir:     defaultProfilesDir,
			Timeout: defaultProfileTimeout,
			Known: []ProfileConfig{
				{ID: "work", Name: "Work", Description: "Development & Productivity"},
				{ID: "personal", Name: "Personal", Description: "Entertainment & Social"},
				{ID: "ai_research", Name: "AI Research", Description: "AI & ML Development"},
			},
		},
		Watch:  WatchConfig{Interval: defaultWatchInterval},
		Server: ServerConfig{Transport: defaultTransport, Port: defaultPort},
	}
}

// LoadConfig loads configuration from the specified path or default location.
// If path is empty, tries ~/.config/yabai-cli/config.{yaml,json,toml} and
// falls back to Default when none exists. Format follows the extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		for _, name := range []string{"config.yaml", "config.yml", "config.json", "config.toml"} {
			candidate := filepath.Join(home, DefaultConfigDir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return LoadConfigFromBytes(data, format)
}

// LoadConfigFromBytes loads configuration from raw bytes.
// format should be "yaml", "json" or "toml". Unset fields keep their defaults.
func LoadConfigFromBytes(data []byte, format string) (*Config, error) {
	cfg := Default()
	// A file that lists profiles replaces the default allow-list outright.
	cfg.Profiles.Known = nil

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	if cfg.Profiles.Known == nil {
		cfg.Profiles.Known = Default().Profiles.Known
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}

// WriteDefault writes the default configuration as YAML to path.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := []byte("# yabai-cli configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// QueryTimeout returns the parsed query timeout
func (c *Config) QueryTimeout() time.Duration {
	return mustDuration(c.Yabai.QueryTimeout, defaultQueryTimeout)
}

// CommandTimeout returns the parsed command timeout
func (c *Config) CommandTimeout() time.Duration {
	return mustDuration(c.Yabai.CommandTimeout, defaultCommandTimeout)
}

// ProbeTimeout returns the parsed probe timeout
func (c *Config) ProbeTimeout() time.Duration {
	return mustDuration(c.Yabai.ProbeTimeout, defaultProbeTimeout)
}

// ProfileTimeout returns the parsed profile script timeout
func (c *Config) ProfileTimeout() time.Duration {
	return mustDuration(c.Profiles.Timeout, defaultProfileTimeout)
}

// WatchInterval returns the parsed watch interval
func (c *Config) WatchInterval() time.Duration {
	return mustDuration(c.Watch.Interval, defaultWatchInterval)
}

// ProfilesDir returns the profiles directory with ~ expanded
func (c *Config) ProfilesDir() string {
	return mustExpand(c.Profiles.Dir)
}

// GetProfileIDs returns all registered profile IDs
func (c *Config) GetProfileIDs() []string {
	ids := make([]string, len(c.Profiles.Known))
	for i, p := range c.Profiles.Known {
		ids[i] = p.ID
	}
	return ids
}

// mustDuration parses s, falling back to def. Validate rejects bad values
// before any getter runs.
func mustDuration(s, def string) time.Duration {
	if d, err := ParseDuration(s); err == nil {
		return d
	}
	d, _ := time.ParseDuration(def)
	return d
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
