package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Yabai.Path) == "" {
		return fmt.Errorf("yabai: missing path")
	}

	// Validate timeouts
	for name, value := range map[string]string{
		"yabai.queryTimeout":   c.Yabai.QueryTimeout,
		"yabai.commandTimeout": c.Yabai.CommandTimeout,
		"yabai.probeTimeout":   c.Yabai.ProbeTimeout,
		"profiles.timeout":     c.Profiles.Timeout,
		"watch.interval":       c.Watch.Interval,
	} {
		if _, err := ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if err := validateProfiles(&c.Profiles); err != nil {
		return fmt.Errorf("profiles: %w", err)
	}

	if err := validateServer(&c.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	return nil
}

func validateProfiles(p *ProfilesConfig) error {
	if strings.TrimSpace(p.Dir) == "" {
		return fmt.Errorf("missing dir")
	}

	ids := make(map[string]bool)
	for i, profile := range p.Known {
		if profile.ID == "" {
			return fmt.Errorf("profile %d: missing ID", i)
		}
		if !ValidProfileID(profile.ID) {
			return fmt.Errorf("profile %d: invalid ID %q (lowercase letters, digits, '_' and '-' only)", i, profile.ID)
		}
		if ids[profile.ID] {
			return fmt.Errorf("duplicate profile ID: %s", profile.ID)
		}
		ids[profile.ID] = true

		if profile.Script != "" && !scriptPattern.MatchString(profile.Script) {
			return fmt.Errorf("profile %s: script must be a plain .sh file name, got %q", profile.ID, profile.Script)
		}
	}
	return nil
}

func validateServer(s *ServerConfig) error {
	switch s.Transport {
	case "stdio", "streamable-http":
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.Transport)
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port out of range: %d", s.Port)
	}
	return nil
}
