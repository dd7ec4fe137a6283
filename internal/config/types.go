package config

// Config is the root configuration structure
type Config struct {
	Yabai    YabaiConfig    `yaml:"yabai" json:"yabai" toml:"yabai"`
	Profiles ProfilesConfig `yaml:"profiles" json:"profiles" toml:"profiles"`
	Watch    WatchConfig    `yaml:"watch" json:"watch" toml:"watch"`
	Server   ServerConfig   `yaml:"server" json:"server" toml:"server"`
}

// YabaiConfig locates the yabai binary and bounds every call to it.
// Durations are strings such as "5s" or "750ms".
type YabaiConfig struct {
	Path           string `yaml:"path" json:"path" toml:"path"`
	QueryTimeout   string `yaml:"queryTimeout" json:"queryTimeout" toml:"queryTimeout"`
	CommandTimeout string `yaml:"commandTimeout" json:"commandTimeout" toml:"commandTimeout"`
	ProbeTimeout   string `yaml:"probeTimeout" json:"probeTimeout" toml:"probeTimeout"`
}

// ProfilesConfig is the allow-list of workspace profiles and where their
// scripts live
type ProfilesConfig struct {
	Dir     string          `yaml:"dir" json:"dir" toml:"dir"`
	Timeout string          `yaml:"timeout" json:"timeout" toml:"timeout"`
	Known   []ProfileConfig `yaml:"known" json:"known" toml:"known"`
}

// ProfileConfig registers one profile
type ProfileConfig struct {
	ID          string `yaml:"id" json:"id" toml:"id"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty" toml:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
	Script      string `yaml:"script,omitempty" json:"script,omitempty" toml:"script,omitempty"` // file name inside Dir, default "<id>_profile.sh"
}

// WatchConfig controls `yb watch`
type WatchConfig struct {
	Interval string `yaml:"interval" json:"interval" toml:"interval"`
}

// ServerConfig controls `yb serve`
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport" toml:"transport"` // stdio or streamable-http
	Port      int    `yaml:"port" json:"port" toml:"port"`
}
