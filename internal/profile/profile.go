// Package profile maps registered profile IDs to workspace scripts and runs
// them. Only IDs on the configured allow-list resolve; the ID is never
// passed through a shell.
package profile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/yabai-cli/internal/client"
	"github.com/yourusername/yabai-cli/internal/config"
	"github.com/yourusername/yabai-cli/internal/logging"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

// Shell runs profile scripts. Scripts are invoked as `sh <path>` so they
// need not carry the executable bit.
const Shell = "/bin/sh"

// Profile describes one registered profile
type Profile struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Script      string `json:"script" yaml:"script"`
	Exists      bool   `json:"exists" yaml:"exists"`
}

// Registry is the closed set of profiles the dispatcher may apply.
type Registry struct {
	dir     string
	order   []string
	known   map[string]config.ProfileConfig
	timeout time.Duration
	runner  client.Runner
}

// NewRegistry builds a registry from config. A nil runner executes scripts
// with the profiles directory as working directory.
func NewRegistry(cfg *config.Config, runner client.Runner) *Registry {
	dir := cfg.ProfilesDir()
	if runner == nil {
		runner = client.ExecRunner{Dir: dir}
	}

	r := &Registry{
		dir:     dir,
		order:   cfg.GetProfileIDs(),
		known:   make(map[string]config.ProfileConfig, len(cfg.Profiles.Known)),
		timeout: cfg.ProfileTimeout(),
		runner:  runner,
	}
	for _, p := range cfg.Profiles.Known {
		r.known[p.ID] = p
	}
	return r
}

// Dir returns the absolute profiles directory
func (r *Registry) Dir() string {
	return r.dir
}

// IDs returns the allow-list in configured order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Resolve validates id against the allow-list and returns the absolute
// script path. Any rejection is a *wmerr.ValidationError.
func (r *Registry) Resolve(id string) (string, error) {
	if !config.ValidProfileID(id) {
		return "", &wmerr.ValidationError{Field: "profile", Value: id, Reason: "contains characters outside [a-z0-9_-]"}
	}
	p, ok := r.known[id]
	if !ok {
		return "", &wmerr.ValidationError{
			Field:  "profile",
			Value:  id,
			Reason: fmt.Sprintf("not registered (known: %s)", strings.Join(r.order, ", ")),
		}
	}

	path := filepath.Join(r.dir, p.ScriptName())
	rel, err := filepath.Rel(r.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &wmerr.ValidationError{Field: "profile", Value: id, Reason: "script escapes profiles directory"}
	}
	return path, nil
}

// Info describes a registered profile, reading the script header for a
// description when config does not supply one.
func (r *Registry) Info(id string) (Profile, error) {
	path, err := r.Resolve(id)
	if err != nil {
		return Profile{}, err
	}

	p := r.known[id]
	info := Profile{
		ID:          id,
		Name:        p.DisplayName(),
		Description: p.Description,
		Script:      path,
	}

	if _, err := os.Stat(path); err == nil {
		info.Exists = true
		if info.Description == "" {
			info.Description = ScriptDescription(path)
		}
	}
	return info, nil
}

// List returns every registered profile in configured order
func (r *Registry) List() []Profile {
	profiles := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		info, err := r.Info(id)
		if err != nil {
			logging.Warn().Err(err).Str("profile", id).Msg("skipping unresolvable profile")
			continue
		}
		profiles = append(profiles, info)
	}
	return profiles
}

// Run executes the script for id. The ID must already have passed Resolve;
// Run resolves again so it is safe to call directly.
func (r *Registry) Run(ctx context.Context, id string) ([]byte, error) {
	path, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.runner.Run(ctx, Shell, path)

	event := logging.Info()
	if err != nil {
		event = logging.Warn().Err(err)
	}
	event.
		Str("profile", id).
		Str("script", path).
		Dur("elapsed", time.Since(start)).
		Msg("profile script")

	return out, err
}

// ScriptDescription returns the first comment line that mentions
// "profile", with the leading markers trimmed. Empty when none is found.
func ScriptDescription(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "#!") {
			continue
		}
		if strings.Contains(strings.ToLower(line), "profile") {
			return strings.TrimSpace(strings.Trim(line, "# "))
		}
	}
	return ""
}
