package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// Profile IDs double as script file name stems, so they are restricted
	// to characters with no meaning to a shell or a path.
	profileIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
	scriptPattern    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*\.sh$`)
)

// ParseDuration parses a positive duration string
// Supported formats:
//   - "5s", "750ms", "1m30s" - Go duration syntax
//   - "2" - bare integer seconds
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		var secs int
		if _, scanErr := fmt.Sscanf(s, "%d", &secs); scanErr != nil || fmt.Sprint(secs) != s {
			return 0, fmt.Errorf("invalid duration format: %s", s)
		}
		d = time.Duration(secs) * time.Second
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %s", s)
	}
	return d, nil
}

// ValidProfileID reports whether id is usable as a profile identifier
func ValidProfileID(id string) bool {
	return profileIDPattern.MatchString(id)
}

// ScriptName returns the script file name for a profile
func (p ProfileConfig) ScriptName() string {
	if p.Script != "" {
		return p.Script
	}
	return p.ID + "_profile.sh"
}

// DisplayName returns Name or falls back to ID
func (p ProfileConfig) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
