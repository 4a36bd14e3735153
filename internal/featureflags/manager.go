// Package featureflags evaluates simple config-driven feature flags.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "post_refiner=on,live_notifications=25%,legacy_feed=off"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic per-user rollout, e.g. 25%)
// Unconfigured flags evaluate to false.
func (m *Manager) Enabled(name string, userID uuid.UUID) bool {
	enabled, _ := m.lookup(name, userID)
	return enabled
}

// EnabledOrDefault evaluates a flag, falling back to def when the flag is
// not configured at all. Features that ship enabled gate on def=true so an
// empty flag list changes nothing.
func (m *Manager) EnabledOrDefault(name string, userID uuid.UUID, def bool) bool {
	enabled, configured := m.lookup(name, userID)
	if !configured {
		return def
	}
	return enabled
}

func (m *Manager) lookup(name string, userID uuid.UUID) (enabled, configured bool) {
	if m == nil {
		return false, false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false, false
	}

	switch value {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	}

	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil || pct <= 0 {
			return false, true
		}
		if pct >= 100 {
			return true, true
		}
		// anonymous users never fall inside a partial rollout
		if userID == uuid.Nil {
			return false, true
		}
		return rolloutBucket(name, userID) < pct, true
	}

	return false, true
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uuid.UUID) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uuid.UUID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name)))
	_, _ = h.Write([]byte(":"))
	_, _ = h.Write([]byte(userID.String()))
	return int(h.Sum32() % 100)
}
