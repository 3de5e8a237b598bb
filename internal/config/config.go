package config

import (
	"os"
	"strings"
)

// Config holds CLI configuration for one invocation.
type Config struct {
	Command  string // agent executable to spawn
	WorkDir  string
	Model    string
	Context  string
	Tools    []string
	Timeout  int // seconds, 0 = no timeout
	BaseURL  string
	APIKey   string
	Parallel bool

	// EnabledModels is the allow-list of provider/id strings. Empty means
	// no restriction.
	EnabledModels []string
}

// DefaultCommand is the agent binary spawned for each subagent task.
const DefaultCommand = "agent"

// EnvFlagEnabled returns true when the environment variable exists and is not
// explicitly set to a falsey value ("0/false/no/off").
func EnvFlagEnabled(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

func ParseBoolFlag(val string, defaultValue bool) bool {
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// EnvFlagDefaultTrue returns true unless the env var is explicitly set to
// false/0/no/off.
func EnvFlagDefaultTrue(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return true
	}
	return ParseBoolFlag(val, true)
}

// SplitToolList splits a comma-separated tool list, dropping empty entries.
func SplitToolList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tools := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tools = append(tools, p)
		}
	}
	return tools
}
