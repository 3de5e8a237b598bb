package executor

import (
	"os"
	"strings"

	config "subagent-wrapper/internal/config"
)

// AgentCLI describes how to invoke the agent executable for one subagent run.
// The argument list is always passed as an array, never a shell-interpreted
// string.
type AgentCLI struct {
	Command string
	BaseURL string
	APIKey  string
}

// NewAgentCLI builds the invocation spec from config, falling back to the
// default agent command.
func NewAgentCLI(cfg *config.Config) AgentCLI {
	cli := AgentCLI{}
	if cfg != nil {
		cli.Command = strings.TrimSpace(cfg.Command)
		cli.BaseURL = cfg.BaseURL
		cli.APIKey = cfg.APIKey
	}
	if cli.Command == "" {
		cli.Command = config.DefaultCommand
	}
	return cli
}

// BuildArgs assembles the argv for a non-interactive, single-shot, structured
// output run with no inherited session state. The composed prompt is the final
// positional argument.
func (a AgentCLI) BuildArgs(model string, tools []string, prompt string) []string {
	args := []string{"run", "--output-format", "ndjson", "--once", "--no-session"}

	if model = strings.TrimSpace(model); model != "" {
		args = append(args, "--model", model)
	}
	if len(tools) > 0 {
		args = append(args, "--tools", strings.Join(tools, ","))
	}

	return append(args, prompt)
}

// Environ returns the process environment for the spawned agent, layering
// endpoint overrides on the parent environment.
func (a AgentCLI) Environ() []string {
	baseURL := strings.TrimSpace(a.BaseURL)
	apiKey := strings.TrimSpace(a.APIKey)
	if baseURL == "" && apiKey == "" {
		return nil // inherit as-is
	}

	env := os.Environ()
	if baseURL != "" {
		env = append(env, "AGENT_BASE_URL="+baseURL)
	}
	if apiKey != "" {
		env = append(env, "AGENT_API_KEY="+apiKey)
	}
	return env
}
