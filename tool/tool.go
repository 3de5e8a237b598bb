// Package tool exposes subagent orchestration to a host agent as a tool and
// a slash command. The host supplies registries and a notifier; everything
// else (validation, model resolution, fleet execution, reporting) lives here.
//
// This package is the module's public surface: hosts import it directly and
// hand their registration interfaces to Register.
package tool

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"subagent-wrapper/internal/executor"
	"subagent-wrapper/internal/resolver"
)

// ToolName is the registered name of the orchestration tool.
const ToolName = "subagents"

// CommandName is the registered slash command.
const CommandName = "/subagents"

const toolDescription = "Delegate work to one or more subagents running in parallel. " +
	"Provide either a single task (model + task) or a tasks array, not both."

// Definition is what a host needs to surface one tool to its model.
type Definition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Handler executes one tool invocation. It never returns a Go error: failures
// are expressed in the Result so the host can relay them to the model.
type Handler func(ctx context.Context, input json.RawMessage) Result

// ToolRegistry is the host-side tool surface.
type ToolRegistry interface {
	RegisterTool(def Definition, handler Handler)
}

// CommandRegistry is the host-side slash command surface.
type CommandRegistry interface {
	RegisterCommand(name, description string, handler Handler)
}

// Notifier receives interim progress lines while a fleet is running.
type Notifier interface {
	Notify(message string)
}

// Host bundles the registration surfaces a host hands to Register.
type Host interface {
	ToolRegistry
	CommandRegistry
	Notifier
}

// The executor and resolver types that appear in this package's API are
// re-exported so hosts can use them without importing internal packages.
type (
	SubagentResult = executor.SubagentResult
	UsageStats     = executor.UsageStats
	AgentCLI       = executor.AgentCLI
	ModelInfo      = resolver.ModelInfo
	Resolver       = resolver.Resolver
)

// NewResolver builds the model resolver from the host's registry and an
// optional exact-match allow-list.
func NewResolver(available []ModelInfo, enabled []string) *Resolver {
	return resolver.New(available, enabled)
}

// Result is the outcome of one tool or command invocation.
type Result struct {
	Content string
	IsError bool
	Details *Details
}

// Details carries the structured per-task results alongside the rendered
// content, for hosts that want more than a text blob.
type Details struct {
	Mode    string
	Results []SubagentResult
}

// Execution modes reported in Details.
const (
	ModeSingle   = "single"
	ModeParallel = "parallel"
)

func errorResult(msg string) Result {
	return Result{Content: msg, IsError: true}
}

// Register wires the subagents tool and slash command into the host. Both
// routes share one handler; the command body is parsed with the same schema
// as the tool input.
func Register(host Host, svc *Service) {
	def := Definition{
		Name:        ToolName,
		Description: toolDescription,
		InputSchema: GenerateSchema[Input](),
	}

	handler := func(ctx context.Context, raw json.RawMessage) Result {
		var in Input
		if err := json.Unmarshal(raw, &in); err != nil {
			return errorResult("invalid input: " + err.Error())
		}
		return svc.Run(ctx, in)
	}

	host.RegisterTool(def, handler)
	host.RegisterCommand(CommandName, toolDescription, handler)
}
