package wrapper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	config "subagent-wrapper/internal/config"
	executor "subagent-wrapper/internal/executor"
)

func resetRegistry(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	config.ResetModelsConfigCacheForTest()
	t.Cleanup(config.ResetModelsConfigCacheForTest)
}

func writeRegistry(t *testing.T, payload string) {
	t.Helper()
	dir := filepath.Join(os.Getenv("HOME"), ".subagent")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "models.json"), []byte(payload), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestBuildResolverEmptyWithoutRegistry(t *testing.T) {
	resetRegistry(t)

	if res := buildResolver(&config.Config{}); !res.Empty() {
		t.Fatalf("resolver not empty without a registry")
	}
}

func TestBuildResolverFromRegistry(t *testing.T) {
	resetRegistry(t)
	writeRegistry(t, `{"models":[{"provider":"anthropic","id":"sonnet"}]}`)

	res := buildResolver(&config.Config{})
	if res.Empty() {
		t.Fatalf("resolver empty despite registry")
	}
	canonical, err := res.ResolveStrict("Anthropic/Sonnet")
	if err != nil || canonical != "anthropic/sonnet" {
		t.Fatalf("ResolveStrict() = (%q, %v)", canonical, err)
	}
}

func TestRunSingleModePassThroughWithoutRegistry(t *testing.T) {
	resetRegistry(t)

	var gotModel string
	restore := executor.SetRunTaskFn(func(ctx context.Context, cli executor.AgentCLI, workdir string, task executor.Task, onUpdate func(executor.SubagentResult)) executor.SubagentResult {
		gotModel = task.Model
		return executor.SubagentResult{Model: task.Model, ExitCode: 0, Output: "ok"}
	})
	t.Cleanup(restore)

	cfg := &config.Config{Model: "custom/experimental", WorkDir: ".", Command: "agent"}
	if code := runSingleMode([]string{"do the thing"}, cfg, "subagent-wrapper"); code != 0 {
		t.Fatalf("runSingleMode() = %d", code)
	}
	if gotModel != "custom/experimental" {
		t.Fatalf("spawned model = %q, want unresolved token passed through", gotModel)
	}
}

func TestRunSingleModeRejectsUnknownModelWithRegistry(t *testing.T) {
	resetRegistry(t)
	writeRegistry(t, `{"models":[{"provider":"anthropic","id":"sonnet"}]}`)

	spawned := false
	restore := executor.SetRunTaskFn(func(ctx context.Context, cli executor.AgentCLI, workdir string, task executor.Task, onUpdate func(executor.SubagentResult)) executor.SubagentResult {
		spawned = true
		return executor.SubagentResult{ExitCode: 0}
	})
	t.Cleanup(restore)

	cfg := &config.Config{Model: "anthropic/opus", WorkDir: ".", Command: "agent"}
	if code := runSingleMode([]string{"do the thing"}, cfg, "subagent-wrapper"); code == 0 {
		t.Fatalf("unknown model accepted, want failure")
	}
	if spawned {
		t.Fatalf("subprocess spawned despite failed resolution")
	}
}
