package wrapper

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	config "subagent-wrapper/internal/config"
	executor "subagent-wrapper/internal/executor"
)

// notifyContext derives the run context: interrupt-aware, with an optional
// deadline on top.
func notifyContext(timeoutSec int) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeoutSec <= 0 {
		return ctx, cancel
	}
	tctx, tcancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	return tctx, func() {
		tcancel()
		cancel()
	}
}

func runSingleMode(args []string, cfg *config.Config, name string) int {
	taskText, workdir, code := resolveTaskArgs(args, cfg)
	if code != 0 {
		return code
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		logError("model required")
		fmt.Fprintln(os.Stderr, "ERROR: model required (--model flag or config)")
		return 1
	}

	task := executor.Task{
		Model:   model,
		Task:    taskText,
		Context: cfg.Context,
		Tools:   cfg.Tools,
	}

	if res := buildResolver(cfg); !res.Empty() {
		canonical, err := res.ResolveStrict(model)
		if err != nil {
			logError(err.Error())
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return 1
		}
		task.Model = canonical
	} else {
		logInfo("No model registry configured; passing model through unresolved: " + model)
	}

	cli := executor.NewAgentCLI(cfg)
	logInfo(fmt.Sprintf("Parsed args: model=%s, task_len=%d, workdir=%s", task.Model, len(task.Task), workdir))

	fmt.Fprintf(os.Stderr, "[%s]\n", name)
	fmt.Fprintf(os.Stderr, "  Model: %s\n", task.Model)
	fmt.Fprintf(os.Stderr, "  Command: %s\n", cli.Command)
	fmt.Fprintf(os.Stderr, "  PID: %d\n", os.Getpid())
	if logger := activeLogger(); logger != nil {
		fmt.Fprintf(os.Stderr, "  Log: %s\n", logger.Path())
	}

	ctx, cancel := notifyContext(cfg.Timeout)
	defer cancel()

	rep := executor.NewReporter(nil)
	if err := executor.RunFleet(ctx, cli, workdir, []executor.Task{task}, rep); err != nil {
		logError(err.Error())
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	result := rep.Results()[0]
	if !result.Succeeded() {
		if msg := strings.TrimSpace(result.ErrorMessage); msg != "" {
			fmt.Fprintln(os.Stderr, "ERROR: "+msg)
		}
		if result.ExitCode <= 0 {
			return 1
		}
		return result.ExitCode
	}

	fmt.Println(result.Output)
	return 0
}

// resolveTaskArgs extracts the task text and working directory. The task may
// come from a positional argument, "-" for explicit stdin, or piped stdin
// when no argument is given.
func resolveTaskArgs(args []string, cfg *config.Config) (task, workdir string, code int) {
	workdir = cfg.WorkDir

	if len(args) == 0 {
		piped, err := readPipedTask()
		if err != nil {
			logError("Failed to read piped stdin: " + err.Error())
			return "", "", 1
		}
		if piped == "" {
			fmt.Fprintln(os.Stderr, "ERROR: task required")
			return "", "", 1
		}
		return piped, workdir, 0
	}

	task = args[0]
	if task == "-" {
		logInfo("Explicit stdin mode: reading task from stdin")
		data, err := io.ReadAll(stdinReader)
		if err != nil {
			logError("Failed to read stdin: " + err.Error())
			return "", "", 1
		}
		task = strings.TrimSpace(string(data))
		if task == "" {
			fmt.Fprintln(os.Stderr, "ERROR: explicit stdin mode requires task input from stdin")
			return "", "", 1
		}
	}

	if len(args) > 1 {
		if args[1] == "-" {
			fmt.Fprintln(os.Stderr, "ERROR: invalid workdir: '-' is not a valid directory path")
			return "", "", 1
		}
		workdir = args[1]
	}
	return task, workdir, 0
}
