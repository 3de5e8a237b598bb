package wrapper

import (
	"fmt"
	"io"
	"os"

	config "subagent-wrapper/internal/config"
	executor "subagent-wrapper/internal/executor"
)

func runParallelMode(args []string, cfg *config.Config, name string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "ERROR: --parallel reads its task configuration from stdin; no positional arguments are allowed.")
		fmt.Fprintln(os.Stderr, "Usage examples:")
		fmt.Fprintf(os.Stderr, "  %s --parallel < tasks.txt\n", name)
		fmt.Fprintf(os.Stderr, "  echo '...' | %s --parallel\n", name)
		return 1
	}

	data, err := io.ReadAll(stdinReader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to read stdin: %v\n", err)
		return 1
	}

	tasks, err := executor.ParseFleetConfig(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	if len(tasks) > executor.MaxFleetSize {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", executor.ErrTooManyTasks)
		return 1
	}

	// Flags act as defaults for blocks that leave them unset.
	for i := range tasks {
		if len(tasks[i].Tools) == 0 {
			tasks[i].Tools = cfg.Tools
		}
		if tasks[i].Context == "" {
			tasks[i].Context = cfg.Context
		}
	}

	// All models resolve before anything spawns: one bad model fails the
	// whole request up front.
	if res := buildResolver(cfg); !res.Empty() {
		for i := range tasks {
			canonical, err := res.ResolveStrict(tasks[i].Model)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
				return 1
			}
			tasks[i].Model = canonical
		}
	} else {
		logInfo("No model registry configured; passing task models through unresolved")
	}

	cli := executor.NewAgentCLI(cfg)
	logInfo(fmt.Sprintf("Parallel mode: %d task(s), command=%s", len(tasks), cli.Command))

	ctx, cancel := notifyContext(cfg.Timeout)
	defer cancel()

	rep := executor.NewReporter(func(snap executor.Snapshot) {
		fmt.Fprintf(os.Stderr, "\r%s", snap.Progress())
	})

	if err := executor.RunFleet(ctx, cli, cfg.WorkDir, tasks, rep); err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stderr)

	fmt.Println(rep.FinalReport())

	if len(rep.Failed()) > 0 {
		return 1
	}
	return 0
}
