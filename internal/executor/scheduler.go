package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"subagent-wrapper/internal/utils"
)

const (
	// MaxFleetSize is the hard cap on tasks accepted in one request.
	MaxFleetSize = 8
	// MaxConcurrent is the ceiling on simultaneously live subprocesses.
	MaxConcurrent = 4
)

var (
	ErrNoTasks      = errors.New("no tasks to run")
	ErrTooManyTasks = fmt.Errorf("too many tasks: maximum %d per request", MaxFleetSize)
)

var runTaskFn = RunTask

// RunFleet executes tasks with at most MaxConcurrent subprocesses alive at
// once, preserving input order in the reporter. It validates the fleet size
// before any subprocess is spawned and returns only when every worker has
// finished, including after cancellation.
func RunFleet(ctx context.Context, cli AgentCLI, workdir string, tasks []Task, rep *Reporter) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}
	if len(tasks) > MaxFleetSize {
		return ErrTooManyTasks
	}

	rep.Reset(tasks)

	workers := utils.Min(MaxConcurrent, len(tasks))
	logInfo(fmt.Sprintf("Starting fleet tasks=%d workers=%d", len(tasks), workers))

	// Workers claim task indices from a shared counter, so no task is ever
	// run twice and no index is skipped.
	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(tasks) {
					return
				}
				res := runTaskFn(ctx, cli, workdir, tasks[i], func(update SubagentResult) {
					rep.Update(i, update)
				})
				rep.Update(i, res)
			}
		}()
	}
	wg.Wait()

	snap := rep.Snapshot()
	logInfo(fmt.Sprintf("Fleet finished done=%d failed=%d", snap.Done, len(rep.Failed())))
	return nil
}
