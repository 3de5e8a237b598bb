package executor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func makeTasks(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{Model: "anthropic/sonnet", Task: fmt.Sprintf("task %d", i)}
	}
	return tasks
}

func TestRunFleetRejectsOversizedFleet(t *testing.T) {
	var spawned atomic.Int32
	restore := SetRunTaskFn(func(ctx context.Context, cli AgentCLI, workdir string, task Task, onUpdate func(SubagentResult)) SubagentResult {
		spawned.Add(1)
		return SubagentResult{ExitCode: 0}
	})
	defer restore()

	rep := NewReporter(nil)
	err := RunFleet(context.Background(), AgentCLI{}, ".", makeTasks(MaxFleetSize+1), rep)
	if !errors.Is(err, ErrTooManyTasks) {
		t.Fatalf("RunFleet() error = %v, want ErrTooManyTasks", err)
	}
	if spawned.Load() != 0 {
		t.Fatalf("spawned = %d, want 0 before validation", spawned.Load())
	}
	if len(rep.Results()) != 0 {
		t.Fatalf("reporter seeded despite rejection: %d slots", len(rep.Results()))
	}
}

func TestRunFleetRejectsEmptyFleet(t *testing.T) {
	err := RunFleet(context.Background(), AgentCLI{}, ".", nil, NewReporter(nil))
	if !errors.Is(err, ErrNoTasks) {
		t.Fatalf("RunFleet() error = %v, want ErrNoTasks", err)
	}
}

func TestRunFleetRunsEveryTaskOnce(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7, MaxFleetSize} {
		t.Run(fmt.Sprintf("tasks=%d", n), func(t *testing.T) {
			var runs atomic.Int32
			restore := SetRunTaskFn(func(ctx context.Context, cli AgentCLI, workdir string, task Task, onUpdate func(SubagentResult)) SubagentResult {
				runs.Add(1)
				return SubagentResult{Task: task.Task, Output: "echo: " + task.Task, ExitCode: 0}
			})
			defer restore()

			rep := NewReporter(nil)
			if err := RunFleet(context.Background(), AgentCLI{}, ".", makeTasks(n), rep); err != nil {
				t.Fatalf("RunFleet() error = %v", err)
			}
			if int(runs.Load()) != n {
				t.Fatalf("runs = %d, want %d", runs.Load(), n)
			}

			snap := rep.Snapshot()
			if snap.Done != n || snap.Running != 0 {
				t.Fatalf("snapshot = done %d running %d, want all %d done", snap.Done, snap.Running, n)
			}
			for i, res := range snap.Results {
				want := fmt.Sprintf("echo: task %d", i)
				if res.Output != want {
					t.Fatalf("result[%d].Output = %q, want %q (order must match submission)", i, res.Output, want)
				}
			}
		})
	}
}

func TestRunFleetConcurrencyCap(t *testing.T) {
	var live, peak atomic.Int32
	restore := SetRunTaskFn(func(ctx context.Context, cli AgentCLI, workdir string, task Task, onUpdate func(SubagentResult)) SubagentResult {
		n := live.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		live.Add(-1)
		return SubagentResult{ExitCode: 0}
	})
	defer restore()

	rep := NewReporter(nil)
	if err := RunFleet(context.Background(), AgentCLI{}, ".", makeTasks(MaxFleetSize), rep); err != nil {
		t.Fatalf("RunFleet() error = %v", err)
	}
	if p := peak.Load(); p > MaxConcurrent {
		t.Fatalf("peak concurrency = %d, want <= %d", p, MaxConcurrent)
	}
	if p := peak.Load(); p < 2 {
		t.Fatalf("peak concurrency = %d, want parallel execution", p)
	}
}

func TestRunFleetFailureIsolation(t *testing.T) {
	restore := SetRunTaskFn(func(ctx context.Context, cli AgentCLI, workdir string, task Task, onUpdate func(SubagentResult)) SubagentResult {
		if task.Task == "task 1" {
			return SubagentResult{Task: task.Task, ExitCode: 1, ErrorMessage: "exit code 1"}
		}
		return SubagentResult{Task: task.Task, Output: "ok", ExitCode: 0}
	})
	defer restore()

	rep := NewReporter(nil)
	if err := RunFleet(context.Background(), AgentCLI{}, ".", makeTasks(3), rep); err != nil {
		t.Fatalf("RunFleet() error = %v", err)
	}

	failed := rep.Failed()
	if len(failed) != 1 || failed[0].Task != "task 1" {
		t.Fatalf("Failed() = %+v, want only task 1", failed)
	}
	results := rep.Results()
	if !results[0].Succeeded() || !results[2].Succeeded() {
		t.Fatalf("siblings affected by failure: %+v", results)
	}
}

func TestRunFleetCancellationMarksAllAborted(t *testing.T) {
	restore := SetRunTaskFn(func(ctx context.Context, cli AgentCLI, workdir string, task Task, onUpdate func(SubagentResult)) SubagentResult {
		<-ctx.Done()
		return SubagentResult{Task: task.Task, ExitCode: 1, StopReason: StopReasonAborted, ErrorMessage: AbortedMessage}
	})
	defer restore()

	ctx, cancel := context.WithCancel(context.Background())
	rep := NewReporter(nil)
	done := make(chan error, 1)
	go func() {
		done <- RunFleet(ctx, AgentCLI{}, ".", makeTasks(4), rep)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunFleet() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("RunFleet did not return after cancellation")
	}

	for i, res := range rep.Results() {
		if res.StopReason != StopReasonAborted || res.ErrorMessage != AbortedMessage {
			t.Fatalf("result[%d] = %+v, want aborted", i, res)
		}
	}
}
