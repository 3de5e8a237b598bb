package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"subagent-wrapper/internal/stream"
	"subagent-wrapper/internal/utils"
)

// defaultForceKillDelaySec is the grace period between the termination signal
// and a forced kill.
const defaultForceKillDelaySec = 3

var forceKillDelay atomic.Int32

func init() { forceKillDelay.Store(defaultForceKillDelaySec) }

// commandRunner abstracts exec.Cmd so tests can substitute a fake process.
type commandRunner interface {
	SetDir(dir string)
	SetEnv(env []string)
	StdoutPipe() (io.ReadCloser, error)
	StderrPipe() (io.ReadCloser, error)
	Start() error
	Wait() error
	Process() processHandle
}

type processHandle interface {
	Signal(sig os.Signal) error
	Kill() error
}

type realCmd struct {
	cmd *exec.Cmd
}

func (c *realCmd) SetDir(dir string) { c.cmd.Dir = dir }

func (c *realCmd) SetEnv(env []string) {
	if env != nil {
		c.cmd.Env = env
	}
}

func (c *realCmd) StdoutPipe() (io.ReadCloser, error) { return c.cmd.StdoutPipe() }

func (c *realCmd) StderrPipe() (io.ReadCloser, error) { return c.cmd.StderrPipe() }

func (c *realCmd) Start() error { return c.cmd.Start() }

func (c *realCmd) Wait() error { return c.cmd.Wait() }

func (c *realCmd) Process() processHandle {
	if c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process
}

var commandContext = exec.CommandContext

var newCommandRunner = func(ctx context.Context, name string, args ...string) commandRunner {
	return &realCmd{cmd: commandContext(ctx, name, args...)}
}

// RunTask executes one task as an agent subprocess and incrementally folds
// its event stream into a SubagentResult. onUpdate, if non-nil, receives a
// value copy of the result every time new information arrives.
//
// RunTask never returns an error: spawn failures and process errors are
// captured in the result so one task's failure cannot abort its siblings.
func RunTask(ctx context.Context, cli AgentCLI, workdir string, task Task, onUpdate func(SubagentResult)) SubagentResult {
	res := newRunningResult(task)
	notify := func() {
		if onUpdate != nil {
			onUpdate(res)
		}
	}

	prompt := ComposePrompt(task.Context, task.Task)
	args := cli.BuildArgs(task.Model, task.Tools, prompt)

	// The subprocess gets a background context on purpose: cancellation is
	// handled by the graceful-then-forceful watcher below, not by exec's
	// immediate kill.
	cmd := newCommandRunner(context.Background(), cli.Command, args...)
	cmd.SetDir(workdir)
	cmd.SetEnv(cli.Environ())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return failSpawn(&res, err, notify)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return failSpawn(&res, err, notify)
	}
	if err := cmd.Start(); err != nil {
		return failSpawn(&res, err, notify)
	}

	logInfo(fmt.Sprintf("Spawned subagent model=%s prompt_len=%d tools=%d", task.Model, len(prompt), len(task.Tools)))

	// stderr is buffered in full (bounded tail) as fallback diagnostics and
	// mirrored line-by-line into the log.
	tail := &tailBuffer{limit: stderrTailLimit}
	stderrLog := newLogWriter("subagent stderr: ", 0)

	var pipes sync.WaitGroup
	pipes.Add(1)
	go func() {
		defer pipes.Done()
		_, _ = io.Copy(io.MultiWriter(tail, stderrLog), stderr)
		stderrLog.Flush()
	}()

	events := 0
	splitter := stream.NewLineSplitter(func(line []byte) {
		events++
		ev, ok := stream.DecodeEvent(line)
		if !ok {
			logWarn("Failed to parse event: " + stream.TruncateBytes(line, 100))
			return
		}

		switch e := ev.(type) {
		case stream.MessageEndEvent:
			m := e.Message
			if m.Role == stream.RoleAssistant {
				res.Usage.Turns++
				if text := m.LastText(); text != "" {
					res.Output = text
				}
				if m.Usage != nil {
					res.Usage.Add(*m.Usage)
				}
				if m.StopReason != "" {
					res.StopReason = m.StopReason
				}
				if m.ErrorMessage != "" {
					res.ErrorMessage = m.ErrorMessage
				}
			}
			logDebug(fmt.Sprintf("Parsed event #%d type=%s role=%s turns=%d", events, stream.TypeMessageEnd, m.Role, res.Usage.Turns))
			notify()
		case stream.ToolResultEvent:
			logDebug(fmt.Sprintf("Parsed event #%d type=%s parts=%d", events, stream.TypeToolResultEnd, len(e.Message.Content)))
			notify()
		case stream.UnknownEvent:
			logDebug(fmt.Sprintf("Ignoring event #%d type=%s", events, e.Type))
		}
	}, logWarn)

	// Cancellation watcher: termination signal immediately, forced kill
	// after the grace period. The timer is per-process so a slow-to-die
	// sibling never delays this one.
	procDone := make(chan struct{})
	var watcher sync.WaitGroup
	watcher.Add(1)
	go func() {
		defer watcher.Done()
		select {
		case <-procDone:
			return
		case <-ctx.Done():
		}
		proc := cmd.Process()
		if proc == nil {
			return
		}
		if err := sendTermSignal(proc); err != nil {
			logWarn("Failed to signal subagent: " + err.Error())
		}
		select {
		case <-procDone:
		case <-time.After(time.Duration(forceKillDelay.Load()) * time.Second):
			logWarn("Subagent did not exit after termination signal, killing")
			_ = proc.Kill()
		}
	}()

	_, _ = io.Copy(splitter, stdout)
	splitter.Flush()
	pipes.Wait()

	waitErr := cmd.Wait()
	close(procDone)
	watcher.Wait()

	res.ExitCode = exitCodeFromWait(waitErr)
	if res.ExitCode < 0 {
		res.ExitCode = 1 // terminated by signal
	}

	if ctx.Err() != nil {
		// Cancellation overrides whatever the process reported.
		res.StopReason = StopReasonAborted
		res.ErrorMessage = AbortedMessage
	} else if res.ExitCode != 0 && res.ErrorMessage == "" {
		if msg := strings.TrimSpace(utils.SanitizeOutput(tail.String())); msg != "" {
			res.ErrorMessage = msg
		} else {
			res.ErrorMessage = fmt.Sprintf("exit code %d", res.ExitCode)
		}
	}

	logInfo(fmt.Sprintf("Subagent finished exit=%d turns=%d events=%d output_len=%d", res.ExitCode, res.Usage.Turns, events, len(res.Output)))
	notify()
	return res
}

func failSpawn(res *SubagentResult, err error, notify func()) SubagentResult {
	res.ExitCode = 1
	res.StopReason = StopReasonError
	res.ErrorMessage = err.Error()
	logError("Failed to spawn subagent: " + err.Error())
	notify()
	return *res
}

func exitCodeFromWait(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}
