package executor

import (
	"github.com/shopspring/decimal"

	"subagent-wrapper/internal/stream"
)

// Task describes one unit of delegated work. It is immutable once created.
type Task struct {
	Model   string   `json:"model"`
	Task    string   `json:"task"`
	Context string   `json:"context,omitempty"`
	Tools   []string `json:"tools,omitempty"`
}

// UsageStats accumulates token and cost totals for one run. All fields are
// non-negative and monotonically non-decreasing while the run is alive;
// fleet totals are the field-wise sum of per-task stats and do not depend on
// summation order.
type UsageStats struct {
	Input      int64           `json:"input"`
	Output     int64           `json:"output"`
	CacheRead  int64           `json:"cache_read"`
	CacheWrite int64           `json:"cache_write"`
	Cost       decimal.Decimal `json:"cost"`
	Turns      int             `json:"turns"`
}

// Add folds one message's reported usage delta into the accumulator.
func (u *UsageStats) Add(delta stream.Usage) {
	u.Input += delta.Input
	u.Output += delta.Output
	u.CacheRead += delta.CacheRead
	u.CacheWrite += delta.CacheWrite
	u.Cost = u.Cost.Add(delta.Cost.Total)
}

// Plus returns the field-wise sum of two accumulators.
func (u UsageStats) Plus(o UsageStats) UsageStats {
	return UsageStats{
		Input:      u.Input + o.Input,
		Output:     u.Output + o.Output,
		CacheRead:  u.CacheRead + o.CacheRead,
		CacheWrite: u.CacheWrite + o.CacheWrite,
		Cost:       u.Cost.Add(o.Cost),
		Turns:      u.Turns + o.Turns,
	}
}

// ExitCodeRunning is the sentinel exit code of a task that has not finished.
const ExitCodeRunning = -1

// Terminal stop reason classifications.
const (
	StopReasonAborted = "aborted"
	StopReasonError   = "error"
)

// AbortedMessage is the user-facing error text for cancelled runs.
const AbortedMessage = "Aborted by user"

// SubagentResult is the live and final state of one task's execution. Exactly
// one runner mutates its private copy; everyone else only ever sees
// whole-value snapshots published through the Reporter.
type SubagentResult struct {
	Model        string     `json:"model"`
	Task         string     `json:"task"`
	Context      string     `json:"context,omitempty"`
	ExitCode     int        `json:"exit_code"`
	Output       string     `json:"output"`
	Usage        UsageStats `json:"usage"`
	StopReason   string     `json:"stop_reason,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// newRunningResult creates the initial running-state result for a task.
func newRunningResult(task Task) SubagentResult {
	return SubagentResult{
		Model:    task.Model,
		Task:     task.Task,
		Context:  task.Context,
		ExitCode: ExitCodeRunning,
	}
}

// Done reports whether the task has reached a terminal state.
func (r SubagentResult) Done() bool { return r.ExitCode != ExitCodeRunning }

// Succeeded reports whether the task finished with exit code 0.
func (r SubagentResult) Succeeded() bool { return r.ExitCode == 0 }
