package executor

import (
	"fmt"
	"strings"
	"sync"

	"subagent-wrapper/internal/utils"
)

const reportPreviewLimit = 100

// Snapshot is an immutable view of the fleet at one instant. Results are
// ordered by submission index regardless of completion order.
type Snapshot struct {
	Results []SubagentResult
	Done    int
	Running int
	Total   int
	Usage   UsageStats
}

// Progress renders a short one-line status suitable for interim display.
func (s Snapshot) Progress() string {
	return fmt.Sprintf("%d/%d done, %d running", s.Done, s.Total, s.Running)
}

// Reporter collects per-task results and publishes consistent snapshots.
// The results slice is copy-on-write: Update replaces the whole slice, so a
// snapshot handed out earlier is never mutated behind a reader's back.
type Reporter struct {
	mu       sync.Mutex
	results  []SubagentResult
	gen      uint64
	observer func(Snapshot)

	pubMu   sync.Mutex
	pubGen  uint64
	updates chan Snapshot
}

// NewReporter creates a Reporter. observer, if non-nil, is invoked after
// every state change with the fresh snapshot.
func NewReporter(observer func(Snapshot)) *Reporter {
	return &Reporter{
		observer: observer,
		updates:  make(chan Snapshot, 1),
	}
}

// Updates exposes a latest-wins channel of snapshots. A slow reader only
// ever misses intermediate states, never the most recent one.
func (r *Reporter) Updates() <-chan Snapshot { return r.updates }

// Reset seeds one running-state slot per task, in submission order.
func (r *Reporter) Reset(tasks []Task) {
	r.mu.Lock()
	results := make([]SubagentResult, len(tasks))
	for i, t := range tasks {
		results[i] = newRunningResult(t)
	}
	r.results = results
	r.gen++
	snap, gen := r.snapshotLocked(), r.gen
	r.mu.Unlock()
	r.publish(snap, gen)
}

// Update replaces the result slot for task i.
func (r *Reporter) Update(i int, res SubagentResult) {
	r.mu.Lock()
	if i < 0 || i >= len(r.results) {
		r.mu.Unlock()
		return
	}
	next := make([]SubagentResult, len(r.results))
	copy(next, r.results)
	next[i] = res
	r.results = next
	r.gen++
	snap, gen := r.snapshotLocked(), r.gen
	r.mu.Unlock()
	r.publish(snap, gen)
}

// Snapshot returns the current consistent view of the fleet.
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Results returns the current result slice. Callers may hold it indefinitely.
func (r *Reporter) Results() []SubagentResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results
}

// Failed returns the tasks that reached a terminal state with a non-zero
// exit code.
func (r *Reporter) Failed() []SubagentResult {
	var failed []SubagentResult
	for _, res := range r.Snapshot().Results {
		if res.Done() && !res.Succeeded() {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r *Reporter) snapshotLocked() Snapshot {
	snap := Snapshot{
		Results: r.results,
		Total:   len(r.results),
	}
	for _, res := range r.results {
		if res.Done() {
			snap.Done++
		} else {
			snap.Running++
		}
		snap.Usage = snap.Usage.Plus(res.Usage)
	}
	return snap
}

// publish delivers a snapshot to the observer and the updates channel.
// Publishers are serialized under pubMu, and a snapshot older than one
// already published is dropped so concurrent completions cannot leave a
// stale state as the last one seen.
func (r *Reporter) publish(snap Snapshot, gen uint64) {
	r.pubMu.Lock()
	defer r.pubMu.Unlock()
	if gen <= r.pubGen {
		return
	}
	r.pubGen = gen

	if r.observer != nil {
		r.observer(snap)
	}
	for {
		select {
		case r.updates <- snap:
			return
		default:
		}
		select {
		case <-r.updates:
		default:
		}
	}
}

// FinalReport renders the end-of-fleet summary: a success tally, one line
// per task with a truncated output or error preview, and aggregate usage.
func (r *Reporter) FinalReport() string {
	snap := r.Snapshot()

	succeeded := 0
	for _, res := range snap.Results {
		if res.Succeeded() {
			succeeded++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d subagents succeeded\n", succeeded, snap.Total)
	for _, res := range snap.Results {
		glyph := "✓"
		detail := strings.TrimSpace(res.Output)
		if !res.Succeeded() {
			glyph = "✗"
			if msg := summarizeError(res.ErrorMessage, reportPreviewLimit); msg != "" {
				detail = msg
			}
		}
		if detail == "" {
			detail = "(no output)"
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", glyph, res.Model, utils.SafeTruncate(detail, reportPreviewLimit))
	}
	if snap.Usage.Input > 0 || snap.Usage.Output > 0 || !snap.Usage.Cost.IsZero() {
		fmt.Fprintf(&b, "tokens: %d in / %d out, cost: %s\n", snap.Usage.Input, snap.Usage.Output, snap.Usage.Cost.StringFixed(4))
	}
	return b.String()
}
