package executor

import (
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"subagent-wrapper/internal/stream"
)

func TestReporterSnapshotCounts(t *testing.T) {
	rep := NewReporter(nil)
	rep.Reset(makeTasks(3))

	snap := rep.Snapshot()
	if snap.Total != 3 || snap.Done != 0 || snap.Running != 3 {
		t.Fatalf("initial snapshot = %+v, want 3 running", snap)
	}

	rep.Update(1, SubagentResult{ExitCode: 0, Output: "done"})
	snap = rep.Snapshot()
	if snap.Done != 1 || snap.Running != 2 {
		t.Fatalf("snapshot after one completion = done %d running %d", snap.Done, snap.Running)
	}
	if got := snap.Progress(); got != "1/3 done, 2 running" {
		t.Fatalf("Progress() = %q", got)
	}
}

func TestReporterSnapshotsAreImmutable(t *testing.T) {
	rep := NewReporter(nil)
	rep.Reset(makeTasks(2))

	before := rep.Snapshot()
	rep.Update(0, SubagentResult{ExitCode: 0, Output: "finished"})

	if before.Results[0].Done() {
		t.Fatalf("earlier snapshot mutated by later update: %+v", before.Results[0])
	}
	if !rep.Snapshot().Results[0].Done() {
		t.Fatalf("new snapshot missing the update")
	}
}

func TestReporterObserverSeesEveryChange(t *testing.T) {
	var seen []int
	rep := NewReporter(func(snap Snapshot) { seen = append(seen, snap.Done) })
	rep.Reset(makeTasks(2))
	rep.Update(0, SubagentResult{ExitCode: 0})
	rep.Update(1, SubagentResult{ExitCode: 0})

	if len(seen) != 3 {
		t.Fatalf("observer calls = %d, want 3", len(seen))
	}
	if seen[len(seen)-1] != 2 {
		t.Fatalf("final observed Done = %d, want 2", seen[len(seen)-1])
	}
}

func TestReporterUpdatesChannelLatestWins(t *testing.T) {
	rep := NewReporter(nil)
	rep.Reset(makeTasks(2))
	rep.Update(0, SubagentResult{ExitCode: 0})
	rep.Update(1, SubagentResult{ExitCode: 0})

	snap := <-rep.Updates()
	if snap.Done != 2 {
		t.Fatalf("latest snapshot Done = %d, want 2", snap.Done)
	}
	select {
	case extra := <-rep.Updates():
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}
}

func TestReporterConcurrentUpdatesLatestWins(t *testing.T) {
	const n = 8
	rep := NewReporter(nil)
	rep.Reset(makeTasks(n))

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rep.Update(i, SubagentResult{ExitCode: 0})
		}(i)
	}
	wg.Wait()

	snap := <-rep.Updates()
	if snap.Done != n {
		t.Fatalf("latest snapshot Done = %d, want %d", snap.Done, n)
	}
}

func TestReporterIgnoresOutOfRangeUpdate(t *testing.T) {
	rep := NewReporter(nil)
	rep.Reset(makeTasks(1))
	rep.Update(5, SubagentResult{ExitCode: 0})
	rep.Update(-1, SubagentResult{ExitCode: 0})
	if snap := rep.Snapshot(); snap.Done != 0 {
		t.Fatalf("out-of-range update applied: %+v", snap)
	}
}

func TestFinalReport(t *testing.T) {
	rep := NewReporter(nil)
	rep.Reset([]Task{
		{Model: "anthropic/sonnet", Task: "a"},
		{Model: "anthropic/haiku", Task: "b"},
		{Model: "openai/gpt", Task: "c"},
	})
	rep.Update(0, SubagentResult{Model: "anthropic/sonnet", ExitCode: 0, Output: strings.Repeat("long output ", 30)})
	rep.Update(1, SubagentResult{Model: "anthropic/haiku", ExitCode: 1, ErrorMessage: "error: model overloaded"})
	rep.Update(2, SubagentResult{Model: "openai/gpt", ExitCode: 0, Output: ""})

	report := rep.FinalReport()

	if !strings.Contains(report, "2/3 subagents succeeded") {
		t.Fatalf("report missing tally:\n%s", report)
	}
	if !strings.Contains(report, "✓ [anthropic/sonnet]") {
		t.Fatalf("report missing success glyph:\n%s", report)
	}
	if !strings.Contains(report, "✗ [anthropic/haiku] error: model overloaded") {
		t.Fatalf("report missing failure line:\n%s", report)
	}
	if !strings.Contains(report, "(no output)") {
		t.Fatalf("report missing empty-output placeholder:\n%s", report)
	}
	for _, line := range strings.Split(report, "\n") {
		if len(line) > reportPreviewLimit+40 {
			t.Fatalf("line not truncated (%d bytes): %q", len(line), line)
		}
	}
}

func TestUsageSumOrderIndependent(t *testing.T) {
	stats := []UsageStats{
		{Input: 10, Output: 2, Cost: decimal.RequireFromString("0.1"), Turns: 1},
		{Input: 7, Output: 5, CacheRead: 3, Cost: decimal.RequireFromString("0.003"), Turns: 2},
		{Input: 1, CacheWrite: 8, Cost: decimal.RequireFromString("1.25"), Turns: 1},
		{Output: 9, Cost: decimal.RequireFromString("0.0007"), Turns: 3},
	}

	sum := func(order []int) UsageStats {
		var total UsageStats
		for _, i := range order {
			total = total.Plus(stats[i])
		}
		return total
	}

	base := sum([]int{0, 1, 2, 3})
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		order := rng.Perm(len(stats))
		got := sum(order)
		if got.Input != base.Input || got.Output != base.Output ||
			got.CacheRead != base.CacheRead || got.CacheWrite != base.CacheWrite ||
			got.Turns != base.Turns || !got.Cost.Equal(base.Cost) {
			t.Fatalf("order %v: sum = %+v, want %+v", order, got, base)
		}
	}
}

func TestUsageStatsAdd(t *testing.T) {
	var u UsageStats
	u.Add(stream.Usage{Input: 5, Output: 1, CacheRead: 2, Cost: stream.Cost{Total: decimal.RequireFromString("0.25")}})
	u.Add(stream.Usage{Input: 5, CacheWrite: 4, Cost: stream.Cost{Total: decimal.RequireFromString("0.75")}})

	if u.Input != 10 || u.Output != 1 || u.CacheRead != 2 || u.CacheWrite != 4 {
		t.Fatalf("UsageStats = %+v", u)
	}
	if !u.Cost.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("Cost = %s, want 1", u.Cost)
	}
}

func TestSummarizeError(t *testing.T) {
	msg := "starting up\nError: connection refused\nat foo (bar.go:10)\nat baz (qux.go:20)\nretrying"
	got := summarizeError(msg, 200)
	if !strings.Contains(got, "Error: connection refused") {
		t.Fatalf("summarizeError() = %q, want the error line", got)
	}
	if strings.Contains(got, "qux.go") {
		t.Fatalf("summarizeError() = %q, want collapsed stack frames", got)
	}

	if got := summarizeError("", 100); got != "" {
		t.Fatalf("summarizeError(empty) = %q, want empty", got)
	}
}
