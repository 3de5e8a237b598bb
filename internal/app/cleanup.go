package wrapper

import (
	"fmt"
	"os"
	"sync"
)

var startupCleanup sync.WaitGroup

// scheduleStartupCleanup removes stale logs from crashed or long-gone runs in
// the background so startup latency is unaffected.
func scheduleStartupCleanup() {
	startupCleanup.Add(1)
	go func() {
		defer startupCleanup.Done()
		stats, err := cleanupOldLogs()
		if err != nil {
			logWarn("Log cleanup failed: " + err.Error())
			return
		}
		if stats.Deleted > 0 || stats.Errors > 0 {
			logInfo(fmt.Sprintf("Log cleanup: scanned=%d deleted=%d kept=%d errors=%d", stats.Scanned, stats.Deleted, stats.Kept, stats.Errors))
		}
	}()
}

func runCleanupHook() { startupCleanup.Wait() }

func runCleanupMode() int {
	stats, err := cleanupOldLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: cleanup failed: %v\n", err)
		return 1
	}
	fmt.Printf("Deleted %d stale log file(s), %d scanned, %d kept\n", stats.Deleted, stats.Scanned, stats.Kept)
	return 0
}
