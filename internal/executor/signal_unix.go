//go:build unix

package executor

import "syscall"

// sendTermSignal asks the subprocess to shut down gracefully. The runner
// escalates to Kill after the force-kill delay.
func sendTermSignal(proc processHandle) error {
	if proc == nil {
		return nil
	}
	return proc.Signal(syscall.SIGTERM)
}
