package logger

import "sync/atomic"

// The process-wide logger. Nil until SetLogger; the level helpers are no-ops
// while it is nil, so early startup paths can log unconditionally.
var current atomic.Pointer[Logger]

func setLogger(l *Logger) {
	current.Store(l)
}

func closeLogger() error {
	l := current.Swap(nil)
	if l == nil {
		return nil
	}
	return l.Close()
}

func activeLogger() *Logger {
	return current.Load()
}

func logDebug(msg string) {
	if l := activeLogger(); l != nil {
		l.Debug(msg)
	}
}

func logInfo(msg string) {
	if l := activeLogger(); l != nil {
		l.Info(msg)
	}
}

func logWarn(msg string) {
	if l := activeLogger(); l != nil {
		l.Warn(msg)
	}
}

func logError(msg string) {
	if l := activeLogger(); l != nil {
		l.Error(msg)
	}
}

// Exported surface for the app package.

func SetLogger(l *Logger) { setLogger(l) }

func CloseLogger() error { return closeLogger() }

func ActiveLogger() *Logger { return activeLogger() }

func LogDebug(msg string) { logDebug(msg) }

func LogInfo(msg string) { logInfo(msg) }

func LogWarn(msg string) { logWarn(msg) }

func LogError(msg string) { logError(msg) }
