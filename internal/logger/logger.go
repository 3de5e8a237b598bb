package logger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	logWriterBufferSize   = 32 * 1024
	maxCachedErrorEntries = 100
	maxLogSuffixLen       = 48
	staleLogMaxAge        = 7 * 24 * time.Hour
)

// Test hooks. Production values are restored by the Set*Fn helpers in
// testhooks.go.
var (
	processRunningCheck = isProcessRunning
	processStartTimeFn  = getProcessStartTime
	removeLogFileFn     = os.Remove
	globLogFiles        = filepath.Glob
	fileStatFn          = os.Lstat
	evalSymlinksFn      = filepath.EvalSymlinks
)

// Logger writes structured log lines to a per-process file under the system
// temp directory. Warn and error messages are additionally cached in memory
// so the CLI can surface the most recent ones when a run fails.
type Logger struct {
	out  *syncWriter
	file *os.File
	zl   zerolog.Logger
	path string

	mu     sync.Mutex
	recent []string
}

// syncWriter serializes writes and flushes on a shared buffered writer.
type syncWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *syncWriter) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// NewLogger creates a logger backed by subagent-wrapper-<pid>.log.
func NewLogger() (*Logger, error) {
	return newLogger("")
}

// NewLoggerWithSuffix creates a logger whose file name carries an extra
// sanitized suffix, used for per-task log files in parallel mode.
func NewLoggerWithSuffix(suffix string) (*Logger, error) {
	return newLogger(sanitizeLogSuffix(suffix))
}

func newLogger(suffix string) (*Logger, error) {
	name := fmt.Sprintf("%s-%d", WrapperName, os.Getpid())
	if suffix != "" {
		name += "-" + suffix
	}
	path := filepath.Join(os.TempDir(), name+".log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G302 -- log readable by owner only
	if err != nil {
		return nil, err
	}

	l := &Logger{
		out:  &syncWriter{w: bufio.NewWriterSize(file, logWriterBufferSize)},
		file: file,
		path: path,
	}
	l.zl = zerolog.New(l.out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return l, nil
}

func (l *Logger) Debug(msg string) { l.log(zerolog.DebugLevel, msg) }

func (l *Logger) Info(msg string) { l.log(zerolog.InfoLevel, msg) }

func (l *Logger) Warn(msg string) { l.log(zerolog.WarnLevel, msg) }

func (l *Logger) Error(msg string) { l.log(zerolog.ErrorLevel, msg) }

func (l *Logger) log(level zerolog.Level, msg string) {
	if l == nil || l.out == nil {
		return
	}
	if level >= zerolog.WarnLevel {
		l.cacheRecent(msg)
	}
	l.zl.WithLevel(level).Msg(msg)
}

func (l *Logger) cacheRecent(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = append(l.recent, msg)
	if overflow := len(l.recent) - maxCachedErrorEntries; overflow > 0 {
		l.recent = append(l.recent[:0], l.recent[overflow:]...)
	}
}

// Flush forces buffered log lines to disk.
func (l *Logger) Flush() {
	if l == nil || l.out == nil {
		return
	}
	_ = l.out.Flush()
}

// Close flushes and closes the log file. The file is kept on disk for
// debugging; RemoveLogFile deletes it explicitly.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.Flush()
	return l.file.Close()
}

// Path returns the log file path, or "" for a nil logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RemoveLogFile deletes the log file. Missing files are not an error.
func (l *Logger) RemoveLogFile() error {
	if l == nil || l.path == "" {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ExtractRecentErrors returns up to maxEntries of the most recent warn/error
// messages, oldest first.
func (l *Logger) ExtractRecentErrors(maxEntries int) []string {
	if l == nil || maxEntries <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.recent) == 0 {
		return nil
	}
	start := len(l.recent) - maxEntries
	if start < 0 {
		start = 0
	}
	out := make([]string, len(l.recent)-start)
	copy(out, l.recent[start:])
	return out
}

// sanitizeLogSuffix maps a raw suffix to a filename-safe token. Every unsafe
// byte maps to '_' so distinct inputs stay distinct.
func sanitizeLogSuffix(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
		if sb.Len() >= maxLogSuffixLen {
			break
		}
	}
	if sb.Len() == 0 {
		return "task"
	}
	return sb.String()
}

// CleanupStats summarizes one stale-log cleanup pass.
type CleanupStats struct {
	Scanned int
	Deleted int
	Kept    int
	Errors  int

	DeletedFiles []string
	KeptFiles    []string
}

// cleanupOldLogs deletes log files left behind by wrapper processes that are
// no longer running. Files whose embedded PID is alive (and not reused) are
// kept, as are files whose names don't parse.
func cleanupOldLogs() (CleanupStats, error) {
	var stats CleanupStats

	tempDir := os.TempDir()
	pattern := filepath.Join(tempDir, WrapperName+"-*.log")
	paths, err := globLogFiles(pattern)
	if err != nil {
		return stats, err
	}

	currentPID := os.Getpid()
	var errs []error

	for _, path := range paths {
		stats.Scanned++

		pid, ok := parsePIDFromLog(path)
		if !ok {
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		if pid == currentPID || (processRunningCheck(pid) && !isPIDReused(path, pid)) {
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		if unsafe, reason := isUnsafeFile(path, tempDir); unsafe {
			stats.Errors++
			errs = append(errs, fmt.Errorf("%s: %s", path, reason))
			continue
		}

		if err := removeLogFileFn(path); err != nil {
			stats.Errors++
			errs = append(errs, err)
			continue
		}
		stats.Deleted++
		stats.DeletedFiles = append(stats.DeletedFiles, path)
	}

	if len(errs) > 0 {
		return stats, errors.Join(errs...)
	}
	return stats, nil
}

// parsePIDFromLog extracts the PID from a log file name of the form
// <wrapper>-<pid>[-suffix].log.
func parsePIDFromLog(path string) (int, bool) {
	base := filepath.Base(path)
	prefix := WrapperName + "-"
	if !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, ".log") {
		return 0, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(base, prefix), ".log")
	pidStr := rest
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		pidStr = rest[:i]
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// isPIDReused reports whether a live PID likely belongs to a different
// process than the one that wrote the log: the process started after the log
// file was last modified, or the file is ancient and the start time unknown.
func isPIDReused(path string, pid int) bool {
	info, err := fileStatFn(path)
	if err != nil {
		return false
	}
	start := processStartTimeFn(pid)
	if start.IsZero() {
		return time.Since(info.ModTime()) > staleLogMaxAge
	}
	return start.After(info.ModTime())
}

// isUnsafeFile rejects deletion targets that are symlinks or resolve outside
// the temp directory.
func isUnsafeFile(path, tempDir string) (bool, string) {
	info, err := fileStatFn(path)
	if err != nil {
		return true, "cannot stat file"
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return true, "refusing to delete symlink"
	}

	resolved, err := evalSymlinksFn(path)
	if err != nil {
		return true, "cannot resolve path"
	}
	absTemp, err := filepath.Abs(tempDir)
	if err != nil {
		return true, "cannot resolve tempDir"
	}
	absResolved, err := filepath.Abs(resolved)
	if err != nil {
		return true, "file is outside tempDir"
	}
	rel, err := filepath.Rel(absTemp, absResolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return true, "file is outside tempDir"
	}
	return false, ""
}

// CleanupOldLogs is the exported entry point for the cleanup subcommand.
func CleanupOldLogs() (CleanupStats, error) { return cleanupOldLogs() }

// SanitizeLogSuffix exposes suffix sanitization for callers building log names.
func SanitizeLogSuffix(raw string) string { return sanitizeLogSuffix(raw) }
