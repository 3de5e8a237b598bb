package logger

import (
	"os"
	"path/filepath"
	"time"
)

// Test seams for the cleanup scanner. Each setter swaps one package hook and
// returns a restore func; passing nil reinstalls the production default.

func SetProcessRunningCheck(fn func(int) bool) (restore func()) {
	prev := processRunningCheck
	if fn == nil {
		fn = isProcessRunning
	}
	processRunningCheck = fn
	return func() { processRunningCheck = prev }
}

func SetProcessStartTimeFn(fn func(int) time.Time) (restore func()) {
	prev := processStartTimeFn
	if fn == nil {
		fn = getProcessStartTime
	}
	processStartTimeFn = fn
	return func() { processStartTimeFn = prev }
}

func SetRemoveLogFileFn(fn func(string) error) (restore func()) {
	prev := removeLogFileFn
	if fn == nil {
		fn = os.Remove
	}
	removeLogFileFn = fn
	return func() { removeLogFileFn = prev }
}

func SetGlobLogFilesFn(fn func(string) ([]string, error)) (restore func()) {
	prev := globLogFiles
	if fn == nil {
		fn = filepath.Glob
	}
	globLogFiles = fn
	return func() { globLogFiles = prev }
}

func SetFileStatFn(fn func(string) (os.FileInfo, error)) (restore func()) {
	prev := fileStatFn
	if fn == nil {
		fn = os.Lstat
	}
	fileStatFn = fn
	return func() { fileStatFn = prev }
}

func SetEvalSymlinksFn(fn func(string) (string, error)) (restore func()) {
	prev := evalSymlinksFn
	if fn == nil {
		fn = filepath.EvalSymlinks
	}
	evalSymlinksFn = fn
	return func() { evalSymlinksFn = prev }
}
