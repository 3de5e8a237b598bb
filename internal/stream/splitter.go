package stream

import (
	"bytes"
	"fmt"
)

const (
	// MaxLineBytes caps a single stream line; anything longer is dropped
	// with a warning instead of buffering without bound.
	MaxLineBytes = 10 * 1024 * 1024

	linePreviewBytes = 100
)

// LineSplitter reassembles complete lines from arbitrary byte chunks. Partial
// lines are buffered across writes and only complete newline-terminated lines
// reach the callback, so the caller's view of the stream does not depend on
// chunk boundaries. Flush delivers any non-empty residue at end of stream.
//
// LineSplitter implements io.Writer so subprocess stdout can be copied into
// it directly.
type LineSplitter struct {
	emit     func(line []byte)
	warn     func(msg string)
	buf      []byte
	dropping bool
}

// NewLineSplitter creates a splitter delivering complete lines to emit.
// warn, if non-nil, receives diagnostics for overlong lines.
func NewLineSplitter(emit func(line []byte), warn func(msg string)) *LineSplitter {
	if warn == nil {
		warn = func(string) {}
	}
	return &LineSplitter{emit: emit, warn: warn}
}

func (s *LineSplitter) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx < 0 {
			s.append(p)
			break
		}
		s.append(p[:idx])
		s.finishLine()
		p = p[idx+1:]
	}
	return total, nil
}

// Flush processes any residual partial line as a final line.
func (s *LineSplitter) Flush() {
	if s.dropping {
		s.dropping = false
		s.buf = s.buf[:0]
		return
	}
	if len(s.buf) > 0 {
		s.deliver(s.buf)
		s.buf = s.buf[:0]
	}
}

func (s *LineSplitter) append(p []byte) {
	if s.dropping {
		return
	}
	if len(s.buf)+len(p) > MaxLineBytes {
		s.warn(fmt.Sprintf("Skipped overlong stream line (> %d bytes): %s", MaxLineBytes, TruncateBytes(s.buf, linePreviewBytes)))
		s.dropping = true
		s.buf = s.buf[:0]
		return
	}
	s.buf = append(s.buf, p...)
}

func (s *LineSplitter) finishLine() {
	if s.dropping {
		s.dropping = false
		return
	}
	s.deliver(s.buf)
	s.buf = s.buf[:0]
}

func (s *LineSplitter) deliver(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	s.emit(line)
}
