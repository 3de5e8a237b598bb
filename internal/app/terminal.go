package wrapper

import (
	"io"
	"os"
	"strings"
)

var stdinReader io.Reader = os.Stdin

func defaultIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return true
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

var isTerminal = defaultIsTerminal

// readPipedTask returns piped stdin content, or "" when stdin is a terminal.
func readPipedTask() (string, error) {
	if isTerminal() {
		return "", nil
	}
	data, err := io.ReadAll(stdinReader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
