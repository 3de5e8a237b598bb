package executor

import "strings"

// ComposePrompt builds the single prompt string handed to the subagent. A
// non-empty context block is wrapped in delimiters and placed before the task
// instruction.
func ComposePrompt(context, task string) string {
	if strings.TrimSpace(context) == "" {
		return task
	}
	return "<context>\n" + context + "\n</context>\n\n" + task
}
