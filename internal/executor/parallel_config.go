package executor

import (
	"bytes"
	"fmt"
	"strings"

	config "subagent-wrapper/internal/config"
)

// ParseFleetConfig parses the stdin block format used by parallel mode:
//
//	model: sonnet
//	tools: read_file,grep
//	---CONTENT---
//	<task text>
//	---TASK---
//	model: haiku
//	context: shared background
//	---CONTENT---
//	<task text>
//
// Each block becomes one Task. The model line is required; tools and context
// are optional.
func ParseFleetConfig(data []byte) ([]Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("fleet config is empty")
	}

	blocks := strings.Split(string(trimmed), "---TASK---")
	var tasks []Task

	blockIndex := 0
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		blockIndex++

		parts := strings.SplitN(block, "---CONTENT---", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("task block #%d missing ---CONTENT--- separator", blockIndex)
		}

		meta := strings.TrimSpace(parts[0])
		content := strings.TrimSpace(parts[1])

		var task Task
		for _, line := range strings.Split(meta, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			kv := strings.SplitN(line, ":", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])

			switch key {
			case "model":
				task.Model = value
			case "context":
				task.Context = value
			case "tools":
				task.Tools = config.SplitToolList(value)
			}
		}

		if task.Model == "" {
			return nil, fmt.Errorf("task block #%d missing model field", blockIndex)
		}
		if content == "" {
			return nil, fmt.Errorf("task block #%d missing content", blockIndex)
		}

		task.Task = content
		tasks = append(tasks, task)
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks found")
	}
	return tasks, nil
}
