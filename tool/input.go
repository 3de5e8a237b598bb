package tool

import (
	"errors"
	"fmt"
	"strings"

	"subagent-wrapper/internal/executor"
)

// TaskSpec is one delegated task inside a parallel request.
type TaskSpec struct {
	Model   string   `json:"model" jsonschema:"description=Model token or canonical provider/id"`
	Task    string   `json:"task" jsonschema:"description=Instruction for the subagent"`
	Context string   `json:"context,omitempty" jsonschema:"description=Optional background prepended to the task"`
	Tools   []string `json:"tools,omitempty" jsonschema:"description=Tool names the subagent may use"`
}

// Input is the tool invocation payload. Exactly one of the two forms must be
// used: the single-task fields (model + task) or the tasks array.
type Input struct {
	Model   string     `json:"model,omitempty" jsonschema:"description=Model for a single task"`
	Task    string     `json:"task,omitempty" jsonschema:"description=Instruction for a single task"`
	Context string     `json:"context,omitempty" jsonschema:"description=Optional background for a single task"`
	Tools   []string   `json:"tools,omitempty" jsonschema:"description=Tool names for a single task"`
	Tasks   []TaskSpec `json:"tasks,omitempty" jsonschema:"description=Parallel tasks, mutually exclusive with the single-task fields"`
}

var (
	errBothForms    = errors.New("provide either a single task or a tasks array, not both")
	errNeitherForm  = errors.New("provide a single task (model and task) or a tasks array")
	errMissingModel = errors.New("model is required")
	errMissingTask  = errors.New("task is required")
)

func (in Input) singleForm() bool {
	return strings.TrimSpace(in.Model) != "" || strings.TrimSpace(in.Task) != "" ||
		strings.TrimSpace(in.Context) != "" || len(in.Tools) > 0
}

// Validate enforces the single/parallel exclusivity and per-task completeness.
func (in Input) Validate() error {
	single := in.singleForm()
	parallel := len(in.Tasks) > 0

	switch {
	case single && parallel:
		return errBothForms
	case !single && !parallel:
		return errNeitherForm
	case single:
		if strings.TrimSpace(in.Model) == "" {
			return errMissingModel
		}
		if strings.TrimSpace(in.Task) == "" {
			return errMissingTask
		}
		return nil
	}

	for i, t := range in.Tasks {
		if strings.TrimSpace(t.Model) == "" {
			return fmt.Errorf("tasks[%d]: %w", i, errMissingModel)
		}
		if strings.TrimSpace(t.Task) == "" {
			return fmt.Errorf("tasks[%d]: %w", i, errMissingTask)
		}
	}
	return nil
}

// Mode classifies a validated input.
func (in Input) Mode() string {
	if len(in.Tasks) > 0 {
		return ModeParallel
	}
	return ModeSingle
}

// Fleet normalizes a validated input into the executor's task list. Both
// forms go through the same execution path; a single task is a fleet of one.
func (in Input) Fleet() []executor.Task {
	if len(in.Tasks) == 0 {
		return []executor.Task{{
			Model:   in.Model,
			Task:    in.Task,
			Context: in.Context,
			Tools:   in.Tools,
		}}
	}
	tasks := make([]executor.Task, len(in.Tasks))
	for i, t := range in.Tasks {
		tasks[i] = executor.Task{
			Model:   t.Model,
			Task:    t.Task,
			Context: t.Context,
			Tools:   t.Tools,
		}
	}
	return tasks
}
