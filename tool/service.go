package tool

import (
	"context"
	"strings"

	"subagent-wrapper/internal/executor"
	"subagent-wrapper/internal/resolver"
)

// Service executes validated tool inputs against the subagent fleet. It is
// safe for concurrent use; each invocation gets its own Reporter.
type Service struct {
	Resolver *resolver.Resolver
	CLI      executor.AgentCLI
	WorkDir  string
	Notifier Notifier

	runFleet func(context.Context, executor.AgentCLI, string, []executor.Task, *executor.Reporter) error
}

// NewService builds a Service. notifier may be nil.
func NewService(res *resolver.Resolver, cli executor.AgentCLI, workdir string, notifier Notifier) *Service {
	return &Service{
		Resolver: res,
		CLI:      cli,
		WorkDir:  workdir,
		Notifier: notifier,
		runFleet: executor.RunFleet,
	}
}

// Run validates, resolves and executes one invocation. Validation and model
// resolution both happen before any subprocess exists: a request naming one
// bad model spawns nothing at all.
func (s *Service) Run(ctx context.Context, in Input) Result {
	if err := in.Validate(); err != nil {
		return errorResult(err.Error())
	}

	tasks := in.Fleet()
	if len(tasks) > executor.MaxFleetSize {
		return errorResult(executor.ErrTooManyTasks.Error())
	}

	for i := range tasks {
		canonical, err := s.Resolver.ResolveStrict(tasks[i].Model)
		if err != nil {
			return errorResult(err.Error())
		}
		tasks[i].Model = canonical
	}

	var observer func(executor.Snapshot)
	if s.Notifier != nil {
		observer = func(snap executor.Snapshot) {
			s.Notifier.Notify(snap.Progress())
		}
	}
	rep := executor.NewReporter(observer)

	runFleet := s.runFleet
	if runFleet == nil {
		runFleet = executor.RunFleet
	}
	if err := runFleet(ctx, s.CLI, s.WorkDir, tasks, rep); err != nil {
		return errorResult(err.Error())
	}

	mode := in.Mode()
	results := rep.Results()
	res := Result{
		Details: &Details{Mode: mode, Results: results},
	}

	if mode == ModeSingle {
		one := results[0]
		if one.Succeeded() {
			res.Content = one.Output
		} else {
			res.IsError = true
			res.Content = one.ErrorMessage
			if strings.TrimSpace(res.Content) == "" {
				res.Content = "subagent failed"
			}
		}
		return res
	}

	res.Content = rep.FinalReport()
	res.IsError = len(rep.Failed()) > 0
	return res
}
