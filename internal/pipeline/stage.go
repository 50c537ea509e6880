package pipeline

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/mode"
)

// Task is one schedulable unit of work. Run receives the pipeline's current mode.
type Task interface {
	Name() string
	Run(ctx context.Context, m mode.Mode) error
}

// StageName is a stable identifier for a pipeline stage, used in logs and metrics.
type StageName string

const (
	StageCompileDev    StageName = "compile_dev"
	StageCacheBust     StageName = "cache_bust"
	StageWatch         StageName = "watch"
	StageSetBuildState StageName = "set_build_state"
	StageClean         StageName = "clean"
	StageCompileBuild  StageName = "compile_build"
	StageFinalize      StageName = "finalize"
)

// Stage is either a parallel group of tasks or a mode transition.
type Stage struct {
	Name       StageName
	Tasks      []Task
	transition func(mode.Mode) mode.Mode
}

// Group returns a stage running tasks concurrently. The stage ends when all of them have.
func Group(name StageName, tasks ...Task) Stage {
	return Stage{Name: name, Tasks: tasks}
}

// SetBuildState returns the transition stage that switches the pipeline to Build.
func SetBuildState() Stage {
	return Stage{
		Name:       StageSetBuildState,
		transition: func(mode.Mode) mode.Mode { return mode.Build },
	}
}

// IsTransition reports whether s changes the mode instead of running tasks.
func (s Stage) IsTransition() bool { return s.transition != nil }

// Pipeline is an ordered list of stages. Every pipeline starts in Dev.
type Pipeline struct {
	Name   string
	Stages []Stage
}

// Validate checks the stage graph: unique stage names, no empty groups, no
// nil tasks and at most one mode transition.
func (p Pipeline) Validate() error {
	seen := make(map[StageName]bool, len(p.Stages))
	transitions := 0
	for _, s := range p.Stages {
		if seen[s.Name] {
			return invalid(p, fmt.Sprintf("duplicate stage %q", s.Name))
		}
		seen[s.Name] = true

		if s.IsTransition() {
			if len(s.Tasks) > 0 {
				return invalid(p, fmt.Sprintf("transition stage %q must not have tasks", s.Name))
			}
			transitions++
			continue
		}
		if len(s.Tasks) == 0 {
			return invalid(p, fmt.Sprintf("stage %q has no tasks", s.Name))
		}
		for _, t := range s.Tasks {
			if t == nil {
				return invalid(p, fmt.Sprintf("stage %q has a nil task", s.Name))
			}
		}
	}
	if transitions > 1 {
		return invalid(p, "mode may switch at most once")
	}
	return nil
}

func invalid(p Pipeline, msg string) error {
	return ferrors.PipelineError(msg).WithContext("pipeline", p.Name).Build()
}
