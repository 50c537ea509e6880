package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/metrics"
	"git.home.luguber.info/inful/assetflow/internal/mode"
)

// Observer receives stage lifecycle callbacks.
type Observer interface {
	OnStageStart(stage StageName, m mode.Mode)
	OnStageComplete(stage StageName, d time.Duration, result metrics.ResultLabel)
}

type noopObserver struct{}

func (noopObserver) OnStageStart(StageName, mode.Mode)                             {}
func (noopObserver) OnStageComplete(StageName, time.Duration, metrics.ResultLabel) {}

// Runner executes pipelines stage by stage.
type Runner struct {
	logger   *slog.Logger
	recorder metrics.Recorder
	observer Observer
}

// NewRunner creates a runner. Nil arguments fall back to slog.Default and NoopRecorder.
func NewRunner(logger *slog.Logger, recorder metrics.Recorder) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Runner{logger: logger, recorder: recorder, observer: noopObserver{}}
}

// WithObserver sets the stage observer.
func (r *Runner) WithObserver(o Observer) *Runner {
	if o != nil {
		r.observer = o
	}
	return r
}

// Run executes p starting in Dev mode. Stages run in order; the first failing
// stage stops the pipeline and its error is returned. Cancellation is checked
// between stages only, so a running task is never interrupted by the runner.
func (r *Runner) Run(ctx context.Context, p Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}

	logger := r.logger.With(logfields.RunID(uuid.NewString()), logfields.Pipeline(p.Name))
	logger.InfoContext(ctx, "Pipeline started")

	start := time.Now()
	m := mode.Dev
	for _, st := range p.Stages {
		if err := ctx.Err(); err != nil {
			r.observer.OnStageComplete(st.Name, 0, metrics.ResultCanceled)
			r.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			r.finish(ctx, logger, p, start, metrics.ResultCanceled)
			return ferrors.WrapError(err, ferrors.CategoryPipeline, "pipeline canceled").
				WithContext("stage", string(st.Name)).Build()
		}

		r.observer.OnStageStart(st.Name, m)
		t0 := time.Now()

		var err error
		if st.IsTransition() {
			m = st.transition(m)
			logger.InfoContext(ctx, "Mode switched", logfields.Stage(string(st.Name)), logfields.Mode(m.String()))
		} else {
			err = r.runGroup(ctx, logger, st, m)
		}

		dur := time.Since(t0)
		result := resultFor(err)
		r.recorder.ObserveStageDuration(string(st.Name), dur)
		r.recorder.IncStageResult(string(st.Name), result)
		r.observer.OnStageComplete(st.Name, dur, result)

		if err != nil {
			logger.ErrorContext(ctx, "Stage failed",
				logfields.Stage(string(st.Name)), logfields.Duration(dur), logfields.Error(err))
			r.finish(ctx, logger, p, start, result)
			return fmt.Errorf("stage %s: %w", st.Name, err)
		}
		logger.InfoContext(ctx, "Stage completed", logfields.Stage(string(st.Name)), logfields.Duration(dur))
	}

	r.finish(ctx, logger, p, start, metrics.ResultSuccess)
	return nil
}

// runGroup runs every task of st concurrently and waits for all of them. The
// first error cancels the context the siblings see.
func (r *Runner) runGroup(ctx context.Context, logger *slog.Logger, st Stage, m mode.Mode) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range st.Tasks {
		g.Go(func() error {
			t0 := time.Now()
			err := t.Run(gctx, m)
			dur := time.Since(t0)

			r.recorder.ObserveTaskDuration(t.Name(), m.String(), dur)
			r.recorder.IncTaskResult(t.Name(), resultFor(err))

			attrs := []any{
				logfields.Stage(string(st.Name)), logfields.Task(t.Name()),
				logfields.Mode(m.String()), logfields.Duration(dur),
			}
			if err != nil {
				logger.ErrorContext(ctx, "Task failed", append(attrs, logfields.Error(err))...)
				return fmt.Errorf("task %s: %w", t.Name(), err)
			}
			logger.DebugContext(ctx, "Task completed", attrs...)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, p Pipeline, start time.Time, result metrics.ResultLabel) {
	dur := time.Since(start)
	r.recorder.ObservePipelineDuration(p.Name, dur)
	r.recorder.IncPipelineOutcome(p.Name, result)
	logger.InfoContext(ctx, "Pipeline finished", slog.String("outcome", string(result)), logfields.Duration(dur))
}

func resultFor(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	case ferrors.GetSeverity(err) == ferrors.SeverityWarning:
		return metrics.ResultWarning
	default:
		return metrics.ResultFailed
	}
}
