package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for pipelines, stages, tasks and the
// dev server. Implementations must be safe for concurrent use: tasks in a
// parallel group report from their own goroutines.
type Recorder interface {
	ObservePipelineDuration(pipeline string, d time.Duration)
	IncPipelineOutcome(pipeline string, result ResultLabel)
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveTaskDuration(task, mode string, d time.Duration)
	IncTaskResult(task string, result ResultLabel)
	IncImageCacheLookup(hit bool)
	IncLiveReloadBroadcast(kind string)
	SetLiveReloadClients(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePipelineDuration(string, time.Duration)     {}
func (NoopRecorder) IncPipelineOutcome(string, ResultLabel)            {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration)        {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                {}
func (NoopRecorder) ObserveTaskDuration(string, string, time.Duration) {}
func (NoopRecorder) IncTaskResult(string, ResultLabel)                 {}
func (NoopRecorder) IncImageCacheLookup(bool)                          {}
func (NoopRecorder) IncLiveReloadBroadcast(string)                     {}
func (NoopRecorder) SetLiveReloadClients(int)                          {}
