package metrics

import "time"

// ResultLabel enumerates task result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for the task graph and the dev server.
type Recorder interface {
	ObserveTaskDuration(task string, d time.Duration)
	IncTaskResult(task string, result ResultLabel)
	ObserveGraphDuration(graph string, d time.Duration)
	IncGraphOutcome(graph string, result ResultLabel)
	IncReloadBroadcast()
	SetReloadClients(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTaskDuration(string, time.Duration)  {}
func (NoopRecorder) IncTaskResult(string, ResultLabel)          {}
func (NoopRecorder) ObserveGraphDuration(string, time.Duration) {}
func (NoopRecorder) IncGraphOutcome(string, ResultLabel)        {}
func (NoopRecorder) IncReloadBroadcast()                        {}
func (NoopRecorder) SetReloadClients(int)                       {}
