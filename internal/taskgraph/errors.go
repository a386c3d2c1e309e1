package taskgraph

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind enumerates task failure categories.
type ErrorKind string

const (
	ErrorFailed   ErrorKind = "failed"   // Task returned an error.
	ErrorCanceled ErrorKind = "canceled" // Context cancellation.
	ErrorPanic    ErrorKind = "panic"    // Task panicked; recovered by the runner.
)

// TaskError records which task of which stage failed.
type TaskError struct {
	Kind  ErrorKind
	Stage string
	Task  string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s task %s (stage %s): %v", e.Kind, e.Task, e.Stage, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

func newTaskError(stage, task string, err error) *TaskError {
	kind := ErrorFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = ErrorCanceled
	}
	return &TaskError{Kind: kind, Stage: stage, Task: task, Err: err}
}

// FailedTasks lists the names of the tasks whose errors are wrapped in err.
func FailedTasks(err error) []string {
	if err == nil {
		return nil
	}
	if te, ok := err.(*TaskError); ok {
		return []string{te.Task}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var names []string
		for _, inner := range joined.Unwrap() {
			names = append(names, FailedTasks(inner)...)
		}
		return names
	}
	return FailedTasks(errors.Unwrap(err))
}
