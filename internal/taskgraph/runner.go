package taskgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
)

// Report summarises one graph run.
type Report struct {
	BuildID        string
	Graph          string
	Duration       time.Duration
	StageDurations map[string]time.Duration
	Results        map[string]metrics.ResultLabel
}

// Outcome is the overall graph result.
func (r *Report) Outcome() metrics.ResultLabel {
	outcome := metrics.ResultSuccess
	for _, res := range r.Results {
		switch res {
		case metrics.ResultFailed:
			return metrics.ResultFailed
		case metrics.ResultCanceled:
			outcome = metrics.ResultCanceled
		}
	}
	return outcome
}

// Runner executes graphs.
type Runner struct {
	recorder metrics.Recorder
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithLogger sets the base logger handed to tasks through their context.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBuildID fixes the build id instead of generating one per run.
func WithBuildID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.newID = func() string { return id }
		}
	}
}

// NewRunner returns a Runner with a no-op recorder and the default logger.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes g stage by stage. Once a stage fails, later stages are skipped
// unless they are marked Always. The returned error joins every task error.
func (r *Runner) Run(ctx context.Context, g *Graph) (*Report, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		BuildID:        r.newID(),
		Graph:          g.Name,
		StageDurations: make(map[string]time.Duration, len(g.Stages)),
		Results:        make(map[string]metrics.ResultLabel),
	}

	ctx = observability.WithLogger(ctx, r.logger)
	ctx = observability.WithBuildID(ctx, report.BuildID)
	ctx = observability.WithGraph(ctx, g.Name)
	log := observability.Logger(ctx)
	log.Info("Graph started", slog.Int("stages", len(g.Stages)))

	start := time.Now()
	var errs []error
	for _, st := range g.Stages {
		if skip := r.skipReason(ctx, st, len(errs) > 0); skip != "" {
			for _, t := range st.Tasks {
				report.Results[t.Name] = skip
				r.recorder.IncTaskResult(t.Name, skip)
			}
			log.Debug("Stage skipped", logfields.Stage(st.Name), slog.String("reason", string(skip)))
			continue
		}

		stageCtx := observability.WithStage(ctx, st.Name)
		if st.Always {
			stageCtx = context.WithoutCancel(stageCtx)
		}

		t0 := time.Now()
		err := r.runStage(stageCtx, st, report)
		report.StageDurations[st.Name] = time.Since(t0)
		if err != nil {
			errs = append(errs, err)
		}
	}
	report.Duration = time.Since(start)

	outcome := report.Outcome()
	r.recorder.ObserveGraphDuration(g.Name, report.Duration)
	r.recorder.IncGraphOutcome(g.Name, outcome)

	err := errors.Join(errs...)
	if err != nil {
		log.Error("Graph finished with errors",
			logfields.Duration(report.Duration),
			slog.Any("failed", FailedTasks(err)),
			slog.String("outcome", string(outcome)))
		return report, err
	}
	log.Info("Graph finished", logfields.Duration(report.Duration))
	return report, nil
}

func (r *Runner) skipReason(ctx context.Context, st Stage, failed bool) metrics.ResultLabel {
	if st.Always {
		return ""
	}
	if ctx.Err() != nil {
		return metrics.ResultCanceled
	}
	if failed {
		return metrics.ResultSkipped
	}
	return ""
}

func (r *Runner) runStage(ctx context.Context, st Stage, report *Report) error {
	observability.Logger(ctx).Debug("Stage started", slog.Int("tasks", len(st.Tasks)))
	results := make([]metrics.ResultLabel, len(st.Tasks))
	var err error
	if st.Linked {
		err = r.runLinked(ctx, st, results)
	} else {
		err = r.runSettled(ctx, st, results)
	}
	for i, t := range st.Tasks {
		report.Results[t.Name] = results[i]
	}
	return err
}

// runSettled starts every task and waits for all of them, whatever their result.
func (r *Runner) runSettled(ctx context.Context, st Stage, results []metrics.ResultLabel) error {
	var (
		wg   workerGroup
		mu   sync.Mutex
		errs = make([]error, len(st.Tasks))
	)
	for i, t := range st.Tasks {
		wg.Go(func() {
			res, err := r.runTask(ctx, st.Name, t)
			mu.Lock()
			results[i] = res
			errs[i] = err
			mu.Unlock()
		})
	}
	// Tasks observe ctx themselves; the stage always waits for them to settle.
	_ = wg.StopAndWait(context.Background())
	return errors.Join(errs...)
}

// runLinked runs long-lived tasks; the first failure cancels the others.
func (r *Runner) runLinked(ctx context.Context, st Stage, results []metrics.ResultLabel) error {
	eg, egCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i, t := range st.Tasks {
		eg.Go(func() error {
			res, err := r.runTask(egCtx, st.Name, t)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return err
		})
	}
	return eg.Wait()
}

func (r *Runner) runTask(ctx context.Context, stage string, t Task) (res metrics.ResultLabel, err error) {
	ctx = observability.WithTask(ctx, t.Name)
	log := observability.Logger(ctx)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			log.Error("Task panicked", slog.Any("panic", p), slog.String("stack", string(debug.Stack())))
			err = &TaskError{Kind: ErrorPanic, Stage: stage, Task: t.Name, Err: fmt.Errorf("panic: %v", p)}
			res = metrics.ResultFailed
		}
		d := time.Since(start)
		r.recorder.ObserveTaskDuration(t.Name, d)
		r.recorder.IncTaskResult(t.Name, res)
	}()

	log.Debug("Task started")
	if runErr := t.Run(ctx); runErr != nil {
		te := newTaskError(stage, t.Name, runErr)
		if te.Kind == ErrorCanceled {
			log.Warn("Task canceled", logfields.Duration(time.Since(start)))
			return metrics.ResultCanceled, te
		}
		log.Error("Task failed", logfields.Error(runErr), logfields.Duration(time.Since(start)))
		return metrics.ResultFailed, te
	}
	log.Info("Task finished", logfields.Duration(time.Since(start)))
	return metrics.ResultSuccess, nil
}
