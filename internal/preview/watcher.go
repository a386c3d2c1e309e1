package preview

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
	"git.home.luguber.info/inful/assetbuilder/internal/taskgraph"
)

// Reloader is notified after a category task re-ran.
type Reloader interface {
	Broadcast(hash string)
}

// Watcher re-runs category tasks when files matching their watch rules
// change. Each category is debounced on its own and runs at most once at a
// time; changes during a run queue a single follow-up.
type Watcher struct {
	root     string
	dir      string
	rules    []config.WatchSpec
	debounce time.Duration
	tasks    map[config.Category]taskgraph.Task
	reloader Reloader

	mu      sync.Mutex
	workers map[config.Category]*worker
	wg      sync.WaitGroup
}

type worker struct {
	task  taskgraph.Task
	req   chan struct{}
	timer *time.Timer
}

// NewWatcher watches layout.Source using layout.Watch rules. Rules whose
// category has no task are ignored.
func NewWatcher(layout config.Layout, debounce time.Duration, tasks map[config.Category]taskgraph.Task, r Reloader) *Watcher {
	return &Watcher{
		root:     layout.Root,
		dir:      layout.Source,
		rules:    layout.Watch,
		debounce: debounce,
		tasks:    tasks,
		reloader: r,
	}
}

// Run watches until ctx ends. Cancellation is a clean stop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryServer, "create file watcher").Fatal().Build()
	}
	defer func() { _ = fw.Close() }()

	src := filepath.Join(w.root, filepath.FromSlash(w.dir))
	if err := addDirsRecursive(ctx, fw, src); err != nil {
		return err
	}
	w.start(ctx)
	defer w.stop()

	log := observability.Logger(ctx)
	log.Info("Watching for changes", logfields.Path(w.dir))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Task returns the watch task of the development graph.
func (w *Watcher) Task() taskgraph.Task {
	return taskgraph.Task{Name: "watch", Run: w.Run}
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(ctx, fw, ev.Name)
		}
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	observability.Logger(ctx).Debug("File change detected", logfields.Path(filepath.ToSlash(rel)), "op", ev.Op.String())
	w.Dispatch(filepath.ToSlash(rel))
}

// Dispatch schedules every category whose watch rule matches the root
// relative path p and reports whether any did.
func (w *Watcher) Dispatch(p string) bool {
	p = path.Clean(p)
	matched := false
	for _, c := range w.Match(p) {
		w.trigger(c)
		matched = true
	}
	return matched
}

// Match returns the categories whose watch rules match p, in rule order.
func (w *Watcher) Match(p string) []config.Category {
	var out []config.Category
	seen := map[config.Category]bool{}
	for _, rule := range w.rules {
		if seen[rule.Category] {
			continue
		}
		if _, ok := w.tasks[rule.Category]; !ok {
			continue
		}
		if ok, _ := doublestar.Match(rule.Pattern, p); ok {
			seen[rule.Category] = true
			out = append(out, rule.Category)
		}
	}
	return out
}

func (w *Watcher) start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.workers = make(map[config.Category]*worker, len(w.tasks))
	for c, t := range w.tasks {
		wk := &worker{task: t, req: make(chan struct{}, 1)}
		w.workers[c] = wk
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.loop(ctx, c, wk)
		}()
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for _, wk := range w.workers {
		if wk.timer != nil {
			wk.timer.Stop()
		}
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) trigger(c config.Category) {
	w.mu.Lock()
	defer w.mu.Unlock()
	wk, ok := w.workers[c]
	if !ok {
		return
	}
	if wk.timer != nil {
		wk.timer.Stop()
	}
	wk.timer = time.AfterFunc(w.debounce, func() {
		select {
		case wk.req <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) loop(ctx context.Context, c config.Category, wk *worker) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-wk.req:
		}
		log := observability.Logger(ctx).With(logfields.Category(string(c)))
		log.Info("Change detected; re-running task")
		start := time.Now()
		if err := wk.task.Run(observability.WithTask(ctx, wk.task.Name)); err != nil {
			log.Warn("Task failed", logfields.Error(err))
		}
		log.Debug("Task finished", logfields.Duration(time.Since(start)))
		if w.reloader != nil && ctx.Err() == nil {
			w.reloader.Broadcast(uuid.NewString())
		}
	}
}

func addDirsRecursive(ctx context.Context, fw *fsnotify.Watcher, root string) error {
	log := observability.Logger(ctx)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(p); err != nil {
				log.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "watch source tree").
			WithContext("path", root).
			Build()
	}
	return nil
}

// shouldIgnoreEvent reports editor temporaries and hidden files.
func shouldIgnoreEvent(name string) bool {
	base := filepath.Base(name)
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		base == "Thumbs.db":
		return true
	}
	return false
}
