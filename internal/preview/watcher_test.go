package preview

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/mode"
	"git.home.luguber.info/inful/assetbuilder/internal/taskgraph"
)

type recordingReloader struct {
	ch chan string
}

func (r *recordingReloader) Broadcast(hash string) { r.ch <- hash }

type runLog struct {
	mu   sync.Mutex
	runs map[config.Category]int
}

func (l *runLog) count(c config.Category) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runs[c]
}

func newRunLog(delay time.Duration) (*runLog, map[config.Category]taskgraph.Task) {
	l := &runLog{runs: map[config.Category]int{}}
	tasks := map[config.Category]taskgraph.Task{}
	for _, c := range config.Categories {
		tasks[c] = taskgraph.Task{Name: string(c), Run: func(context.Context) error {
			time.Sleep(delay)
			l.mu.Lock()
			l.runs[c]++
			l.mu.Unlock()
			return nil
		}}
	}
	return l, tasks
}

func devLayout(t *testing.T, root string) config.Layout {
	t.Helper()
	cfg := config.Defaults()
	cfg.Paths.Root = root
	return cfg.Layout(mode.Development)
}

func TestWatcher_MatchFollowsRules(t *testing.T) {
	_, tasks := newRunLog(0)
	w := NewWatcher(devLayout(t, "."), time.Millisecond, tasks, nil)

	assert.Equal(t, []config.Category{config.CategoryStyles}, w.Match("src/scss/parts/_a.scss"))
	assert.Equal(t, []config.Category{config.CategoryHTML}, w.Match("src/partials/nav.html"))
	assert.Equal(t, []config.Category{config.CategoryScripts}, w.Match("src/lib/js/vendor.js"))
	assert.Equal(t, []config.Category{config.CategoryImages, config.CategoryFonts}, w.Match("src/img/logo.svg"))
	assert.Equal(t, []config.Category{config.CategoryFonts}, w.Match("src/font/a.woff2"))
	assert.Empty(t, w.Match("src/lib/css/reset.css"))
	assert.Empty(t, w.Match("README.md"))
}

func TestWatcher_ProductionLayoutHasNoRules(t *testing.T) {
	cfg := config.Defaults()
	_, tasks := newRunLog(0)
	w := NewWatcher(cfg.Layout(mode.Production), time.Millisecond, tasks, nil)
	assert.Empty(t, w.Match("src/scss/a.scss"))
}

func TestWatcher_StyleChangeRerunsOnlyStyles(t *testing.T) {
	log, tasks := newRunLog(0)
	rel := &recordingReloader{ch: make(chan string, 8)}
	w := NewWatcher(devLayout(t, "."), 10*time.Millisecond, tasks, rel)

	ctx, cancel := context.WithCancel(t.Context())
	w.start(ctx)
	defer func() {
		cancel()
		w.stop()
	}()

	require.True(t, w.Dispatch("src/scss/main.scss"))

	select {
	case hash := <-rel.ch:
		assert.NotEmpty(t, hash)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload broadcast")
	}
	assert.Equal(t, 1, log.count(config.CategoryStyles))
	for _, c := range config.Categories {
		if c != config.CategoryStyles {
			assert.Zero(t, log.count(c), c)
		}
	}
}

func TestWatcher_DebounceCoalescesBursts(t *testing.T) {
	log, tasks := newRunLog(0)
	rel := &recordingReloader{ch: make(chan string, 8)}
	w := NewWatcher(devLayout(t, "."), 50*time.Millisecond, tasks, rel)

	ctx, cancel := context.WithCancel(t.Context())
	w.start(ctx)
	defer func() {
		cancel()
		w.stop()
	}()

	for range 5 {
		w.Dispatch("src/js/app.js")
	}
	<-rel.ch
	select {
	case <-rel.ch:
		t.Fatal("burst produced more than one run")
	case <-time.After(150 * time.Millisecond):
	}
	assert.Equal(t, 1, log.count(config.CategoryScripts))
}

func TestWatcher_ChangeDuringRunQueuesOneFollowUp(t *testing.T) {
	log, tasks := newRunLog(100 * time.Millisecond)
	rel := &recordingReloader{ch: make(chan string, 8)}
	w := NewWatcher(devLayout(t, "."), time.Millisecond, tasks, rel)

	ctx, cancel := context.WithCancel(t.Context())
	w.start(ctx)
	defer func() {
		cancel()
		w.stop()
	}()

	w.Dispatch("src/index.html")
	time.Sleep(30 * time.Millisecond)
	for range 3 {
		w.Dispatch("src/index.html")
		time.Sleep(5 * time.Millisecond)
	}

	<-rel.ch
	<-rel.ch
	select {
	case <-rel.ch:
		t.Fatal("more than one follow-up run")
	case <-time.After(250 * time.Millisecond):
	}
	assert.Equal(t, 2, log.count(config.CategoryHTML))
}

func TestWatcher_RunReactsToFileChanges(t *testing.T) {
	root := t.TempDir()
	scss := filepath.Join(root, "src", "scss")
	require.NoError(t, os.MkdirAll(scss, 0o755))

	log, tasks := newRunLog(0)
	rel := &recordingReloader{ch: make(chan string, 64)}
	w := NewWatcher(devLayout(t, root), 10*time.Millisecond, tasks, rel)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-rel.ch:
			break loop
		case <-tick.C:
			require.NoError(t, os.WriteFile(filepath.Join(scss, "main.scss"), []byte("a{b:c}"), 0o644))
		case <-deadline:
			t.Fatal("watcher never reacted")
		}
	}
	assert.GreaterOrEqual(t, log.count(config.CategoryStyles), 1)
	assert.Zero(t, log.count(config.CategoryScripts))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingSourceIsFileSystemError(t *testing.T) {
	_, tasks := newRunLog(0)
	w := NewWatcher(devLayout(t, t.TempDir()), time.Millisecond, tasks, nil)
	err := w.Run(t.Context())
	require.Error(t, err)
	assert.Equal(t, "watch", w.Task().Name)
}

func TestShouldIgnoreEvent(t *testing.T) {
	assert.True(t, shouldIgnoreEvent("/tmp/.hidden.scss"))
	assert.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	assert.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	assert.True(t, shouldIgnoreEvent("/tmp/foo.scss~"))
	assert.True(t, shouldIgnoreEvent("/tmp/.DS_Store"))
	assert.False(t, shouldIgnoreEvent("/tmp/main.scss"))
}
