package taskgraph

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// Task is a named unit of work. Run must honour ctx cancellation when it blocks.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Stage is a set of tasks that run in parallel.
type Stage struct {
	Name  string
	Tasks []Task

	// Always marks a stage that still runs after an earlier stage failed.
	Always bool

	// Linked stages hold long-running tasks that live and die together: the
	// first task to fail cancels its siblings.
	Linked bool
}

// Graph is an ordered list of stages.
type Graph struct {
	Name   string
	Stages []Stage
}

// New returns a graph from the given stages. Stages without tasks are dropped.
func New(name string, stages ...Stage) *Graph {
	g := &Graph{Name: name}
	for _, st := range stages {
		g = g.Then(st)
	}
	return g
}

// Then returns a copy of g with st appended. A stage without tasks is ignored.
func (g *Graph) Then(st Stage) *Graph {
	out := &Graph{Name: g.Name, Stages: make([]Stage, 0, len(g.Stages)+1)}
	out.Stages = append(out.Stages, g.Stages...)
	if len(st.Tasks) > 0 {
		out.Stages = append(out.Stages, st)
	}
	return out
}

// Compose returns a new graph named name running the stages of every part in
// sequence.
func Compose(name string, parts ...*Graph) *Graph {
	out := &Graph{Name: name}
	for _, p := range parts {
		if p == nil {
			continue
		}
		out.Stages = append(out.Stages, p.Stages...)
	}
	return out
}

// Validate checks that every task has a name and a function and that task and
// stage names are unique across the graph.
func (g *Graph) Validate() error {
	if g.Name == "" {
		return errors.BuildError("graph has no name").Build()
	}
	stages := make(map[string]struct{}, len(g.Stages))
	tasks := make(map[string]string)
	for i, st := range g.Stages {
		if st.Name == "" {
			return errors.BuildError(fmt.Sprintf("stage %d of graph %s has no name", i, g.Name)).
				WithContext("graph", g.Name).Build()
		}
		if _, dup := stages[st.Name]; dup {
			return errors.BuildError(fmt.Sprintf("duplicate stage %q", st.Name)).
				WithContext("graph", g.Name).Build()
		}
		stages[st.Name] = struct{}{}
		for _, t := range st.Tasks {
			if t.Name == "" || t.Run == nil {
				return errors.BuildError(fmt.Sprintf("stage %q contains an incomplete task", st.Name)).
					WithContext("graph", g.Name).WithContext("stage", st.Name).Build()
			}
			if prev, dup := tasks[t.Name]; dup {
				return errors.BuildError(fmt.Sprintf("task %q appears in stages %q and %q", t.Name, prev, st.Name)).
					WithContext("graph", g.Name).Build()
			}
			tasks[t.Name] = st.Name
		}
	}
	return nil
}

// StageIndex reports the position of the stage holding task.
func (g *Graph) StageIndex(task string) (int, bool) {
	for i, st := range g.Stages {
		for _, t := range st.Tasks {
			if t.Name == task {
				return i, true
			}
		}
	}
	return -1, false
}

// Before reports whether task a is guaranteed to finish before task b starts.
func (g *Graph) Before(a, b string) bool {
	ia, okA := g.StageIndex(a)
	ib, okB := g.StageIndex(b)
	return okA && okB && ia < ib
}

// Parallel reports whether a and b belong to the same stage.
func (g *Graph) Parallel(a, b string) bool {
	ia, okA := g.StageIndex(a)
	ib, okB := g.StageIndex(b)
	return okA && okB && ia == ib
}

// TaskNames lists every task in stage order.
func (g *Graph) TaskNames() []string {
	var names []string
	for _, st := range g.Stages {
		for _, t := range st.Tasks {
			names = append(names, t.Name)
		}
	}
	return names
}

// Stage returns the stage named name.
func (g *Graph) Stage(name string) (Stage, bool) {
	for _, st := range g.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return Stage{}, false
}
