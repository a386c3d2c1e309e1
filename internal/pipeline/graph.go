package pipeline

import (
	"net"
	"strconv"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/preview"
	"git.home.luguber.info/inful/assetbuilder/internal/taskgraph"
)

// Graph and stage names.
const (
	GraphProd = "prod"
	GraphDev  = "dev"

	StageClear   = "clear"
	StageAssets  = "assets"
	StageCleanup = "cleanup"
	StageLive    = "live"
)

// Assemble returns the graph for plan: the build graph in production, the
// build graph followed by watch+serve in development.
func Assemble(plan *BuildPlan) *taskgraph.Graph {
	if plan.Layout.Mode.IsProduction() {
		return Build(plan, GraphProd)
	}
	return taskgraph.Compose(GraphDev, Build(plan, GraphDev), Live(plan))
}

// Build returns the one-shot build: one stage per sprite task in manifest
// order, then clear, then every asset task in parallel, then manifest
// cleanup, which also runs after failures.
func Build(plan *BuildPlan, name string) *taskgraph.Graph {
	var stages []taskgraph.Stage
	for _, t := range SpriteTasks(plan.Env, plan.SpriteGroups) {
		stages = append(stages, taskgraph.Stage{Name: t.Name, Tasks: []taskgraph.Task{t}})
	}
	stages = append(stages,
		taskgraph.Stage{Name: StageClear, Tasks: []taskgraph.Task{ClearTask(plan.Layout)}},
		taskgraph.Stage{Name: StageAssets, Tasks: plan.Env.Tasks()},
		taskgraph.Stage{Name: StageCleanup, Tasks: []taskgraph.Task{RemoveManifestTask(plan.Layout)}, Always: true},
	)
	return taskgraph.New(name, stages...)
}

// Live returns the development watch+serve stage. Both tasks run until the
// context ends; either failing stops the other.
func Live(plan *BuildPlan) *taskgraph.Graph {
	hub := preview.NewHub(plan.Recorder)

	tasks := make(map[config.Category]taskgraph.Task, len(plan.Layout.Watch))
	for _, rule := range plan.Layout.Watch {
		tasks[rule.Category] = plan.Env.Task(rule.Category)
	}
	watcher := preview.NewWatcher(plan.Layout, plan.Config.Watch.Debounce, tasks, hub)

	var opts []preview.Option
	if plan.MetricsHandler != nil {
		opts = append(opts, preview.WithMetrics(plan.Config.Server.MetricsPath, plan.MetricsHandler))
	}
	addr := net.JoinHostPort(plan.Config.Server.Host, strconv.Itoa(plan.Config.Server.Port))
	server := preview.NewServer(addr, abs(plan.Layout, plan.Layout.Output), hub, opts...)

	return taskgraph.New(GraphDev, taskgraph.Stage{
		Name:   StageLive,
		Tasks:  []taskgraph.Task{watcher.Task(), server.Task()},
		Linked: true,
	})
}
