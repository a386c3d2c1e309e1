package assets

import (
	"context"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/fileinclude"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/mode"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
	"git.home.luguber.info/inful/assetbuilder/internal/taskgraph"
)

// Pipeline returns the source and transforms of category c.
func (e *Env) Pipeline(c config.Category) Pipeline {
	spec := e.Layout.Asset(c)
	root := e.Layout.Root
	dest := Dest(root, spec.Dest)

	var transforms []Transform
	switch c {
	case config.CategoryHTML:
		if !e.Layout.Mode.IsProduction() {
			transforms = append(transforms, IncludeHTML(e, fileinclude.New(fileinclude.Options{})))
		}
		transforms = append(transforms, dest)
	case config.CategoryStyles:
		transforms = []Transform{
			Skip(IsPartial),
			CompileSass(e),
			PostProcessCSS(e),
			dest,
			MinifiedVariant(e.Styles.MinSuffix, e.Layout.Mode.SourceMaps()),
			dest,
		}
	case config.CategoryScripts:
		transforms = []Transform{TranspileJS(e), dest}
	case config.CategoryFonts:
		transforms = []Transform{ConvertFonts(), dest, CompressWOFF2(), dest}
	default:
		transforms = []Transform{dest}
	}
	return Pipeline{Root: root, Pattern: spec.Pattern, Transforms: transforms}
}

// Task returns the task for category c, guarded in development.
func (e *Env) Task(c config.Category) taskgraph.Task {
	p := e.Pipeline(c)
	return Guard(e.Layout.Mode, taskgraph.Task{
		Name: string(c),
		Run: func(ctx context.Context) error {
			observability.Logger(ctx).Debug("Running asset task", logfields.Category(string(c)),
				logfields.Mode(e.Layout.Mode.String()))
			return p.Run(ctx)
		},
	})
}

// Tasks returns the seven asset tasks in canonical order.
func (e *Env) Tasks() []taskgraph.Task {
	tasks := make([]taskgraph.Task, 0, len(config.Categories))
	for _, c := range config.Categories {
		tasks = append(tasks, e.Task(c))
	}
	return tasks
}

// Guard keeps development builds alive: task errors are logged and reported
// as success. Production tasks are returned unchanged.
func Guard(m mode.Mode, t taskgraph.Task) taskgraph.Task {
	if m.IsProduction() {
		return t
	}
	run := t.Run
	t.Run = func(ctx context.Context) error {
		if err := run(ctx); err != nil {
			observability.Logger(ctx).Error("Asset task failed", logfields.Error(err))
		}
		return nil
	}
	return t
}
