package pipeline

import (
	"context"
	"os"
	"path"

	"git.home.luguber.info/inful/assetbuilder/internal/assets"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
	"git.home.luguber.info/inful/assetbuilder/internal/sprite"
	"git.home.luguber.info/inful/assetbuilder/internal/taskgraph"
)

// Task names of the lifecycle tasks.
const (
	TaskClear          = "clear"
	TaskRemoveManifest = "remove-sprite-map"
	SpriteTaskPrefix   = "sprite:"
)

// SpriteTasks returns one task per group, in the order given. Each packs
// <sprite source>/<group>/*.svg into <sprite dest>/<group>.svg.
func SpriteTasks(env *assets.Env, groups []string) []taskgraph.Task {
	l := env.Layout
	tasks := make([]taskgraph.Task, 0, len(groups))
	for _, g := range groups {
		dir := abs(l, path.Join(l.SpriteSource, g))
		dest := abs(l, path.Join(l.SpriteDest, g+".svg"))
		tasks = append(tasks, taskgraph.Task{
			Name: SpriteTaskPrefix + g,
			Run: func(ctx context.Context) error {
				observability.Logger(ctx).Info("Generating sprite", logfields.Group(g))
				_, err := sprite.NewPacker().PackDir(ctx, dir, dest)
				return err
			},
		})
	}
	return tasks
}

// ClearTask removes the mode output root. A missing root is not an error.
func ClearTask(l config.Layout) taskgraph.Task {
	out := abs(l, l.Output)
	return taskgraph.Task{
		Name: TaskClear,
		Run: func(ctx context.Context) error {
			observability.Logger(ctx).Info("Clearing output", logfields.Path(l.Output))
			if err := os.RemoveAll(out); err != nil {
				return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to clear output root").
					WithContext("path", out).Build()
			}
			return nil
		},
	}
}

// RemoveManifestTask deletes the sprite manifest. A missing manifest is not
// an error.
func RemoveManifestTask(l config.Layout) taskgraph.Task {
	p := ManifestPath(l)
	return taskgraph.Task{
		Name: TaskRemoveManifest,
		Run: func(ctx context.Context) error {
			if !manifest.Exists(p) {
				return nil
			}
			observability.Logger(ctx).Info("Removing sprite manifest", logfields.Path(l.Manifest))
			return manifest.Remove(p)
		},
	}
}
