package pipeline

import (
	"net/http"
	"path/filepath"

	"git.home.luguber.info/inful/assetbuilder/internal/assets"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/mode"
)

// BuildPlan is the immutable input graph assembly works from. Everything that
// depends on process state (arguments, the manifest file) is resolved here,
// before any task runs.
type BuildPlan struct {
	Config     *config.Config
	Invocation mode.Invocation
	Layout     config.Layout
	Env        *assets.Env

	// SpriteGroups names the sprite tasks, in manifest order.
	SpriteGroups []string

	Recorder       metrics.Recorder
	MetricsHandler http.Handler // Mounted on the dev server when set
}

// BuildPlanBuilder resolves a BuildPlan step by step. The first failing step
// is reported by Build.
type BuildPlanBuilder struct {
	plan BuildPlan
	err  error
}

// NewBuildPlanBuilder starts a plan for inv using cfg.
func NewBuildPlanBuilder(cfg *config.Config, inv mode.Invocation) *BuildPlanBuilder {
	return &BuildPlanBuilder{plan: BuildPlan{
		Config:     cfg,
		Invocation: inv,
		Layout:     cfg.Layout(inv.Mode),
		Recorder:   metrics.NoopRecorder{},
	}}
}

// WithEnv sets the asset environment the tasks close over.
func (b *BuildPlanBuilder) WithEnv(env *assets.Env) *BuildPlanBuilder {
	b.plan.Env = env
	return b
}

// WithCompiler builds the asset environment for the plan's layout around c.
func (b *BuildPlanBuilder) WithCompiler(c assets.Compiler) *BuildPlanBuilder {
	if b.err != nil {
		return b
	}
	env, err := assets.NewEnv(b.plan.Layout, b.plan.Config.Styles, b.plan.Config.Scripts, c)
	if err != nil {
		b.err = err
		return b
	}
	b.plan.Env = env
	return b
}

// WithMetrics records graph and live-reload metrics to rec and, when h is
// not nil, exposes h on the dev server.
func (b *BuildPlanBuilder) WithMetrics(rec metrics.Recorder, h http.Handler) *BuildPlanBuilder {
	if rec != nil {
		b.plan.Recorder = rec
	}
	b.plan.MetricsHandler = h
	return b
}

// ResolveSpriteGroups reads the sprite manifest when the invocation
// generates sprites. A missing manifest yields no groups.
func (b *BuildPlanBuilder) ResolveSpriteGroups() *BuildPlanBuilder {
	if b.err != nil || !b.plan.Invocation.GeneratesSprites() {
		return b
	}
	groups, _, err := manifest.Read(ManifestPath(b.plan.Layout))
	if err != nil {
		b.err = err
		return b
	}
	b.plan.SpriteGroups = groups
	return b
}

// Build returns the plan or the first error met while resolving it.
func (b *BuildPlanBuilder) Build() (*BuildPlan, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.plan.Env == nil {
		return nil, ferrors.BuildError("build plan has no asset environment").Build()
	}
	plan := b.plan
	plan.SpriteGroups = append([]string(nil), b.plan.SpriteGroups...)
	return &plan, nil
}

// ManifestPath returns the sprite manifest location on disk.
func ManifestPath(l config.Layout) string {
	return abs(l, l.Manifest)
}

func abs(l config.Layout, p string) string {
	return filepath.Join(l.Root, filepath.FromSlash(p))
}
