package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/assetbuilder/internal/assets"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/mode"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/taskgraph"
	"git.home.luguber.info/inful/assetbuilder/internal/version"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	// Read through mode.Resolve; declared so the flag parses and shows in help.
	Production bool `name:"production" help:"Build into prod/ without source maps, generating sprites from the manifest"`
}

func (b *BuildCmd) Run(g *Global, root *CLI, inv mode.Invocation) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sass := assets.NewDartSass(cfg.Styles.DartSass, g.Logger)
	defer func() {
		if err := sass.Close(); err != nil {
			g.Logger.Warn("Failed to stop Dart Sass", logfields.Error(err))
		}
	}()

	return RunBuild(ctx, g.Logger, cfg, inv, sass)
}

// RunBuild resolves the build plan for inv, assembles its graph and runs it.
func RunBuild(ctx context.Context, logger *slog.Logger, cfg *config.Config, inv mode.Invocation, compiler assets.Compiler) error {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		rec     metrics.Recorder = metrics.NoopRecorder{}
		handler http.Handler
	)
	if cfg.Server.Metrics {
		reg := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		handler = metrics.HTTPHandler(reg)
	}

	plan, err := pipeline.NewBuildPlanBuilder(cfg, inv).
		WithCompiler(compiler).
		WithMetrics(rec, handler).
		ResolveSpriteGroups().
		Build()
	if err != nil {
		return err
	}

	attrs := []any{logfields.Mode(inv.Mode.String()), slog.Int("sprites", len(plan.SpriteGroups))}
	if rev, err := version.Revision(cfg.Paths.Root); err == nil {
		attrs = append(attrs, slog.String("revision", rev))
	}
	logger.Info("Starting asset build", attrs...)

	runner := taskgraph.NewRunner(taskgraph.WithLogger(logger), taskgraph.WithRecorder(rec))
	_, err = runner.Run(ctx, pipeline.Assemble(plan))
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "build interrupted").Build()
	}
	return err
}
