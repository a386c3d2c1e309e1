package commands

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
	"git.home.luguber.info/inful/assetbuilder/internal/mode"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

// SpriteMapCmd implements the 'sprite-map' command.
type SpriteMapCmd struct{}

func (s *SpriteMapCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	return WriteSpriteMap(observability.WithLogger(context.Background(), g.Logger), cfg)
}

// WriteSpriteMap scans the sprite source directory and writes the manifest
// the production build reads its sprite groups from.
func WriteSpriteMap(ctx context.Context, cfg *config.Config) error {
	layout := cfg.Layout(mode.Production)
	m, err := manifest.Scan(ctx, filepath.Join(layout.Root, filepath.FromSlash(layout.SpriteSource)))
	if err != nil {
		return err
	}
	path := pipeline.ManifestPath(layout)
	if err := manifest.Write(path, m); err != nil {
		return err
	}
	observability.Logger(ctx).Info("Sprite manifest written",
		logfields.Path(layout.Manifest), slog.Int("directories", len(m)))
	return nil
}
