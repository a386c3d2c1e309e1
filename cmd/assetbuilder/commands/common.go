// Package commands implements the assetbuilder subcommands.
package commands

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"assetbuilder.yaml" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build     BuildCmd     `cmd:"" help:"Build assets into dev/ (watch and serve) or prod/ with --production"`
	SpriteMap SpriteMapCmd `cmd:"" name:"sprite-map" help:"Scan src/svg and write the sprite manifest"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig loads the configuration and replaces the process logger with
// the configured one.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logging.NewLogger(os.Stderr, root.Verbose)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
	return cfg, nil
}
