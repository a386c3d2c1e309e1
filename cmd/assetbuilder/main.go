package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/assetbuilder/cmd/assetbuilder/commands"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/mode"
)

func main() {
	// The invocation is resolved exactly once, from the raw arguments.
	inv := mode.Resolve(os.Args[1:])

	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("assetbuilder"),
		kong.Description("Front-end asset build pipeline"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, cli, inv)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
