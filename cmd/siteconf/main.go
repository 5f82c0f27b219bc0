package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/devscast/siteconf/cmd/siteconf/commands"
	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("siteconf"),
		kong.Description("Validate a documentation site configuration and check its links."),
		kong.UsageOnError(),
		commands.Vars(version.String()),
	)

	err := parser.Run(&commands.Global{Logger: slog.Default(), Out: os.Stdout}, cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
