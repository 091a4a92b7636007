package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/teamspace-io/teamspace/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Token   commands.TokenCmd  `cmd:"" help:"Generate a bearer token"`
		Whoami  commands.WhoamiCmd `cmd:"" help:"Show the authenticated principal and auth state"`
		Debug   bool               `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
