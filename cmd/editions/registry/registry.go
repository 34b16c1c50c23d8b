package registry

import (
	"github.com/Arkiv-Network/editions/cmd/editions/registry/set"
	"github.com/Arkiv-Network/editions/cmd/editions/registry/show"
	"github.com/urfave/cli/v2"
)

func Registry() *cli.Command {
	return &cli.Command{
		Name:  "registry",
		Usage: "Inspect and manage the registry addresses",
		Subcommands: []*cli.Command{
			show.Show(),
			set.SetMedia(),
			set.SetMarket(),
		},
	}
}
