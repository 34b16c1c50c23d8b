package account

import (
	"github.com/Arkiv-Network/editions/cmd/editions/account/address"
	"github.com/Arkiv-Network/editions/cmd/editions/account/balance"
	"github.com/Arkiv-Network/editions/cmd/editions/account/create"
	"github.com/Arkiv-Network/editions/cmd/editions/account/importkey"
	"github.com/urfave/cli/v2"
)

func Account() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage accounts",
		Subcommands: []*cli.Command{
			create.Create(),
			importkey.ImportAccount(),
			address.Address(),
			balance.AccountBalance(),
		},
	}
}
