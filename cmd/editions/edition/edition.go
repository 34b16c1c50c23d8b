package edition

import (
	"github.com/Arkiv-Network/editions/cmd/editions/edition/bidshares"
	"github.com/Arkiv-Network/editions/cmd/editions/edition/buy"
	"github.com/Arkiv-Network/editions/cmd/editions/edition/create"
	"github.com/Arkiv-Network/editions/cmd/editions/edition/history"
	"github.com/Arkiv-Network/editions/cmd/editions/edition/list"
	"github.com/Arkiv-Network/editions/cmd/editions/edition/mediadata"
	"github.com/Arkiv-Network/editions/cmd/editions/edition/query"
	"github.com/Arkiv-Network/editions/cmd/editions/edition/show"
	"github.com/Arkiv-Network/editions/cmd/editions/edition/withdraw"
	"github.com/urfave/cli/v2"
)

func Edition() *cli.Command {
	return &cli.Command{
		Name:  "edition",
		Usage: "Create, buy and inspect editions",
		Subcommands: []*cli.Command{
			create.Create(),
			buy.Buy(),
			withdraw.Withdraw(),
			show.Show(),
			list.List(),
			query.Query(),
			bidshares.BidShares(),
			mediadata.MediaData(),
			history.History(),
		},
	}
}
