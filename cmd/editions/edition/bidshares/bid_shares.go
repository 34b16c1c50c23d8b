package bidshares

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/urfave/cli/v2"
)

func BidShares() *cli.Command {
	cfg := struct {
		rpcURL string
	}{}
	return &cli.Command{
		Name:      "bid-shares",
		Usage:     "Show the revenue split of an edition you bought most recently",
		ArgsUsage: "<edition id>",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			if c.Args().Len() != 1 {
				return fmt.Errorf("edition id is required")
			}

			id, err := client.ParseID(c.Args().Get(0))
			if err != nil {
				return err
			}

			userAccount, err := useraccount.Load()
			if err != nil {
				return fmt.Errorf("failed to load user account: %w", err)
			}

			rpcClient, err := client.Dial(ctx, cfg.rpcURL)
			if err != nil {
				return err
			}
			defer rpcClient.Close()

			var shares registry.BidShares
			err = client.Call(ctx, rpcClient, userAccount, &editiontx.Query{
				Method:    editiontx.QueryBidShares,
				EditionID: id,
				Expires:   uint64(time.Now().Add(time.Minute).Unix()),
			}, &shares)
			if err != nil {
				return err
			}

			output.Table(os.Stdout, []string{"share", "value"}, [][]string{
				{"previous owner", shares.PrevOwner.String()},
				{"creator", shares.Creator.String()},
				{"owner", shares.Owner.String()},
			})

			return nil
		},
	}
}
