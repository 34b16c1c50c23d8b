package buy

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

func Buy() *cli.Command {
	cfg := struct {
		rpcURL  string
		payment string
	}{}
	return &cli.Command{
		Name:      "buy",
		Usage:     "Buy the next copy of an edition",
		ArgsUsage: "<edition id>",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
			&cli.StringFlag{
				Name:        "payment",
				Usage:       "Amount to pay, defaults to the edition price. Anything above the price is not refunded",
				Destination: &cfg.payment,
			},
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

			var payment *uint256.Int
			if cfg.payment != "" {
				payment, err = client.ParseAmount(cfg.payment)
				if err != nil {
					return err
				}
			} else {
				var e struct {
					Price *uint256.Int `json:"price"`
				}
				err = rpcClient.CallContext(ctx, &e, "editions_getEdition", id)
				if err != nil {
					return fmt.Errorf("failed to get edition: %w", err)
				}
				payment = e.Price
			}

			receipt, err := client.SendTransaction(ctx, rpcClient, userAccount, &editiontx.EditionTransaction{
				Buy: []editiontx.Buy{{EditionID: id, Payment: payment}},
			})
			if err != nil {
				return err
			}

			output.Receipt(receipt)

			return nil
		},
	}
}
