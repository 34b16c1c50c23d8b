package withdraw

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

func Withdraw() *cli.Command {
	cfg := struct {
		rpcURL string
	}{}
	return &cli.Command{
		Name:      "withdraw",
		Usage:     "Withdraw the unclaimed proceeds of one or more editions",
		ArgsUsage: "<edition id>...",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			if c.Args().Len() == 0 {
				return fmt.Errorf("at least one edition id is required")
			}

			var ids []*uint256.Int
			for _, arg := range c.Args().Slice() {
				id, err := client.ParseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
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

			receipt, err := client.SendTransaction(ctx, rpcClient, userAccount, &editiontx.EditionTransaction{
				Withdraw: ids,
			})
			if err != nil {
				return err
			}

			output.Receipt(receipt)

			total := new(uint256.Int)
			for _, amount := range receipt.Withdrawn {
				total.Add(total, amount)
			}
			if total.IsZero() {
				output.Muted.Println("Nothing to withdraw")
			} else {
				fmt.Println("Withdrawn:", output.Ether(total))
			}

			return nil
		},
	}
}
