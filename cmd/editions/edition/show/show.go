package show

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/api"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/urfave/cli/v2"
)

func Show() *cli.Command {
	cfg := struct {
		rpcURL string
	}{}
	return &cli.Command{
		Name:      "show",
		Usage:     "Show an edition",
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

			rpcClient, err := client.Dial(ctx, cfg.rpcURL)
			if err != nil {
				return err
			}
			defer rpcClient.Close()

			var e api.Edition
			err = rpcClient.CallContext(ctx, &e, "editions_getEdition", id)
			if err != nil {
				return fmt.Errorf("failed to get edition: %w", err)
			}

			status := output.Success.Sprint("on sale")
			if e.Remaining.IsZero() {
				status = output.Failure.Sprint("sold out")
			}

			output.Table(os.Stdout, []string{"field", "value"}, [][]string{
				{"id", e.ID.Dec()},
				{"status", status},
				{"media id", e.MediaID.Dec()},
				{"sold", fmt.Sprintf("%s / %s", e.Sold.Dec(), e.Supply.Dec())},
				{"price", output.Ether(e.Price)},
				{"funds address", e.FundsAddress.Hex()},
				{"creator", e.Creator.Hex()},
				{"withdrawn", output.Ether(e.Withdrawn)},
				{"claimable", output.Ether(e.Claimable)},
				{"escrow", output.Ether(e.Escrow)},
				{"stranded overpayment", output.Ether(e.Stranded)},
			})

			return nil
		},
	}
}
