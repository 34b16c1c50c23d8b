package query

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/api"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

func Query() *cli.Command {
	cfg := struct {
		rpcURL string
		offset uint64
		limit  uint64
	}{}
	return &cli.Command{
		Name:      "query",
		Usage:     `Find editions, e.g. 'price <= 1000000000000000000 && sold < 5' or '$all'`,
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
			&cli.Uint64Flag{
				Name:        "offset",
				Destination: &cfg.offset,
			},
			&cli.Uint64Flag{
				Name:        "limit",
				Value:       50,
				Destination: &cfg.limit,
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			if c.Args().Len() != 1 {
				return fmt.Errorf("query is required")
			}

			rpcClient, err := client.Dial(ctx, cfg.rpcURL)
			if err != nil {
				return err
			}
			defer rpcClient.Close()

			var editions []api.Edition
			err = rpcClient.CallContext(ctx, &editions, "editions_queryEditions", c.Args().Get(0), hexutil.Uint64(cfg.offset), hexutil.Uint64(cfg.limit))
			if err != nil {
				return fmt.Errorf("failed to query editions: %w", err)
			}

			rows := make([][]string, 0, len(editions))
			for _, e := range editions {
				rows = append(rows, []string{
					e.ID.Dec(),
					e.MediaID.Dec(),
					fmt.Sprintf("%s / %s", e.Sold.Dec(), e.Supply.Dec()),
					output.Ether(e.Price),
					e.FundsAddress.Hex(),
				})
			}

			output.Table(os.Stdout, []string{"id", "media", "sold", "price", "funds address"}, rows)

			return nil
		},
	}
}
