package list

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/api"
	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

func List() *cli.Command {
	cfg := struct {
		rpcURL  string
		creator string
		offset  uint64
		limit   uint64
	}{}
	return &cli.Command{
		Name:  "list",
		Usage: "List the editions paying out to an address",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
			&cli.StringFlag{
				Name:        "creator",
				Usage:       "Funds address to list, defaults to the wallet address",
				Destination: &cfg.creator,
			},
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

			var creator common.Address
			if cfg.creator != "" {
				if !common.IsHexAddress(cfg.creator) {
					return fmt.Errorf("invalid address %q", cfg.creator)
				}
				creator = common.HexToAddress(cfg.creator)
			} else {
				var err error
				creator, err = useraccount.Address()
				if err != nil {
					return fmt.Errorf("failed to load user account: %w", err)
				}
			}

			rpcClient, err := client.Dial(ctx, cfg.rpcURL)
			if err != nil {
				return err
			}
			defer rpcClient.Close()

			var ids []*uint256.Int
			err = rpcClient.CallContext(ctx, &ids, "editions_getEditionsOfCreator", creator, hexutil.Uint64(cfg.offset), hexutil.Uint64(cfg.limit))
			if err != nil {
				return fmt.Errorf("failed to list editions: %w", err)
			}

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				var e api.Edition
				err = rpcClient.CallContext(ctx, &e, "editions_getEdition", id)
				if err != nil {
					return fmt.Errorf("failed to get edition %s: %w", id.Dec(), err)
				}
				rows = append(rows, []string{
					e.ID.Dec(),
					e.MediaID.Dec(),
					fmt.Sprintf("%s / %s", e.Sold.Dec(), e.Supply.Dec()),
					output.Ether(e.Price),
					output.Ether(e.Claimable),
				})
			}

			output.Table(os.Stdout, []string{"id", "media", "sold", "price", "claimable"}, rows)

			var total *uint256.Int
			err = rpcClient.CallContext(ctx, &total, "editions_getNumberOfEditionsOf", creator)
			if err != nil {
				return fmt.Errorf("failed to count editions: %w", err)
			}
			output.Muted.Printf("%d of %s editions\n", len(ids), total.Dec())

			return nil
		},
	}
}
