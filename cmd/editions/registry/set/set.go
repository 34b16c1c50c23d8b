package set

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

// SetMedia points the ledger at a new media registry. Admin only.
func SetMedia() *cli.Command {
	return setCommand("set-media", "Set the media registry address", logs.RegistryKindMedia)
}

// SetMarket points the ledger at a new split registry. Admin only.
func SetMarket() *cli.Command {
	return setCommand("set-market", "Set the split registry address", logs.RegistryKindMarket)
}

func setCommand(name, usage string, kind common.Hash) *cli.Command {
	cfg := struct {
		rpcURL string
	}{}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<address>",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			if c.Args().Len() != 1 {
				return fmt.Errorf("address is required")
			}

			arg := c.Args().Get(0)
			if !common.IsHexAddress(arg) {
				return fmt.Errorf("invalid address %q", arg)
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
				Registry: []editiontx.RegistryChange{{
					Kind:    kind,
					Address: common.HexToAddress(arg),
				}},
			})
			if err != nil {
				return err
			}

			output.Receipt(receipt)

			return nil
		},
	}
}
