package balance

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

func AccountBalance() *cli.Command {
	cfg := struct {
		rpcURL  string
		address string
	}{}
	return &cli.Command{
		Name:  "balance",
		Usage: "Get the ledger balance of an account",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
			&cli.StringFlag{
				Name:        "address",
				Usage:       "Account to look up, defaults to the wallet address",
				Destination: &cfg.address,
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			var addr common.Address
			if cfg.address != "" {
				if !common.IsHexAddress(cfg.address) {
					return fmt.Errorf("invalid address %q", cfg.address)
				}
				addr = common.HexToAddress(cfg.address)
			} else {
				var err error
				addr, err = useraccount.Address()
				if err != nil {
					return fmt.Errorf("failed to load user account: %w", err)
				}
			}

			rpcClient, err := client.Dial(ctx, cfg.rpcURL)
			if err != nil {
				return err
			}
			defer rpcClient.Close()

			var balance uint256.Int
			err = rpcClient.CallContext(ctx, &balance, "editions_getBalance", addr)
			if err != nil {
				return fmt.Errorf("failed to get balance: %w", err)
			}

			fmt.Println("Address:", addr.Hex())
			fmt.Println("Balance:", output.Ether(&balance))

			return nil
		},
	}
}
