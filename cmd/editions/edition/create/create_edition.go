package create

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

func Create() *cli.Command {
	cfg := struct {
		rpcURL       string
		supply       string
		price        string
		mediaID      string
		fundsAddress string
	}{}
	return &cli.Command{
		Name:  "create",
		Usage: "Create an edition of a media item you own",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
			&cli.StringFlag{
				Name:        "supply",
				Usage:       "Number of copies for sale",
				Required:    true,
				Destination: &cfg.supply,
			},
			&cli.StringFlag{
				Name:        "price",
				Usage:       "Price per copy, in wei or with an eth/gwei suffix",
				Required:    true,
				Destination: &cfg.price,
			},
			&cli.StringFlag{
				Name:        "media-id",
				Usage:       "Token id in the media registry",
				Required:    true,
				Destination: &cfg.mediaID,
			},
			&cli.StringFlag{
				Name:        "funds-address",
				Usage:       "Address that receives the proceeds, defaults to the wallet address",
				Destination: &cfg.fundsAddress,
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			supply, err := client.ParseID(cfg.supply)
			if err != nil {
				return fmt.Errorf("invalid supply: %w", err)
			}
			price, err := client.ParseAmount(cfg.price)
			if err != nil {
				return err
			}
			mediaID, err := client.ParseID(cfg.mediaID)
			if err != nil {
				return err
			}

			userAccount, err := useraccount.Load()
			if err != nil {
				return fmt.Errorf("failed to load user account: %w", err)
			}

			fundsAddress := userAccount.Address
			if cfg.fundsAddress != "" {
				if !common.IsHexAddress(cfg.fundsAddress) {
					return fmt.Errorf("invalid funds address %q", cfg.fundsAddress)
				}
				fundsAddress = common.HexToAddress(cfg.fundsAddress)
			}

			rpcClient, err := client.Dial(ctx, cfg.rpcURL)
			if err != nil {
				return err
			}
			defer rpcClient.Close()

			receipt, err := client.SendTransaction(ctx, rpcClient, userAccount, &editiontx.EditionTransaction{
				Create: []editiontx.Create{{
					Supply:       supply,
					Price:        price,
					FundsAddress: fundsAddress,
					MediaID:      mediaID,
				}},
			})
			if err != nil {
				return err
			}

			output.Receipt(receipt)
			for _, id := range receipt.Created {
				fmt.Println("Edition created:", id.Dec())
			}

			return nil
		},
	}
}
