package importkey

import (
	"fmt"
	"strings"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
)

func ImportAccount() *cli.Command {
	cfg := struct {
		privateKey string
		force      bool
	}{}
	return &cli.Command{
		Name:  "import",
		Usage: "Import an account using a hex private key",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "privatekey",
				Aliases:     []string{"key"},
				Usage:       "Private key in hex format",
				Required:    true,
				EnvVars:     []string{"EDITIONS_PRIVATE_KEY"},
				Destination: &cfg.privateKey,
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "Replace an existing wallet",
				Destination: &cfg.force,
			},
		},
		Action: func(c *cli.Context) error {
			privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.privateKey, "0x"))
			if err != nil {
				return fmt.Errorf("invalid private key: %w", err)
			}

			address, walletPath, err := useraccount.Save(cfg.force, func(ks *keystore.KeyStore, password string) (accounts.Account, error) {
				account, err := ks.ImportECDSA(privateKey, password)
				if err != nil {
					return accounts.Account{}, fmt.Errorf("failed to encrypt key: %w", err)
				}
				return account, nil
			})
			if err != nil {
				return err
			}

			fmt.Println("Imported account into", walletPath)
			fmt.Println("Address:", address.Hex())

			return nil
		},
	}
}
