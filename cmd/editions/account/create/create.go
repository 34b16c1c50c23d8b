package create

import (
	"fmt"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/urfave/cli/v2"
)

func Create() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new account",
		Action: func(c *cli.Context) error {
			address, walletPath, err := useraccount.Save(false, func(ks *keystore.KeyStore, password string) (accounts.Account, error) {
				account, err := ks.NewAccount(password)
				if err != nil {
					return accounts.Account{}, fmt.Errorf("failed to create new account: %w", err)
				}
				return account, nil
			})
			if err != nil {
				return err
			}

			fmt.Println("New wallet created", walletPath)
			fmt.Println("Address:", address.Hex())

			return nil
		},
	}
}
