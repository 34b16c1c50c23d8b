package address

import (
	"fmt"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/urfave/cli/v2"
)

func Address() *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "Print the address of the wallet",
		Action: func(c *cli.Context) error {
			addr, err := useraccount.Address()
			if err != nil {
				return err
			}
			fmt.Println(addr.Hex())
			return nil
		},
	}
}
