package show

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

func Show() *cli.Command {
	cfg := struct {
		rpcURL string
	}{}
	return &cli.Command{
		Name:  "show",
		Usage: "Show the registry addresses and ledger admin",
		Flags: []cli.Flag{
			client.URLFlag(&cfg.rpcURL),
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			rpcClient, err := client.Dial(ctx, cfg.rpcURL)
			if err != nil {
				return err
			}
			defer rpcClient.Close()

			var media, market, admin common.Address
			var count, slots uint256.Int

			for _, call := range []struct {
				method string
				result any
			}{
				{"editions_getMediaAddress", &media},
				{"editions_getMarketAddress", &market},
				{"editions_getAdmin", &admin},
				{"editions_getEditionCount", &count},
				{"editions_getNumberOfUsedSlots", &slots},
			} {
				err = rpcClient.CallContext(ctx, call.result, call.method)
				if err != nil {
					return fmt.Errorf("%s failed: %w", call.method, err)
				}
			}

			output.Table(os.Stdout, []string{"field", "value"}, [][]string{
				{"media registry", addressOrUnset(media)},
				{"split registry", addressOrUnset(market)},
				{"admin", addressOrUnset(admin)},
				{"editions", count.Dec()},
				{"used slots", slots.Dec()},
			})

			return nil
		},
	}
}

func addressOrUnset(a common.Address) string {
	if a == (common.Address{}) {
		return output.Muted.Sprint("unset")
	}
	return a.Hex()
}
