package history

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Arkiv-Network/editions/cmd/editions/pkg/client"
	"github.com/Arkiv-Network/editions/cmd/editions/pkg/output"
	"github.com/Arkiv-Network/editions/editions/sqlstore"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func History() *cli.Command {
	cfg := struct {
		rpcURL string
	}{}
	return &cli.Command{
		Name:      "history",
		Usage:     "Get the history of a given edition",
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

			var history []sqlstore.HistoryEntry
			err = rpcClient.CallContext(ctx, &history, "editions_getHistory", id)
			if err != nil {
				return fmt.Errorf("failed to get history: %w", err)
			}

			rows := make([][]string, 0, len(history))
			for _, h := range history {
				rows = append(rows, []string{
					humanize.Time(h.AppliedAt),
					h.Event,
					h.Sender.Hex(),
					string(h.Data),
				})
			}

			output.Table(os.Stdout, []string{"when", "event", "sender", "data"}, rows)

			return nil
		},
	}
}
