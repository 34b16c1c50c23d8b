package output

import (
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/params"
	"github.com/fatih/color"
	"github.com/holiman/uint256"
	"github.com/olekukonko/tablewriter"
)

var (
	Success = color.New(color.FgGreen, color.Bold)
	Failure = color.New(color.FgRed, color.Bold)
	Muted   = color.New(color.Faint)
)

// EthToFloat converts wei to a float number of ether for display.
func EthToFloat(n *big.Int) float64 {
	f := new(big.Rat).SetFrac(n, big.NewInt(params.Ether))
	res, _ := f.Float64()
	return res
}

// Ether formats a wei amount as ether, keeping the exact wei value.
func Ether(v *uint256.Int) string {
	if v == nil {
		v = new(uint256.Int)
	}
	return fmt.Sprintf("%s ETH (%s wei)", humanize.Commaf(EthToFloat(v.ToBig())), humanize.BigComma(v.ToBig()))
}

// Table writes rows under header to out.
func Table(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

// Receipt prints what an applied transaction did.
func Receipt(r *editiontx.Receipt) {
	Success.Println("Transaction applied")
	fmt.Println("Hash:  ", r.TxHash.Hex())
	fmt.Println("Sender:", r.Sender.Hex())

	var rows [][]string
	for _, l := range r.Logs {
		ev, err := logs.Parse(l)
		if err != nil {
			continue
		}
		rows = append(rows, eventRow(ev))
	}
	if len(rows) > 0 {
		Table(os.Stdout, []string{"event", "edition", "detail"}, rows)
	}
}

func eventRow(ev logs.Event) []string {
	switch ev := ev.(type) {
	case *logs.EditionCreatedEvent:
		return []string{"EditionCreated", ev.ID.Dec(), fmt.Sprintf("supply %s at %s", ev.Supply.Dec(), Ether(ev.Price))}
	case *logs.EditionPurchasedEvent:
		return []string{"EditionPurchased", ev.ID.Dec(), fmt.Sprintf("copy %s to %s", ev.Sold.Dec(), ev.Buyer.Hex())}
	case *logs.FundsWithdrawnEvent:
		return []string{"FundsWithdrawn", ev.ID.Dec(), fmt.Sprintf("%s to %s", Ether(ev.Amount), ev.Recipient.Hex())}
	case *logs.RegistryAddressChangedEvent:
		kind := "market"
		if ev.Kind == logs.RegistryKindMedia {
			kind = "media"
		}
		return []string{"RegistryAddressChanged", "-", fmt.Sprintf("%s %s -> %s", kind, ev.Previous.Hex(), ev.Current.Hex())}
	}
	return []string{"unknown", "-", "-"}
}
