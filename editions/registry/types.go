package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// D256 is a fixed point decimal with 18 decimals, as used by the split
// registry: 100% is 100 * 10^18.
type D256 struct {
	Value *uint256.Int `json:"value"`
}

var decimalUnit = uint256.NewInt(1_000_000_000_000_000_000)

// String renders the value as a percentage with up to 18 fractional digits.
func (d D256) String() string {
	if d.Value == nil {
		return "0%"
	}
	whole, frac := new(uint256.Int).DivMod(d.Value, decimalUnit, new(uint256.Int))
	if frac.IsZero() {
		return whole.Dec() + "%"
	}
	fs := fmt.Sprintf("%018s", frac.Dec())
	for fs[len(fs)-1] == '0' {
		fs = fs[:len(fs)-1]
	}
	return whole.Dec() + "." + fs + "%"
}

// BidShares is the revenue split recorded for a media item.
type BidShares struct {
	PrevOwner D256 `json:"prevOwner"`
	Creator   D256 `json:"creator"`
	Owner     D256 `json:"owner"`
}

// MediaData is the canonical metadata of a media item.
type MediaData struct {
	TokenURI     string      `json:"tokenURI"`
	MetadataURI  string      `json:"metadataURI"`
	ContentHash  common.Hash `json:"contentHash"`
	MetadataHash common.Hash `json:"metadataHash"`
}
