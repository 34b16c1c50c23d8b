package editiontx

import (
	"fmt"

	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EditionTransaction is a signed batch of ledger operations applied as one
// unit: either every operation succeeds or none is applied.
//
// Operations run in a fixed order: registry changes, creations, purchases,
// withdrawals. The sender pays the sum of all Buy payments out of its ledger
// balance; the payment is refunded if any operation fails.
type EditionTransaction struct {
	Nonce    uint64           `json:"nonce"`
	Registry []RegistryChange `json:"registry"`
	Create   []Create         `json:"create"`
	Buy      []Buy            `json:"buy"`
	Withdraw []*uint256.Int   `json:"withdraw"`
}

// RegistryChange points the ledger at a new media or split registry.
// Kind is logs.RegistryKindMedia or logs.RegistryKindMarket.
type RegistryChange struct {
	Kind    common.Hash    `json:"kind"`
	Address common.Address `json:"address"`
}

type Create struct {
	Supply       *uint256.Int   `json:"supply"`
	Price        *uint256.Int   `json:"price"`
	FundsAddress common.Address `json:"fundsAddress"`
	MediaID      *uint256.Int   `json:"mediaId"`
}

type Buy struct {
	EditionID *uint256.Int `json:"editionId"`
	Payment   *uint256.Int `json:"payment"`
}

func (tx *EditionTransaction) Validate() error {
	if len(tx.Registry)+len(tx.Create)+len(tx.Buy)+len(tx.Withdraw) == 0 {
		return ErrEmptyTransaction
	}

	for i, change := range tx.Registry {
		if change.Kind != logs.RegistryKindMedia && change.Kind != logs.RegistryKindMarket {
			return fmt.Errorf("registry[%d] has unknown kind %s", i, change.Kind.Hex())
		}
		if change.Address == (common.Address{}) {
			return fmt.Errorf("registry[%d] address is the zero address", i)
		}
	}

	for i, create := range tx.Create {
		if create.Supply == nil || create.Price == nil || create.MediaID == nil {
			return fmt.Errorf("create[%d] is missing supply, price or media id", i)
		}
	}

	for i, buy := range tx.Buy {
		if buy.EditionID == nil || buy.Payment == nil {
			return fmt.Errorf("buy[%d] is missing edition id or payment", i)
		}
	}

	for i, id := range tx.Withdraw {
		if id == nil {
			return fmt.Errorf("withdraw[%d] is missing edition id", i)
		}
	}

	return nil
}

// TotalPayment sums the payments attached to the purchases.
func (tx *EditionTransaction) TotalPayment() (*uint256.Int, error) {
	total := new(uint256.Int)
	for i, buy := range tx.Buy {
		if buy.Payment == nil {
			continue
		}
		var overflow bool
		total, overflow = new(uint256.Int).AddOverflow(total, buy.Payment)
		if overflow {
			return nil, fmt.Errorf("buy[%d] payment overflows the total", i)
		}
	}
	return total, nil
}

const (
	QueryBidShares = "bidShares"
	QueryMediaData = "mediaData"
)

// Query is a signed read of buyer-only data. Signing proves the caller is
// the buyer; Expires (unix seconds) bounds how long the signature is good for.
type Query struct {
	Method    string       `json:"method"`
	EditionID *uint256.Int `json:"editionId"`
	Expires   uint64       `json:"expires"`
}
