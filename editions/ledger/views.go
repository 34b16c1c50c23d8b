package ledger

import (
	"context"

	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Edition returns a copy of the edition record.
func (l *Ledger) Edition(ctx context.Context, id *uint256.Int) (*editionstore.Edition, error) {
	var e *editionstore.Edition
	err := l.view(ctx, func(store *editionstore.Store) (err error) {
		e, err = store.Get(id)
		return err
	})
	return e, err
}

// AmountWithdrawnToCreator returns how much of the edition's revenue has
// been paid out.
func (l *Ledger) AmountWithdrawnToCreator(ctx context.Context, id *uint256.Int) (*uint256.Int, error) {
	e, err := l.Edition(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Withdrawn, nil
}

// EscrowBalance returns what the ledger still holds for the edition.
func (l *Ledger) EscrowBalance(ctx context.Context, id *uint256.Int) (*uint256.Int, error) {
	e, err := l.Edition(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.EscrowBalance(), nil
}

// StrandedOverpayment returns the part of the escrow paid above the price,
// which is never released.
func (l *Ledger) StrandedOverpayment(ctx context.Context, id *uint256.Int) (*uint256.Int, error) {
	e, err := l.Edition(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Stranded(), nil
}

// EditionCount returns the number of editions created, i.e. the highest id.
func (l *Ledger) EditionCount(ctx context.Context) *uint256.Int {
	n := new(uint256.Int)
	_ = l.view(ctx, func(store *editionstore.Store) error {
		n = store.Count()
		return nil
	})
	return n
}

// BuyerToEdition returns the edition of the buyer's most recent purchase,
// or zero.
func (l *Ledger) BuyerToEdition(ctx context.Context, buyer common.Address) *uint256.Int {
	id := new(uint256.Int)
	_ = l.view(ctx, func(store *editionstore.Store) error {
		id = store.BuyerOf(buyer)
		return nil
	})
	return id
}

// EditionsOfCreator pages through the ids of editions paying fundsAddress.
func (l *Ledger) EditionsOfCreator(ctx context.Context, fundsAddress common.Address, offset, limit uint64) []*uint256.Int {
	var ids []*uint256.Int
	_ = l.view(ctx, func(store *editionstore.Store) error {
		ids = store.EditionsOf(fundsAddress, offset, limit)
		return nil
	})
	return ids
}

// NumberOfEditionsOf returns how many editions pay out to fundsAddress.
func (l *Ledger) NumberOfEditionsOf(ctx context.Context, fundsAddress common.Address) *uint256.Int {
	n := new(uint256.Int)
	_ = l.view(ctx, func(store *editionstore.Store) error {
		n = store.NumberOfEditionsOf(fundsAddress)
		return nil
	})
	return n
}

func (l *Ledger) MediaAddress(ctx context.Context) common.Address {
	var a common.Address
	_ = l.view(ctx, func(*editionstore.Store) error {
		a = registry.MediaAddress(l.db)
		return nil
	})
	return a
}

func (l *Ledger) MarketAddress(ctx context.Context) common.Address {
	var a common.Address
	_ = l.view(ctx, func(*editionstore.Store) error {
		a = registry.MarketAddress(l.db)
		return nil
	})
	return a
}

func (l *Ledger) Admin(ctx context.Context) common.Address {
	var a common.Address
	_ = l.view(ctx, func(*editionstore.Store) error {
		a = registry.Admin(l.db)
		return nil
	})
	return a
}
