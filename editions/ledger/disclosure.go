package ledger

import (
	"context"
	"fmt"

	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// disclosedEdition returns the edition if caller's most recent purchase is id.
func disclosedEdition(store *editionstore.Store, caller common.Address, id *uint256.Int) (*editionstore.Edition, error) {
	if id == nil || id.IsZero() || !store.BuyerOf(caller).Eq(id) {
		return nil, fmt.Errorf("%w: you did not purchase this token", ErrUnauthorized)
	}
	return store.Get(id)
}

// EditionBidShares returns the split registry's shares for the media behind
// edition id. Only the buyer whose most recent purchase is id may ask.
func (l *Ledger) EditionBidShares(ctx context.Context, caller common.Address, id *uint256.Int) (*registry.BidShares, error) {
	var shares *registry.BidShares

	err := l.view(ctx, func(store *editionstore.Store) error {
		e, err := disclosedEdition(store, caller, id)
		if err != nil {
			return err
		}

		shares, err = l.gateway.BidShares(ctx, l.db, e.MediaID)
		return err
	})

	return shares, err
}

// EditionMediaData returns the media registry's metadata for the media
// behind edition id. Only the buyer whose most recent purchase is id may ask.
func (l *Ledger) EditionMediaData(ctx context.Context, caller common.Address, id *uint256.Int) (*registry.MediaData, error) {
	var data *registry.MediaData

	err := l.view(ctx, func(store *editionstore.Store) error {
		e, err := disclosedEdition(store, caller, id)
		if err != nil {
			return err
		}

		data, err = l.gateway.MediaData(ctx, l.db, e.MediaID)
		return err
	})

	return data, err
}
