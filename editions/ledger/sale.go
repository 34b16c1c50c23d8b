package ledger

import (
	"context"
	"fmt"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// CreateEdition registers a new edition of mediaID. The caller must own the
// media item in the media registry; proceeds are paid to fundsAddress.
func (l *Ledger) CreateEdition(
	ctx context.Context,
	caller common.Address,
	supply *uint256.Int,
	price *uint256.Int,
	fundsAddress common.Address,
	mediaID *uint256.Int,
) (*uint256.Int, error) {

	switch {
	case supply == nil || supply.IsZero():
		return nil, fmt.Errorf("%w: supply must be positive", ErrInvalidEdition)
	case price == nil || price.IsZero():
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidEdition)
	case mediaID == nil:
		return nil, fmt.Errorf("%w: media id is required", ErrInvalidEdition)
	case fundsAddress == (common.Address{}):
		return nil, fmt.Errorf("%w: funds address is the zero address", ErrInvalidEdition)
	}

	if _, overflow := new(uint256.Int).MulOverflow(supply, price); overflow {
		return nil, fmt.Errorf("%w: supply * price overflows", ErrInvalidEdition)
	}

	var id *uint256.Int

	_, err := l.transact(ctx, true, func(ctx context.Context, f *frame) error {
		owns, err := l.gateway.IsOwner(ctx, f.slots, caller, mediaID)
		if err != nil {
			return err
		}
		if !owns {
			return fmt.Errorf("%w: you do not own this token", ErrUnauthorized)
		}

		e := &editionstore.Edition{
			ID:           f.store.NextID(),
			Supply:       new(uint256.Int).Set(supply),
			Sold:         new(uint256.Int),
			Price:        new(uint256.Int).Set(price),
			FundsAddress: fundsAddress,
			MediaID:      new(uint256.Int).Set(mediaID),
			Withdrawn:    new(uint256.Int),
			Escrowed:     new(uint256.Int),
			Creator:      caller,
		}

		err = f.store.Put(e)
		if err != nil {
			return fmt.Errorf("failed to store edition: %w", err)
		}

		f.emit(l.db, &logs.EditionCreatedEvent{
			ID:      e.ID,
			MediaID: e.MediaID,
			Creator: e.FundsAddress,
			Supply:  e.Supply,
			Price:   e.Price,
		})

		id = e.ID

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("edition created", "id", id, "mediaId", mediaID, "creator", caller, "supply", supply, "price", price)

	return id, nil
}

// BuyEdition sells the next copy of edition id to buyer. payment is the value
// attached to the purchase; it must cover the price and is kept in escrow in
// full, overpayment included. It returns the number of copies sold so far.
func (l *Ledger) BuyEdition(ctx context.Context, buyer common.Address, id *uint256.Int, payment *uint256.Int) (*uint256.Int, error) {
	if payment == nil {
		payment = new(uint256.Int)
	}

	var sold *uint256.Int

	_, err := l.transact(ctx, true, func(ctx context.Context, f *frame) error {
		e, err := f.store.Get(id)
		if err != nil {
			return err
		}

		if e.SoldOut() {
			return fmt.Errorf("%w: edition %s sold all %s copies", ErrSoldOut, id.Dec(), e.Supply.Dec())
		}

		if payment.Lt(e.Price) {
			return fmt.Errorf("%w: paid %s, price is %s", ErrInsufficientFunds, payment.Dec(), e.Price.Dec())
		}

		escrowed, overflow := new(uint256.Int).AddOverflow(e.Escrowed, payment)
		if overflow {
			return ErrEscrowOverflow
		}

		e.Sold.AddUint64(e.Sold, 1)
		e.Escrowed = escrowed

		err = f.store.Put(e)
		if err != nil {
			return fmt.Errorf("failed to store edition: %w", err)
		}

		f.store.SetBuyer(buyer, e.ID)
		l.db.AddBalance(address.EditionsProcessorAddress, payment, tracing.BalanceChangeTransfer)

		sold = e.Sold
		f.emit(l.db, &logs.EditionPurchasedEvent{
			ID:    e.ID,
			Buyer: buyer,
			Sold:  e.Sold,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("edition purchased", "id", id, "buyer", buyer, "sold", sold, "payment", payment)

	return sold, nil
}
