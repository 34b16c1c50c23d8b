package ledger

import (
	"context"
	"fmt"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Transferer pays amount out of the escrow account to a recipient. It is
// called inside the withdrawal's frame; a returned error reverts the
// withdrawal.
type Transferer interface {
	Transfer(ctx context.Context, db storageutil.StateDB, to common.Address, amount *uint256.Int) error
}

// Receiver is invoked when an account is paid, like a contract's receive
// hook. It may call back into the ledger with ctx; returning an error
// rejects the payment.
type Receiver func(ctx context.Context, from common.Address, amount *uint256.Int) error

// StateTransfer moves balances between accounts of the ledger state and
// notifies registered receivers.
type StateTransfer struct {
	receivers map[common.Address]Receiver
}

func NewStateTransfer() *StateTransfer {
	return &StateTransfer{receivers: make(map[common.Address]Receiver)}
}

// SetReceiver registers r for payments to addr. A nil r removes it.
func (t *StateTransfer) SetReceiver(addr common.Address, r Receiver) {
	if r == nil {
		delete(t.receivers, addr)
		return
	}
	t.receivers[addr] = r
}

func (t *StateTransfer) Transfer(ctx context.Context, db storageutil.StateDB, to common.Address, amount *uint256.Int) error {
	from := address.EditionsProcessorAddress

	balance := db.GetBalance(from)
	if balance.Lt(amount) {
		return fmt.Errorf("escrow holds %s, cannot pay %s", balance.Dec(), amount.Dec())
	}

	db.SubBalance(from, amount, tracing.BalanceChangeTransfer)
	db.AddBalance(to, amount, tracing.BalanceChangeTransfer)

	if r, ok := t.receivers[to]; ok {
		err := r(ctx, from, amount)
		if err != nil {
			return fmt.Errorf("recipient %s rejected payment: %w", to.Hex(), err)
		}
	}

	return nil
}

// WithdrawFunds pays the edition's unclaimed revenue to its funds address
// and returns the amount paid. The withdrawn total is recorded before the
// payment is made; a failed payment reverts the whole call.
func (l *Ledger) WithdrawFunds(ctx context.Context, caller common.Address, id *uint256.Int) (*uint256.Int, error) {
	claimable := new(uint256.Int)

	_, err := l.transact(ctx, true, func(ctx context.Context, f *frame) error {
		e, err := f.store.Get(id)
		if err != nil {
			return err
		}

		if e.FundsAddress != caller {
			return fmt.Errorf("%w: %s is not the creator of edition %s", ErrUnauthorized, caller.Hex(), id.Dec())
		}

		claimable = e.Claimable()
		if claimable.IsZero() {
			return nil
		}

		e.Withdrawn.Add(e.Withdrawn, claimable)
		err = f.store.Put(e)
		if err != nil {
			return fmt.Errorf("failed to store edition: %w", err)
		}

		err = l.pay(ctx, e.FundsAddress, claimable)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}

		f.emit(l.db, &logs.FundsWithdrawnEvent{
			ID:        e.ID,
			Recipient: e.FundsAddress,
			Amount:    claimable,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !claimable.IsZero() {
		log.Info("funds withdrawn", "id", id, "recipient", caller, "amount", claimable)
	}

	return claimable, nil
}
