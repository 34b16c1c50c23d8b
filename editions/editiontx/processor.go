// Package editiontx applies signed, compressed batches of ledger operations
// and answers signed buyer-only queries.
package editiontx

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/Arkiv-Network/editions/editions/ledger"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/Arkiv-Network/editions/editions/storageaccounting"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/Arkiv-Network/editions/editions/storageutil/keyset/hashmap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var NonceSalt = []byte("editionsNonce")

// Receipt describes the effects of an applied transaction.
type Receipt struct {
	TxHash    common.Hash    `json:"txHash"`
	Sender    common.Address `json:"sender"`
	Nonce     uint64         `json:"nonce"`
	Created   []*uint256.Int `json:"created"`
	Sold      []*uint256.Int `json:"sold"`
	Withdrawn []*uint256.Int `json:"withdrawn"`
	Logs      []*types.Log   `json:"logs"`
}

type Processor struct {
	ledger *ledger.Ledger
	now    func() time.Time
}

func NewProcessor(l *ledger.Ledger) *Processor {
	return &Processor{ledger: l, now: time.Now}
}

func nonces(db storageutil.StateAccess) *hashmap.Map {
	return hashmap.NewMap(db, NonceSalt)
}

func readNonce(db storageutil.StateAccess, sender common.Address) uint64 {
	v := nonces(db).Get(common.BytesToHash(sender[:]))
	return binary.BigEndian.Uint64(v[24:])
}

func useNonce(db storageutil.StateAccess, sender common.Address, nonce uint64) error {
	expected := readNonce(db, sender)
	switch {
	case nonce < expected:
		return fmt.Errorf("%w: got %d, expected %d", ErrNonceTooLow, nonce, expected)
	case nonce > expected:
		return fmt.Errorf("%w: got %d, expected %d", ErrNonceTooHigh, nonce, expected)
	}

	var v common.Hash
	binary.BigEndian.PutUint64(v[24:], expected+1)
	nonces(db).Set(common.BytesToHash(sender[:]), v)

	return nil
}

// Nonce returns the nonce the next transaction of sender must carry.
func (p *Processor) Nonce(ctx context.Context, sender common.Address) uint64 {
	var n uint64
	_ = p.ledger.View(ctx, func(db storageutil.StateDB) error {
		n = readNonce(db, sender)
		return nil
	})
	return n
}

// chargeSender consumes the nonce and takes the total payment from the
// sender's balance into the running frame.
func chargeSender(db storageutil.StateDB, sender common.Address, nonce uint64, total *uint256.Int) error {
	slots := storageaccounting.NewSlotUsageCounter(db)

	err := useNonce(slots, sender, nonce)
	if err != nil {
		return err
	}
	slots.Flush()

	if total.IsZero() {
		return nil
	}

	balance := db.GetBalance(sender)
	if balance.Lt(total) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, sender.Hex(), balance.Dec(), total.Dec())
	}
	db.SubBalance(sender, total, tracing.BalanceChangeTransfer)

	return nil
}

// Execute verifies and applies a signed transaction.
func (p *Processor) Execute(ctx context.Context, env *Envelope) (_ *Receipt, err error) {
	defer func() {
		if err != nil {
			log.Error("failed to run edition transaction", "hash", env.Hash(), "error", err)
		}
	}()

	sender, err := env.Sender()
	if err != nil {
		return nil, err
	}

	tx, err := env.Transaction()
	if err != nil {
		return nil, fmt.Errorf("failed to unpack edition transaction: %w", err)
	}

	err = tx.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate edition transaction: %w", err)
	}

	total, err := tx.TotalPayment()
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		TxHash: env.Hash(),
		Sender: sender,
		Nonce:  tx.Nonce,
	}

	receipt.Logs, err = p.ledger.Atomic(ctx, func(ctx context.Context) error {
		err := p.ledger.View(ctx, func(db storageutil.StateDB) error {
			return chargeSender(db, sender, tx.Nonce, total)
		})
		if err != nil {
			return err
		}

		for i, change := range tx.Registry {
			switch change.Kind {
			case logs.RegistryKindMedia:
				err = p.ledger.SetMediaAddress(ctx, sender, change.Address)
			case logs.RegistryKindMarket:
				err = p.ledger.SetMarketAddress(ctx, sender, change.Address)
			}
			if err != nil {
				return fmt.Errorf("registry[%d]: %w", i, err)
			}
		}

		for i, create := range tx.Create {
			id, err := p.ledger.CreateEdition(ctx, sender, create.Supply, create.Price, create.FundsAddress, create.MediaID)
			if err != nil {
				return fmt.Errorf("create[%d]: %w", i, err)
			}
			receipt.Created = append(receipt.Created, id)
		}

		for i, buy := range tx.Buy {
			sold, err := p.ledger.BuyEdition(ctx, sender, buy.EditionID, buy.Payment)
			if err != nil {
				return fmt.Errorf("buy[%d]: %w", i, err)
			}
			receipt.Sold = append(receipt.Sold, sold)
		}

		for i, id := range tx.Withdraw {
			amount, err := p.ledger.WithdrawFunds(ctx, sender, id)
			if err != nil {
				return fmt.Errorf("withdraw[%d]: %w", i, err)
			}
			receipt.Withdrawn = append(receipt.Withdrawn, amount)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("edition transaction applied", "hash", receipt.TxHash, "sender", sender, "nonce", tx.Nonce, "logs", len(receipt.Logs))

	return receipt, nil
}

// Call answers a signed buyer-only query.
func (p *Processor) Call(ctx context.Context, env *Envelope) (any, error) {
	sender, err := env.Sender()
	if err != nil {
		return nil, err
	}

	q, err := env.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to unpack query: %w", err)
	}

	if q.Expires != 0 && uint64(p.now().Unix()) > q.Expires {
		return nil, ErrQueryExpired
	}

	switch q.Method {
	case QueryBidShares:
		return p.ledger.EditionBidShares(ctx, sender, q.EditionID)
	case QueryMediaData:
		return p.ledger.EditionMediaData(ctx, sender, q.EditionID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, q.Method)
	}
}
