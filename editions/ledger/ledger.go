// Package ledger implements the edition sale ledger: creating editions of
// registry owned media, selling numbered copies against an escrowed price,
// paying creators out and disclosing media data to buyers.
//
// Every mutating call runs inside a transaction frame: the ledger lock is
// taken, a state snapshot is made and all changes are reverted if the call
// fails. The frame travels in the context.Context, so calls made from inside
// a frame (for example by a payout recipient) must use the context they
// were handed; the mutating entry points are non-reentrant and fail with
// ErrReentrantCall when entered again from within the same frame. While a
// payout is in flight, calls that arrive without the frame's context fail
// with ErrReentrantCall as well.
package ledger

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/Arkiv-Network/editions/editions/storageaccounting"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

type Ledger struct {
	mu       sync.RWMutex
	db       storageutil.StateDB
	gateway  *registry.Gateway
	transfer Transferer
	feed     event.FeedOf[logs.Event]

	// set while the transferer runs; the ledger lock is held then
	payingOut atomic.Bool
}

type Option func(*Ledger)

// WithTransferer replaces the default StateTransfer used to pay creators.
func WithTransferer(t Transferer) Option {
	return func(l *Ledger) {
		l.transfer = t
	}
}

func New(db storageutil.StateDB, gateway *registry.Gateway, opts ...Option) *Ledger {
	l := &Ledger{
		db:       db,
		gateway:  gateway,
		transfer: NewStateTransfer(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type frameKey struct{}

type frame struct {
	slots   *storageaccounting.SlotUsageCounter
	store   *editionstore.Store
	entered bool
	closed  bool
	events  []logs.Event
	logs    []*types.Log
}

func (f *frame) emit(db storageutil.StateDB, ev logs.Event) {
	l := ev.Log()
	db.AddLog(l)
	f.events = append(f.events, ev)
	f.logs = append(f.logs, l)
}

func activeFrame(ctx context.Context) (*frame, bool) {
	f, ok := ctx.Value(frameKey{}).(*frame)
	if !ok || f.closed {
		return nil, false
	}
	return f, true
}

// Atomic runs fn as a single all-or-nothing unit under the ledger lock. Ledger
// calls made by fn with the context it receives join the unit. It returns the
// logs emitted by the committed unit.
func (l *Ledger) Atomic(ctx context.Context, fn func(ctx context.Context) error) ([]*types.Log, error) {
	f, err := l.transact(ctx, false, func(ctx context.Context, _ *frame) error {
		return fn(ctx)
	})
	if err != nil {
		return nil, err
	}
	return f.logs, nil
}

// transact runs fn inside a frame. guarded marks a non-reentrant entry point.
// Called from within an open frame it joins it, reverting only its own
// changes on failure.
func (l *Ledger) transact(ctx context.Context, guarded bool, fn func(ctx context.Context, f *frame) error) (*frame, error) {
	f, nested := activeFrame(ctx)
	if !nested {
		if l.payingOut.Load() {
			return nil, ErrReentrantCall
		}

		f, err := l.runFrame(ctx, guarded, fn)
		if err != nil {
			return nil, err
		}

		for _, ev := range f.events {
			l.feed.Send(ev)
		}
		return f, nil
	}

	if guarded {
		if f.entered {
			return nil, ErrReentrantCall
		}
		f.entered = true
		defer func() { f.entered = false }()
	}

	mark := len(f.events)
	delta := f.slots.Delta()
	snapshot := l.db.Snapshot()
	err := fn(ctx, f)
	if err != nil {
		l.db.RevertToSnapshot(snapshot)
		f.slots.Reset(delta)
		f.events = f.events[:mark]
		f.logs = f.logs[:mark]
		return nil, err
	}

	return f, nil
}

func (l *Ledger) runFrame(ctx context.Context, guarded bool, fn func(ctx context.Context, f *frame) error) (*frame, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slots := storageaccounting.NewSlotUsageCounter(l.db)
	f := &frame{
		slots:   slots,
		store:   editionstore.New(slots),
		entered: guarded,
	}
	defer func() { f.closed = true }()

	snapshot := l.db.Snapshot()
	err := fn(context.WithValue(ctx, frameKey{}, f), f)
	if err != nil {
		l.db.RevertToSnapshot(snapshot)
		log.Debug("ledger call reverted", "error", err)
		return nil, err
	}

	slots.Flush()

	return f, nil
}

// view runs fn with a consistent read of the ledger state.
func (l *Ledger) view(ctx context.Context, fn func(store *editionstore.Store) error) error {
	if f, ok := activeFrame(ctx); ok {
		return fn(f.store)
	}
	if l.payingOut.Load() {
		return ErrReentrantCall
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return fn(editionstore.New(l.db))
}

// View runs fn with a consistent read of the raw ledger state. Inside a
// frame fn sees the frame's uncommitted changes and may write to them.
func (l *Ledger) View(ctx context.Context, fn func(db storageutil.StateDB) error) error {
	return l.view(ctx, func(*editionstore.Store) error {
		return fn(l.db)
	})
}

// SubscribeEvents delivers every committed ledger event to ch.
func (l *Ledger) SubscribeEvents(ch chan<- logs.Event) event.Subscription {
	return l.feed.Subscribe(ch)
}

// pay runs the transferer, rejecting calls that bypass the frame meanwhile.
func (l *Ledger) pay(ctx context.Context, to common.Address, amount *uint256.Int) error {
	l.payingOut.Store(true)
	defer l.payingOut.Store(false)

	return l.transfer.Transfer(ctx, l.db, to, amount)
}

// Initialize stores the admin allowed to change registry addresses. It can
// only be done once per state.
func (l *Ledger) Initialize(ctx context.Context, admin common.Address) error {
	_, err := l.transact(ctx, true, func(ctx context.Context, f *frame) error {
		current := registry.Admin(f.slots)
		if current != (common.Address{}) {
			return ErrAlreadyInitialized
		}
		registry.SetAdmin(f.slots, admin)
		return nil
	})
	return err
}

// Balance returns the native balance of addr in the ledger state.
func (l *Ledger) Balance(ctx context.Context, addr common.Address) *uint256.Int {
	balance := new(uint256.Int)
	_ = l.view(ctx, func(*editionstore.Store) error {
		balance = l.db.GetBalance(addr)
		return nil
	})
	return balance
}

// UsedSlots returns the number of storage slots the ledger occupies.
func (l *Ledger) UsedSlots(ctx context.Context) *uint256.Int {
	used := new(uint256.Int)
	_ = l.view(ctx, func(*editionstore.Store) error {
		used = storageaccounting.GetNumberOfUsedSlots(l.db)
		return nil
	})
	return used
}

// EscrowAddress is the account holding all sale proceeds.
func (l *Ledger) EscrowAddress() common.Address {
	return address.EditionsProcessorAddress
}
