// Package node ties the ledger, the transaction processor and the SQLite
// store together: every applied transaction is persisted before the next
// one runs.
package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/Arkiv-Network/editions/editions/ledger"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/Arkiv-Network/editions/editions/query"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/Arkiv-Network/editions/editions/sqlstore"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/Arkiv-Network/editions/editions/storageutil/memstate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Genesis is the state a fresh data directory starts from.
type Genesis struct {
	Admin         common.Address
	MediaAddress  common.Address
	MarketAddress common.Address
	Alloc         map[common.Address]*uint256.Int
}

type Node struct {
	mu        sync.Mutex
	db        *memstate.State
	ledger    *ledger.Ledger
	processor *editiontx.Processor
	store     *sqlstore.SQLStore
	now       func() time.Time
}

// Open loads the persisted state from store, or applies genesis when the
// store is empty.
func Open(ctx context.Context, store *sqlstore.SQLStore, backend registry.Backend, callTimeout time.Duration, genesis *Genesis) (*Node, error) {
	db := memstate.New()

	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return nil, err
	}

	if !empty {
		err = store.LoadState(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("failed to load state: %w", err)
		}
	}

	l := ledger.New(db, registry.NewGateway(backend, callTimeout))

	n := &Node{
		db:        db,
		ledger:    l,
		processor: editiontx.NewProcessor(l),
		store:     store,
		now:       time.Now,
	}

	if empty {
		err = n.applyGenesis(ctx, genesis)
		if err != nil {
			return nil, fmt.Errorf("failed to apply genesis: %w", err)
		}
	}

	return n, nil
}

func (n *Node) applyGenesis(ctx context.Context, g *Genesis) error {
	if g == nil || g.Admin == (common.Address{}) {
		return fmt.Errorf("genesis needs an admin address")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := n.ledger.Atomic(ctx, func(ctx context.Context) error {
		err := n.ledger.Initialize(ctx, g.Admin)
		if err != nil {
			return err
		}

		if g.MediaAddress != (common.Address{}) {
			err = n.ledger.SetMediaAddress(ctx, g.Admin, g.MediaAddress)
			if err != nil {
				return err
			}
		}

		if g.MarketAddress != (common.Address{}) {
			err = n.ledger.SetMarketAddress(ctx, g.Admin, g.MarketAddress)
			if err != nil {
				return err
			}
		}

		return n.ledger.View(ctx, func(db storageutil.StateDB) error {
			for addr, amount := range g.Alloc {
				db.AddBalance(addr, amount, tracing.BalanceIncreaseGenesisBalance)
			}
			return nil
		})
	})
	if err != nil {
		n.db.Finalise()
		return err
	}

	err = n.store.Commit(ctx, nil, n.db.Finalise())
	if err != nil {
		return err
	}

	log.Info("genesis applied", "admin", g.Admin, "media", g.MediaAddress, "market", g.MarketAddress, "accounts", len(g.Alloc))

	return nil
}

// Submit applies a signed transaction and persists its effects.
func (n *Node) Submit(ctx context.Context, env *editiontx.Envelope) (*editiontx.Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	receipt, err := n.processor.Execute(ctx, env)

	// a reverted transaction leaves nothing to persist but the journal
	// still has to be dropped
	changes := n.db.Finalise()
	if err != nil {
		return nil, err
	}

	touched, err := n.touchedEditions(ctx, receipt.Logs)
	if err != nil {
		log.Crit("failed to read back applied transaction", "hash", receipt.TxHash, "error", err)
	}

	err = n.store.Commit(ctx, &sqlstore.TxRecord{
		Hash:      receipt.TxHash,
		Sender:    receipt.Sender,
		Nonce:     receipt.Nonce,
		AppliedAt: n.now(),
		Editions:  touched,
	}, changes)
	if err != nil {
		log.Crit("failed to persist applied transaction", "hash", receipt.TxHash, "error", err)
	}

	return receipt, nil
}

// touchedEditions reads the current record of every edition named in ls.
func (n *Node) touchedEditions(ctx context.Context, ls []*types.Log) ([]*editionstore.Edition, error) {
	seen := make(map[uint256.Int]bool)
	var editions []*editionstore.Edition

	for _, l := range ls {
		ev, err := logs.Parse(l)
		if err != nil {
			return nil, err
		}

		var id *uint256.Int
		switch ev := ev.(type) {
		case *logs.EditionCreatedEvent:
			id = ev.ID
		case *logs.EditionPurchasedEvent:
			id = ev.ID
		case *logs.FundsWithdrawnEvent:
			id = ev.ID
		default:
			continue
		}

		if seen[*id] {
			continue
		}
		seen[*id] = true

		e, err := n.ledger.Edition(ctx, id)
		if err != nil {
			return nil, err
		}
		editions = append(editions, e)
	}

	return editions, nil
}

// QueryEditions returns the editions matching the filter q.
func (n *Node) QueryEditions(ctx context.Context, q string, options query.QueryOptions) ([]*editionstore.Edition, error) {
	ids, err := n.store.QueryEditions(ctx, q, options)
	if err != nil {
		return nil, err
	}

	editions := make([]*editionstore.Edition, 0, len(ids))
	for _, id := range ids {
		e, err := n.ledger.Edition(ctx, id)
		if err != nil {
			return nil, err
		}
		editions = append(editions, e)
	}

	return editions, nil
}

func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

func (n *Node) Processor() *editiontx.Processor {
	return n.processor
}

func (n *Node) Store() *sqlstore.SQLStore {
	return n.store
}
