package node_test

import (
	"context"
	"crypto/ecdsa"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/Arkiv-Network/editions/editions/ledger"
	"github.com/Arkiv-Network/editions/editions/node"
	"github.com/Arkiv-Network/editions/editions/query"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/Arkiv-Network/editions/editions/sqlstore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

func TestNodePersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "editions.db")

	creatorKey, creator := mustKey(t)
	buyerKey, buyer := mustKey(t)

	backend := &registry.MockBackend{
		OwnerOfFn: func(context.Context, common.Address, *uint256.Int) (common.Address, error) {
			return creator, nil
		},
	}

	genesis := &node.Genesis{
		Admin:        common.HexToAddress("0xad"),
		MediaAddress: common.HexToAddress("0x1"),
		Alloc:        map[common.Address]*uint256.Int{buyer: uint256.NewInt(100)},
	}

	store, err := sqlstore.NewStore(path)
	require.NoError(t, err)

	n, err := node.Open(ctx, store, backend, time.Second, genesis)
	require.NoError(t, err)

	submit := func(key *ecdsa.PrivateKey, tx *editiontx.EditionTransaction) (*editiontx.Receipt, error) {
		env, err := editiontx.SignTransaction(tx, key)
		require.NoError(t, err)
		return n.Submit(ctx, env)
	}

	r, err := submit(creatorKey, &editiontx.EditionTransaction{
		Create: []editiontx.Create{{
			Supply:       uint256.NewInt(1),
			Price:        uint256.NewInt(40),
			FundsAddress: creator,
			MediaID:      uint256.NewInt(0),
		}},
	})
	require.NoError(t, err)
	id := r.Created[0]

	_, err = submit(buyerKey, &editiontx.EditionTransaction{
		Buy: []editiontx.Buy{{EditionID: id, Payment: uint256.NewInt(40)}},
	})
	require.NoError(t, err)

	_, err = submit(buyerKey, &editiontx.EditionTransaction{
		Nonce: 1,
		Buy:   []editiontx.Buy{{EditionID: id, Payment: uint256.NewInt(40)}},
	})
	require.ErrorIs(t, err, ledger.ErrSoldOut)

	history, err := n.Store().History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)

	require.NoError(t, store.Close())

	store, err = sqlstore.NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	// genesis is ignored once state exists
	restarted, err := node.Open(ctx, store, backend, time.Second, nil)
	require.NoError(t, err)

	l := restarted.Ledger()
	require.Equal(t, genesis.Admin, l.Admin(ctx))
	require.Equal(t, uint256.NewInt(60), l.Balance(ctx, buyer))
	require.Equal(t, id, l.BuyerToEdition(ctx, buyer))
	require.Equal(t, uint64(1), restarted.Processor().Nonce(ctx, buyer))

	e, err := l.Edition(ctx, id)
	require.NoError(t, err)
	require.True(t, e.SoldOut())
}

func TestOpenRequiresAdminOnFreshStore(t *testing.T) {
	store, err := sqlstore.NewStore(filepath.Join(t.TempDir(), "editions.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = node.Open(context.Background(), store, &registry.MockBackend{}, time.Second, &node.Genesis{})
	require.Error(t, err)
}

func TestQueryEditionsFollowsSubmits(t *testing.T) {
	ctx := context.Background()

	creatorKey, creator := mustKey(t)
	buyerKey, buyer := mustKey(t)

	store, err := sqlstore.NewStore(filepath.Join(t.TempDir(), "editions.db"))
	require.NoError(t, err)
	defer store.Close()

	n, err := node.Open(ctx, store, &registry.MockBackend{
		OwnerOfFn: func(context.Context, common.Address, *uint256.Int) (common.Address, error) {
			return creator, nil
		},
	}, time.Second, &node.Genesis{
		Admin:        common.HexToAddress("0xad"),
		MediaAddress: common.HexToAddress("0x1"),
		Alloc:        map[common.Address]*uint256.Int{buyer: uint256.NewInt(100)},
	})
	require.NoError(t, err)

	env, err := editiontx.SignTransaction(&editiontx.EditionTransaction{
		Create: []editiontx.Create{
			{Supply: uint256.NewInt(2), Price: uint256.NewInt(10), FundsAddress: creator, MediaID: uint256.NewInt(0)},
			{Supply: uint256.NewInt(2), Price: uint256.NewInt(30), FundsAddress: creator, MediaID: uint256.NewInt(1)},
		},
	}, creatorKey)
	require.NoError(t, err)
	r, err := n.Submit(ctx, env)
	require.NoError(t, err)

	sold, err := n.QueryEditions(ctx, `sold > 0`, query.QueryOptions{})
	require.NoError(t, err)
	require.Empty(t, sold)

	env, err = editiontx.SignTransaction(&editiontx.EditionTransaction{
		Buy: []editiontx.Buy{{EditionID: r.Created[1], Payment: uint256.NewInt(30)}},
	}, buyerKey)
	require.NoError(t, err)
	_, err = n.Submit(ctx, env)
	require.NoError(t, err)

	sold, err = n.QueryEditions(ctx, `sold > 0`, query.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, sold, 1)
	require.Equal(t, r.Created[1], sold[0].ID)
	require.Equal(t, uint256.NewInt(1), sold[0].Sold)

	all, err := n.QueryEditions(ctx, `$all`, query.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
