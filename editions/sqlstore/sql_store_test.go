package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/ledger"
	"github.com/Arkiv-Network/editions/editions/query"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/Arkiv-Network/editions/editions/sqlstore"
	"github.com/Arkiv-Network/editions/editions/storageutil/memstate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	admin   = common.HexToAddress("0xad")
	creator = common.HexToAddress("0xc0ffee")
	buyer   = common.HexToAddress("0xb0b")
)

func newLedger(db *memstate.State) *ledger.Ledger {
	backend := &registry.MockBackend{
		OwnerOfFn: func(context.Context, common.Address, *uint256.Int) (common.Address, error) {
			return creator, nil
		},
	}
	return ledger.New(db, registry.NewGateway(backend, time.Second))
}

func openStore(t *testing.T, path string) *sqlstore.SQLStore {
	t.Helper()
	store, err := sqlstore.NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func commit(t *testing.T, store *sqlstore.SQLStore, db *memstate.State, hash string, sender common.Address) {
	t.Helper()
	err := store.Commit(context.Background(), &sqlstore.TxRecord{
		Hash:      common.HexToHash(hash),
		Sender:    sender,
		AppliedAt: time.Unix(1_700_000_000, 0),
	}, db.Finalise())
	require.NoError(t, err)
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "editions.db")
	store := openStore(t, path)

	empty, err := store.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	db := memstate.New()
	l := newLedger(db)

	require.NoError(t, l.Initialize(ctx, admin))
	require.NoError(t, l.SetMediaAddress(ctx, admin, common.HexToAddress("0x1")))
	require.NoError(t, store.Commit(ctx, nil, db.Finalise()))

	id, err := l.CreateEdition(ctx, creator, uint256.NewInt(3), uint256.NewInt(50), creator, uint256.NewInt(9))
	require.NoError(t, err)
	commit(t, store, db, "0x01", creator)

	_, err = l.BuyEdition(ctx, buyer, id, uint256.NewInt(60))
	require.NoError(t, err)
	commit(t, store, db, "0x02", buyer)

	require.NoError(t, store.Close())

	reopened := openStore(t, path)

	empty, err = reopened.IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	restored := memstate.New()
	require.NoError(t, reopened.LoadState(ctx, restored))

	l2 := newLedger(restored)

	e, err := l2.Edition(ctx, id)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1), e.Sold)
	require.Equal(t, uint256.NewInt(60), e.Escrowed)
	require.Equal(t, id, l2.BuyerToEdition(ctx, buyer))
	require.Equal(t, admin, l2.Admin(ctx))
	require.Equal(t, uint256.NewInt(60), restored.GetBalance(l2.EscrowAddress()))
	require.Equal(t, l.UsedSlots(ctx), l2.UsedSlots(ctx))
}

func TestZeroedValuesAreRemoved(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "editions.db"))

	db := memstate.New()
	key := common.HexToHash("0x1234")
	addr := common.HexToAddress("0x99")

	db.SetState(addr, key, common.HexToHash("0x1"))
	db.AddBalance(addr, uint256.NewInt(10), 0)
	require.NoError(t, store.Commit(ctx, nil, db.Finalise()))

	db.SetState(addr, key, common.Hash{})
	db.SubBalance(addr, uint256.NewInt(10), 0)
	require.NoError(t, store.Commit(ctx, nil, db.Finalise()))

	empty, err := store.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	restored := memstate.New()
	require.NoError(t, store.LoadState(ctx, restored))
	require.True(t, restored.GetBalance(addr).IsZero())
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "editions.db"))

	db := memstate.New()
	l := newLedger(db)
	require.NoError(t, l.Initialize(ctx, admin))
	require.NoError(t, l.SetMediaAddress(ctx, admin, common.HexToAddress("0x1")))
	commit(t, store, db, "0x0a", admin)

	first, err := l.CreateEdition(ctx, creator, uint256.NewInt(3), uint256.NewInt(50), creator, uint256.NewInt(1))
	require.NoError(t, err)
	second, err := l.CreateEdition(ctx, creator, uint256.NewInt(3), uint256.NewInt(50), creator, uint256.NewInt(2))
	require.NoError(t, err)
	commit(t, store, db, "0x0b", creator)

	_, err = l.BuyEdition(ctx, buyer, first, uint256.NewInt(50))
	require.NoError(t, err)
	commit(t, store, db, "0x0c", buyer)

	_, err = l.BuyEdition(ctx, buyer, second, uint256.NewInt(50))
	require.NoError(t, err)
	commit(t, store, db, "0x0d", buyer)

	_, err = l.WithdrawFunds(ctx, creator, first)
	require.NoError(t, err)
	commit(t, store, db, "0x0e", creator)

	history, err := store.History(ctx, first)
	require.NoError(t, err)

	var names []string
	for _, h := range history {
		names = append(names, h.Event)
	}
	require.Equal(t, []string{"EditionCreated", "EditionPurchased", "FundsWithdrawn"}, names)
	require.Equal(t, common.HexToHash("0x0c"), history[1].TxHash)
	require.Equal(t, buyer, history[1].Sender)
	require.Equal(t, int64(1_700_000_000), history[1].AppliedAt.Unix())

	purchases, err := store.Purchases(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	require.Equal(t, common.HexToHash("0x0d"), purchases[1].TxHash)

	none, err := store.History(ctx, uint256.NewInt(77))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestQueryEditions(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "editions.db"))

	db := memstate.New()
	l := newLedger(db)
	require.NoError(t, l.Initialize(ctx, admin))
	require.NoError(t, l.SetMediaAddress(ctx, admin, common.HexToAddress("0x1")))
	require.NoError(t, store.Commit(ctx, nil, db.Finalise()))

	other := common.HexToAddress("0x0f")

	var ids []*uint256.Int
	for i, spec := range []struct {
		supply uint64
		price  uint64
		funds  common.Address
	}{
		{1, 50, creator},
		{5, 2_000, creator},
		{5, 50, other},
	} {
		id, err := l.CreateEdition(ctx, creator, uint256.NewInt(spec.supply), uint256.NewInt(spec.price), spec.funds, uint256.NewInt(uint64(i)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	_, err := l.BuyEdition(ctx, buyer, ids[0], uint256.NewInt(50))
	require.NoError(t, err)

	var touched []*editionstore.Edition
	for _, id := range ids {
		e, err := l.Edition(ctx, id)
		require.NoError(t, err)
		touched = append(touched, e)
	}

	err = store.Commit(ctx, &sqlstore.TxRecord{
		Hash:      common.HexToHash("0x01"),
		Sender:    creator,
		AppliedAt: time.Unix(1_700_000_000, 0),
		Editions:  touched,
	}, db.Finalise())
	require.NoError(t, err)

	for _, tc := range []struct {
		query string
		want  []*uint256.Int
	}{
		{`$all`, ids},
		{`price = 50`, []*uint256.Int{ids[0], ids[2]}},
		{`price > 100`, []*uint256.Int{ids[1]}},
		{`sold = 1`, []*uint256.Int{ids[0]}},
		{`funds = "` + other.Hex() + `"`, []*uint256.Int{ids[2]}},
		{`price = 50 && supply = 5`, []*uint256.Int{ids[2]}},
		{`sold = 1 || funds = "` + other.Hex() + `"`, []*uint256.Int{ids[0], ids[2]}},
		{`price < 10`, []*uint256.Int{}},
	} {
		t.Run(tc.query, func(t *testing.T) {
			got, err := store.QueryEditions(ctx, tc.query, query.QueryOptions{})
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	page, err := store.QueryEditions(ctx, `$all`, query.QueryOptions{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []*uint256.Int{ids[1]}, page)

	_, err = store.QueryEditions(ctx, `colour = 1`, query.QueryOptions{})
	require.ErrorIs(t, err, query.ErrUnknownField)

	_, err = store.QueryEditions(ctx, `price =`, query.QueryOptions{})
	require.ErrorIs(t, err, sqlstore.ErrInvalidQuery)
}
