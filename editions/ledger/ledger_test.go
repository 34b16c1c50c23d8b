package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/ledger"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/Arkiv-Network/editions/editions/storageutil/memstate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	admin   = common.HexToAddress("0xad")
	creator = common.HexToAddress("0xa3c784F717EFa8d3A44DF80A5d33E734F5c1A7Ee")
	buyer   = common.HexToAddress("0xb0b")
	buyer2  = common.HexToAddress("0xca7")
	media   = common.HexToAddress("0x3ed1a")
	market  = common.HexToAddress("0x3a7e7")

	halfEth = uint256.NewInt(500_000_000_000_000_000)
	oneEth  = uint256.NewInt(1_000_000_000_000_000_000)
)

type fixture struct {
	ledger   *ledger.Ledger
	db       *memstate.State
	transfer *ledger.StateTransfer
	backend  *registry.MockBackend
	shares   *registry.BidShares
	data     *registry.MediaData
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fx := &fixture{
		db:       memstate.New(),
		transfer: ledger.NewStateTransfer(),
		shares: &registry.BidShares{
			PrevOwner: registry.D256{Value: uint256.NewInt(0)},
			Creator:   registry.D256{Value: uint256.NewInt(10)},
			Owner:     registry.D256{Value: uint256.NewInt(90)},
		},
		data: &registry.MediaData{
			TokenURI:    "ipfs://content",
			MetadataURI: "ipfs://metadata",
			ContentHash: common.HexToHash("0xc0"),
		},
	}

	fx.backend = &registry.MockBackend{
		OwnerOfFn: func(_ context.Context, _ common.Address, mediaID *uint256.Int) (common.Address, error) {
			if mediaID.IsZero() {
				return creator, nil
			}
			return common.HexToAddress("0xdead"), nil
		},
		BidSharesFn: func(context.Context, common.Address, *uint256.Int) (*registry.BidShares, error) {
			return fx.shares, nil
		},
		MediaDataFn: func(context.Context, common.Address, *uint256.Int) (*registry.MediaData, error) {
			return fx.data, nil
		},
	}

	fx.ledger = ledger.New(
		fx.db,
		registry.NewGateway(fx.backend, time.Second),
		ledger.WithTransferer(fx.transfer),
	)

	ctx := context.Background()
	require.NoError(t, fx.ledger.Initialize(ctx, admin))
	require.NoError(t, fx.ledger.SetMediaAddress(ctx, admin, media))
	require.NoError(t, fx.ledger.SetMarketAddress(ctx, admin, market))

	return fx
}

func (fx *fixture) create(t *testing.T, supply uint64, price *uint256.Int) *uint256.Int {
	t.Helper()
	id, err := fx.ledger.CreateEdition(context.Background(), creator, uint256.NewInt(supply), price, creator, uint256.NewInt(0))
	require.NoError(t, err)
	return id
}

func TestCreateEdition(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	id, err := fx.ledger.CreateEdition(ctx, creator, uint256.NewInt(1), halfEth, creator, uint256.NewInt(0))
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1), id)

	e, err := fx.ledger.Edition(ctx, id)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1), e.Supply)
	require.True(t, e.Sold.IsZero())
	require.Equal(t, halfEth, e.Price)
	require.Equal(t, creator, e.FundsAddress)
	require.True(t, e.MediaID.IsZero())
	require.True(t, e.Withdrawn.IsZero())

	t.Run("ids are sequential", func(t *testing.T) {
		require.Equal(t, uint256.NewInt(2), fx.create(t, 5, oneEth))
		require.Equal(t, uint256.NewInt(3), fx.create(t, 5, oneEth))
		require.Equal(t, uint256.NewInt(3), fx.ledger.EditionCount(ctx))
	})

	t.Run("editions are indexed by funds address", func(t *testing.T) {
		require.Equal(t,
			[]*uint256.Int{uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(3)},
			fx.ledger.EditionsOfCreator(ctx, creator, 0, 10),
		)
		require.Equal(t, uint256.NewInt(3), fx.ledger.NumberOfEditionsOf(ctx, creator))
		require.True(t, fx.ledger.NumberOfEditionsOf(ctx, buyer).IsZero())
	})
}

func TestCreateEditionByNonOwner(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.ledger.CreateEdition(ctx, buyer, uint256.NewInt(1), halfEth, buyer, uint256.NewInt(0))
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	require.ErrorContains(t, err, "you do not own this token")
	require.True(t, fx.ledger.EditionCount(ctx).IsZero())

	_, err = fx.ledger.Edition(ctx, uint256.NewInt(1))
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestCreateEditionValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	maxU256 := new(uint256.Int).SetAllOne()

	for name, args := range map[string]struct {
		supply, price *uint256.Int
		funds         common.Address
	}{
		"zero supply":      {uint256.NewInt(0), oneEth, creator},
		"zero price":       {uint256.NewInt(1), uint256.NewInt(0), creator},
		"zero funds":       {uint256.NewInt(1), oneEth, common.Address{}},
		"revenue overflow": {uint256.NewInt(2), maxU256, creator},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fx.ledger.CreateEdition(ctx, creator, args.supply, args.price, args.funds, uint256.NewInt(0))
			require.ErrorIs(t, err, ledger.ErrInvalidEdition)
		})
	}

	require.True(t, fx.ledger.EditionCount(ctx).IsZero())
}

func TestCreateEditionRegistryUnavailable(t *testing.T) {
	t.Run("media address unset", func(t *testing.T) {
		db := memstate.New()
		l := ledger.New(db, registry.NewGateway(&registry.MockBackend{}, time.Second))

		_, err := l.CreateEdition(context.Background(), creator, uint256.NewInt(1), oneEth, creator, uint256.NewInt(0))
		require.ErrorIs(t, err, ledger.ErrRegistryUnavailable)
		require.True(t, l.EditionCount(context.Background()).IsZero())
	})

	t.Run("registry call fails", func(t *testing.T) {
		fx := newFixture(t)
		boom := errors.New("connection refused")
		fx.backend.OwnerOfFn = func(context.Context, common.Address, *uint256.Int) (common.Address, error) {
			return common.Address{}, boom
		}

		_, err := fx.ledger.CreateEdition(context.Background(), creator, uint256.NewInt(1), oneEth, creator, uint256.NewInt(0))
		require.ErrorIs(t, err, ledger.ErrRegistryUnavailable)
		require.ErrorIs(t, err, boom)
	})
}

func TestBuyEdition(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.create(t, 1, halfEth)

	sold, err := fx.ledger.BuyEdition(ctx, buyer, id, halfEth)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1), sold)

	require.Equal(t, id, fx.ledger.BuyerToEdition(ctx, buyer))
	require.Equal(t, halfEth, fx.db.GetBalance(address.EditionsProcessorAddress))

	t.Run("sold out", func(t *testing.T) {
		_, err := fx.ledger.BuyEdition(ctx, buyer2, id, halfEth)
		require.ErrorIs(t, err, ledger.ErrSoldOut)

		e, err := fx.ledger.Edition(ctx, id)
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(1), e.Sold)
		require.True(t, fx.ledger.BuyerToEdition(ctx, buyer2).IsZero())
	})

	t.Run("unknown edition", func(t *testing.T) {
		_, err := fx.ledger.BuyEdition(ctx, buyer, uint256.NewInt(99), halfEth)
		require.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestBuyEditionPaymentFloor(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.create(t, 2, oneEth)

	short := new(uint256.Int).SubUint64(oneEth, 1)
	_, err := fx.ledger.BuyEdition(ctx, buyer, id, short)
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	e, err := fx.ledger.Edition(ctx, id)
	require.NoError(t, err)
	require.True(t, e.Sold.IsZero())
	require.True(t, fx.db.GetBalance(address.EditionsProcessorAddress).IsZero())

	_, err = fx.ledger.BuyEdition(ctx, buyer, id, nil)
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	_, err = fx.ledger.BuyEdition(ctx, buyer, id, oneEth)
	require.NoError(t, err)
}

func TestSupplyBound(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.create(t, 3, oneEth)

	for range 3 {
		_, err := fx.ledger.BuyEdition(ctx, buyer, id, oneEth)
		require.NoError(t, err)
	}

	_, err := fx.ledger.BuyEdition(ctx, buyer, id, oneEth)
	require.ErrorIs(t, err, ledger.ErrSoldOut)
}

func TestConcurrentBuyersNeverOversell(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.create(t, 5, oneEth)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		soldOut int
	)

	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := common.BigToAddress(uint256.NewInt(uint64(1000 + i)).ToBig())
			_, err := fx.ledger.BuyEdition(ctx, b, id, oneEth)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ledger.ErrSoldOut):
				soldOut++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 5, ok)
	require.Equal(t, 15, soldOut)

	e, err := fx.ledger.Edition(ctx, id)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(5), e.Sold)
}

func TestOverpaymentStaysInEscrow(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.create(t, 2, oneEth)

	twoEth := new(uint256.Int).Add(oneEth, oneEth)
	_, err := fx.ledger.BuyEdition(ctx, buyer, id, twoEth)
	require.NoError(t, err)

	stranded, err := fx.ledger.StrandedOverpayment(ctx, id)
	require.NoError(t, err)
	require.Equal(t, oneEth, stranded)

	paid, err := fx.ledger.WithdrawFunds(ctx, creator, id)
	require.NoError(t, err)
	require.Equal(t, oneEth, paid)

	escrow, err := fx.ledger.EscrowBalance(ctx, id)
	require.NoError(t, err)
	require.Equal(t, oneEth, escrow)
}

func TestEventsAreLoggedAndPublished(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	ch := make(chan logs.Event, 10)
	sub := fx.ledger.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	id := fx.create(t, 1, halfEth)
	_, err := fx.ledger.BuyEdition(ctx, buyer, id, halfEth)
	require.NoError(t, err)

	created := (<-ch).(*logs.EditionCreatedEvent)
	require.Equal(t, id, created.ID)
	require.Equal(t, creator, created.Creator)
	require.Equal(t, halfEth, created.Price)

	purchased := (<-ch).(*logs.EditionPurchasedEvent)
	require.Equal(t, buyer, purchased.Buyer)
	require.Equal(t, uint256.NewInt(1), purchased.Sold)

	var signatures []common.Hash
	for _, l := range fx.db.Logs() {
		signatures = append(signatures, l.Topics[0])
	}
	require.Contains(t, signatures, logs.EditionCreated)
	require.Contains(t, signatures, logs.EditionPurchased)
}

func TestFailedCallsEmitNothing(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.create(t, 1, halfEth)
	before := len(fx.db.Logs())

	_, err := fx.ledger.BuyEdition(ctx, buyer, id, uint256.NewInt(1))
	require.Error(t, err)

	require.Len(t, fx.db.Logs(), before)
}

func TestInitializeOnce(t *testing.T) {
	fx := newFixture(t)
	require.ErrorIs(t, fx.ledger.Initialize(context.Background(), buyer), ledger.ErrAlreadyInitialized)
	require.Equal(t, admin, fx.ledger.Admin(context.Background()))
}

func TestAtomicRevertsEverything(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.create(t, 2, oneEth)
	abort := errors.New("abort")

	_, err := fx.ledger.Atomic(ctx, func(ctx context.Context) error {
		_, err := fx.ledger.BuyEdition(ctx, buyer, id, oneEth)
		require.NoError(t, err)

		// reads inside the unit see its own writes
		e, err := fx.ledger.Edition(ctx, id)
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(1), e.Sold)

		return abort
	})
	require.ErrorIs(t, err, abort)

	e, err := fx.ledger.Edition(ctx, id)
	require.NoError(t, err)
	require.True(t, e.Sold.IsZero())
	require.True(t, fx.ledger.BuyerToEdition(ctx, buyer).IsZero())
}

func TestAtomicReturnsLogs(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.create(t, 2, oneEth)

	out, err := fx.ledger.Atomic(ctx, func(ctx context.Context) error {
		_, err := fx.ledger.BuyEdition(ctx, buyer, id, oneEth)
		if err != nil {
			return err
		}
		// a failing inner call only reverts itself
		_, err = fx.ledger.BuyEdition(ctx, buyer2, id, uint256.NewInt(1))
		require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, logs.EditionPurchased, out[0].Topics[0])
}

func TestSubscriberReceivesEveryEventType(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	ch := make(chan logs.Event, 8)
	sub := fx.ledger.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	require.NoError(t, fx.ledger.SetMediaAddress(ctx, admin, common.HexToAddress("0x3ed1b")))
	id := fx.create(t, 2, oneEth)
	_, err := fx.ledger.BuyEdition(ctx, buyer, id, oneEth)
	require.NoError(t, err)
	_, err = fx.ledger.WithdrawFunds(ctx, creator, id)
	require.NoError(t, err)

	var names []string
	for range 4 {
		select {
		case ev := <-ch:
			names = append(names, logs.Name(ev.Log().Topics[0]))
		case <-time.After(time.Second):
			t.Fatalf("missing events, got %v", names)
		}
	}

	require.Equal(t, []string{
		logs.Name(logs.RegistryAddressChanged),
		logs.Name(logs.EditionCreated),
		logs.Name(logs.EditionPurchased),
		logs.Name(logs.FundsWithdrawn),
	}, names)

	e, err := fx.ledger.Edition(ctx, id)
	require.NoError(t, err)
	require.Equal(t, oneEth, e.Withdrawn)
}

func TestUnknownOrMissingID(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.create(t, 1, oneEth)

	_, err := fx.ledger.BuyEdition(ctx, buyer, nil, oneEth)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = fx.ledger.WithdrawFunds(ctx, creator, nil)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = fx.ledger.Edition(ctx, nil)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = fx.ledger.EditionMediaData(ctx, buyer, nil)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestFailedNestedUnitKeepsSlotCount(t *testing.T) {
	ctx := context.Background()
	abort := errors.New("abort")

	expected := newFixture(t)
	expected.create(t, 1, oneEth)

	fx := newFixture(t)
	_, err := fx.ledger.Atomic(ctx, func(ctx context.Context) error {
		_, err := fx.ledger.CreateEdition(ctx, creator, uint256.NewInt(1), oneEth, creator, uint256.NewInt(0))
		require.NoError(t, err)

		_, err = fx.ledger.Atomic(ctx, func(ctx context.Context) error {
			_, err := fx.ledger.CreateEdition(ctx, creator, uint256.NewInt(3), halfEth, creator, uint256.NewInt(0))
			require.NoError(t, err)
			return abort
		})
		require.ErrorIs(t, err, abort)

		// the outer unit swallows the failure and commits
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, uint256.NewInt(1), fx.ledger.EditionCount(ctx))
	require.Equal(t, expected.ledger.UsedSlots(ctx), fx.ledger.UsedSlots(ctx))
}
