package logs_test

import (
	"testing"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestEditionCreatedLayout(t *testing.T) {
	ev := &logs.EditionCreatedEvent{
		ID:      uint256.NewInt(1),
		MediaID: uint256.NewInt(7),
		Creator: common.HexToAddress("0xa3c784F717EFa8d3A44DF80A5d33E734F5c1A7Ee"),
		Supply:  uint256.NewInt(3),
		Price:   uint256.NewInt(500),
	}

	l := ev.Log()

	require.Equal(t, address.EditionsProcessorAddress, l.Address)
	require.Equal(t, []common.Hash{
		logs.EditionCreated,
		common.HexToHash("0x1"),
		common.HexToHash("0x7"),
	}, l.Topics)
	require.Len(t, l.Data, 96)
	require.Equal(t, common.HexToHash("0xa3c784F717EFa8d3A44DF80A5d33E734F5c1A7Ee").Bytes(), l.Data[:32])

	parsed, err := logs.Parse(l)
	require.NoError(t, err)
	require.Equal(t, ev, parsed)
}

func TestEditionPurchasedIndexesBuyer(t *testing.T) {
	buyer := common.HexToAddress("0xb0b")
	l := (&logs.EditionPurchasedEvent{ID: uint256.NewInt(2), Buyer: buyer, Sold: uint256.NewInt(1)}).Log()

	require.Equal(t, common.BytesToHash(buyer.Bytes()), l.Topics[2])
	require.Equal(t, "EditionPurchased", logs.Name(l.Topics[0]))
}

func TestParseRejects(t *testing.T) {
	t.Run("no topics", func(t *testing.T) {
		_, err := logs.Parse(&types.Log{})
		require.ErrorIs(t, err, logs.ErrMalformedLog)
	})

	t.Run("foreign signature", func(t *testing.T) {
		_, err := logs.Parse(&types.Log{Topics: []common.Hash{common.HexToHash("0x1")}})
		require.ErrorIs(t, err, logs.ErrUnknownEvent)
	})

	t.Run("truncated data", func(t *testing.T) {
		l := (&logs.FundsWithdrawnEvent{ID: uint256.NewInt(1), Amount: uint256.NewInt(1)}).Log()
		l.Data = l.Data[:16]
		_, err := logs.Parse(l)
		require.ErrorIs(t, err, logs.ErrMalformedLog)
	})
}

func TestRegistryAddressChangedRoundTrip(t *testing.T) {
	ev := &logs.RegistryAddressChangedEvent{
		Kind:     logs.RegistryKindMarket,
		Previous: common.HexToAddress("0x1"),
		Current:  common.HexToAddress("0x2"),
	}

	parsed, err := logs.Parse(ev.Log())
	require.NoError(t, err)
	require.Equal(t, ev, parsed)
}
