package memstate_test

import (
	"testing"

	"github.com/Arkiv-Network/editions/editions/storageutil/memstate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	contract = common.HexToAddress("0xc0ffee")
	alice    = common.HexToAddress("0xa11ce")
)

func TestSetStateReturnsPrevious(t *testing.T) {
	s := memstate.New()

	prev := s.SetState(contract, common.HexToHash("0x1"), common.HexToHash("0xa"))
	require.Equal(t, common.Hash{}, prev)

	prev = s.SetState(contract, common.HexToHash("0x1"), common.HexToHash("0xb"))
	require.Equal(t, common.HexToHash("0xa"), prev)
	require.Equal(t, common.HexToHash("0xb"), s.GetState(contract, common.HexToHash("0x1")))
}

func TestZeroValueDeletesSlot(t *testing.T) {
	s := memstate.New()
	s.SetState(contract, common.HexToHash("0x1"), common.HexToHash("0xa"))
	require.Equal(t, 1, s.NumberOfSlots(contract))

	s.SetState(contract, common.HexToHash("0x1"), common.Hash{})
	require.Equal(t, 0, s.NumberOfSlots(contract))
}

func TestRevertToSnapshot(t *testing.T) {
	s := memstate.New()
	s.AddBalance(alice, uint256.NewInt(10), tracing.BalanceChangeTransfer)
	s.SetState(contract, common.HexToHash("0x1"), common.HexToHash("0xa"))

	t.Run("undoes everything after the snapshot", func(t *testing.T) {
		id := s.Snapshot()
		s.SetState(contract, common.HexToHash("0x1"), common.HexToHash("0xb"))
		s.SetState(contract, common.HexToHash("0x2"), common.HexToHash("0xc"))
		s.SubBalance(alice, uint256.NewInt(4), tracing.BalanceChangeTransfer)
		s.AddLog(&types.Log{Address: contract})

		s.RevertToSnapshot(id)

		require.Equal(t, common.HexToHash("0xa"), s.GetState(contract, common.HexToHash("0x1")))
		require.Equal(t, common.Hash{}, s.GetState(contract, common.HexToHash("0x2")))
		require.Equal(t, uint256.NewInt(10), s.GetBalance(alice))
		require.Empty(t, s.Logs())
	})

	t.Run("nested snapshots revert independently", func(t *testing.T) {
		outer := s.Snapshot()
		s.SetState(contract, common.HexToHash("0x3"), common.HexToHash("0x1"))
		inner := s.Snapshot()
		s.SetState(contract, common.HexToHash("0x4"), common.HexToHash("0x1"))

		s.RevertToSnapshot(inner)
		require.Equal(t, common.HexToHash("0x1"), s.GetState(contract, common.HexToHash("0x3")))
		require.Equal(t, common.Hash{}, s.GetState(contract, common.HexToHash("0x4")))

		s.RevertToSnapshot(outer)
		require.Equal(t, common.Hash{}, s.GetState(contract, common.HexToHash("0x3")))
	})

	t.Run("unknown revision panics", func(t *testing.T) {
		require.Panics(t, func() { s.RevertToSnapshot(42) })
	})
}

func TestSubBalanceUnderflowPanics(t *testing.T) {
	s := memstate.New()
	s.AddBalance(alice, uint256.NewInt(1), tracing.BalanceChangeTransfer)
	require.Panics(t, func() {
		s.SubBalance(alice, uint256.NewInt(2), tracing.BalanceChangeTransfer)
	})
}

func TestFinalise(t *testing.T) {
	s := memstate.New()
	s.SetState(contract, common.HexToHash("0x2"), common.HexToHash("0xb"))
	s.SetState(contract, common.HexToHash("0x1"), common.HexToHash("0xa"))
	s.AddBalance(alice, uint256.NewInt(7), tracing.BalanceChangeTransfer)
	s.AddLog(&types.Log{Address: contract})

	changes := s.Finalise()
	require.Equal(t, []memstate.Slot{
		{Address: contract, Key: common.HexToHash("0x1"), Value: common.HexToHash("0xa")},
		{Address: contract, Key: common.HexToHash("0x2"), Value: common.HexToHash("0xb")},
	}, changes.Slots)
	require.Equal(t, []memstate.Balance{{Address: alice, Amount: uint256.NewInt(7)}}, changes.Balances)
	require.Len(t, changes.Logs, 1)

	require.True(t, s.Finalise().Empty())

	// deleted slots are reported with a zero value so they can be removed downstream
	s.SetState(contract, common.HexToHash("0x1"), common.Hash{})
	changes = s.Finalise()
	require.Equal(t, []memstate.Slot{{Address: contract, Key: common.HexToHash("0x1")}}, changes.Slots)
}

func TestRestoreIsNotJournaled(t *testing.T) {
	s := memstate.New()
	s.Restore(contract, common.HexToHash("0x1"), common.HexToHash("0xa"))
	s.RestoreBalance(alice, uint256.NewInt(3))

	require.True(t, s.Finalise().Empty())
	require.Equal(t, common.HexToHash("0xa"), s.GetState(contract, common.HexToHash("0x1")))
	require.Equal(t, uint256.NewInt(3), s.GetBalance(alice))
}
