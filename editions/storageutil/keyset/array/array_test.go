package array_test

import (
	"testing"

	"github.com/Arkiv-Network/editions/editions/storageutil/keyset/array"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type mockStateAccess struct {
	storage map[common.Address]map[common.Hash]common.Hash
}

func newMockStateAccess() *mockStateAccess {
	return &mockStateAccess{
		storage: make(map[common.Address]map[common.Hash]common.Hash),
	}
}

func (m *mockStateAccess) GetState(addr common.Address, key common.Hash) common.Hash {
	return m.storage[addr][key]
}

func (m *mockStateAccess) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	prev := m.storage[addr][key]
	if value == (common.Hash{}) {
		delete(m.storage[addr], key)
		return prev
	}
	if m.storage[addr] == nil {
		m.storage[addr] = make(map[common.Hash]common.Hash)
	}
	m.storage[addr][key] = value
	return prev
}

func (m *mockStateAccess) entries() int {
	n := 0
	for _, slots := range m.storage {
		n += len(slots)
	}
	return n
}

func TestEmptyArray(t *testing.T) {
	a := array.NewArray(newMockStateAccess(), common.HexToHash("0xabc"))

	require.Equal(t, uint256.NewInt(0), a.Size())
	require.Empty(t, a.Page(0, 10))
}

func TestAppend(t *testing.T) {
	db := newMockStateAccess()
	a := array.NewArray(db, common.HexToHash("0xabc"))
	a.Append(common.HexToHash("0xa"))
	a.Append(common.HexToHash("0xb"))

	require.Equal(t, uint256.NewInt(2), a.Size())
	require.Equal(t, []common.Hash{common.HexToHash("0xa"), common.HexToHash("0xb")}, a.Page(0, 2))
	// size slot + two elements
	require.Equal(t, 3, db.entries())
}

func TestPage(t *testing.T) {
	a := array.NewArray(newMockStateAccess(), common.HexToHash("0xabc"))
	values := []common.Hash{common.HexToHash("0x1"), common.HexToHash("0x2"), common.HexToHash("0x3")}
	for _, v := range values {
		a.Append(v)
	}

	require.Equal(t, values, a.Page(0, 10))
	require.Equal(t, values[1:], a.Page(1, 10))
	require.Equal(t, values[:1], a.Page(0, 1))
	require.Empty(t, a.Page(5, 1))
	require.Empty(t, a.Page(0, 0))
}
