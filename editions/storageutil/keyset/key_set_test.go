package keyset_test

import (
	"testing"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/storageutil/keyset"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
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

var setKey = crypto.Keccak256Hash([]byte("set"))

func TestAdd(t *testing.T) {
	db := newMockStateAccess()
	s := keyset.New(db, setKey)

	s.Add(common.HexToHash("0x1"))
	s.Add(common.HexToHash("0x2"))

	t.Run("values are members", func(t *testing.T) {
		assert.True(t, s.Contains(common.HexToHash("0x1")))
		assert.True(t, s.Contains(common.HexToHash("0x2")))
		assert.False(t, s.Contains(common.HexToHash("0x3")))
	})

	t.Run("adding twice is a no-op", func(t *testing.T) {
		s.Add(common.HexToHash("0x1"))
		require.Equal(t, uint256.NewInt(2), s.Size())
	})

	t.Run("insertion order is kept", func(t *testing.T) {
		require.Equal(t,
			[]common.Hash{common.HexToHash("0x1"), common.HexToHash("0x2")},
			s.Page(0, 10),
		)
	})
}

func TestPage(t *testing.T) {
	db := newMockStateAccess()
	s := keyset.New(db, setKey)
	for _, v := range []string{"0x1", "0x2", "0x3"} {
		s.Add(common.HexToHash(v))
	}

	require.Equal(t, []common.Hash{common.HexToHash("0x2"), common.HexToHash("0x3")}, s.Page(1, 10))
	require.Equal(t, []common.Hash{common.HexToHash("0x1")}, s.Page(0, 1))
	require.Empty(t, s.Page(3, 1))

	// three elements, the length slot and three index entries
	require.Len(t, db.storage[address.EditionsProcessorAddress], 7)
}

func TestSetsAreIndependent(t *testing.T) {
	db := newMockStateAccess()
	a := keyset.New(db, crypto.Keccak256Hash([]byte("a")))
	b := keyset.New(db, crypto.Keccak256Hash([]byte("b")))

	a.Add(common.HexToHash("0x1"))

	require.True(t, a.Contains(common.HexToHash("0x1")))
	require.False(t, b.Contains(common.HexToHash("0x1")))
}
