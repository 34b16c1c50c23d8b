// Package keyset provides a set data structure stored in contract state slots.
// It follows the layout of OpenZeppelin's EnumerableSet
// (https://github.com/OpenZeppelin/openzeppelin-contracts/blob/master/contracts/utils/structs/EnumerableSet.sol):
// O(1) add and membership checks while keeping the elements enumerable in
// insertion order.
package keyset

import (
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/Arkiv-Network/editions/editions/storageutil/keyset/array"
	"github.com/Arkiv-Network/editions/editions/storageutil/keyset/hashmap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type StateAccess = storageutil.StateAccess

var MapKeyPrefix = []byte("editionsKeysetMap")

// Set is a view of one enumerable set, identified by its key.
type Set struct {
	values  *array.Array
	indexes *hashmap.Map
}

func New(db StateAccess, setKey common.Hash) *Set {
	return &Set{
		values:  array.NewArray(db, setKey),
		indexes: hashmap.NewMap(db, MapKeyPrefix, setKey[:]),
	}
}

// Contains checks if the given value exists in the set.
func (s *Set) Contains(value common.Hash) bool {
	return s.indexes.Get(value) != (common.Hash{})
}

// Add adds a value to the set. Adding a value that is already present is a no-op.
func (s *Set) Add(value common.Hash) {
	if s.Contains(value) {
		return
	}

	s.values.Append(value)
	// indexes are stored 1-based so that the zero slot means "absent"
	s.indexes.Set(value, s.values.Size().Bytes32())
}

// Size returns the number of elements in the set.
func (s *Set) Size() *uint256.Int {
	return s.values.Size()
}

// Page returns up to limit elements in insertion order, starting at offset.
func (s *Set) Page(offset, limit uint64) []common.Hash {
	return s.values.Page(offset, limit)
}
