package array

import (
	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Array is a dynamic array laid out like a solidity storage array: the length
// is stored at the head slot and element i at head+1+i.
type Array struct {
	db   storageutil.StateAccess
	head common.Hash
}

func NewArray(db storageutil.StateAccess, head common.Hash) *Array {
	return &Array{db: db, head: head}
}

func (a *Array) elementSlot(index *uint256.Int) common.Hash {
	slot := new(uint256.Int).SetBytes32(a.head.Bytes())
	slot.Add(slot, index)
	slot.AddUint64(slot, 1)
	return common.Hash(slot.Bytes32())
}

func (a *Array) Size() *uint256.Int {
	return new(uint256.Int).SetBytes32(a.db.GetState(address.EditionsProcessorAddress, a.head).Bytes())
}

func (a *Array) setSize(size *uint256.Int) {
	a.db.SetState(address.EditionsProcessorAddress, a.head, size.Bytes32())
}

func (a *Array) Append(value common.Hash) {
	size := a.Size()
	a.db.SetState(address.EditionsProcessorAddress, a.elementSlot(size), value)
	a.setSize(size.AddUint64(size, 1))
}

// Page returns up to limit elements starting at offset.
func (a *Array) Page(offset, limit uint64) []common.Hash {
	size := a.Size()
	out := []common.Hash{}
	i := uint256.NewInt(offset)
	for n := uint64(0); n < limit && i.Lt(size); n++ {
		out = append(out, a.db.GetState(address.EditionsProcessorAddress, a.elementSlot(i)))
		i.AddUint64(i, 1)
	}
	return out
}
