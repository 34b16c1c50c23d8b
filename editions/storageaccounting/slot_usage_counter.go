// Package storageaccounting keeps a running count of the storage slots the
// ledger occupies.
package storageaccounting

import (
	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var UsedSlotsKey = crypto.Keccak256Hash([]byte("editionsUsedSlots"))

// SlotUsageCounter wraps a StateAccess and tracks how many processor slots
// went from empty to set (and back) while it was in use.
type SlotUsageCounter struct {
	storageutil.StateAccess
	delta int64
}

func NewSlotUsageCounter(access storageutil.StateAccess) *SlotUsageCounter {
	return &SlotUsageCounter{StateAccess: access}
}

func (c *SlotUsageCounter) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	prev := c.StateAccess.SetState(addr, key, value)

	if prev == value || addr != address.EditionsProcessorAddress {
		return prev
	}

	switch {
	case prev == (common.Hash{}):
		c.delta++
	case value == (common.Hash{}):
		c.delta--
	}

	return prev
}

func (c *SlotUsageCounter) Delta() int64 {
	return c.delta
}

// Reset sets the pending delta back to a value previously read with Delta.
func (c *SlotUsageCounter) Reset(delta int64) {
	c.delta = delta
}

// Flush adds the pending delta to the persisted counter and resets it.
func (c *SlotUsageCounter) Flush() {
	if c.delta == 0 {
		return
	}

	stored := GetNumberOfUsedSlots(c.StateAccess)
	if c.delta > 0 {
		stored.AddUint64(stored, uint64(c.delta))
	} else {
		stored.SubUint64(stored, uint64(-c.delta))
	}

	c.StateAccess.SetState(address.EditionsProcessorAddress, UsedSlotsKey, stored.Bytes32())
	c.delta = 0
}

func GetNumberOfUsedSlots(db storageutil.StateAccess) *uint256.Int {
	return new(uint256.Int).SetBytes32(db.GetState(address.EditionsProcessorAddress, UsedSlotsKey).Bytes())
}
