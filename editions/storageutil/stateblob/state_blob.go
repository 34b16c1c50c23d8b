// Package stateblob stores variable length byte strings in consecutive
// storage slots using the solidity `bytes` encoding: values up to 31 bytes
// share the head slot with 2*len in the lowest byte, longer values keep
// 2*len+1 in the head slot followed by 32 byte chunks.
package stateblob

import (
	"encoding/binary"
	"iter"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type StateAccess = storageutil.StateAccess

var contract = address.EditionsProcessorAddress

// Chunks splits value into the slot values SetBlob writes, head first.
func Chunks(value []byte) iter.Seq[common.Hash] {
	return func(yield func(common.Hash) bool) {
		if len(value) <= 31 {
			head := common.RightPadBytes(value, 32)
			head[31] = byte(len(value) * 2)
			yield(common.BytesToHash(head))
			return
		}

		if !yield(common.Hash(uint256.NewInt(uint64(len(value))*2 + 1).Bytes32())) {
			return
		}

		for chunk := range slicesChunk(value, 32) {
			if !yield(common.BytesToHash(common.RightPadBytes(chunk, 32))) {
				return
			}
		}
	}
}

func slicesChunk(value []byte, n int) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for start := 0; start < len(value); start += n {
			if !yield(value[start:min(start+n, len(value))]) {
				return
			}
		}
	}
}

// decodeHead returns the value length and whether the value spills out of
// the head slot.
func decodeHead(head common.Hash) (length uint64, long bool) {
	if head[31]&0x01 == 0 {
		return uint64(head[31] / 2), false
	}
	return (binary.BigEndian.Uint64(head[24:]) - 1) / 2, true
}

// SetBlob replaces the blob stored at key. Slots used by a longer previous
// value are cleared.
func SetBlob(db StateAccess, key common.Hash, value []byte) {
	DeleteBlob(db, key)

	slot := new(uint256.Int).SetBytes32(key[:])
	for v := range Chunks(value) {
		db.SetState(contract, slot.Bytes32(), v)
		slot.AddUint64(slot, 1)
	}
}

// GetBlob returns the blob stored at key, or an empty slice.
func GetBlob(db StateAccess, key common.Hash) []byte {
	head := db.GetState(contract, key)
	if head == (common.Hash{}) {
		return []byte{}
	}

	length, long := decodeHead(head)
	if !long {
		return head[:length]
	}

	value := make([]byte, 0, length)
	slot := new(uint256.Int).SetBytes32(key[:])
	for remaining := length; remaining > 0; {
		slot.AddUint64(slot, 1)
		chunk := db.GetState(contract, slot.Bytes32())
		size := min(remaining, 32)
		value = append(value, chunk[:size]...)
		remaining -= size
	}

	return value
}

func DeleteBlob(db StateAccess, key common.Hash) {
	head := db.GetState(contract, key)
	if head == (common.Hash{}) {
		return
	}

	db.SetState(contract, key, common.Hash{})

	length, long := decodeHead(head)
	if !long {
		return
	}

	slot := new(uint256.Int).SetBytes32(key[:])
	for range (length + 31) / 32 {
		slot.AddUint64(slot, 1)
		db.SetState(contract, slot.Bytes32(), common.Hash{})
	}
}
