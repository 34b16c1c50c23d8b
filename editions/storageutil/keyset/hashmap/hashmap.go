package hashmap

import (
	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Map is a solidity style mapping(bytes32 => bytes32): every entry lives in
// its own slot at keccak256(salt, key).
type Map struct {
	db   storageutil.StateAccess
	salt []byte
}

func NewMap(db storageutil.StateAccess, salts ...[]byte) *Map {
	combinedSalt := []byte{}
	for _, s := range salts {
		combinedSalt = append(combinedSalt, s...)
	}
	return &Map{db: db, salt: combinedSalt}
}

func (m *Map) slot(key common.Hash) common.Hash {
	return crypto.Keccak256Hash(m.salt, key.Bytes())
}

func (m *Map) Get(key common.Hash) common.Hash {
	return m.db.GetState(address.EditionsProcessorAddress, m.slot(key))
}

// Set stores value under key and returns the previous value.
func (m *Map) Set(key common.Hash, value common.Hash) common.Hash {
	return m.db.SetState(address.EditionsProcessorAddress, m.slot(key), value)
}
