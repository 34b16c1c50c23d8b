package logs

import (
	"errors"
	"fmt"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// EditionCreated is the event signature for edition creation logs.
// Parameters: editionId (indexed), mediaId (indexed), creator, supply, price (wei)
var EditionCreated = crypto.Keccak256Hash([]byte("EditionCreated(uint256,uint256,address,uint256,uint256)"))

// EditionPurchased is the event signature for purchase logs.
// Parameters: editionId (indexed), buyer (indexed), sold
var EditionPurchased = crypto.Keccak256Hash([]byte("EditionPurchased(uint256,address,uint256)"))

// FundsWithdrawn is the event signature for creator withdrawals.
// Parameters: editionId (indexed), recipient (indexed), amount (wei)
var FundsWithdrawn = crypto.Keccak256Hash([]byte("FundsWithdrawn(uint256,address,uint256)"))

// RegistryAddressChanged is the event signature for admin registry updates.
// Parameters: kind (indexed), previous, current
var RegistryAddressChanged = crypto.Keccak256Hash([]byte("RegistryAddressChanged(bytes32,address,address)"))

var (
	RegistryKindMedia  = crypto.Keccak256Hash([]byte("media"))
	RegistryKindMarket = crypto.Keccak256Hash([]byte("market"))
)

var (
	ErrUnknownEvent = errors.New("unknown event signature")
	ErrMalformedLog = errors.New("malformed log")
)

// Event is implemented by every decoded ledger event.
type Event interface {
	Log() *types.Log
}

type EditionCreatedEvent struct {
	ID      *uint256.Int   `json:"id"`
	MediaID *uint256.Int   `json:"mediaId"`
	Creator common.Address `json:"creator"`
	Supply  *uint256.Int   `json:"supply"`
	Price   *uint256.Int   `json:"price"`
}

func (e *EditionCreatedEvent) Log() *types.Log {
	return &types.Log{
		Address: address.EditionsProcessorAddress,
		Topics:  []common.Hash{EditionCreated, e.ID.Bytes32(), e.MediaID.Bytes32()},
		Data:    packWords(addressToHash(e.Creator), e.Supply.Bytes32(), e.Price.Bytes32()),
	}
}

type EditionPurchasedEvent struct {
	ID    *uint256.Int   `json:"id"`
	Buyer common.Address `json:"buyer"`
	Sold  *uint256.Int   `json:"sold"`
}

func (e *EditionPurchasedEvent) Log() *types.Log {
	return &types.Log{
		Address: address.EditionsProcessorAddress,
		Topics:  []common.Hash{EditionPurchased, e.ID.Bytes32(), addressToHash(e.Buyer)},
		Data:    packWords(e.Sold.Bytes32()),
	}
}

type FundsWithdrawnEvent struct {
	ID        *uint256.Int   `json:"id"`
	Recipient common.Address `json:"recipient"`
	Amount    *uint256.Int   `json:"amount"`
}

func (e *FundsWithdrawnEvent) Log() *types.Log {
	return &types.Log{
		Address: address.EditionsProcessorAddress,
		Topics:  []common.Hash{FundsWithdrawn, e.ID.Bytes32(), addressToHash(e.Recipient)},
		Data:    packWords(e.Amount.Bytes32()),
	}
}

type RegistryAddressChangedEvent struct {
	Kind     common.Hash    `json:"kind"`
	Previous common.Address `json:"previous"`
	Current  common.Address `json:"current"`
}

func (e *RegistryAddressChangedEvent) Log() *types.Log {
	return &types.Log{
		Address: address.EditionsProcessorAddress,
		Topics:  []common.Hash{RegistryAddressChanged, e.Kind},
		Data:    packWords(addressToHash(e.Previous), addressToHash(e.Current)),
	}
}

// Parse decodes a log emitted by the ledger into its typed event.
func Parse(l *types.Log) (Event, error) {
	if len(l.Topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", ErrMalformedLog)
	}

	switch l.Topics[0] {
	case EditionCreated:
		words, err := unpackWords(l, 3, 3)
		if err != nil {
			return nil, err
		}
		return &EditionCreatedEvent{
			ID:      hashToUint256(l.Topics[1]),
			MediaID: hashToUint256(l.Topics[2]),
			Creator: common.BytesToAddress(words[0][12:]),
			Supply:  hashToUint256(words[1]),
			Price:   hashToUint256(words[2]),
		}, nil
	case EditionPurchased:
		words, err := unpackWords(l, 3, 1)
		if err != nil {
			return nil, err
		}
		return &EditionPurchasedEvent{
			ID:    hashToUint256(l.Topics[1]),
			Buyer: common.BytesToAddress(l.Topics[2][12:]),
			Sold:  hashToUint256(words[0]),
		}, nil
	case FundsWithdrawn:
		words, err := unpackWords(l, 3, 1)
		if err != nil {
			return nil, err
		}
		return &FundsWithdrawnEvent{
			ID:        hashToUint256(l.Topics[1]),
			Recipient: common.BytesToAddress(l.Topics[2][12:]),
			Amount:    hashToUint256(words[0]),
		}, nil
	case RegistryAddressChanged:
		words, err := unpackWords(l, 2, 2)
		if err != nil {
			return nil, err
		}
		return &RegistryAddressChangedEvent{
			Kind:     l.Topics[1],
			Previous: common.BytesToAddress(words[0][12:]),
			Current:  common.BytesToAddress(words[1][12:]),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, l.Topics[0].Hex())
	}
}

// Name returns the event name for a signature topic, or "" when unknown.
func Name(signature common.Hash) string {
	switch signature {
	case EditionCreated:
		return "EditionCreated"
	case EditionPurchased:
		return "EditionPurchased"
	case FundsWithdrawn:
		return "FundsWithdrawn"
	case RegistryAddressChanged:
		return "RegistryAddressChanged"
	}
	return ""
}

func addressToHash(a common.Address) common.Hash {
	h := common.Hash{}
	copy(h[12:], a[:])
	return h
}

func hashToUint256(h common.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(h[:])
}

func packWords(words ...[32]byte) []byte {
	data := make([]byte, 0, 32*len(words))
	for _, w := range words {
		data = append(data, w[:]...)
	}
	return data
}

func unpackWords(l *types.Log, topics, words int) ([]common.Hash, error) {
	if len(l.Topics) != topics {
		return nil, fmt.Errorf("%w: expected %d topics, got %d", ErrMalformedLog, topics, len(l.Topics))
	}
	if len(l.Data) != 32*words {
		return nil, fmt.Errorf("%w: expected %d data bytes, got %d", ErrMalformedLog, 32*words, len(l.Data))
	}

	out := make([]common.Hash, words)
	for i := range out {
		out[i] = common.BytesToHash(l.Data[32*i : 32*(i+1)])
	}
	return out, nil
}
