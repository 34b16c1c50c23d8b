package editionstore

import (
	"bytes"
	"fmt"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/Arkiv-Network/editions/editions/storageutil/keyset"
	"github.com/Arkiv-Network/editions/editions/storageutil/keyset/hashmap"
	"github.com/Arkiv-Network/editions/editions/storageutil/stateblob"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/klauspost/compress/zstd"
)

type StateAccess = storageutil.StateAccess

var (
	RecordSalt       = []byte("editionsRecord")
	BuyerIndexSalt   = []byte("editionsBuyerIndex")
	CreatorIndexSalt = []byte("editionsCreatorIndex")

	CountKey = crypto.Keccak256Hash([]byte("editionsCount"))
)

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error

	encoder, err = zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
	}

	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
	}
}

// Store reads and writes editions, the id sequence and the buyer and creator
// indexes in the processor's storage slots.
type Store struct {
	db StateAccess
}

func New(db StateAccess) *Store {
	return &Store{db: db}
}

func recordKey(id *uint256.Int) common.Hash {
	b := id.Bytes32()
	return crypto.Keccak256Hash(RecordSalt, b[:])
}

func creatorSetKey(creator common.Address) common.Hash {
	return crypto.Keccak256Hash(CreatorIndexSalt, creator[:])
}

// Count returns the number of editions ever created, which is also the
// highest id in use.
func (s *Store) Count() *uint256.Int {
	return new(uint256.Int).SetBytes32(s.db.GetState(address.EditionsProcessorAddress, CountKey).Bytes())
}

// NextID allocates a fresh id. Ids start at 1 and are never reused.
func (s *Store) NextID() *uint256.Int {
	next := s.Count()
	next.AddUint64(next, 1)
	s.db.SetState(address.EditionsProcessorAddress, CountKey, next.Bytes32())
	return next
}

func (s *Store) Exists(id *uint256.Int) bool {
	return id != nil && !id.IsZero() && !s.Count().Lt(id)
}

func (s *Store) Get(id *uint256.Int) (*Edition, error) {
	if id == nil {
		return nil, fmt.Errorf("%w: no id given", ErrNotFound)
	}
	if !s.Exists(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Dec())
	}

	compressed := stateblob.GetBlob(s.db, recordKey(id))
	d, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: edition %s: %w", ErrCorruptRecord, id.Dec(), err)
	}

	e := &Edition{}
	err = rlp.DecodeBytes(d, e)
	if err != nil {
		return nil, fmt.Errorf("%w: edition %s: %w", ErrCorruptRecord, id.Dec(), err)
	}

	return e, nil
}

// Put stores the edition record. A record stored for the first time is
// added to its funds address' creator index.
func (s *Store) Put(e *Edition) error {
	if e.ID == nil || e.ID.IsZero() {
		return ErrMissingID
	}

	buf := new(bytes.Buffer)
	err := rlp.Encode(buf, e)
	if err != nil {
		return fmt.Errorf("failed to encode edition %s: %w", e.ID.Dec(), err)
	}

	stateblob.SetBlob(s.db, recordKey(e.ID), encoder.EncodeAll(buf.Bytes(), nil))
	keyset.New(s.db, creatorSetKey(e.FundsAddress)).Add(e.ID.Bytes32())

	return nil
}

// SetBuyer records id as the buyer's most recent purchase, replacing any
// earlier one.
func (s *Store) SetBuyer(buyer common.Address, id *uint256.Int) {
	hashmap.NewMap(s.db, BuyerIndexSalt).Set(common.BytesToHash(buyer[:]), id.Bytes32())
}

// BuyerOf returns the id of the buyer's most recent purchase, or zero.
func (s *Store) BuyerOf(buyer common.Address) *uint256.Int {
	v := hashmap.NewMap(s.db, BuyerIndexSalt).Get(common.BytesToHash(buyer[:]))
	return new(uint256.Int).SetBytes32(v[:])
}

// EditionsOf lists the ids of the editions paying out to fundsAddress,
// in creation order.
func (s *Store) EditionsOf(fundsAddress common.Address, offset, limit uint64) []*uint256.Int {
	ids := []*uint256.Int{}
	for _, h := range keyset.New(s.db, creatorSetKey(fundsAddress)).Page(offset, limit) {
		ids = append(ids, new(uint256.Int).SetBytes32(h[:]))
	}
	return ids
}

func (s *Store) NumberOfEditionsOf(fundsAddress common.Address) *uint256.Int {
	return keyset.New(s.db, creatorSetKey(fundsAddress)).Size()
}
