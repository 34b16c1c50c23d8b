package editiontx

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	KindTransaction uint8 = 1
	KindQuery       uint8 = 2
)

const maxPayloadSize = 1024 * 1024 * 4 // 4MB

// Envelope carries a brotli compressed RLP payload and the secp256k1
// signature of its sender.
type Envelope struct {
	Kind      uint8
	Payload   []byte
	Signature []byte
}

func (e *Envelope) digest() common.Hash {
	return crypto.Keccak256Hash([]byte{e.Kind}, e.Payload)
}

// Hash identifies the envelope, signature included.
func (e *Envelope) Hash() common.Hash {
	return crypto.Keccak256Hash([]byte{e.Kind}, e.Payload, e.Signature)
}

// Sender recovers the address that signed the envelope.
func (e *Envelope) Sender() (common.Address, error) {
	if len(e.Signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(e.Signature))
	}

	pub, err := crypto.SigToPub(e.digest().Bytes(), e.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// Pack RLP encodes and brotli compresses v.
func Pack(v any) ([]byte, error) {
	d, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	buf := bytes.NewBuffer(nil)
	writer := brotli.NewWriterV2(buf, 9)

	_, err = writer.Write(d)
	if err != nil {
		return nil, fmt.Errorf("failed to write data to brotli compressor: %w", err)
	}
	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to close brotli compressor: %w", err)
	}

	return buf.Bytes(), nil
}

// Unpack reverses Pack into v.
func Unpack(compressed []byte, v any) error {
	reader := brotli.NewReader(bytes.NewReader(compressed))
	lr := io.LimitReader(reader, maxPayloadSize)

	d, err := io.ReadAll(lr)
	if err != nil {
		return fmt.Errorf("failed to read compressed payload: %w", err)
	}

	err = rlp.DecodeBytes(d, v)
	if err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	return nil
}

func sign(kind uint8, v any, key *ecdsa.PrivateKey) (*Envelope, error) {
	payload, err := Pack(v)
	if err != nil {
		return nil, err
	}

	env := &Envelope{Kind: kind, Payload: payload}

	env.Signature, err = crypto.Sign(env.digest().Bytes(), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}

	return env, nil
}

func SignTransaction(tx *EditionTransaction, key *ecdsa.PrivateKey) (*Envelope, error) {
	return sign(KindTransaction, tx, key)
}

func SignQuery(q *Query, key *ecdsa.PrivateKey) (*Envelope, error) {
	return sign(KindQuery, q, key)
}

// Transaction unpacks the transaction carried by the envelope.
func (e *Envelope) Transaction() (*EditionTransaction, error) {
	if e.Kind != KindTransaction {
		return nil, fmt.Errorf("%w: %d", ErrWrongEnvelopeKind, e.Kind)
	}
	tx := &EditionTransaction{}
	err := Unpack(e.Payload, tx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Query unpacks the query carried by the envelope.
func (e *Envelope) Query() (*Query, error) {
	if e.Kind != KindQuery {
		return nil, fmt.Errorf("%w: %d", ErrWrongEnvelopeKind, e.Kind)
	}
	q := &Query{}
	err := Unpack(e.Payload, q)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// EncodeEnvelope returns the RLP wire form of e.
func EncodeEnvelope(e *Envelope) ([]byte, error) {
	return rlp.EncodeToBytes(e)
}

func DecodeEnvelope(d []byte) (*Envelope, error) {
	e := &Envelope{}
	err := rlp.DecodeBytes(d, e)
	if err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return e, nil
}
