package editiontx

import "errors"

var (
	ErrNonceTooLow         = errors.New("nonce too low")
	ErrNonceTooHigh        = errors.New("nonce too high")
	ErrInsufficientBalance = errors.New("insufficient balance for payment")
	ErrEmptyTransaction    = errors.New("transaction has no operations")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrWrongEnvelopeKind   = errors.New("unexpected envelope kind")
	ErrQueryExpired        = errors.New("query expired")
	ErrUnknownQuery        = errors.New("unknown query method")
)
