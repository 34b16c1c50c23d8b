package ledger

import (
	"errors"

	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/registry"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = editionstore.ErrNotFound
	ErrSoldOut             = errors.New("edition is sold out")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrRegistryUnavailable = registry.ErrRegistryUnavailable
	ErrTransferFailed      = errors.New("transfer failed")
	ErrInvalidEdition      = errors.New("invalid edition")
	ErrReentrantCall       = errors.New("reentrant call")
	ErrAlreadyInitialized  = errors.New("ledger is already initialized")
	ErrEscrowOverflow      = errors.New("escrow overflow")
)
