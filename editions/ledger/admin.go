package ledger

import (
	"context"
	"fmt"

	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

func (l *Ledger) onlyAdmin(f *frame, caller common.Address) error {
	if admin := registry.Admin(f.slots); admin != caller {
		return fmt.Errorf("%w: %s is not the admin", ErrUnauthorized, caller.Hex())
	}
	return nil
}

func (l *Ledger) setRegistryAddress(
	ctx context.Context,
	caller common.Address,
	addr common.Address,
	kind common.Hash,
	set func(storageutil.StateAccess, common.Address) common.Address,
) error {
	_, err := l.transact(ctx, true, func(ctx context.Context, f *frame) error {
		err := l.onlyAdmin(f, caller)
		if err != nil {
			return err
		}

		prev := set(f.slots, addr)
		f.emit(l.db, &logs.RegistryAddressChangedEvent{
			Kind:     kind,
			Previous: prev,
			Current:  addr,
		})

		return nil
	})
	return err
}

// SetMediaAddress points the ledger at a new media ownership registry.
// Admin only; later lookups use it immediately.
func (l *Ledger) SetMediaAddress(ctx context.Context, caller common.Address, media common.Address) error {
	err := l.setRegistryAddress(ctx, caller, media, logs.RegistryKindMedia, registry.SetMediaAddress)
	if err != nil {
		return err
	}
	log.Info("media registry address changed", "address", media)
	return nil
}

// SetMarketAddress points the ledger at a new revenue split registry.
// Admin only; later lookups use it immediately.
func (l *Ledger) SetMarketAddress(ctx context.Context, caller common.Address, market common.Address) error {
	err := l.setRegistryAddress(ctx, caller, market, logs.RegistryKindMarket, registry.SetMarketAddress)
	if err != nil {
		return err
	}
	log.Info("market registry address changed", "address", market)
	return nil
}

// TransferAdmin hands the admin role to newAdmin.
func (l *Ledger) TransferAdmin(ctx context.Context, caller common.Address, newAdmin common.Address) error {
	_, err := l.transact(ctx, true, func(ctx context.Context, f *frame) error {
		err := l.onlyAdmin(f, caller)
		if err != nil {
			return err
		}
		if newAdmin == (common.Address{}) {
			return fmt.Errorf("%w: new admin is the zero address", ErrUnauthorized)
		}
		registry.SetAdmin(f.slots, newAdmin)
		return nil
	})
	return err
}
