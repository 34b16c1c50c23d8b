package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/Arkiv-Network/editions/editions/address"
	"github.com/Arkiv-Network/editions/editions/storageutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var (
	AdminKey         = crypto.Keccak256Hash([]byte("editionsAdmin"))
	MediaAddressKey  = crypto.Keccak256Hash([]byte("editionsMediaAddress"))
	MarketAddressKey = crypto.Keccak256Hash([]byte("editionsMarketAddress"))
)

const DefaultCallTimeout = 10 * time.Second

// Gateway resolves the registry addresses stored in ledger state and
// forwards lookups to the backend. Failures are never retried.
type Gateway struct {
	backend Backend
	timeout time.Duration
}

func NewGateway(backend Backend, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Gateway{backend: backend, timeout: timeout}
}

func readAddress(db storageutil.StateAccess, key common.Hash) common.Address {
	return common.BytesToAddress(db.GetState(address.EditionsProcessorAddress, key).Bytes())
}

func writeAddress(db storageutil.StateAccess, key common.Hash, addr common.Address) common.Address {
	prev := db.SetState(address.EditionsProcessorAddress, key, common.BytesToHash(addr[:]))
	return common.BytesToAddress(prev.Bytes())
}

func Admin(db storageutil.StateAccess) common.Address {
	return readAddress(db, AdminKey)
}

func SetAdmin(db storageutil.StateAccess, admin common.Address) common.Address {
	return writeAddress(db, AdminKey, admin)
}

func MediaAddress(db storageutil.StateAccess) common.Address {
	return readAddress(db, MediaAddressKey)
}

// SetMediaAddress stores the media registry address and returns the previous one.
func SetMediaAddress(db storageutil.StateAccess, media common.Address) common.Address {
	return writeAddress(db, MediaAddressKey, media)
}

func MarketAddress(db storageutil.StateAccess) common.Address {
	return readAddress(db, MarketAddressKey)
}

// SetMarketAddress stores the split registry address and returns the previous one.
func SetMarketAddress(db storageutil.StateAccess, market common.Address) common.Address {
	return writeAddress(db, MarketAddressKey, market)
}

func (g *Gateway) media(db storageutil.StateAccess) (common.Address, error) {
	media := MediaAddress(db)
	if media == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %w", ErrRegistryUnavailable, ErrMediaAddressUnset)
	}
	return media, nil
}

func (g *Gateway) market(db storageutil.StateAccess) (common.Address, error) {
	market := MarketAddress(db)
	if market == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %w", ErrRegistryUnavailable, ErrMarketAddressUnset)
	}
	return market, nil
}

// IsOwner reports whether actor owns mediaID according to the media registry.
func (g *Gateway) IsOwner(ctx context.Context, db storageutil.StateAccess, actor common.Address, mediaID *uint256.Int) (bool, error) {
	media, err := g.media(db)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	owner, err := g.backend.OwnerOf(ctx, media, mediaID)
	if err != nil {
		log.Warn("media registry ownership lookup failed", "media", media, "mediaId", mediaID, "error", err)
		return false, fmt.Errorf("%w: ownerOf(%s): %w", ErrRegistryUnavailable, mediaID.Dec(), err)
	}

	return owner == actor, nil
}

func (g *Gateway) BidShares(ctx context.Context, db storageutil.StateAccess, mediaID *uint256.Int) (*BidShares, error) {
	market, err := g.market(db)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	shares, err := g.backend.BidShares(ctx, market, mediaID)
	if err != nil {
		log.Warn("split registry lookup failed", "market", market, "mediaId", mediaID, "error", err)
		return nil, fmt.Errorf("%w: bidSharesForToken(%s): %w", ErrRegistryUnavailable, mediaID.Dec(), err)
	}

	return shares, nil
}

func (g *Gateway) MediaData(ctx context.Context, db storageutil.StateAccess, mediaID *uint256.Int) (*MediaData, error) {
	media, err := g.media(db)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data, err := g.backend.MediaData(ctx, media, mediaID)
	if err != nil {
		log.Warn("media registry metadata lookup failed", "media", media, "mediaId", mediaID, "error", err)
		return nil, fmt.Errorf("%w: media data(%s): %w", ErrRegistryUnavailable, mediaID.Dec(), err)
	}

	return data, nil
}
