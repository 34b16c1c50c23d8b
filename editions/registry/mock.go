package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MockBackend is a test double for Backend.
// All function fields must be set before the corresponding method is called.
type MockBackend struct {
	OwnerOfFn   func(ctx context.Context, media common.Address, mediaID *uint256.Int) (common.Address, error)
	MediaDataFn func(ctx context.Context, media common.Address, mediaID *uint256.Int) (*MediaData, error)
	BidSharesFn func(ctx context.Context, market common.Address, mediaID *uint256.Int) (*BidShares, error)
}

func (m *MockBackend) OwnerOf(ctx context.Context, media common.Address, mediaID *uint256.Int) (common.Address, error) {
	return m.OwnerOfFn(ctx, media, mediaID)
}
func (m *MockBackend) MediaData(ctx context.Context, media common.Address, mediaID *uint256.Int) (*MediaData, error) {
	return m.MediaDataFn(ctx, media, mediaID)
}
func (m *MockBackend) BidShares(ctx context.Context, market common.Address, mediaID *uint256.Int) (*BidShares, error) {
	return m.BidSharesFn(ctx, market, mediaID)
}
