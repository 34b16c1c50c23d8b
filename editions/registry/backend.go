package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MediaRegistry answers ownership and metadata queries for media items held
// by the registry contract at media.
type MediaRegistry interface {
	OwnerOf(ctx context.Context, media common.Address, mediaID *uint256.Int) (common.Address, error)
	MediaData(ctx context.Context, media common.Address, mediaID *uint256.Int) (*MediaData, error)
}

// SplitRegistry answers revenue split queries for media items held by the
// market contract at market.
type SplitRegistry interface {
	BidShares(ctx context.Context, market common.Address, mediaID *uint256.Int) (*BidShares, error)
}

type Backend interface {
	MediaRegistry
	SplitRegistry
}
