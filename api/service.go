// Package api exposes a node over JSON-RPC (namespace "editions") and a
// small read-only REST surface.
package api

import (
	"context"
	"fmt"

	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/Arkiv-Network/editions/editions/node"
	"github.com/Arkiv-Network/editions/editions/query"
	"github.com/Arkiv-Network/editions/editions/sqlstore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

const Namespace = "editions"

// Edition is the JSON view of an edition record.
type Edition struct {
	ID           *uint256.Int   `json:"id"`
	Supply       *uint256.Int   `json:"supply"`
	Sold         *uint256.Int   `json:"sold"`
	Remaining    *uint256.Int   `json:"remaining"`
	Price        *uint256.Int   `json:"price"`
	FundsAddress common.Address `json:"fundsAddress"`
	Creator      common.Address `json:"creator"`
	MediaID      *uint256.Int   `json:"mediaId"`
	Withdrawn    *uint256.Int   `json:"withdrawn"`
	Claimable    *uint256.Int   `json:"claimable"`
	Escrow       *uint256.Int   `json:"escrow"`
	Stranded     *uint256.Int   `json:"stranded"`
}

// editionsAPI is registered on the rpc server; its exported methods become
// editions_<method>.
type editionsAPI struct {
	node *node.Node
}

func NewEditionsAPI(n *node.Node) *editionsAPI {
	return &editionsAPI{node: n}
}

// SendTransaction applies an RLP encoded, signed envelope.
func (api *editionsAPI) SendTransaction(ctx context.Context, raw hexutil.Bytes) (*editiontx.Receipt, error) {
	env, err := editiontx.DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return api.node.Submit(ctx, env)
}

// Call answers a signed buyer-only query.
func (api *editionsAPI) Call(ctx context.Context, raw hexutil.Bytes) (any, error) {
	env, err := editiontx.DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return api.node.Processor().Call(ctx, env)
}

func (api *editionsAPI) GetEdition(ctx context.Context, id *uint256.Int) (*Edition, error) {
	if id == nil {
		return nil, fmt.Errorf("edition id is required")
	}

	e, err := api.node.Ledger().Edition(ctx, id)
	if err != nil {
		return nil, err
	}

	return toEdition(e), nil
}

func toEdition(e *editionstore.Edition) *Edition {
	return &Edition{
		ID:           e.ID,
		Supply:       e.Supply,
		Sold:         e.Sold,
		Remaining:    e.Remaining(),
		Price:        e.Price,
		FundsAddress: e.FundsAddress,
		Creator:      e.Creator,
		MediaID:      e.MediaID,
		Withdrawn:    e.Withdrawn,
		Claimable:    e.Claimable(),
		Escrow:       e.EscrowBalance(),
		Stranded:     e.Stranded(),
	}
}

// QueryEditions returns the editions matching a filter such as
// `price <= 1000 && sold < 5`. See package query for the syntax.
func (api *editionsAPI) QueryEditions(ctx context.Context, q string, offset, limit hexutil.Uint64) ([]*Edition, error) {
	if limit == 0 {
		limit = 100
	}

	editions, err := api.node.QueryEditions(ctx, q, query.QueryOptions{
		Offset: uint64(offset),
		Limit:  uint64(limit),
	})
	if err != nil {
		return nil, err
	}

	result := make([]*Edition, 0, len(editions))
	for _, e := range editions {
		result = append(result, toEdition(e))
	}

	return result, nil
}

func (api *editionsAPI) GetAmountWithdrawnToCreator(ctx context.Context, id *uint256.Int) (*uint256.Int, error) {
	if id == nil {
		return nil, fmt.Errorf("edition id is required")
	}
	return api.node.Ledger().AmountWithdrawnToCreator(ctx, id)
}

func (api *editionsAPI) GetEditionCount(ctx context.Context) *uint256.Int {
	return api.node.Ledger().EditionCount(ctx)
}

// GetEditionsOfCreator pages through the editions paying out to fundsAddress.
func (api *editionsAPI) GetEditionsOfCreator(ctx context.Context, fundsAddress common.Address, offset, limit hexutil.Uint64) []*uint256.Int {
	if limit == 0 {
		limit = 100
	}
	return api.node.Ledger().EditionsOfCreator(ctx, fundsAddress, uint64(offset), uint64(limit))
}

func (api *editionsAPI) GetNumberOfEditionsOf(ctx context.Context, fundsAddress common.Address) *uint256.Int {
	return api.node.Ledger().NumberOfEditionsOf(ctx, fundsAddress)
}

// GetBuyerEdition returns the id of buyer's most recent purchase, zero if none.
func (api *editionsAPI) GetBuyerEdition(ctx context.Context, buyer common.Address) *uint256.Int {
	return api.node.Ledger().BuyerToEdition(ctx, buyer)
}

func (api *editionsAPI) GetMediaAddress(ctx context.Context) common.Address {
	return api.node.Ledger().MediaAddress(ctx)
}

func (api *editionsAPI) GetMarketAddress(ctx context.Context) common.Address {
	return api.node.Ledger().MarketAddress(ctx)
}

func (api *editionsAPI) GetAdmin(ctx context.Context) common.Address {
	return api.node.Ledger().Admin(ctx)
}

func (api *editionsAPI) GetBalance(ctx context.Context, addr common.Address) *uint256.Int {
	return api.node.Ledger().Balance(ctx, addr)
}

func (api *editionsAPI) GetNonce(ctx context.Context, addr common.Address) hexutil.Uint64 {
	return hexutil.Uint64(api.node.Processor().Nonce(ctx, addr))
}

func (api *editionsAPI) GetNumberOfUsedSlots(ctx context.Context) *uint256.Int {
	return api.node.Ledger().UsedSlots(ctx)
}

func (api *editionsAPI) GetHistory(ctx context.Context, id *uint256.Int) ([]sqlstore.HistoryEntry, error) {
	if id == nil {
		return nil, fmt.Errorf("edition id is required")
	}
	return api.node.Store().History(ctx, id)
}

func (api *editionsAPI) GetPurchases(ctx context.Context, buyer common.Address) ([]sqlstore.HistoryEntry, error) {
	return api.node.Store().Purchases(ctx, buyer)
}
