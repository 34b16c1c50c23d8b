package registry

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const mediaABI = `[
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"tokenMetadataURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"tokenContentHashes","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"tokenMetadataHashes","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"bytes32"}]}
]`

const marketABI = `[
	{"type":"function","name":"bidSharesForToken","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[
		{"name":"","type":"tuple","internalType":"struct IMarket.BidShares","components":[
			{"name":"prevOwner","type":"tuple","internalType":"struct Decimal.D256","components":[{"name":"value","type":"uint256"}]},
			{"name":"creator","type":"tuple","internalType":"struct Decimal.D256","components":[{"name":"value","type":"uint256"}]},
			{"name":"owner","type":"tuple","internalType":"struct Decimal.D256","components":[{"name":"value","type":"uint256"}]}
		]}
	]}
]`

var (
	MediaABI  = mustParseABI(mediaABI)
	MarketABI = mustParseABI(marketABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Errorf("failed to parse registry abi: %w", err))
	}
	return parsed
}

type decimal struct {
	Value *big.Int
}

type marketBidShares struct {
	PrevOwner decimal
	Creator   decimal
	Owner     decimal
}

// ContractBackend queries Zora style Media and Market contracts through
// eth_call.
type ContractBackend struct {
	caller ethereum.ContractCaller
}

func NewContractBackend(caller ethereum.ContractCaller) *ContractBackend {
	return &ContractBackend{caller: caller}
}

func (b *ContractBackend) call(ctx context.Context, contract common.Address, parsed abi.ABI, method string, mediaID *uint256.Int) ([]interface{}, error) {
	input, err := parsed.Pack(method, mediaID.ToBig())
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	output, err := b.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	res, err := parsed.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("%s returned %d values", method, len(res))
	}

	return res, nil
}

func (b *ContractBackend) OwnerOf(ctx context.Context, media common.Address, mediaID *uint256.Int) (common.Address, error) {
	res, err := b.call(ctx, media, MediaABI, "ownerOf", mediaID)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(res[0], new(common.Address)).(*common.Address), nil
}

func (b *ContractBackend) MediaData(ctx context.Context, media common.Address, mediaID *uint256.Int) (*MediaData, error) {
	strs := make([]string, 2)
	for i, method := range []string{"tokenURI", "tokenMetadataURI"} {
		res, err := b.call(ctx, media, MediaABI, method, mediaID)
		if err != nil {
			return nil, err
		}
		strs[i] = *abi.ConvertType(res[0], new(string)).(*string)
	}

	hashes := make([]common.Hash, 2)
	for i, method := range []string{"tokenContentHashes", "tokenMetadataHashes"} {
		res, err := b.call(ctx, media, MediaABI, method, mediaID)
		if err != nil {
			return nil, err
		}
		hashes[i] = *abi.ConvertType(res[0], new([32]byte)).(*[32]byte)
	}

	return &MediaData{
		TokenURI:     strs[0],
		MetadataURI:  strs[1],
		ContentHash:  hashes[0],
		MetadataHash: hashes[1],
	}, nil
}

func (b *ContractBackend) BidShares(ctx context.Context, market common.Address, mediaID *uint256.Int) (*BidShares, error) {
	res, err := b.call(ctx, market, MarketABI, "bidSharesForToken", mediaID)
	if err != nil {
		return nil, err
	}

	shares := *abi.ConvertType(res[0], new(marketBidShares)).(*marketBidShares)

	out := &BidShares{}
	for _, share := range []struct {
		dst *D256
		src decimal
	}{
		{&out.PrevOwner, shares.PrevOwner},
		{&out.Creator, shares.Creator},
		{&out.Owner, shares.Owner},
	} {
		v, overflow := uint256.FromBig(share.src.Value)
		if overflow {
			return nil, fmt.Errorf("bid share %s overflows uint256", share.src.Value)
		}
		share.dst.Value = v
	}

	return out, nil
}
