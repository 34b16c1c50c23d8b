package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Arkiv-Network/editions/api"
	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/Arkiv-Network/editions/editions/node"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/Arkiv-Network/editions/editions/sqlstore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
)

var ether = uint256.NewInt(1_000_000_000_000_000_000)

// Accounts every scenario starts with 100 ether each.
var accountNames = []string{"admin", "creator", "buyer", "stranger"}

// World is the test world - it holds all the state that is shared between steps
type World struct {
	Node      *node.Node
	RPCClient *rpc.Client
	Accounts  map[string]*Account

	LastReceipt   *editiontx.Receipt
	LastEditionID *uint256.Int
	LastBidShares *registry.BidShares
	LastMediaData *registry.MediaData
	LastQuery     []api.Edition
	LastError     error

	mu         sync.Mutex
	mediaOwner map[uint64]common.Address

	store     *sqlstore.SQLStore
	server    *httptest.Server
	rpcServer *rpc.Server
	tempDir   string
}

func NewWorld(ctx context.Context) (*World, error) {
	td, err := os.MkdirTemp("", "editions")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	w := &World{
		Accounts:   make(map[string]*Account),
		mediaOwner: make(map[uint64]common.Address),
		tempDir:    td,
	}

	alloc := make(map[common.Address]*uint256.Int)
	for _, name := range accountNames {
		acc, err := newAccount(name)
		if err != nil {
			return nil, err
		}
		w.Accounts[name] = acc
		alloc[acc.Address] = new(uint256.Int).Mul(uint256.NewInt(100), ether)
	}

	w.store, err = sqlstore.NewStore(filepath.Join(td, "editions.db"))
	if err != nil {
		return nil, err
	}

	backend := &registry.MockBackend{
		OwnerOfFn: func(_ context.Context, _ common.Address, mediaID *uint256.Int) (common.Address, error) {
			w.mu.Lock()
			defer w.mu.Unlock()
			return w.mediaOwner[mediaID.Uint64()], nil
		},
		MediaDataFn: func(_ context.Context, _ common.Address, mediaID *uint256.Int) (*registry.MediaData, error) {
			return &registry.MediaData{
				TokenURI:    fmt.Sprintf("ipfs://media/%d", mediaID.Uint64()),
				MetadataURI: fmt.Sprintf("ipfs://metadata/%d", mediaID.Uint64()),
			}, nil
		},
		BidSharesFn: func(context.Context, common.Address, *uint256.Int) (*registry.BidShares, error) {
			return &registry.BidShares{
				PrevOwner: percent(0),
				Creator:   percent(10),
				Owner:     percent(90),
			}, nil
		},
	}

	w.Node, err = node.Open(ctx, w.store, backend, time.Second, &node.Genesis{
		Admin:         w.Accounts["admin"].Address,
		MediaAddress:  common.HexToAddress("0x1"),
		MarketAddress: common.HexToAddress("0x2"),
		Alloc:         alloc,
	})
	if err != nil {
		w.store.Close()
		return nil, err
	}

	handler, rpcServer, err := api.NewHandler(api.NewEditionsAPI(w.Node), api.Config{CORSOrigins: []string{"*"}})
	if err != nil {
		w.store.Close()
		return nil, err
	}
	w.rpcServer = rpcServer
	w.server = httptest.NewServer(handler)

	w.RPCClient, err = rpc.DialContext(ctx, w.server.URL)
	if err != nil {
		w.Shutdown()
		return nil, fmt.Errorf("failed to dial node: %w", err)
	}

	return w, nil
}

func (w *World) Shutdown() {
	if w.RPCClient != nil {
		w.RPCClient.Close()
	}
	if w.server != nil {
		w.server.Close()
	}
	if w.rpcServer != nil {
		w.rpcServer.Stop()
	}
	w.store.Close()
	os.RemoveAll(w.tempDir)
}

// SetMediaOwner makes the registry report owner for mediaID.
func (w *World) SetMediaOwner(mediaID uint64, owner common.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mediaOwner[mediaID] = owner
}

func (w *World) Account(name string) (*Account, error) {
	acc, ok := w.Accounts[name]
	if !ok {
		return nil, fmt.Errorf("unknown account %q", name)
	}
	return acc, nil
}

// SendTransaction signs tx with the next nonce of acc and submits it over
// JSON-RPC. The outcome is recorded in LastReceipt and LastError.
func (w *World) SendTransaction(ctx context.Context, acc *Account, tx *editiontx.EditionTransaction) error {
	var nonce hexutil.Uint64
	err := w.RPCClient.CallContext(ctx, &nonce, "editions_getNonce", acc.Address)
	if err != nil {
		return fmt.Errorf("failed to get nonce: %w", err)
	}
	tx.Nonce = uint64(nonce)

	env, err := editiontx.SignTransaction(tx, acc.PrivateKey)
	if err != nil {
		return err
	}
	raw, err := editiontx.EncodeEnvelope(env)
	if err != nil {
		return err
	}

	var receipt editiontx.Receipt
	w.LastError = w.RPCClient.CallContext(ctx, &receipt, "editions_sendTransaction", hexutil.Bytes(raw))
	if w.LastError != nil {
		w.LastReceipt = nil
		return nil
	}
	w.LastReceipt = &receipt

	return nil
}

// Call runs a signed query as acc and decodes the answer into result.
func (w *World) Call(ctx context.Context, acc *Account, q *editiontx.Query, result any) error {
	env, err := editiontx.SignQuery(q, acc.PrivateKey)
	if err != nil {
		return err
	}
	raw, err := editiontx.EncodeEnvelope(env)
	if err != nil {
		return err
	}

	w.LastError = w.RPCClient.CallContext(ctx, result, "editions_call", hexutil.Bytes(raw))

	return nil
}

func (w *World) GetEdition(ctx context.Context, id *uint256.Int) (*api.Edition, error) {
	var e api.Edition
	err := w.RPCClient.CallContext(ctx, &e, "editions_getEdition", id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func percent(n uint64) registry.D256 {
	return registry.D256{Value: new(uint256.Int).Mul(uint256.NewInt(n), ether)}
}

// QueryEditions runs a filter query and records the outcome in LastQuery and
// LastError.
func (w *World) QueryEditions(ctx context.Context, q string) {
	w.LastQuery = nil
	w.LastError = w.RPCClient.CallContext(ctx, &w.LastQuery, "editions_queryEditions", q, hexutil.Uint64(0), hexutil.Uint64(0))
}
