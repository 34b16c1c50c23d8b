package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/Arkiv-Network/editions/cmd/editions/account/pkg/useraccount"
	"github.com/Arkiv-Network/editions/editions/editiontx"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

func URLFlag(dst *string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "rpc-url",
		Usage:       "The URL of the editions daemon",
		Value:       "http://127.0.0.1:8645",
		EnvVars:     []string{"EDITIONS_RPC_URL"},
		Destination: dst,
	}
}

func Dial(ctx context.Context, url string) (*rpc.Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	return c, nil
}

// SendTransaction signs tx with the account's current nonce and submits it.
func SendTransaction(ctx context.Context, c *rpc.Client, account *useraccount.UserAccount, tx *editiontx.EditionTransaction) (*editiontx.Receipt, error) {
	var nonce hexutil.Uint64
	err := c.CallContext(ctx, &nonce, "editions_getNonce", account.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	tx.Nonce = uint64(nonce)

	env, err := editiontx.SignTransaction(tx, account.PrivateKey)
	if err != nil {
		return nil, err
	}

	raw, err := editiontx.EncodeEnvelope(env)
	if err != nil {
		return nil, err
	}

	receipt := &editiontx.Receipt{}
	err = c.CallContext(ctx, receipt, "editions_sendTransaction", hexutil.Bytes(raw))
	if err != nil {
		return nil, fmt.Errorf("transaction failed: %w", err)
	}

	return receipt, nil
}

// Call signs q and sends it as a buyer-only query, decoding the answer into
// result.
func Call(ctx context.Context, c *rpc.Client, account *useraccount.UserAccount, q *editiontx.Query, result any) error {
	env, err := editiontx.SignQuery(q, account.PrivateKey)
	if err != nil {
		return err
	}

	raw, err := editiontx.EncodeEnvelope(env)
	if err != nil {
		return err
	}

	err = c.CallContext(ctx, result, "editions_call", hexutil.Bytes(raw))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return nil
}

// ParseAmount reads a wei amount. A trailing "eth" or "gwei" scales a
// decimal value, e.g. "0.5eth".
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	unit := big.NewInt(1)
	switch {
	case strings.HasSuffix(s, "gwei"):
		s, unit = strings.TrimSuffix(s, "gwei"), big.NewInt(params.GWei)
	case strings.HasSuffix(s, "eth"):
		s, unit = strings.TrimSuffix(s, "eth"), big.NewInt(params.Ether)
	case strings.HasSuffix(s, "wei"):
		s = strings.TrimSuffix(s, "wei")
	}

	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok || r.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}

	r.Mul(r, new(big.Rat).SetInt(unit))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q is not a whole number of wei", s)
	}

	v, overflow := uint256.FromBig(r.Num())
	if overflow {
		return nil, fmt.Errorf("amount %q does not fit in 256 bits", s)
	}
	return v, nil
}

// ParseID reads a decimal or 0x prefixed edition or media id.
func ParseID(s string) (*uint256.Int, error) {
	if strings.HasPrefix(s, "0x") {
		v, err := uint256.FromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return v, nil
}
