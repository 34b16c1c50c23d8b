package testutil

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

// Account is a named key the scenarios act as.
type Account struct {
	Name       string
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

func newAccount(name string) (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key for %s: %w", name, err)
	}
	return &Account{
		Name:       name,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}, nil
}

// EthToWei converts a decimal ether amount such as "0.33" to wei.
func EthToWei(s string) (*uint256.Int, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok || r.Sign() < 0 {
		return nil, fmt.Errorf("invalid ether amount %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt64(params.Ether))
	if !r.IsInt() {
		return nil, fmt.Errorf("ether amount %q has more than 18 decimals", s)
	}
	v, overflow := uint256.FromBig(r.Num())
	if overflow {
		return nil, fmt.Errorf("ether amount %q overflows", s)
	}
	return v, nil
}
