package useraccount

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

var ErrWalletExists = errors.New("a wallet already exists")

// Save writes the key produced by newKey to the wallet file, encrypted with
// a password from the environment, stdin or a prompt. An existing non-empty
// wallet is only replaced when overwrite is set.
func Save(overwrite bool, newKey func(ks *keystore.KeyStore, password string) (accounts.Account, error)) (common.Address, string, error) {
	// creates the config directory as a side effect
	walletPath, err := xdg.ConfigFile(WalletPath)
	if err != nil {
		return common.Address{}, "", fmt.Errorf("failed to get config file path: %w", err)
	}

	info, err := os.Stat(walletPath)
	switch {
	case err == nil && info.Size() != 0 && !overwrite:
		return common.Address{}, "", fmt.Errorf("%w at %s", ErrWalletExists, walletPath)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return common.Address{}, "", fmt.Errorf("failed to stat %s: %w", walletPath, err)
	}

	password, err := GetPasswordFromEnvStdinOrPrompt()
	if err != nil {
		return common.Address{}, "", fmt.Errorf("failed to read password: %w", err)
	}

	ks := keystore.NewKeyStore(filepath.Dir(walletPath), keystore.StandardScryptN, keystore.StandardScryptP)
	account, err := newKey(ks, password)
	if err != nil {
		return common.Address{}, "", err
	}

	if account.URL.Path != walletPath {
		err = os.Rename(account.URL.Path, walletPath)
		if err != nil {
			return common.Address{}, "", fmt.Errorf("failed to move key file to %s: %w", walletPath, err)
		}
	}

	return account.Address, walletPath, nil
}
