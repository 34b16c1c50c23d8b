package useraccount

import (
	"bufio"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/term"
)

// WalletPath is the keystore file location relative to the XDG config home.
const WalletPath = "editions/wallet.json"

type UserAccount struct {
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

func Load() (*UserAccount, error) {
	walletPath, err := xdg.ConfigFile(WalletPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get config file path: %w", err)
	}

	walletBytes, err := os.ReadFile(walletPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet file: %w", err)
	}

	password, err := readPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	key, err := keystore.DecryptKey(walletBytes, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt private key: %w", err)
	}

	return &UserAccount{
		Address:    crypto.PubkeyToAddress(key.PrivateKey.PublicKey),
		PrivateKey: key.PrivateKey,
	}, nil
}

// Address reads the account address from the wallet without decrypting it.
func Address() (common.Address, error) {
	walletPath, err := xdg.ConfigFile(WalletPath)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get config file path: %w", err)
	}

	walletBytes, err := os.ReadFile(walletPath)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to read wallet file: %w", err)
	}

	return AddressFromKeyJSON(walletBytes)
}

func AddressFromKeyJSON(walletBytes []byte) (common.Address, error) {
	var w struct {
		Address string `json:"address"`
	}
	err := json.Unmarshal(walletBytes, &w)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to parse wallet file: %w", err)
	}
	if !common.IsHexAddress(w.Address) {
		return common.Address{}, fmt.Errorf("wallet file has no valid address")
	}
	return common.HexToAddress(w.Address), nil
}

// readPassword reads a password from stdin if piped, or interactively if in a terminal
func readPassword() (string, error) {
	password, ok := os.LookupEnv("WALLET_PASSWORD")
	if ok {
		return password, nil
	}

	if term.IsTerminal(int(syscall.Stdin)) {
		fmt.Print("Enter wallet password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytePassword)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(password), nil
}

// GetPasswordFromEnvStdinOrPrompt first checks if the password is set in the environment variable WALLET_PASSWORD, then reads a password from stdin if piped, or interactively if in a terminal
// confirming that the passwords match
func GetPasswordFromEnvStdinOrPrompt() (string, error) {
	password, ok := os.LookupEnv("WALLET_PASSWORD")
	if ok {
		return password, nil
	}

	if term.IsTerminal(int(syscall.Stdin)) {
		fmt.Print("Enter wallet password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		password := strings.TrimSpace(string(bytePassword))

		fmt.Print("Confirm password: ")
		byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}

		if password != strings.TrimSpace(string(byteConfirm)) {
			return "", fmt.Errorf("passwords did not match")
		}

		return password, nil
	}

	return readPassword()
}
