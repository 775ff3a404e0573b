package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Config names the credential sources, in resolution order: a raw hex
// private key wins over a keystore file.
type Config struct {
	PrivateKey   string
	KeystorePath string
	PasswordPath string
}

// ErrNoCredential is returned when no usable signing credential is
// configured. Callers treat it as fatal for the whole run.
var ErrNoCredential = errors.New("no usable signing credential configured")

// Resolve produces the signing key. A raw hex key is used directly; else a
// keystore file is decrypted with the password file (trailing newline
// stripped). Decryption failures are not retried.
func Resolve(cfg Config) (*ecdsa.PrivateKey, error) {
	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		return key, nil
	}

	if cfg.KeystorePath != "" && cfg.PasswordPath != "" {
		keyJSON, err := os.ReadFile(cfg.KeystorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read keystore file: %w", err)
		}
		password, err := os.ReadFile(cfg.PasswordPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read password file: %w", err)
		}
		key, err := keystore.DecryptKey(keyJSON, strings.TrimRight(string(password), "\r\n"))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt keystore: %w", err)
		}
		return key.PrivateKey, nil
	}

	return nil, ErrNoCredential
}

// AddressOf returns the address of the resolved key.
func AddressOf(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
