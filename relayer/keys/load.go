package keys

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParseHexKey decodes a hex secp256k1 private key, with or without 0x.
func ParseHexKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signer key: %w", err)
	}
	return key, nil
}

// LoadKeys collects signer keys from hex strings and from every geth
// keystore file in keystoreDir (skipped when empty).
func LoadKeys(hexKeys []string, keystoreDir, password string) ([]*ecdsa.PrivateKey, error) {
	var out []*ecdsa.PrivateKey
	for i, hexKey := range hexKeys {
		key, err := ParseHexKey(hexKey)
		if err != nil {
			return nil, fmt.Errorf("signer_keys[%d]: %w", i, err)
		}
		out = append(out, key)
	}

	if keystoreDir == "" {
		return out, nil
	}

	entries, err := os.ReadDir(keystoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(keystoreDir, entry.Name())
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read keystore file %s: %w", entry.Name(), err)
		}
		k, err := keystore.DecryptKey(data, password)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt keystore file %s: %w", entry.Name(), err)
		}
		out = append(out, k.PrivateKey)
	}
	return out, nil
}
