package common

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// NewAccountFromKeypairFile loads an account from a keypair file in the
// Solana CLI format, a JSON array of the 64 private key bytes, or holding the
// private key as a base58 string.
func NewAccountFromKeypairFile(path string) (*Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading keypair file %s", path)
	}

	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) > 0 && trimmed[0] != '[' {
		return NewAccountFromPrivateKeyString(trimmed)
	}
	return NewAccountFromKeypairJSON(data)
}

func NewAccountFromKeypairJSON(data []byte) (*Account, error) {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "error decoding keypair json")
	}

	if len(values) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("keypair must have %d bytes, got %d", ed25519.PrivateKeySize, len(values))
	}

	privateKey := make([]byte, ed25519.PrivateKeySize)
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("invalid keypair byte at %d: %d", i, v)
		}
		privateKey[i] = byte(v)
	}

	return NewAccountFromPrivateKeyBytes(privateKey)
}

// ToKeypairJSON encodes the account's private key in the Solana CLI keypair
// format.
func (a *Account) ToKeypairJSON() ([]byte, error) {
	signer, err := a.Signer()
	if err != nil {
		return nil, err
	}

	values := make([]int, len(signer))
	for i, b := range signer {
		values[i] = int(b)
	}
	return json.Marshal(values)
}
