package metadata

import (
	"crypto/ed25519"
	"strings"
)

func toFixedString(value string, length int) string {
	if len(value) >= length {
		return value
	}

	fixed := make([]byte, length)
	copy(fixed, value)
	return string(fixed)
}

func removeFixedStringPadding(value string) string {
	return strings.TrimRight(value, string([]byte{0}))
}

func toKey32(key ed25519.PublicKey) (k [32]byte) {
	copy(k[:], key)
	return k
}

func fromKey32(key [32]byte) ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), key[:]...)
}
