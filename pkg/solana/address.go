package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrNoViableBumpSeed = errors.New("unable to find a viable program address bump seed")
)

// CreateProgramAddress derives the program address for seeds, which is
// sha256(seeds || program || "ProgramDerivedAddress"). Program addresses must
// not lie on the ed25519 curve so that no private key exists for them. If the
// hash is a valid curve point, ErrInvalidPublicKey is returned.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(program)
	h.Write([]byte(pdaMarker))

	var candidate [ed25519.PublicKeySize]byte
	copy(candidate[:], h.Sum(nil))

	if onCurve(&candidate) {
		return nil, ErrInvalidPublicKey
	}
	return candidate[:], nil
}

// FindProgramAddressAndBump searches bump seeds from 255 downwards and returns
// the first off-curve address along with its bump.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := uint8(math.MaxUint8); bump > 0; bump-- {
		withBump[len(seeds)] = []byte{bump}

		address, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return address, bump, nil
		case ErrInvalidPublicKey:
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoViableBumpSeed
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := FindProgramAddressAndBump(program, seeds...)
	return address, err
}

// IsOnCurve reports whether pub is a valid compressed ed25519 point, which is
// to say whether a private key could exist for it.
func IsOnCurve(pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}

	var point [ed25519.PublicKeySize]byte
	copy(point[:], pub)
	return onCurve(&point)
}

// onCurve decompresses the point the same way ed25519.Verify does. The
// standard library keeps its edwards25519 types internal, so the check relies
// on github.com/jdgcs/ed25519.
func onCurve(point *[ed25519.PublicKeySize]byte) bool {
	var p edwards25519.ExtendedGroupElement
	return p.FromBytes(point)
}

// MustBase58Decode decodes a well known base58 address, panicking if it is
// malformed.
func MustBase58Decode(value string) ed25519.PublicKey {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	if len(decoded) != ed25519.PublicKeySize {
		panic(errors.Errorf("invalid key length for %s: %d", value, len(decoded)))
	}
	return decoded
}
