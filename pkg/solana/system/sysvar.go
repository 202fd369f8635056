package system

import (
	"crypto/ed25519"

	"github.com/code-payments/nft-minter/pkg/solana"
)

// SystemAccount is the address of the system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var SystemAccount = solana.MustBase58Decode("11111111111111111111111111111111")

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar = solana.MustBase58Decode("SysvarRent111111111111111111111111111111111")

const (
	// Rent parameters of the default cluster configuration.
	//
	// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L23-L35
	LamportsPerByteYear      = 3480
	ExemptionThresholdYears  = 2
	AccountStorageOverhead   = 128
	DefaultLamportsPerSigner = 5000
)

// MinimumBalanceForRentExemption computes the rent exempt balance of an
// account holding size bytes of data.
func MinimumBalanceForRentExemption(size uint64) uint64 {
	return (AccountStorageOverhead + size) * LamportsPerByteYear * ExemptionThresholdYears
}

// IsSystemAccount reports whether key is the system program.
func IsSystemAccount(key ed25519.PublicKey) bool {
	return string(key) == string(SystemAccount)
}
