// Package metadata builds instructions for, and decodes accounts of, the
// token metadata program.
package metadata

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/system"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

var (
	PROGRAM_ADDRESS = solana.MustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	PROGRAM_ID      = PROGRAM_ADDRESS
)

var (
	SYSTEM_PROGRAM_ID    = system.SystemAccount
	SPL_TOKEN_PROGRAM_ID = token.ProgramKey
	SYSVAR_RENT_PUBKEY   = system.RentSysVar
)

// Maximum lengths of the metadata strings, in bytes. Stored values are
// padded with NUL bytes up to these lengths.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200

	MaxSellerFeeBasisPoints = 10000
)

type InstructionType uint8

// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/v1.13.2/programs/token-metadata/program/src/instruction/mod.rs
const (
	InstructionTypeCreateMasterEditionV3   InstructionType = 17
	InstructionTypeCreateMetadataAccountV3 InstructionType = 33
)

// Custom errors returned by the metadata program.
//
// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/v1.13.2/programs/token-metadata/program/src/error.rs
const (
	ErrorInstructionUnpackError solana.CustomError = iota
	ErrorInstructionPackError
	ErrorNotRentExempt
	ErrorAlreadyInitialized
	ErrorUninitialized
	ErrorInvalidMetadataKey
	ErrorInvalidEditionKey
	ErrorUpdateAuthorityIncorrect
	ErrorUpdateAuthorityIsNotSigner
	ErrorNotMintAuthority
	ErrorInvalidMintAuthority
	ErrorNameTooLong
	ErrorSymbolTooLong
	ErrorUriTooLong
	ErrorUpdateAuthorityMustBeEqualToMetadataAuthorityAndSigner
	ErrorMintMismatch
	ErrorEditionsMustHaveExactlyOneToken
)

var (
	ErrNameTooLong   = errors.Errorf("name exceeds %d bytes", MaxNameLength)
	ErrSymbolTooLong = errors.Errorf("symbol exceeds %d bytes", MaxSymbolLength)
	ErrURITooLong    = errors.Errorf("uri exceeds %d bytes", MaxURILength)
)

// ValidateData checks the metadata strings against the program's limits.
func ValidateData(name, symbol, uri string) error {
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(symbol) > MaxSymbolLength {
		return ErrSymbolTooLong
	}
	if len(uri) > MaxURILength {
		return ErrURITooLong
	}
	return nil
}

// GetInstructionType returns the metadata instruction type of a compiled
// instruction.
func GetInstructionType(m solana.Message, index int) (InstructionType, error) {
	if index >= len(m.Instructions) {
		return 0, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if !bytes.Equal(m.Accounts[i.ProgramIndex], PROGRAM_ID) {
		return 0, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 {
		return 0, errors.New("metadata instruction missing data")
	}

	return InstructionType(i.Data[0]), nil
}
