package common

import (
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/system"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

var (
	SystemProgramAccount, _          = NewAccountFromPublicKeyBytes(system.SystemAccount)
	TokenProgramAccount, _           = NewAccountFromPublicKeyBytes(token.ProgramKey)
	AssociatedTokenProgramAccount, _ = NewAccountFromPublicKeyBytes(token.AssociatedTokenAccountProgramKey)
	MetadataProgramAccount, _        = NewAccountFromPublicKeyBytes(metadata.PROGRAM_ID)
	RentSysVarAccount, _             = NewAccountFromPublicKeyBytes(system.RentSysVar)
)
