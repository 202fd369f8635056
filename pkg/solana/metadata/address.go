package metadata

import (
	"crypto/ed25519"

	"github.com/code-payments/nft-minter/pkg/solana"
)

var (
	MetadataPrefix = []byte("metadata")
	EditionPrefix  = []byte("edition")
)

type GetMetadataAddressArgs struct {
	Mint ed25519.PublicKey
}

func GetMetadataAddress(args *GetMetadataAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		MetadataPrefix,
		PROGRAM_ID,
		args.Mint,
	)
}

type GetMasterEditionAddressArgs struct {
	Mint ed25519.PublicKey
}

func GetMasterEditionAddress(args *GetMasterEditionAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		MetadataPrefix,
		PROGRAM_ID,
		args.Mint,
		EditionPrefix,
	)
}
