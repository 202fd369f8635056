package mint

import (
	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/pointer"
	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/system"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

const (
	// Decimals of every minted token.
	Decimals = 0

	// Supply minted to the holder.
	Supply = 1

	// MaxSupply of prints allowed by the master edition.
	MaxSupply = 0
)

// Indexes of each step within the mint transaction.
const (
	StepCreateMintAccount = iota
	StepInitializeMint
	StepCreateTokenAccount
	StepMintTo
	StepCreateMetadata
	StepCreateMasterEdition

	NumSteps
)

// MakeInstructions builds the instructions that mint a one of one token, in
// execution order:
//
//  1. Allocate the mint account, owned by the token program
//  2. Initialize the mint with zero decimals and the authority as both mint
//     and freeze authority
//  3. Create the authority's associated token account for the mint
//  4. Mint a single token into that account
//  5. Create the metadata account
//  6. Create the master edition with a max supply of zero, which moves the
//     mint and freeze authorities to the edition
func MakeInstructions(accounts *Accounts, args *Args, mintLamports uint64, opts *Options) ([]solana.Instruction, error) {
	if err := accounts.Validate(); err != nil {
		return nil, err
	}
	if err := args.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	authority := accounts.Authority.PublicKey().ToBytes()
	mint := accounts.Mint.PublicKey().ToBytes()

	createTokenAccount, tokenAccount, err := token.CreateAssociatedTokenAccount(authority, authority, mint)
	if err != nil {
		return nil, errors.Wrap(err, "error creating associated token account instruction")
	}

	createMetadata, err := metadata.NewCreateMetadataAccountV3Instruction(
		&metadata.CreateMetadataAccountV3InstructionAccounts{
			Metadata:        accounts.Metadata.PublicKey().ToBytes(),
			Mint:            mint,
			MintAuthority:   authority,
			Payer:           authority,
			UpdateAuthority: authority,
		},
		&metadata.CreateMetadataAccountV3InstructionArgs{
			Name:                 args.Name,
			Symbol:               args.Symbol,
			Uri:                  args.URI,
			SellerFeeBasisPoints: opts.SellerFeeBasisPoints,
			IsMutable:            opts.IsMutable,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating metadata instruction")
	}

	createMasterEdition, err := metadata.NewCreateMasterEditionV3Instruction(
		&metadata.CreateMasterEditionV3InstructionAccounts{
			Edition:         accounts.MasterEdition.PublicKey().ToBytes(),
			Mint:            mint,
			UpdateAuthority: authority,
			MintAuthority:   authority,
			Payer:           authority,
			Metadata:        accounts.Metadata.PublicKey().ToBytes(),
		},
		&metadata.CreateMasterEditionV3InstructionArgs{
			MaxSupply: pointer.To[uint64](MaxSupply),
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating master edition instruction")
	}

	return []solana.Instruction{
		system.CreateAccount(authority, mint, token.ProgramKey, mintLamports, token.MintSize),
		token.InitializeMint(mint, authority, authority, Decimals),
		createTokenAccount,
		token.MintTo(mint, tokenAccount, authority, Supply),
		createMetadata,
		createMasterEdition,
	}, nil
}

// MakeTransaction wraps the mint instructions in a single unsigned
// transaction paid for by the authority.
func MakeTransaction(accounts *Accounts, args *Args, mintLamports uint64, blockhash solana.Blockhash, opts *Options) (solana.Transaction, error) {
	instructions, err := MakeInstructions(accounts, args, mintLamports, opts)
	if err != nil {
		return solana.Transaction{}, err
	}

	txn := solana.NewTransaction(accounts.Authority.PublicKey().ToBytes(), instructions...)
	txn.SetBlockhash(blockhash)
	return txn, nil
}
