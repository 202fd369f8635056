package mint

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/nft/common"
	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/system"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

// Decompiled is a mint transaction parsed back into its parts.
type Decompiled struct {
	Accounts     *Accounts
	Args         *Args
	Options      *Options
	MintLamports uint64
}

// DecompileTransaction parses a compiled mint transaction, verifying that it
// contains exactly the six mint steps, in order, over one consistent set of
// accounts.
func DecompileTransaction(m solana.Message) (*Decompiled, error) {
	if len(m.Accounts) == 0 {
		return nil, errors.Wrap(ErrInvalidTransaction, "message has no accounts")
	}
	if len(m.Instructions) != NumSteps {
		return nil, errors.Wrapf(ErrInvalidTransaction, "expected %d instructions, got %d", NumSteps, len(m.Instructions))
	}

	payer := m.Accounts[0]

	createAccount, err := system.DecompileCreateAccount(m, StepCreateMintAccount)
	if err != nil {
		return nil, stepError(StepCreateMintAccount, err)
	}
	if !bytes.Equal(createAccount.Funder, payer) {
		return nil, stepError(StepCreateMintAccount, errors.New("mint account not funded by the fee payer"))
	}
	if !bytes.Equal(createAccount.Owner, token.ProgramKey) {
		return nil, stepError(StepCreateMintAccount, errors.New("mint account not owned by the token program"))
	}
	if createAccount.Size != token.MintSize {
		return nil, stepError(StepCreateMintAccount, errors.Errorf("mint account size %d", createAccount.Size))
	}

	authorityAccount, err := common.NewAccountFromPublicKeyBytes(payer)
	if err != nil {
		return nil, stepError(StepCreateMintAccount, err)
	}
	mintAccount, err := common.NewAccountFromPublicKeyBytes(createAccount.Address)
	if err != nil {
		return nil, stepError(StepCreateMintAccount, err)
	}

	accounts, err := NewAccounts(authorityAccount, mintAccount)
	if err != nil {
		return nil, err
	}

	authority := accounts.Authority.PublicKey().ToBytes()
	mint := accounts.Mint.PublicKey().ToBytes()
	tokenAccount := accounts.TokenAccount.PublicKey().ToBytes()
	metadataAddress := accounts.Metadata.PublicKey().ToBytes()
	editionAddress := accounts.MasterEdition.PublicKey().ToBytes()

	initializeMint, err := token.DecompileInitializeMint(m, StepInitializeMint)
	if err != nil {
		return nil, stepError(StepInitializeMint, err)
	}
	if err := expectKeys(
		initializeMint.Mint, mint,
		initializeMint.MintAuthority, authority,
		initializeMint.FreezeAuthority, authority,
	); err != nil {
		return nil, stepError(StepInitializeMint, err)
	}
	if initializeMint.Decimals != Decimals {
		return nil, stepError(StepInitializeMint, errors.Errorf("decimals %d", initializeMint.Decimals))
	}

	createTokenAccount, err := token.DecompileCreateAssociatedAccount(m, StepCreateTokenAccount)
	if err != nil {
		return nil, stepError(StepCreateTokenAccount, err)
	}
	if err := expectKeys(
		createTokenAccount.Subsidizer, authority,
		createTokenAccount.Owner, authority,
		createTokenAccount.Mint, mint,
		createTokenAccount.Address, tokenAccount,
	); err != nil {
		return nil, stepError(StepCreateTokenAccount, err)
	}

	mintTo, err := token.DecompileMintTo(m, StepMintTo)
	if err != nil {
		return nil, stepError(StepMintTo, err)
	}
	if err := expectKeys(
		mintTo.Mint, mint,
		mintTo.Destination, tokenAccount,
		mintTo.Authority, authority,
	); err != nil {
		return nil, stepError(StepMintTo, err)
	}
	if mintTo.Amount != Supply {
		return nil, stepError(StepMintTo, errors.Errorf("amount %d", mintTo.Amount))
	}

	createMetadata, err := metadata.DecompileCreateMetadataAccountV3(m, StepCreateMetadata)
	if err != nil {
		return nil, stepError(StepCreateMetadata, err)
	}
	if err := expectKeys(
		createMetadata.Accounts.Metadata, metadataAddress,
		createMetadata.Accounts.Mint, mint,
		createMetadata.Accounts.MintAuthority, authority,
		createMetadata.Accounts.Payer, authority,
		createMetadata.Accounts.UpdateAuthority, authority,
	); err != nil {
		return nil, stepError(StepCreateMetadata, err)
	}
	if createMetadata.HasCreators || createMetadata.HasCollection || createMetadata.HasUses || createMetadata.HasCollectionDetails {
		return nil, stepError(StepCreateMetadata, errors.New("unexpected creators, collection, uses or collection details"))
	}

	createEdition, err := metadata.DecompileCreateMasterEditionV3(m, StepCreateMasterEdition)
	if err != nil {
		return nil, stepError(StepCreateMasterEdition, err)
	}
	if err := expectKeys(
		createEdition.Accounts.Edition, editionAddress,
		createEdition.Accounts.Mint, mint,
		createEdition.Accounts.UpdateAuthority, authority,
		createEdition.Accounts.MintAuthority, authority,
		createEdition.Accounts.Payer, authority,
		createEdition.Accounts.Metadata, metadataAddress,
	); err != nil {
		return nil, stepError(StepCreateMasterEdition, err)
	}
	if createEdition.Args.MaxSupply == nil || *createEdition.Args.MaxSupply != MaxSupply {
		return nil, stepError(StepCreateMasterEdition, errors.New("master edition max supply must be zero"))
	}

	if err := checkAccess(m, accounts); err != nil {
		return nil, err
	}

	args := &Args{
		Name:   createMetadata.Args.Name,
		Symbol: createMetadata.Args.Symbol,
		URI:    createMetadata.Args.Uri,
	}
	if err := args.Validate(); err != nil {
		return nil, err
	}

	opts := &Options{
		SellerFeeBasisPoints: createMetadata.Args.SellerFeeBasisPoints,
		IsMutable:            createMetadata.Args.IsMutable,
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Decompiled{
		Accounts:     accounts,
		Args:         args,
		Options:      opts,
		MintLamports: createAccount.Lamports,
	}, nil
}

// checkAccess verifies the message grants every account the access mode the
// mint requires of it.
func checkAccess(m solana.Message, accounts *Accounts) error {
	for _, ref := range accounts.Refs() {
		index := -1
		for i, key := range m.Accounts {
			if bytes.Equal(key, ref.Account.PublicKey().ToBytes()) {
				index = i
				break
			}
		}
		if index < 0 {
			return errors.Wrapf(ErrInvalidTransaction, "%s missing from message", ref.Name)
		}

		if ref.Access.IsSigner() && !m.IsSigner(index) {
			return errors.Wrapf(ErrInvalidTransaction, "%s must be a signer", ref.Name)
		}
		if ref.Access.IsWritable() && !m.IsWritable(index) {
			return errors.Wrapf(ErrInvalidTransaction, "%s must be writable", ref.Name)
		}
	}

	if int(m.Header.NumSignatures) != 2 {
		return errors.Wrapf(ErrInvalidTransaction, "expected 2 signers, got %d", m.Header.NumSignatures)
	}
	return nil
}

// expectKeys compares alternating (actual, expected) pairs.
func expectKeys(pairs ...ed25519.PublicKey) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if !bytes.Equal(pairs[i], pairs[i+1]) {
			return errors.Errorf("unexpected account at position %d", i/2)
		}
	}
	return nil
}

func stepError(step int, err error) error {
	return errors.Wrapf(ErrInvalidTransaction, "step %d: %s", step, err.Error())
}
