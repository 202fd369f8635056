package memory

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/code-payments/nft-minter/pkg/pointer"
	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/system"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

func executeSystem(ctx *instructionContext) error {
	command, err := system.GetCommand(ctx.message, ctx.index)
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}

	switch command {
	case system.CommandCreateAccount:
		return systemCreateAccount(ctx)
	case system.CommandTransfer:
		return systemTransfer(ctx)
	default:
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}
}

func systemCreateAccount(ctx *instructionContext) error {
	ix, err := system.DecompileCreateAccount(ctx.message, ctx.index)
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}

	if !ctx.isSigner(ix.Funder) || !ctx.isSigner(ix.Address) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	existing, ok := ctx.get(ix.Address)
	if ok && (existing.Lamports > 0 || len(existing.Data) > 0 || !system.IsSystemAccount(existing.Owner)) {
		return system.ErrorAccountAlreadyInUse
	}

	if err := ctx.transfer(ix.Funder, ix.Address, ix.Lamports, system.ErrorResultWithNegativeLamports); err != nil {
		return err
	}

	created, _ := ctx.get(ix.Address)
	created.Owner = ix.Owner
	created.Data = make([]byte, ix.Size)
	return ctx.put(ix.Address, created)
}

func systemTransfer(ctx *instructionContext) error {
	ix, err := system.DecompileTransfer(ctx.message, ctx.index)
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}

	from, _ := ctx.get(ix.From)
	if len(from.Data) > 0 || !system.IsSystemAccount(from.Owner) {
		return instructionError(solana.InstructionErrorInvalidArgument)
	}

	return ctx.transfer(ix.From, ix.To, ix.Lamports, system.ErrorResultWithNegativeLamports)
}

func executeToken(ctx *instructionContext) error {
	command, err := token.GetCommand(ctx.message, ctx.index)
	if err != nil {
		return token.ErrorInvalidInstruction
	}

	switch command {
	case token.CommandInitializeMint:
		return tokenInitializeMint(ctx)
	case token.CommandMintTo:
		return tokenMintTo(ctx)
	default:
		return token.ErrorInvalidInstruction
	}
}

func tokenInitializeMint(ctx *instructionContext) error {
	ix, err := token.DecompileInitializeMint(ctx.message, ctx.index)
	if err != nil {
		return token.ErrorInvalidInstruction
	}

	info, ok := ctx.get(ix.Mint)
	if !ok || !bytes.Equal(info.Owner, token.ProgramKey) {
		return instructionError(solana.InstructionErrorIncorrectProgramID)
	}
	if len(info.Data) != token.MintSize {
		return instructionError(solana.InstructionErrorInvalidAccountData)
	}

	var mint token.Mint
	mint.Unmarshal(info.Data)
	if mint.IsInitialized {
		return token.ErrorAlreadyInUse
	}
	if info.Lamports < system.MinimumBalanceForRentExemption(token.MintSize) {
		return token.ErrorNotRentExempt
	}

	mint = token.Mint{
		MintAuthority:   ix.MintAuthority,
		Decimals:        ix.Decimals,
		IsInitialized:   true,
		FreezeAuthority: ix.FreezeAuthority,
	}
	info.Data = mint.Marshal()
	return ctx.put(ix.Mint, info)
}

func tokenMintTo(ctx *instructionContext) error {
	ix, err := token.DecompileMintTo(ctx.message, ctx.index)
	if err != nil {
		return token.ErrorInvalidInstruction
	}

	mintInfo, mint, err := getMint(ctx, ix.Mint)
	if err != nil {
		return err
	}

	destInfo, ok := ctx.get(ix.Destination)
	if !ok || !bytes.Equal(destInfo.Owner, token.ProgramKey) {
		return instructionError(solana.InstructionErrorIncorrectProgramID)
	}
	var dest token.Account
	if !dest.Unmarshal(destInfo.Data) || dest.State == token.AccountStateUninitialized {
		return token.ErrorUninitializedState
	}
	if dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(dest.Mint, ix.Mint) {
		return token.ErrorMintMismatch
	}

	if len(mint.MintAuthority) == 0 {
		return token.ErrorFixedSupply
	}
	if !bytes.Equal(mint.MintAuthority, ix.Authority) {
		return token.ErrorOwnerMismatch
	}
	if !ctx.isSigner(ix.Authority) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	if math.MaxUint64-mint.Supply < ix.Amount || math.MaxUint64-dest.Amount < ix.Amount {
		return token.ErrorOverflow
	}
	mint.Supply += ix.Amount
	dest.Amount += ix.Amount

	mintInfo.Data = mint.Marshal()
	destInfo.Data = dest.Marshal()
	if err := ctx.put(ix.Mint, mintInfo); err != nil {
		return err
	}
	return ctx.put(ix.Destination, destInfo)
}

func executeAssociatedTokenAccount(ctx *instructionContext) error {
	ix, err := token.DecompileCreateAssociatedAccount(ctx.message, ctx.index)
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}

	expected, err := token.GetAssociatedAccount(ix.Owner, ix.Mint)
	if err != nil || !bytes.Equal(expected, ix.Address) {
		return instructionError(solana.InstructionErrorInvalidSeeds)
	}

	existing, ok := ctx.get(ix.Address)
	if ok && bytes.Equal(existing.Owner, token.ProgramKey) {
		var account token.Account
		if ix.Idempotent && account.Unmarshal(existing.Data) && bytes.Equal(account.Owner, ix.Owner) && bytes.Equal(account.Mint, ix.Mint) {
			return nil
		}
		return system.ErrorAccountAlreadyInUse
	}
	if ok && (len(existing.Data) > 0 || !system.IsSystemAccount(existing.Owner)) {
		return system.ErrorAccountAlreadyInUse
	}

	if _, _, err := getMint(ctx, ix.Mint); err != nil {
		return token.ErrorInvalidMint
	}

	rent := system.MinimumBalanceForRentExemption(token.AccountSize)
	if existing.Lamports < rent {
		if err := ctx.transfer(ix.Subsidizer, ix.Address, rent-existing.Lamports, system.ErrorResultWithNegativeLamports); err != nil {
			return err
		}
	}

	created, _ := ctx.get(ix.Address)
	account := token.Account{
		Mint:  ix.Mint,
		Owner: ix.Owner,
		State: token.AccountStateInitialized,
	}
	created.Owner = token.ProgramKey
	created.Data = account.Marshal()
	return ctx.put(ix.Address, created)
}

func executeMetadata(ctx *instructionContext) error {
	instructionType, err := metadata.GetInstructionType(ctx.message, ctx.index)
	if err != nil {
		return metadata.ErrorInstructionUnpackError
	}

	switch instructionType {
	case metadata.InstructionTypeCreateMetadataAccountV3:
		return metadataCreateMetadataAccountV3(ctx)
	case metadata.InstructionTypeCreateMasterEditionV3:
		return metadataCreateMasterEditionV3(ctx)
	default:
		return metadata.ErrorInstructionUnpackError
	}
}

func metadataCreateMetadataAccountV3(ctx *instructionContext) error {
	ix, err := metadata.DecompileCreateMetadataAccountV3(ctx.message, ctx.index)
	if err != nil {
		return metadata.ErrorInstructionUnpackError
	}

	expected, _, err := metadata.GetMetadataAddress(&metadata.GetMetadataAddressArgs{Mint: ix.Accounts.Mint})
	if err != nil || !bytes.Equal(expected, ix.Accounts.Metadata) {
		return metadata.ErrorInvalidMetadataKey
	}

	if existing, ok := ctx.get(ix.Accounts.Metadata); ok && len(existing.Data) > 0 {
		return metadata.ErrorAlreadyInitialized
	}

	switch {
	case len(ix.Args.Name) > metadata.MaxNameLength:
		return metadata.ErrorNameTooLong
	case len(ix.Args.Symbol) > metadata.MaxSymbolLength:
		return metadata.ErrorSymbolTooLong
	case len(ix.Args.Uri) > metadata.MaxURILength:
		return metadata.ErrorUriTooLong
	}

	_, mint, err := getMint(ctx, ix.Accounts.Mint)
	if err != nil {
		return err
	}
	if !bytes.Equal(mint.MintAuthority, ix.Accounts.MintAuthority) {
		return metadata.ErrorInvalidMintAuthority
	}
	if !ctx.isSigner(ix.Accounts.MintAuthority) {
		return metadata.ErrorNotMintAuthority
	}
	if !ctx.isSigner(ix.Accounts.UpdateAuthority) {
		return metadata.ErrorUpdateAuthorityIsNotSigner
	}

	if err := createProgramAccount(ctx, ix.Accounts.Payer, ix.Accounts.Metadata, metadata.MetadataAccountSize); err != nil {
		return err
	}

	_, editionNonce, err := metadata.GetMasterEditionAddress(&metadata.GetMasterEditionAddressArgs{Mint: ix.Accounts.Mint})
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidSeeds)
	}

	tokenStandard := metadata.TokenStandardFungibleAsset
	if mint.Decimals > 0 {
		tokenStandard = metadata.TokenStandardFungible
	}

	account := metadata.MetadataAccount{
		Key:                  metadata.KeyMetadataV1,
		UpdateAuthority:      ix.Accounts.UpdateAuthority,
		Mint:                 ix.Accounts.Mint,
		Name:                 ix.Args.Name,
		Symbol:               ix.Args.Symbol,
		Uri:                  ix.Args.Uri,
		SellerFeeBasisPoints: ix.Args.SellerFeeBasisPoints,
		IsMutable:            ix.Args.IsMutable,
		EditionNonce:         pointer.To(editionNonce),
		TokenStandard:        pointer.To(tokenStandard),
	}
	return putMetadata(ctx, ix.Accounts.Metadata, &account)
}

func metadataCreateMasterEditionV3(ctx *instructionContext) error {
	ix, err := metadata.DecompileCreateMasterEditionV3(ctx.message, ctx.index)
	if err != nil {
		return metadata.ErrorInstructionUnpackError
	}

	expected, _, err := metadata.GetMasterEditionAddress(&metadata.GetMasterEditionAddressArgs{Mint: ix.Accounts.Mint})
	if err != nil || !bytes.Equal(expected, ix.Accounts.Edition) {
		return metadata.ErrorInvalidEditionKey
	}

	if existing, ok := ctx.get(ix.Accounts.Edition); ok && len(existing.Data) > 0 {
		return metadata.ErrorAlreadyInitialized
	}

	metadataInfo, ok := ctx.get(ix.Accounts.Metadata)
	if !ok || !bytes.Equal(metadataInfo.Owner, metadata.PROGRAM_ID) {
		return metadata.ErrorUninitialized
	}
	var account metadata.MetadataAccount
	if err := account.Unmarshal(metadataInfo.Data); err != nil {
		return metadata.ErrorInvalidMetadataKey
	}
	if !bytes.Equal(account.Mint, ix.Accounts.Mint) {
		return metadata.ErrorMintMismatch
	}
	if !bytes.Equal(account.UpdateAuthority, ix.Accounts.UpdateAuthority) {
		return metadata.ErrorUpdateAuthorityIncorrect
	}
	if !ctx.isSigner(ix.Accounts.UpdateAuthority) {
		return metadata.ErrorUpdateAuthorityIsNotSigner
	}

	mintInfo, mint, err := getMint(ctx, ix.Accounts.Mint)
	if err != nil {
		return err
	}
	if !bytes.Equal(mint.MintAuthority, ix.Accounts.MintAuthority) {
		return metadata.ErrorInvalidMintAuthority
	}
	if !ctx.isSigner(ix.Accounts.MintAuthority) {
		return metadata.ErrorNotMintAuthority
	}
	if mint.Supply != 1 || mint.Decimals != 0 {
		return metadata.ErrorEditionsMustHaveExactlyOneToken
	}

	if err := createProgramAccount(ctx, ix.Accounts.Payer, ix.Accounts.Edition, metadata.MasterEditionAccountSize); err != nil {
		return err
	}

	edition := metadata.MasterEditionAccount{
		Key:       metadata.KeyMasterEditionV2,
		MaxSupply: pointer.Copy(ix.Args.MaxSupply),
	}
	editionData, err := edition.Marshal()
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidAccountData)
	}
	editionInfo, _ := ctx.get(ix.Accounts.Edition)
	editionInfo.Data = editionData
	if err := ctx.put(ix.Accounts.Edition, editionInfo); err != nil {
		return err
	}

	// The edition takes over both authorities, so no further supply can be
	// minted.
	mint.MintAuthority = ix.Accounts.Edition
	mint.FreezeAuthority = ix.Accounts.Edition
	mintInfo.Data = mint.Marshal()
	if err := ctx.put(ix.Accounts.Mint, mintInfo); err != nil {
		return err
	}

	account.TokenStandard = pointer.To(metadata.TokenStandardNonFungible)
	return putMetadata(ctx, ix.Accounts.Metadata, &account)
}

func getMint(ctx *instructionContext, address ed25519.PublicKey) (solana.AccountInfo, *token.Mint, error) {
	info, ok := ctx.get(address)
	if !ok || !bytes.Equal(info.Owner, token.ProgramKey) {
		return info, nil, instructionError(solana.InstructionErrorIncorrectProgramID)
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) || !mint.IsInitialized {
		return info, nil, token.ErrorUninitializedState
	}
	return info, &mint, nil
}

// createProgramAccount funds and allocates a rent exempt account owned by the
// metadata program.
func createProgramAccount(ctx *instructionContext, payer, address ed25519.PublicKey, size int) error {
	rent := system.MinimumBalanceForRentExemption(uint64(size))

	existing, _ := ctx.get(address)
	if existing.Lamports < rent {
		if err := ctx.transfer(payer, address, rent-existing.Lamports, system.ErrorResultWithNegativeLamports); err != nil {
			return err
		}
	}

	created, _ := ctx.get(address)
	created.Owner = metadata.PROGRAM_ID
	created.Data = make([]byte, size)
	return ctx.put(address, created)
}

func putMetadata(ctx *instructionContext, address ed25519.PublicKey, account *metadata.MetadataAccount) error {
	data, err := account.Marshal()
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidAccountData)
	}

	info, _ := ctx.get(address)
	info.Data = data
	return ctx.put(address, info)
}
