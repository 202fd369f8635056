package memory

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/system"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

const startingBalance = 10_000_000_000

type testEnv struct {
	ledger *Ledger
	payer  ed25519.PrivateKey
}

func setup(t *testing.T) *testEnv {
	_, payer, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ledger := NewLedger()
	_, err = ledger.RequestAirdrop(publicKey(payer), startingBalance, solana.CommitmentFinalized)
	require.NoError(t, err)

	return &testEnv{
		ledger: ledger,
		payer:  payer,
	}
}

func (e *testEnv) submit(t *testing.T, signers []ed25519.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	txn := solana.NewTransaction(publicKey(e.payer), instructions...)

	blockhash, err := e.ledger.GetLatestBlockhash()
	require.NoError(t, err)
	txn.SetBlockhash(blockhash)
	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{e.payer}, signers...)...))

	return e.ledger.SubmitTransaction(txn, solana.CommitmentFinalized)
}

func TestLedger_Airdrop(t *testing.T) {
	env := setup(t)

	balance, err := env.ledger.GetBalance(publicKey(env.payer))
	require.NoError(t, err)
	assert.EqualValues(t, startingBalance, balance)

	info, err := env.ledger.GetAccountInfo(publicKey(env.payer), solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, system.SystemAccount, info.Owner)

	_, err = env.ledger.GetAccountInfo(generateKey(t), solana.CommitmentFinalized)
	assert.Equal(t, solana.ErrNoAccountInfo, err)
}

func TestLedger_Transfer(t *testing.T) {
	env := setup(t)
	dest := generateKey(t)

	sig, err := env.submit(t, nil, system.Transfer(publicKey(env.payer), dest, 1000))
	require.NoError(t, err)

	status, err := env.ledger.GetSignatureStatus(sig, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.True(t, status.Finalized())
	assert.Nil(t, status.ErrorResult)

	balance, err := env.ledger.GetBalance(publicKey(env.payer))
	require.NoError(t, err)
	assert.EqualValues(t, startingBalance-DefaultFee-1000, balance)

	balance, err = env.ledger.GetBalance(dest)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, balance)

	assert.Equal(t, 1, env.ledger.Submissions())
}

func TestLedger_RejectedTransactionsHaveNoSideEffects(t *testing.T) {
	env := setup(t)
	dest := generateKey(t)

	before := env.ledger.Accounts()

	env.ledger.FailInstruction(1, token.ErrorOwnerMismatch)
	sig, err := env.submit(
		t,
		nil,
		system.Transfer(publicKey(env.payer), dest, 1000),
		system.Transfer(publicKey(env.payer), dest, 2000),
	)
	require.Error(t, err)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, solana.TransactionErrorInstructionError, txErr.ErrorKey())
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, 1, txErr.InstructionError().Index)
	require.NotNil(t, txErr.InstructionError().CustomError())
	assert.EqualValues(t, token.ErrorOwnerMismatch, *txErr.InstructionError().CustomError())

	assert.Equal(t, before, env.ledger.Accounts())

	_, err = env.ledger.GetSignatureStatus(sig, solana.CommitmentFinalized)
	assert.Equal(t, solana.ErrSignatureNotFound, err)

	// Faults only apply to a single submission.
	_, err = env.submit(t, nil, system.Transfer(publicKey(env.payer), dest, 1000))
	require.NoError(t, err)
	assert.Equal(t, 2, env.ledger.Submissions())
}

func TestLedger_TransactionValidation(t *testing.T) {
	env := setup(t)
	dest := generateKey(t)

	// Unknown blockhash
	txn := solana.NewTransaction(publicKey(env.payer), system.Transfer(publicKey(env.payer), dest, 1))
	require.NoError(t, txn.Sign(env.payer))
	_, err := env.ledger.SubmitTransaction(txn, solana.CommitmentFinalized)
	assertTransactionError(t, err, solana.TransactionErrorBlockhashNotFound)

	// Missing signature
	blockhash, err := env.ledger.GetLatestBlockhash()
	require.NoError(t, err)
	txn = solana.NewTransaction(publicKey(env.payer), system.Transfer(publicKey(env.payer), dest, 1))
	txn.SetBlockhash(blockhash)
	_, err = env.ledger.SubmitTransaction(txn, solana.CommitmentFinalized)
	assertTransactionError(t, err, solana.TransactionErrorSignatureFailure)

	// Duplicate signature
	require.NoError(t, txn.Sign(env.payer))
	_, err = env.ledger.SubmitTransaction(txn, solana.CommitmentFinalized)
	require.NoError(t, err)
	_, err = env.ledger.SubmitTransaction(txn, solana.CommitmentFinalized)
	assertTransactionError(t, err, solana.TransactionErrorDuplicateSignature)

	// Unfunded payer
	_, unfunded, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	txn = solana.NewTransaction(publicKey(unfunded), system.Transfer(publicKey(unfunded), dest, 1))
	txn.SetBlockhash(blockhash)
	require.NoError(t, txn.Sign(unfunded))
	_, err = env.ledger.SubmitTransaction(txn, solana.CommitmentFinalized)
	assertTransactionError(t, err, solana.TransactionErrorAccountNotFound)

	// Unknown program
	unknown := solana.NewInstruction(generateKey(t), []byte{0}, solana.NewAccountMeta(dest, false))
	_, err = env.submit(t, nil, unknown)
	assertTransactionError(t, err, solana.TransactionErrorInvalidProgramForExecution)
}

func TestLedger_CreateAccountErrors(t *testing.T) {
	env := setup(t)

	_, account, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, err = env.submit(
		t,
		[]ed25519.PrivateKey{account},
		system.CreateAccount(publicKey(env.payer), publicKey(account), token.ProgramKey, 2*startingBalance, token.MintSize),
	)
	assertCustomError(t, err, 0, system.ErrorResultWithNegativeLamports)

	rent := system.MinimumBalanceForRentExemption(token.MintSize)
	_, err = env.submit(
		t,
		[]ed25519.PrivateKey{account},
		system.CreateAccount(publicKey(env.payer), publicKey(account), token.ProgramKey, rent, token.MintSize),
	)
	require.NoError(t, err)

	_, err = env.submit(
		t,
		[]ed25519.PrivateKey{account},
		system.CreateAccount(publicKey(env.payer), publicKey(account), token.ProgramKey, rent, token.MintSize),
	)
	assertCustomError(t, err, 0, system.ErrorAccountAlreadyInUse)
}

func TestLedger_MintNonFungibleToken(t *testing.T) {
	env := setup(t)
	authority := publicKey(env.payer)

	_, mintKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	mint := publicKey(mintKey)

	instructions, ata, metadataAddress, editionAddress := makeMintInstructions(t, authority, mint)

	sig, err := env.submit(t, []ed25519.PrivateKey{mintKey}, instructions...)
	require.NoError(t, err)

	status, err := env.ledger.GetSignatureStatus(sig, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.True(t, status.Finalized())

	tc := token.NewClient(env.ledger)

	mintState, err := tc.GetMint(mint, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mintState.Supply)
	assert.EqualValues(t, 0, mintState.Decimals)
	assert.EqualValues(t, editionAddress, mintState.MintAuthority)
	assert.EqualValues(t, editionAddress, mintState.FreezeAuthority)

	account, err := tc.GetAccount(ata, mint, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, authority, account.Owner)
	assert.EqualValues(t, 1, account.Amount)

	md, err := metadata.GetMetadata(env.ledger, metadataAddress, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, "Test NFT", md.Name)
	assert.Equal(t, "TST", md.Symbol)
	assert.Equal(t, "https://example.com/nft.json", md.Uri)
	assert.EqualValues(t, 1, md.SellerFeeBasisPoints)
	assert.False(t, md.IsMutable)
	assert.EqualValues(t, authority, md.UpdateAuthority)
	require.NotNil(t, md.TokenStandard)
	assert.Equal(t, metadata.TokenStandardNonFungible, *md.TokenStandard)

	edition, err := metadata.GetMasterEdition(env.ledger, editionAddress, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 0, edition.Supply)
	require.NotNil(t, edition.MaxSupply)
	assert.EqualValues(t, 0, *edition.MaxSupply)

	expectedCost := DefaultFee +
		system.MinimumBalanceForRentExemption(token.MintSize) +
		system.MinimumBalanceForRentExemption(token.AccountSize) +
		system.MinimumBalanceForRentExemption(metadata.MetadataAccountSize) +
		system.MinimumBalanceForRentExemption(metadata.MasterEditionAccountSize)
	balance, err := env.ledger.GetBalance(authority)
	require.NoError(t, err)
	assert.EqualValues(t, startingBalance-expectedCost, balance)

	// The mint authority now belongs to the edition, so the supply is fixed.
	_, err = env.submit(t, nil, token.MintTo(mint, ata, authority, 1))
	assertCustomError(t, err, 0, token.ErrorOwnerMismatch)
}

func TestLedger_MintFailureAtEachInstruction(t *testing.T) {
	for index := 0; index < 6; index++ {
		env := setup(t)
		authority := publicKey(env.payer)

		_, mintKey, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		mint := publicKey(mintKey)

		instructions, _, _, _ := makeMintInstructions(t, authority, mint)
		before := env.ledger.Accounts()

		env.ledger.FailInstruction(index, solana.CustomError(42))
		_, err = env.submit(t, []ed25519.PrivateKey{mintKey}, instructions...)
		assertCustomError(t, err, index, solana.CustomError(42))

		assert.Equal(t, before, env.ledger.Accounts())
	}
}

func TestLedger_MasterEditionRequiresSingleToken(t *testing.T) {
	env := setup(t)
	authority := publicKey(env.payer)

	_, mintKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	mint := publicKey(mintKey)

	instructions, ata, _, _ := makeMintInstructions(t, authority, mint)
	instructions[3] = token.MintTo(mint, ata, authority, 2)

	_, err = env.submit(t, []ed25519.PrivateKey{mintKey}, instructions...)
	assertCustomError(t, err, 5, metadata.ErrorEditionsMustHaveExactlyOneToken)
}

func TestLedger_MetadataRequiresMintAuthority(t *testing.T) {
	env := setup(t)
	authority := publicKey(env.payer)

	_, other, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, mintKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	mint := publicKey(mintKey)

	instructions, _, metadataAddress, _ := makeMintInstructions(t, authority, mint)
	instructions[4], err = metadata.NewCreateMetadataAccountV3Instruction(
		&metadata.CreateMetadataAccountV3InstructionAccounts{
			Metadata:        metadataAddress,
			Mint:            mint,
			MintAuthority:   publicKey(other),
			Payer:           authority,
			UpdateAuthority: authority,
		},
		&metadata.CreateMetadataAccountV3InstructionArgs{
			Name:   "Test NFT",
			Symbol: "TST",
			Uri:    "https://example.com/nft.json",
		},
	)
	require.NoError(t, err)

	_, err = env.submit(t, []ed25519.PrivateKey{mintKey, other}, instructions[:5]...)
	assertCustomError(t, err, 4, metadata.ErrorInvalidMintAuthority)
}

func TestLedger_AssociatedTokenAccount(t *testing.T) {
	env := setup(t)
	authority := publicKey(env.payer)

	_, mintKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	mint := publicKey(mintKey)

	rent := system.MinimumBalanceForRentExemption(token.MintSize)
	_, err = env.submit(
		t,
		[]ed25519.PrivateKey{mintKey},
		system.CreateAccount(authority, mint, token.ProgramKey, rent, token.MintSize),
		token.InitializeMint(mint, authority, nil, 0),
	)
	require.NoError(t, err)

	create, _, err := token.CreateAssociatedTokenAccount(authority, authority, mint)
	require.NoError(t, err)
	_, err = env.submit(t, nil, create)
	require.NoError(t, err)

	// The blockhash advances per transaction, so resubmitting the same
	// instruction is a distinct transaction.
	_, err = env.submit(t, nil, create)
	assertCustomError(t, err, 0, system.ErrorAccountAlreadyInUse)

	idempotent, _, err := token.CreateAssociatedTokenAccountIdempotent(authority, authority, mint)
	require.NoError(t, err)
	_, err = env.submit(t, nil, idempotent)
	require.NoError(t, err)

	// Creating an account for something that isn't a mint fails.
	create, _, err = token.CreateAssociatedTokenAccount(authority, authority, generateKey(t))
	require.NoError(t, err)
	_, err = env.submit(t, nil, create)
	assertCustomError(t, err, 0, token.ErrorInvalidMint)
}

func makeMintInstructions(t *testing.T, authority, mint ed25519.PublicKey) ([]solana.Instruction, ed25519.PublicKey, ed25519.PublicKey, ed25519.PublicKey) {
	createATA, ata, err := token.CreateAssociatedTokenAccount(authority, authority, mint)
	require.NoError(t, err)

	metadataAddress, _, err := metadata.GetMetadataAddress(&metadata.GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)
	editionAddress, _, err := metadata.GetMasterEditionAddress(&metadata.GetMasterEditionAddressArgs{Mint: mint})
	require.NoError(t, err)

	createMetadata, err := metadata.NewCreateMetadataAccountV3Instruction(
		&metadata.CreateMetadataAccountV3InstructionAccounts{
			Metadata:        metadataAddress,
			Mint:            mint,
			MintAuthority:   authority,
			Payer:           authority,
			UpdateAuthority: authority,
		},
		&metadata.CreateMetadataAccountV3InstructionArgs{
			Name:                 "Test NFT",
			Symbol:               "TST",
			Uri:                  "https://example.com/nft.json",
			SellerFeeBasisPoints: 1,
		},
	)
	require.NoError(t, err)

	var maxSupply uint64
	createEdition, err := metadata.NewCreateMasterEditionV3Instruction(
		&metadata.CreateMasterEditionV3InstructionAccounts{
			Edition:         editionAddress,
			Mint:            mint,
			UpdateAuthority: authority,
			MintAuthority:   authority,
			Payer:           authority,
			Metadata:        metadataAddress,
		},
		&metadata.CreateMasterEditionV3InstructionArgs{
			MaxSupply: &maxSupply,
		},
	)
	require.NoError(t, err)

	instructions := []solana.Instruction{
		system.CreateAccount(authority, mint, token.ProgramKey, system.MinimumBalanceForRentExemption(token.MintSize), token.MintSize),
		token.InitializeMint(mint, authority, authority, 0),
		createATA,
		token.MintTo(mint, ata, authority, 1),
		createMetadata,
		createEdition,
	}
	return instructions, ata, metadataAddress, editionAddress
}

func assertTransactionError(t *testing.T, err error, key solana.TransactionErrorKey) {
	require.Error(t, err)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, key, txErr.ErrorKey())
}

func assertCustomError(t *testing.T, err error, index int, expected solana.CustomError) {
	assertTransactionError(t, err, solana.TransactionErrorInstructionError)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, index, txErr.InstructionError().Index)
	require.NotNil(t, txErr.InstructionError().CustomError())
	assert.Equal(t, expected, *txErr.InstructionError().CustomError())
}

func publicKey(key ed25519.PrivateKey) ed25519.PublicKey {
	return key.Public().(ed25519.PublicKey)
}

func generateKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
