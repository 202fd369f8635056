package mint

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-minter/pkg/nft/common"
	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/system"
	"github.com/code-payments/nft-minter/pkg/solana/token"
	"github.com/code-payments/nft-minter/pkg/testutil"
)

const testMintLamports = 1_461_600

func newTestAccounts(t *testing.T) *Accounts {
	accounts, err := NewAccounts(testutil.NewRandomAccount(t), testutil.NewRandomAccount(t))
	require.NoError(t, err)
	return accounts
}

func TestMakeInstructions(t *testing.T) {
	accounts := newTestAccounts(t)

	instructions, err := MakeInstructions(accounts, exampleArgs(), testMintLamports, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, instructions, NumSteps)

	for step, program := range []ed25519.PublicKey{
		system.SystemAccount,
		token.ProgramKey,
		token.AssociatedTokenAccountProgramKey,
		token.ProgramKey,
		metadata.PROGRAM_ID,
		metadata.PROGRAM_ID,
	} {
		assert.EqualValues(t, program, instructions[step].Program, "step %d", step)
	}

	// Only the authority and the new mint sign.
	signers := make(map[string]struct{})
	for _, instruction := range instructions {
		for _, signer := range instruction.Signers() {
			signers[string(signer)] = struct{}{}
		}
	}
	assert.Len(t, signers, 2)
	assert.Contains(t, signers, string(accounts.Authority.PublicKey().ToBytes()))
	assert.Contains(t, signers, string(accounts.Mint.PublicKey().ToBytes()))
}

func TestMakeInstructions_Invalid(t *testing.T) {
	accounts := newTestAccounts(t)

	_, err := MakeInstructions(accounts, &Args{Name: string(make([]byte, 3))}, testMintLamports, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = MakeInstructions(accounts, exampleArgs(), testMintLamports, &Options{SellerFeeBasisPoints: 10001})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = MakeInstructions(accounts, exampleArgs(), testMintLamports, nil)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	accounts.Metadata = testutil.NewRandomAccount(t)
	_, err = MakeInstructions(accounts, exampleArgs(), testMintLamports, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidAccounts)
}

func TestMakeTransaction_AccountAccess(t *testing.T) {
	accounts := newTestAccounts(t)

	var blockhash solana.Blockhash
	blockhash[0] = 1

	txn, err := MakeTransaction(accounts, exampleArgs(), testMintLamports, blockhash, DefaultOptions())
	require.NoError(t, err)

	m := txn.Message
	assert.Equal(t, blockhash, m.RecentBlockhash)
	assert.EqualValues(t, 2, m.Header.NumSignatures)
	assert.EqualValues(t, 0, m.Header.NumReadonlySigned)
	assert.Len(t, txn.Signatures, 2)
	assert.EqualValues(t, accounts.Authority.PublicKey().ToBytes(), m.Accounts[0])

	for _, ref := range accounts.Refs() {
		index := -1
		for i, key := range m.Accounts {
			if bytes.Equal(key, ref.Account.PublicKey().ToBytes()) {
				index = i
			}
		}
		require.True(t, index >= 0, ref.Name)

		assert.Equal(t, ref.Access.IsSigner(), m.IsSigner(index), ref.Name)
		assert.Equal(t, ref.Access.IsWritable(), m.IsWritable(index), ref.Name)
	}
}

func TestDecompileTransaction(t *testing.T) {
	accounts := newTestAccounts(t)
	opts := &Options{SellerFeeBasisPoints: 250, IsMutable: true}

	txn, err := MakeTransaction(accounts, exampleArgs(), testMintLamports, solana.Blockhash{}, opts)
	require.NoError(t, err)

	decompiled, err := DecompileTransaction(txn.Message)
	require.NoError(t, err)
	assert.Equal(t, exampleArgs(), decompiled.Args)
	assert.Equal(t, opts, decompiled.Options)
	assert.EqualValues(t, testMintLamports, decompiled.MintLamports)

	for i, ref := range accounts.Refs() {
		assert.Equal(t, ref.Account.PublicKey().ToBytes(), decompiled.Accounts.Refs()[i].Account.PublicKey().ToBytes(), ref.Name)
	}

	// Survives a trip through the wire encoding.
	var decoded solana.Transaction
	require.NoError(t, decoded.Unmarshal(txn.Marshal()))
	_, err = DecompileTransaction(decoded.Message)
	assert.NoError(t, err)
}

func TestDecompileTransaction_Tampered(t *testing.T) {
	accounts := newTestAccounts(t)
	authority := accounts.Authority.PublicKey().ToBytes()
	mint := accounts.Mint.PublicKey().ToBytes()
	tokenAccount := accounts.TokenAccount.PublicKey().ToBytes()

	build := func(t *testing.T, modify func([]solana.Instruction) []solana.Instruction) solana.Message {
		instructions, err := MakeInstructions(accounts, exampleArgs(), testMintLamports, DefaultOptions())
		require.NoError(t, err)
		return solana.NewTransaction(authority, modify(instructions)...).Message
	}

	other := testutil.NewRandomAccount(t)
	otherKey := other.PublicKey().ToBytes()

	for name, modify := range map[string]func([]solana.Instruction) []solana.Instruction{
		"missing step": func(ixs []solana.Instruction) []solana.Instruction {
			return ixs[:NumSteps-1]
		},
		"reordered steps": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepCreateTokenAccount], ixs[StepMintTo] = ixs[StepMintTo], ixs[StepCreateTokenAccount]
			return ixs
		},
		"extra instruction": func(ixs []solana.Instruction) []solana.Instruction {
			return append(ixs, system.Transfer(authority, otherKey, 1))
		},
		"wrong mint account owner": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepCreateMintAccount] = system.CreateAccount(authority, mint, system.SystemAccount, testMintLamports, token.MintSize)
			return ixs
		},
		"wrong mint account size": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepCreateMintAccount] = system.CreateAccount(authority, mint, token.ProgramKey, testMintLamports, token.AccountSize)
			return ixs
		},
		"nonzero decimals": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepInitializeMint] = token.InitializeMint(mint, authority, authority, 2)
			return ixs
		},
		"foreign freeze authority": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepInitializeMint] = token.InitializeMint(mint, authority, otherKey, 0)
			return ixs
		},
		"minted more than one": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepMintTo] = token.MintTo(mint, tokenAccount, authority, 2)
			return ixs
		},
		"minted elsewhere": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepMintTo] = token.MintTo(mint, otherKey, authority, 1)
			return ixs
		},
		"unlimited max supply": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepCreateMasterEdition].Data = []byte{byte(metadata.InstructionTypeCreateMasterEditionV3), 0}
			return ixs
		},
		"max supply of five": func(ixs []solana.Instruction) []solana.Instruction {
			ixs[StepCreateMasterEdition].Data = []byte{byte(metadata.InstructionTypeCreateMasterEditionV3), 1, 5, 0, 0, 0, 0, 0, 0, 0}
			return ixs
		},
		"metadata with creators": func(ixs []solana.Instruction) []solana.Instruction {
			data := ixs[StepCreateMetadata].Data
			offset := len(data) - 5
			tampered := append([]byte{}, data[:offset]...)
			tampered = append(tampered, 1, 0, 0, 0, 0)
			ixs[StepCreateMetadata].Data = append(tampered, data[offset+1:]...)
			return ixs
		},
		"metadata with uses": func(ixs []solana.Instruction) []solana.Instruction {
			data := ixs[StepCreateMetadata].Data
			offset := len(data) - 3
			tampered := append([]byte{}, data[:offset]...)
			tampered = append(tampered, 1, byte(metadata.UseMethodSingle), 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0)
			ixs[StepCreateMetadata].Data = append(tampered, data[offset+1:]...)
			return ixs
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecompileTransaction(build(t, modify))
			assert.ErrorIs(t, err, ErrInvalidTransaction)
		})
	}

	_, err := DecompileTransaction(solana.Message{})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestAccounts_Validate(t *testing.T) {
	accounts := newTestAccounts(t)
	require.NoError(t, accounts.Validate())

	var nilAccounts *Accounts
	assert.ErrorIs(t, nilAccounts.Validate(), ErrInvalidAccounts)

	for name, modify := range map[string]func(a *Accounts){
		"missing authority":      func(a *Accounts) { a.Authority = nil },
		"mint is authority":      func(a *Accounts) { a.Mint = a.Authority },
		"wrong token account":    func(a *Accounts) { a.TokenAccount = testutil.NewRandomAccount(t) },
		"wrong metadata":         func(a *Accounts) { a.Metadata = a.MasterEdition },
		"wrong master edition":   func(a *Accounts) { a.MasterEdition = a.Metadata },
		"wrong token program":    func(a *Accounts) { a.TokenProgram = common.SystemProgramAccount },
		"wrong metadata program": func(a *Accounts) { a.MetadataProgram = common.TokenProgramAccount },
		"wrong rent sysvar":      func(a *Accounts) { a.RentSysVar = common.SystemProgramAccount },
	} {
		t.Run(name, func(t *testing.T) {
			copied := *accounts
			modify(&copied)
			assert.ErrorIs(t, copied.Validate(), ErrInvalidAccounts)
		})
	}

	// Program addresses cannot sign.
	_, err := NewAccounts(accounts.Authority, accounts.Metadata)
	assert.ErrorIs(t, err, ErrInvalidAccounts)
	_, err = NewAccounts(accounts.MasterEdition, accounts.Mint)
	assert.ErrorIs(t, err, ErrInvalidAccounts)
}

func TestAccess(t *testing.T) {
	assert.False(t, ReadOnly.IsSigner())
	assert.False(t, ReadOnly.IsWritable())
	assert.True(t, Writable.IsWritable())
	assert.False(t, Writable.IsSigner())
	assert.True(t, (Writable | Signer).IsWritable())
	assert.True(t, (Writable | Signer).IsSigner())
}
