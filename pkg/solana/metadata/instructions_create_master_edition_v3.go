package metadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/solana"
)

type CreateMasterEditionV3InstructionArgs struct {
	// MaxSupply is the maximum number of prints. Nil means unlimited, zero
	// means the token is a one of one.
	MaxSupply *uint64
}

type CreateMasterEditionV3InstructionAccounts struct {
	Edition         ed25519.PublicKey
	Mint            ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	Metadata        ed25519.PublicKey
}

type createMasterEditionArgs struct {
	MaxSupply *uint64
}

// NewCreateMasterEditionV3Instruction creates the master edition of a mint.
// The program moves the mint and freeze authorities to the edition account.
func NewCreateMasterEditionV3Instruction(
	accounts *CreateMasterEditionV3InstructionAccounts,
	args *CreateMasterEditionV3InstructionArgs,
) (solana.Instruction, error) {
	serialized, err := borsh.Serialize(createMasterEditionArgs{
		MaxSupply: args.MaxSupply,
	})
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "failed to serialize instruction args")
	}

	data := make([]byte, 0, 1+len(serialized))
	data = append(data, byte(InstructionTypeCreateMasterEditionV3))
	data = append(data, serialized...)

	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Edition,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UpdateAuthority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.MintAuthority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}, nil
}

type DecompiledCreateMasterEditionV3 struct {
	Accounts CreateMasterEditionV3InstructionAccounts
	Args     CreateMasterEditionV3InstructionArgs
}

func DecompileCreateMasterEditionV3(m solana.Message, index int) (*DecompiledCreateMasterEditionV3, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if !bytes.Equal(m.Accounts[i.ProgramIndex], PROGRAM_ID) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 || i.Data[0] != byte(InstructionTypeCreateMasterEditionV3) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 9 && len(i.Accounts) != 8 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if !bytes.Equal(m.Accounts[i.Accounts[6]], SPL_TOKEN_PROGRAM_ID) {
		return nil, errors.New("token program key mismatch")
	}
	if !bytes.Equal(m.Accounts[i.Accounts[7]], SYSTEM_PROGRAM_ID) {
		return nil, errors.New("system program key mismatch")
	}

	d := newBorshDecoder(i.Data[1:])
	args := createMasterEditionArgs{
		MaxSupply: d.optionalUint64(),
	}
	if err := d.finish(); err != nil {
		return nil, errors.Wrap(err, "invalid instruction args")
	}

	return &DecompiledCreateMasterEditionV3{
		Accounts: CreateMasterEditionV3InstructionAccounts{
			Edition:         m.Accounts[i.Accounts[0]],
			Mint:            m.Accounts[i.Accounts[1]],
			UpdateAuthority: m.Accounts[i.Accounts[2]],
			MintAuthority:   m.Accounts[i.Accounts[3]],
			Payer:           m.Accounts[i.Accounts[4]],
			Metadata:        m.Accounts[i.Accounts[5]],
		},
		Args: CreateMasterEditionV3InstructionArgs{
			MaxSupply: args.MaxSupply,
		},
	}, nil
}
