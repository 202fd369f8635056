package metadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/solana"
)

type CreateMetadataAccountV3InstructionArgs struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	IsMutable            bool
}

type CreateMetadataAccountV3InstructionAccounts struct {
	Metadata        ed25519.PublicKey
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
}

type createMetadataAccountArgsV3 struct {
	Data              DataV2
	IsMutable         bool
	CollectionDetails *CollectionDetails
}

// NewCreateMetadataAccountV3Instruction creates the metadata account of a
// mint. Creators, collection, uses and collection details are left unset.
func NewCreateMetadataAccountV3Instruction(
	accounts *CreateMetadataAccountV3InstructionAccounts,
	args *CreateMetadataAccountV3InstructionArgs,
) (solana.Instruction, error) {
	if err := ValidateData(args.Name, args.Symbol, args.Uri); err != nil {
		return solana.Instruction{}, err
	}
	if args.SellerFeeBasisPoints > MaxSellerFeeBasisPoints {
		return solana.Instruction{}, errors.Errorf("seller fee basis points exceeds %d", MaxSellerFeeBasisPoints)
	}

	serialized, err := borsh.Serialize(createMetadataAccountArgsV3{
		Data: DataV2{
			Name:                 args.Name,
			Symbol:               args.Symbol,
			Uri:                  args.Uri,
			SellerFeeBasisPoints: args.SellerFeeBasisPoints,
		},
		IsMutable: args.IsMutable,
	})
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "failed to serialize instruction args")
	}

	data := make([]byte, 0, 1+len(serialized))
	data = append(data, byte(InstructionTypeCreateMetadataAccountV3))
	data = append(data, serialized...)

	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
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
				PublicKey:  accounts.UpdateAuthority,
				IsWritable: false,
				IsSigner:   true,
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

type DecompiledCreateMetadataAccountV3 struct {
	Accounts CreateMetadataAccountV3InstructionAccounts
	Args     CreateMetadataAccountV3InstructionArgs

	HasCreators          bool
	HasCollection        bool
	HasUses              bool
	HasCollectionDetails bool
}

func DecompileCreateMetadataAccountV3(m solana.Message, index int) (*DecompiledCreateMetadataAccountV3, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if !bytes.Equal(m.Accounts[i.ProgramIndex], PROGRAM_ID) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 || i.Data[0] != byte(InstructionTypeCreateMetadataAccountV3) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 7 && len(i.Accounts) != 6 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if !bytes.Equal(m.Accounts[i.Accounts[5]], SYSTEM_PROGRAM_ID) {
		return nil, errors.New("system program key mismatch")
	}

	d := newBorshDecoder(i.Data[1:])
	args := createMetadataAccountArgsV3{
		Data:              d.dataV2(),
		IsMutable:         d.bool(),
		CollectionDetails: d.optionalCollectionDetails(),
	}
	if err := d.finish(); err != nil {
		return nil, errors.Wrap(err, "invalid instruction args")
	}

	return &DecompiledCreateMetadataAccountV3{
		Accounts: CreateMetadataAccountV3InstructionAccounts{
			Metadata:        m.Accounts[i.Accounts[0]],
			Mint:            m.Accounts[i.Accounts[1]],
			MintAuthority:   m.Accounts[i.Accounts[2]],
			Payer:           m.Accounts[i.Accounts[3]],
			UpdateAuthority: m.Accounts[i.Accounts[4]],
		},
		Args: CreateMetadataAccountV3InstructionArgs{
			Name:                 args.Data.Name,
			Symbol:               args.Data.Symbol,
			Uri:                  args.Data.Uri,
			SellerFeeBasisPoints: args.Data.SellerFeeBasisPoints,
			IsMutable:            args.IsMutable,
		},
		HasCreators:          args.Data.Creators != nil,
		HasCollection:        args.Data.Collection != nil,
		HasUses:              args.Data.Uses != nil,
		HasCollectionDetails: args.CollectionDetails != nil,
	}, nil
}
