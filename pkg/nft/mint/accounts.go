package mint

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/nft/common"
)

// Access is the access mode an instruction requires of an account.
type Access uint8

const (
	ReadOnly Access = 0
	Writable Access = 1 << 0
	Signer   Access = 1 << 1
)

func (a Access) IsWritable() bool {
	return a&Writable != 0
}

func (a Access) IsSigner() bool {
	return a&Signer != 0
}

// Ref is a named account reference tagged with its required access mode.
type Ref struct {
	Name    string
	Account *common.Account
	Access  Access
}

// Accounts is the complete set of accounts a mint touches. Build it with
// NewAccounts, which derives every address from the authority and mint.
type Accounts struct {
	// Authority is the mint authority, freeze authority, update authority,
	// fee payer and holder of the minted token.
	Authority *common.Account

	Mint          *common.Account
	TokenAccount  *common.Account
	Metadata      *common.Account
	MasterEdition *common.Account

	SystemProgram          *common.Account
	TokenProgram           *common.Account
	AssociatedTokenProgram *common.Account
	MetadataProgram        *common.Account
	RentSysVar             *common.Account
}

// NewAccounts derives the accounts for minting mint to authority.
func NewAccounts(authority, mint *common.Account) (*Accounts, error) {
	nftAccounts, err := mint.GetNftAccounts(authority)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAccounts, err.Error())
	}

	accounts := &Accounts{
		Authority: authority,

		Mint:          mint,
		TokenAccount:  nftAccounts.TokenAccount,
		Metadata:      nftAccounts.Metadata,
		MasterEdition: nftAccounts.MasterEdition,

		SystemProgram:          common.SystemProgramAccount,
		TokenProgram:           common.TokenProgramAccount,
		AssociatedTokenProgram: common.AssociatedTokenProgramAccount,
		MetadataProgram:        common.MetadataProgramAccount,
		RentSysVar:             common.RentSysVarAccount,
	}

	if err := accounts.Validate(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Refs lists every account with the access mode the mint transaction
// requires of it.
func (a *Accounts) Refs() []Ref {
	return []Ref{
		{"authority", a.Authority, Writable | Signer},
		{"mint", a.Mint, Writable | Signer},
		{"token_account", a.TokenAccount, Writable},
		{"metadata", a.Metadata, Writable},
		{"master_edition", a.MasterEdition, Writable},
		{"system_program", a.SystemProgram, ReadOnly},
		{"token_program", a.TokenProgram, ReadOnly},
		{"associated_token_program", a.AssociatedTokenProgram, ReadOnly},
		{"metadata_program", a.MetadataProgram, ReadOnly},
		{"rent_sysvar", a.RentSysVar, ReadOnly},
	}
}

// Validate checks that every account is present, that the derived addresses
// match their derivation and that the program references are canonical.
func (a *Accounts) Validate() error {
	if a == nil {
		return errors.Wrap(ErrInvalidAccounts, "accounts are nil")
	}

	for _, ref := range a.Refs() {
		if err := ref.Account.Validate(); err != nil {
			return errors.Wrapf(ErrInvalidAccounts, "%s: %s", ref.Name, err.Error())
		}
	}

	if bytes.Equal(a.Authority.PublicKey().ToBytes(), a.Mint.PublicKey().ToBytes()) {
		return errors.Wrap(ErrInvalidAccounts, "mint and authority must differ")
	}

	// Both sign the transaction, so neither can be a program address.
	if !a.Authority.IsOnCurve() {
		return errors.Wrap(ErrInvalidAccounts, "authority is not on the ed25519 curve")
	}
	if !a.Mint.IsOnCurve() {
		return errors.Wrap(ErrInvalidAccounts, "mint is not on the ed25519 curve")
	}

	expected, err := a.Mint.GetNftAccounts(a.Authority)
	if err != nil {
		return errors.Wrap(ErrInvalidAccounts, err.Error())
	}

	for _, check := range []struct {
		name     string
		actual   *common.Account
		expected *common.Account
	}{
		{"token_account", a.TokenAccount, expected.TokenAccount},
		{"metadata", a.Metadata, expected.Metadata},
		{"master_edition", a.MasterEdition, expected.MasterEdition},
		{"system_program", a.SystemProgram, common.SystemProgramAccount},
		{"token_program", a.TokenProgram, common.TokenProgramAccount},
		{"associated_token_program", a.AssociatedTokenProgram, common.AssociatedTokenProgramAccount},
		{"metadata_program", a.MetadataProgram, common.MetadataProgramAccount},
		{"rent_sysvar", a.RentSysVar, common.RentSysVarAccount},
	} {
		if !bytes.Equal(check.actual.PublicKey().ToBytes(), check.expected.PublicKey().ToBytes()) {
			return errors.Wrapf(ErrInvalidAccounts, "%s must be %s, got %s", check.name, check.expected, check.actual)
		}
	}

	return nil
}
