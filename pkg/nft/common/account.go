package common

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

type Account struct {
	publicKey  *Key
	privateKey *Key // Optional
}

// NftAccounts are the accounts that make up a non-fungible token minted to
// a single holder.
type NftAccounts struct {
	Holder *Account
	Mint   *Account

	TokenAccount *Account

	Metadata     *Account
	MetadataBump uint8

	MasterEdition     *Account
	MasterEditionBump uint8
}

func NewAccountFromPublicKey(publicKey *Key) (*Account, error) {
	account := &Account{
		publicKey: publicKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPublicKeyBytes(publicKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPublicKeyString(publicKey string) (*Account, error) {
	key, err := NewKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPrivateKey(privateKey *Key) (*Account, error) {
	if err := privateKey.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	if privateKey.IsPublic() {
		return nil, errors.New("private key isn't private")
	}

	publicKeyBytes := ed25519.PrivateKey(privateKey.ToBytes()).Public().(ed25519.PublicKey)
	publicKey, err := NewKeyFromBytes(publicKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "error creating public key from private key")
	}

	account := &Account{
		publicKey:  publicKey,
		privateKey: privateKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPrivateKeyBytes(privateKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

func NewAccountFromPrivateKeyString(privateKey string) (*Account, error) {
	key, err := NewKeyFromString(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

func NewRandomAccount() (*Account, error) {
	key, err := NewRandomKey()
	if err != nil {
		return nil, err
	}

	account, err := NewAccountFromPrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid account")
	}
	return account, nil
}

func (a *Account) PublicKey() *Key {
	return a.publicKey
}

func (a *Account) PrivateKey() *Key {
	return a.privateKey
}

// Signer returns the account's private key for signing transactions.
func (a *Account) Signer() (ed25519.PrivateKey, error) {
	if a.privateKey == nil {
		return nil, errors.New("private key not available")
	}

	return a.privateKey.ToBytes(), nil
}

func (a *Account) Sign(message []byte) ([]byte, error) {
	signer, err := a.Signer()
	if err != nil {
		return nil, err
	}

	return ed25519.Sign(signer, message), nil
}

func (a *Account) ToAssociatedTokenAccount(mint *Account) (*Account, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating owner account")
	}

	ata, err := token.GetAssociatedAccount(a.PublicKey().ToBytes(), mint.PublicKey().ToBytes())
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKeyBytes(ata)
}

// GetNftAccounts derives the accounts of a non-fungible token where a is
// the mint and holder receives the single unit.
func (a *Account) GetNftAccounts(holder *Account) (*NftAccounts, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating mint account")
	}
	if err := holder.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating holder account")
	}

	tokenAccount, err := holder.ToAssociatedTokenAccount(a)
	if err != nil {
		return nil, errors.Wrap(err, "error getting token account address")
	}

	metadataAddress, metadataBump, err := metadata.GetMetadataAddress(&metadata.GetMetadataAddressArgs{
		Mint: a.PublicKey().ToBytes(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting metadata address")
	}

	editionAddress, editionBump, err := metadata.GetMasterEditionAddress(&metadata.GetMasterEditionAddressArgs{
		Mint: a.PublicKey().ToBytes(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting master edition address")
	}

	metadataAccount, err := NewAccountFromPublicKeyBytes(metadataAddress)
	if err != nil {
		return nil, errors.Wrap(err, "invalid metadata address")
	}

	editionAccount, err := NewAccountFromPublicKeyBytes(editionAddress)
	if err != nil {
		return nil, errors.Wrap(err, "invalid master edition address")
	}

	return &NftAccounts{
		Holder: holder,
		Mint:   a,

		TokenAccount: tokenAccount,

		Metadata:     metadataAccount,
		MetadataBump: metadataBump,

		MasterEdition:     editionAccount,
		MasterEditionBump: editionBump,
	}, nil
}

func (a *Account) IsOnCurve() bool {
	return solana.IsOnCurve(a.PublicKey().ToBytes())
}

func (a *Account) Validate() error {
	if a == nil {
		return errors.New("account is nil")
	}

	if err := a.PublicKey().Validate(); err != nil {
		return errors.Wrap(err, "error validating public key")
	}

	if !a.PublicKey().IsPublic() {
		return errors.New("public key isn't public")
	}

	// Private keys are optional
	if a.privateKey == nil {
		return nil
	}

	if err := a.privateKey.Validate(); err != nil {
		return errors.Wrap(err, "error validating private key")
	}

	if a.privateKey.IsPublic() {
		return errors.New("private key isn't private")
	}

	expectedPublicKey := ed25519.PrivateKey(a.privateKey.ToBytes()).Public().(ed25519.PublicKey)
	if !bytes.Equal(a.PublicKey().ToBytes(), expectedPublicKey) {
		return errors.New("private key doesn't map to public key")
	}

	return nil
}

func (a *Account) String() string {
	return a.PublicKey().ToBase58()
}
