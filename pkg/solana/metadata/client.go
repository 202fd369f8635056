package metadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/solana"
)

var (
	ErrAccountNotFound = errors.New("metadata program account not found")
	ErrInvalidAccount  = errors.New("invalid metadata program account")
)

// GetMetadata fetches and decodes the metadata account at address.
func GetMetadata(sc solana.Client, address ed25519.PublicKey, commitment solana.Commitment) (*MetadataAccount, error) {
	info, err := getProgramAccount(sc, address, commitment)
	if err != nil {
		return nil, err
	}

	var account MetadataAccount
	if err := account.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrap(ErrInvalidAccount, err.Error())
	}
	return &account, nil
}

// GetMasterEdition fetches and decodes the master edition account at
// address.
func GetMasterEdition(sc solana.Client, address ed25519.PublicKey, commitment solana.Commitment) (*MasterEditionAccount, error) {
	info, err := getProgramAccount(sc, address, commitment)
	if err != nil {
		return nil, err
	}

	var account MasterEditionAccount
	if err := account.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrap(ErrInvalidAccount, err.Error())
	}
	return &account, nil
}

func getProgramAccount(sc solana.Client, address ed25519.PublicKey, commitment solana.Commitment) (*solana.AccountInfo, error) {
	info, err := sc.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(info.Owner, PROGRAM_ID) {
		return nil, ErrInvalidAccount
	}
	return &info, nil
}
