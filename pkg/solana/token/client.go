package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/solana"
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount indicates that a Solana account exists at the
	// given address, but it is either not initialized, or not configured correctly.
	ErrInvalidTokenAccount = errors.New("invalid token account")
	// ErrInvalidMint indicates that a Solana account exists at the given
	// address, but it is not an initialized mint.
	ErrInvalidMint = errors.New("invalid mint")
)

// Client provides utilities for reading token program state.
type Client struct {
	sc solana.Client
}

// NewClient creates a new Client.
func NewClient(sc solana.Client) *Client {
	return &Client{
		sc: sc,
	}
}

// GetAccount returns the token account info for the specified account.
//
// If the account is not initialized, or belongs to a different
// mint, then ErrInvalidTokenAccount is returned.
func (c *Client) GetAccount(accountID, mint ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	accountInfo, err := c.getTokenProgramAccount(accountID, commitment)
	if err != nil {
		return nil, err
	}

	var account Account
	if !account.Unmarshal(accountInfo.Data) || account.State == AccountStateUninitialized {
		return nil, ErrInvalidTokenAccount
	}

	if !bytes.Equal(mint, account.Mint) {
		return nil, ErrInvalidTokenAccount
	}

	return &account, nil
}

// GetMint returns the state of the specified mint.
func (c *Client) GetMint(mint ed25519.PublicKey, commitment solana.Commitment) (*Mint, error) {
	accountInfo, err := c.getTokenProgramAccount(mint, commitment)
	if err == ErrInvalidTokenAccount {
		return nil, ErrInvalidMint
	} else if err != nil {
		return nil, err
	}

	var m Mint
	if !m.Unmarshal(accountInfo.Data) || !m.IsInitialized {
		return nil, ErrInvalidMint
	}

	return &m, nil
}

func (c *Client) getTokenProgramAccount(address ed25519.PublicKey, commitment solana.Commitment) (*solana.AccountInfo, error) {
	accountInfo, err := c.sc.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(accountInfo.Owner, ProgramKey) {
		return nil, ErrInvalidTokenAccount
	}

	return &accountInfo, nil
}
