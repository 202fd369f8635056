// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-minter/pkg/nft/common"
	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/memory"
)

// NewRandomAccount returns an account with a freshly generated keypair.
func NewRandomAccount(t *testing.T) *common.Account {
	account, err := common.NewRandomAccount()
	require.NoError(t, err)
	return account
}

// NewRandomAccounts returns n accounts with freshly generated keypairs.
func NewRandomAccounts(t *testing.T, n int) []*common.Account {
	accounts := make([]*common.Account, n)
	for i := range accounts {
		accounts[i] = NewRandomAccount(t)
	}
	return accounts
}

// NewFundedAccount returns a random account holding lamports on the ledger.
func NewFundedAccount(t *testing.T, ledger *memory.Ledger, lamports uint64) *common.Account {
	account := NewRandomAccount(t)

	_, err := ledger.RequestAirdrop(account.PublicKey().ToBytes(), lamports, solana.CommitmentFinalized)
	require.NoError(t, err)

	return account
}
