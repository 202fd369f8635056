package mint

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-minter/pkg/nft/common"
	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/memory"
	"github.com/code-payments/nft-minter/pkg/testutil"
)

const startingBalance = 10_000_000_000

type testEnv struct {
	ledger    *memory.Ledger
	minter    *Minter
	authority *common.Account
}

func setup(t *testing.T) *testEnv {
	return setupWithOverrides(t, &Overrides{})
}

func setupWithOverrides(t *testing.T, overrides *Overrides) *testEnv {
	ledger := memory.NewLedger()

	return &testEnv{
		ledger:    ledger,
		minter:    NewMinter(ledger, WithOverrides(overrides)),
		authority: testutil.NewFundedAccount(t, ledger, startingBalance),
	}
}

func exampleArgs() *Args {
	return &Args{
		Name:   "Test NFT",
		Symbol: "TST",
		URI:    "https://example.com/meta.json",
	}
}

func assertStepError(t *testing.T, err error, step int, expected solana.CustomError) {
	require.Error(t, err)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr), "expected a transaction error, got %v", err)
	require.Equal(t, solana.TransactionErrorInstructionError, txErr.ErrorKey())

	instructionErr := txErr.InstructionError()
	require.NotNil(t, instructionErr)
	assert.Equal(t, step, instructionErr.Index)
	require.NotNil(t, instructionErr.CustomError())
	assert.Equal(t, expected, *instructionErr.CustomError())
}
