package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentFromName(t *testing.T) {
	for name, expected := range map[string]Environment{
		"localnet":     EnvironmentLocal,
		"devnet":       EnvironmentDev,
		"Testnet":      EnvironmentTest,
		"mainnet-beta": EnvironmentProd,
		"m":            EnvironmentProd,
	} {
		actual, err := EnvironmentFromName(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, actual, name)
	}

	_, err := EnvironmentFromName("moonnet")
	assert.Error(t, err)
}
