package solana

import (
	"strings"

	"github.com/pkg/errors"
)

// Environment is the RPC endpoint of a well known cluster.
type Environment string

const (
	EnvironmentLocal Environment = "http://localhost:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// EnvironmentFromName resolves a cluster name, as accepted by the Solana CLI,
// to its environment.
func EnvironmentFromName(name string) (Environment, error) {
	switch strings.ToLower(name) {
	case "localnet", "localhost", "l":
		return EnvironmentLocal, nil
	case "devnet", "d":
		return EnvironmentDev, nil
	case "testnet", "t":
		return EnvironmentTest, nil
	case "mainnet-beta", "mainnet", "m":
		return EnvironmentProd, nil
	}
	return "", errors.Errorf("unknown cluster: %q", name)
}
