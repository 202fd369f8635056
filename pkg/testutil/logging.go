package testutil

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-minter/pkg/metrics"
)

// TestLogLevelEnvName sets the log level for tests that import this package.
// Logs are discarded unless it is set.
const TestLogLevelEnvName = "NFT_TEST_LOG_LEVEL"

func init() {
	level, ok := os.LookupEnv(TestLogLevelEnvName)
	if !ok {
		metrics.ConfigureLogger(io.Discard, logrus.TraceLevel.String(), nil)
		return
	}
	metrics.ConfigureLogger(os.Stderr, level, nil)
}
