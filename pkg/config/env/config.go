// Package env reads config values from environment variables.
package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/nft-minter/pkg/config"
	"github.com/code-payments/nft-minter/pkg/config/wrapper"
)

type variable string

// NewConfig returns a config backed by the upper cased environment variable
// key. The variable is read on every Get, and surrounding whitespace is
// ignored.
func NewConfig(key string) config.Config {
	return variable(strings.ToUpper(key))
}

// Get implements config.Config.Get
func (v variable) Get(_ context.Context) (interface{}, error) {
	val := strings.TrimSpace(os.Getenv(string(v)))
	if val == "" {
		return nil, config.ErrNoValue
	}
	return []byte(val), nil
}

// Shutdown implements config.Config.Shutdown
func (variable) Shutdown() {}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
