// Package memory provides a config.Config whose value is held in memory. It
// backs the mint overrides and is used to drive config wrappers in tests.
package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/config"
)

// ErrInduced is returned by Get while errors are being induced.
var ErrInduced = errors.New("memory config: induced error")

// Config holds a single value. A nil value means no value is set.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	induced  bool
	shutdown bool
	reads    uint64
}

// NewConfig returns a Config holding value, which may be nil.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements config.Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reads++

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.induced:
		return nil, ErrInduced
	case c.value == nil:
		return nil, config.ErrNoValue
	default:
		return c.value, nil
	}
}

// Shutdown implements config.Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}

// SetValue replaces the held value.
func (c *Config) SetValue(value interface{}) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// ClearValue makes subsequent Get calls return config.ErrNoValue.
func (c *Config) ClearValue() {
	c.SetValue(nil)
}

// InduceErrors makes subsequent Get calls fail with ErrInduced.
func (c *Config) InduceErrors() {
	c.mu.Lock()
	c.induced = true
	c.mu.Unlock()
}

func (c *Config) StopInducingErrors() {
	c.mu.Lock()
	c.induced = false
	c.mu.Unlock()
}

// Reads returns how many times Get has been called.
func (c *Config) Reads() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reads
}
