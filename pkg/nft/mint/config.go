package mint

import (
	"time"

	"github.com/code-payments/nft-minter/pkg/config"
	"github.com/code-payments/nft-minter/pkg/config/env"
	"github.com/code-payments/nft-minter/pkg/config/memory"
	"github.com/code-payments/nft-minter/pkg/config/wrapper"
	"github.com/code-payments/nft-minter/pkg/solana"
)

const (
	envConfigPrefix = "NFT_"

	SellerFeeBasisPointsConfigEnvName = envConfigPrefix + "SELLER_FEE_BASIS_POINTS"
	defaultSellerFeeBasisPoints       = DefaultSellerFeeBasisPoints

	IsMutableConfigEnvName = envConfigPrefix + "IS_MUTABLE"
	defaultIsMutable       = DefaultIsMutable

	// Zero funds the mint account with the rent exempt minimum.
	MintAccountLamportsConfigEnvName = envConfigPrefix + "MINT_ACCOUNT_LAMPORTS"
	defaultMintAccountLamports       = 0

	ConfirmationCommitmentConfigEnvName = envConfigPrefix + "CONFIRMATION_COMMITMENT"
	defaultConfirmationCommitment       = "finalized"

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = time.Minute

	ConfirmationPollIntervalConfigEnvName = envConfigPrefix + "CONFIRMATION_POLL_INTERVAL"
	defaultConfirmationPollInterval       = solana.PollRate

	// Zero disables the limit.
	MaxMintsPerSecondConfigEnvName = envConfigPrefix + "MAX_MINTS_PER_SECOND"
	defaultMaxMintsPerSecond       = 0
)

type conf struct {
	sellerFeeBasisPoints     config.Uint64
	isMutable                config.Bool
	mintAccountLamports      config.Uint64
	confirmationCommitment   config.String
	confirmationTimeout      config.Duration
	confirmationPollInterval config.Duration
	maxMintsPerSecond        config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			sellerFeeBasisPoints:     env.NewUint64Config(SellerFeeBasisPointsConfigEnvName, defaultSellerFeeBasisPoints),
			isMutable:                env.NewBoolConfig(IsMutableConfigEnvName, defaultIsMutable),
			mintAccountLamports:      env.NewUint64Config(MintAccountLamportsConfigEnvName, defaultMintAccountLamports),
			confirmationCommitment:   env.NewStringConfig(ConfirmationCommitmentConfigEnvName, defaultConfirmationCommitment),
			confirmationTimeout:      env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
			confirmationPollInterval: env.NewDurationConfig(ConfirmationPollIntervalConfigEnvName, defaultConfirmationPollInterval),
			maxMintsPerSecond:        env.NewUint64Config(MaxMintsPerSecondConfigEnvName, defaultMaxMintsPerSecond),
		}
	}
}

// Overrides are explicit configuration values, such as those parsed from
// command line flags. Nil fields use their defaults.
type Overrides struct {
	SellerFeeBasisPoints     *uint64
	IsMutable                *bool
	MintAccountLamports      *uint64
	ConfirmationCommitment   *string
	ConfirmationTimeout      *time.Duration
	ConfirmationPollInterval *time.Duration
	MaxMintsPerSecond        *uint64
}

// WithOverrides returns configuration from explicit values.
func WithOverrides(overrides *Overrides) ConfigProvider {
	return func() *conf {
		return &conf{
			sellerFeeBasisPoints:     wrapper.NewUint64Config(overrideOf(overrides.SellerFeeBasisPoints), defaultSellerFeeBasisPoints),
			isMutable:                wrapper.NewBoolConfig(overrideOf(overrides.IsMutable), defaultIsMutable),
			mintAccountLamports:      wrapper.NewUint64Config(overrideOf(overrides.MintAccountLamports), defaultMintAccountLamports),
			confirmationCommitment:   wrapper.NewStringConfig(overrideOf(overrides.ConfirmationCommitment), defaultConfirmationCommitment),
			confirmationTimeout:      wrapper.NewDurationConfig(overrideOf(overrides.ConfirmationTimeout), defaultConfirmationTimeout),
			confirmationPollInterval: wrapper.NewDurationConfig(overrideOf(overrides.ConfirmationPollInterval), defaultConfirmationPollInterval),
			maxMintsPerSecond:        wrapper.NewUint64Config(overrideOf(overrides.MaxMintsPerSecond), defaultMaxMintsPerSecond),
		}
	}
}

func overrideOf[T any](value *T) config.Config {
	if value == nil {
		return memory.NewConfig(nil)
	}
	return memory.NewConfig(*value)
}
