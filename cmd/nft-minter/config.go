package main

import (
	"context"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/code-payments/nft-minter/pkg/metrics"
	"github.com/code-payments/nft-minter/pkg/nft/mint"
	"github.com/code-payments/nft-minter/pkg/pointer"
	"github.com/code-payments/nft-minter/pkg/solana"
)

const (
	appName = "nft-minter"

	newRelicShutdownTimeout = 5 * time.Second
)

type appConfig struct {
	LogLevel string `mapstructure:"log_level"`

	SolanaRpcEndpoint string `mapstructure:"solana_rpc_endpoint"`

	// SolanaCluster optionally names a well known cluster, such as devnet,
	// and takes precedence over SolanaRpcEndpoint.
	SolanaCluster string `mapstructure:"solana_cluster"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var (
	configPath string

	defaultConfig = appConfig{
		LogLevel:          "info",
		SolanaRpcEndpoint: string(solana.EnvironmentLocal),
	}

	config = defaultConfig
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "configuration file path")
	flags.String("log-level", defaultConfig.LogLevel, "log level")
	flags.String("rpc-endpoint", defaultConfig.SolanaRpcEndpoint, "solana rpc endpoint")
	flags.String("cluster", "", "solana cluster name: localnet, devnet, testnet or mainnet-beta")

	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("solana_rpc_endpoint", flags.Lookup("rpc-endpoint"))
	_ = viper.BindPFlag("solana_cluster", flags.Lookup("cluster"))

	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("solana_rpc_endpoint", "SOLANA_RPC_ENDPOINT")
	_ = viper.BindEnv("solana_cluster", "SOLANA_CLUSTER")
	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")

	_ = viper.BindEnv("seller_fee_basis_points", mint.SellerFeeBasisPointsConfigEnvName)
	_ = viper.BindEnv("is_mutable", mint.IsMutableConfigEnvName)
	_ = viper.BindEnv("mint_account_lamports", mint.MintAccountLamportsConfigEnvName)
	_ = viper.BindEnv("confirmation_commitment", mint.ConfirmationCommitmentConfigEnvName)
	_ = viper.BindEnv("confirmation_timeout", mint.ConfirmationTimeoutConfigEnvName)
	_ = viper.BindEnv("confirmation_poll_interval", mint.ConfirmationPollIntervalConfigEnvName)
	_ = viper.BindEnv("max_mints_per_second", mint.MaxMintsPerSecondConfigEnvName)
}

func loadConfig() error {
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err != nil {
			return errors.Wrap(err, "failed to check if config exists")
		}
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrap(err, "failed to load config")
		}
	}

	config = defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.SolanaCluster) > 0 {
		env, err := solana.EnvironmentFromName(config.SolanaCluster)
		if err != nil {
			return err
		}
		config.SolanaRpcEndpoint = string(env)
	}

	metrics.ConfigureLogger(os.Stderr, config.LogLevel, nil)
	return nil
}

// minterOverrides collects the minter settings given by flag, config file or
// environment. Unset values keep the minter defaults.
func minterOverrides() *mint.Overrides {
	return &mint.Overrides{
		SellerFeeBasisPoints:     pointer.IfValid(viper.IsSet("seller_fee_basis_points"), viper.GetUint64("seller_fee_basis_points")),
		IsMutable:                pointer.IfValid(viper.IsSet("is_mutable"), viper.GetBool("is_mutable")),
		MintAccountLamports:      pointer.IfValid(viper.IsSet("mint_account_lamports"), viper.GetUint64("mint_account_lamports")),
		ConfirmationCommitment:   pointer.IfValid(viper.IsSet("confirmation_commitment"), viper.GetString("confirmation_commitment")),
		ConfirmationTimeout:      pointer.IfValid(viper.IsSet("confirmation_timeout"), viper.GetDuration("confirmation_timeout")),
		ConfirmationPollInterval: pointer.IfValid(viper.IsSet("confirmation_poll_interval"), viper.GetDuration("confirmation_poll_interval")),
		MaxMintsPerSecond:        pointer.IfValid(viper.IsSet("max_mints_per_second"), viper.GetUint64("max_mints_per_second")),
	}
}

var newSolanaClient = func() solana.Client {
	return solana.New(config.SolanaRpcEndpoint)
}

func newMinter() *mint.Minter {
	return mint.NewMinter(newSolanaClient(), mint.WithOverrides(minterOverrides()))
}

// startCommand starts metrics collection for a command. The returned func
// flushes metrics and must be called before exiting.
func startCommand(ctx context.Context, name string) (context.Context, func(), error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return ctx, func() {}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(appName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error connecting to new relic")
	}
	metrics.ConfigureLogger(os.Stderr, config.LogLevel, app)

	ctx, end := metrics.StartTransaction(ctx, app, name)
	return ctx, func() {
		end()
		app.Shutdown(newRelicShutdownTimeout)
	}, nil
}
