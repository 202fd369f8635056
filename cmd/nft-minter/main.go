// Command nft-minter mints and inspects one of one Solana NFTs.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "nft-minter",
	Short:         "Mint and inspect one of one Solana NFTs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.AddCommand(mintCmd, inspectCmd, keygenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.StandardLogger().WithField("type", "cmd/nft-minter").WithError(err).Error("command failed")
		os.Exit(1)
	}
}
