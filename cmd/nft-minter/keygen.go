package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/nft-minter/pkg/nft/common"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a keypair file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		account, err := common.NewRandomAccount()
		if err != nil {
			return err
		}

		if err := writeKeypair(keygenOut, account); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Public Key:     %s\n", account)
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVar(&keygenOut, "out", "", "keypair file to create")
	_ = keygenCmd.MarkFlagRequired("out")
}

func writeKeypair(path string, account *common.Account) error {
	data, err := account.ToKeypairJSON()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "error writing keypair file %s", path)
	}
	return nil
}
