package main

import (
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/nft-minter/pkg/nft/common"
	"github.com/code-payments/nft-minter/pkg/nft/mint"
)

var (
	inspectOwner  string
	inspectVerify bool
	inspectName   string
	inspectSymbol string
	inspectURI    string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <mint>",
	Short: "Show the on-chain state of an NFT",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	flags := inspectCmd.Flags()
	flags.StringVar(&inspectOwner, "owner", "", "holder of the token, the update authority when unset")
	flags.BoolVar(&inspectVerify, "verify", false, "fail unless the nft is a one of one held by the owner with the given metadata")
	flags.StringVar(&inspectName, "name", "", "expected name when verifying")
	flags.StringVar(&inspectSymbol, "symbol", "", "expected symbol when verifying")
	flags.StringVar(&inspectURI, "uri", "", "expected uri when verifying")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, done, err := startCommand(cmd.Context(), "inspect")
	if err != nil {
		return err
	}
	defer done()

	mintAccount, err := common.NewAccountFromPublicKeyString(args[0])
	if err != nil {
		return errors.Wrap(err, "invalid mint address")
	}

	var owner *common.Account
	if len(inspectOwner) > 0 {
		owner, err = common.NewAccountFromPublicKeyString(inspectOwner)
		if err != nil {
			return errors.Wrap(err, "invalid owner address")
		}
	}

	record, err := newMinter().Inspect(ctx, mintAccount, owner)
	if err != nil {
		return err
	}

	printRecord(cmd.OutOrStdout(), record)

	if inspectVerify {
		expected := &mint.Args{
			Name:   inspectName,
			Symbol: inspectSymbol,
			URI:    inspectURI,
		}
		if err := record.Check(record.Accounts.Holder, expected); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Verified:       ok")
	}
	return nil
}

func printRecord(out io.Writer, r *mint.Record) {
	printAccounts(out, r.Accounts.Mint, r.Accounts.TokenAccount, r.Accounts.Metadata, r.Accounts.MasterEdition)

	fmt.Fprintf(out, "Holder:         %s\n", r.Accounts.Holder)
	fmt.Fprintf(out, "Amount:         %d\n", r.TokenAccount.Amount)
	fmt.Fprintf(out, "Supply:         %d\n", r.Mint.Supply)
	fmt.Fprintf(out, "Decimals:       %d\n", r.Mint.Decimals)
	fmt.Fprintf(out, "Mint Authority: %s\n", optionalKey(r.Mint.MintAuthority))
	fmt.Fprintf(out, "Name:           %q\n", r.Metadata.Name)
	fmt.Fprintf(out, "Symbol:         %q\n", r.Metadata.Symbol)
	fmt.Fprintf(out, "URI:            %q\n", r.Metadata.Uri)
	fmt.Fprintf(out, "Royalty (bps):  %d\n", r.Metadata.SellerFeeBasisPoints)
	fmt.Fprintf(out, "Mutable:        %t\n", r.Metadata.IsMutable)
	fmt.Fprintf(out, "Update Auth:    %s\n", base58.Encode(r.Metadata.UpdateAuthority))
	if r.MasterEdition.MaxSupply != nil {
		fmt.Fprintf(out, "Max Supply:     %d\n", *r.MasterEdition.MaxSupply)
	} else {
		fmt.Fprintln(out, "Max Supply:     unlimited")
	}
}

func printAccounts(out io.Writer, mintAccount, tokenAccount, metadataAccount, editionAccount *common.Account) {
	fmt.Fprintf(out, "Mint:           %s\n", mintAccount)
	fmt.Fprintf(out, "Token Account:  %s\n", tokenAccount)
	fmt.Fprintf(out, "Metadata:       %s\n", metadataAccount)
	fmt.Fprintf(out, "Master Edition: %s\n", editionAccount)
}

func optionalKey(key []byte) string {
	if len(key) == 0 {
		return "none"
	}
	return base58.Encode(key)
}
