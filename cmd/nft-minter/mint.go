package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/code-payments/nft-minter/pkg/nft/common"
	"github.com/code-payments/nft-minter/pkg/nft/mint"
	"github.com/code-payments/nft-minter/pkg/solana"
)

var (
	mintKeypairPath  string
	mintMintKeypair  string
	mintName         string
	mintSymbol       string
	mintURI          string
	mintDryRun       bool
	mintSaveMintPath string
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a one of one NFT",
	Long: "Mints a single token with metadata and a master edition in one transaction. " +
		"The keypair pays for every account and holds the minted token.",
	Example: "nft-minter mint --keypair ~/.config/solana/id.json --name \"Test NFT\" --symbol TST --uri https://example.com/meta.json",
	Args:    cobra.NoArgs,
	RunE:    runMint,
}

func init() {
	flags := mintCmd.Flags()
	flags.StringVar(&mintKeypairPath, "keypair", "", "authority keypair file")
	flags.StringVar(&mintMintKeypair, "mint-keypair", "", "mint keypair file, a new mint is generated when unset")
	flags.StringVar(&mintSaveMintPath, "save-mint-keypair", "", "write the generated mint keypair to this file")
	flags.StringVar(&mintName, "name", "", "nft name")
	flags.StringVar(&mintSymbol, "symbol", "", "nft symbol")
	flags.StringVar(&mintURI, "uri", "", "nft metadata uri")
	flags.BoolVar(&mintDryRun, "dry-run", false, "print the signed transaction without submitting it")

	flags.Uint64("seller-fee-basis-points", mint.DefaultSellerFeeBasisPoints, "royalty in basis points")
	flags.Bool("mutable", mint.DefaultIsMutable, "allow the metadata to be updated")
	flags.Uint64("mint-lamports", 0, "lamports funding the mint account, rent exempt minimum when zero")
	flags.String("commitment", "finalized", "confirmation commitment")
	flags.Duration("timeout", 0, "confirmation timeout")

	_ = viper.BindPFlag("seller_fee_basis_points", flags.Lookup("seller-fee-basis-points"))
	_ = viper.BindPFlag("is_mutable", flags.Lookup("mutable"))
	_ = viper.BindPFlag("mint_account_lamports", flags.Lookup("mint-lamports"))
	_ = viper.BindPFlag("confirmation_commitment", flags.Lookup("commitment"))
	_ = viper.BindPFlag("confirmation_timeout", flags.Lookup("timeout"))

	_ = mintCmd.MarkFlagRequired("keypair")
}

func runMint(cmd *cobra.Command, _ []string) error {
	ctx, done, err := startCommand(cmd.Context(), "mint")
	if err != nil {
		return err
	}
	defer done()

	authority, err := common.NewAccountFromKeypairFile(mintKeypairPath)
	if err != nil {
		return errors.Wrap(err, "error loading authority keypair")
	}

	var mintAccount *common.Account
	if len(mintMintKeypair) > 0 {
		mintAccount, err = common.NewAccountFromKeypairFile(mintMintKeypair)
	} else {
		mintAccount, err = common.NewRandomAccount()
	}
	if err != nil {
		return errors.Wrap(err, "error loading mint keypair")
	}

	if len(mintSaveMintPath) > 0 {
		if err := writeKeypair(mintSaveMintPath, mintAccount); err != nil {
			return err
		}
	}

	args := &mint.Args{
		Name:   mintName,
		Symbol: mintSymbol,
		URI:    mintURI,
	}

	minter := newMinter()
	out := cmd.OutOrStdout()

	if mintDryRun {
		txn, accounts, err := minter.BuildTransaction(ctx, authority, mintAccount, args)
		if err != nil {
			return err
		}

		return printDryRun(out, txn, accounts)
	}

	result, err := minter.Mint(ctx, authority, mintAccount, args)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Signature:      %s\n", result.Signature)
	fmt.Fprintf(out, "Slot:           %d\n", result.Slot)
	printAccounts(out, result.Mint, result.TokenAccount, result.Metadata, result.MasterEdition)
	return nil
}

var stepNames = [mint.NumSteps]string{
	mint.StepCreateMintAccount:   "create mint account",
	mint.StepInitializeMint:      "initialize mint",
	mint.StepCreateTokenAccount:  "create associated token account",
	mint.StepMintTo:              "mint one token",
	mint.StepCreateMetadata:      "create metadata",
	mint.StepCreateMasterEdition: "create master edition",
}

// printDryRun decompiles the signed transaction and prints what it would do.
func printDryRun(out io.Writer, txn *solana.Transaction, accounts *mint.Accounts) error {
	decompiled, err := mint.DecompileTransaction(txn.Message)
	if err != nil {
		return errors.Wrap(err, "built transaction does not decompile")
	}
	if !bytes.Equal(decompiled.Accounts.Mint.PublicKey().ToBytes(), accounts.Mint.PublicKey().ToBytes()) {
		return errors.New("decompiled mint does not match the built transaction")
	}

	for step, name := range stepNames {
		fmt.Fprintf(out, "Step %d:         %s\n", step+1, name)
	}
	printAccounts(out, decompiled.Accounts.Mint, decompiled.Accounts.TokenAccount, decompiled.Accounts.Metadata, decompiled.Accounts.MasterEdition)
	fmt.Fprintf(out, "Authority:      %s\n", decompiled.Accounts.Authority)
	fmt.Fprintf(out, "Name:           %s\n", decompiled.Args.Name)
	fmt.Fprintf(out, "Symbol:         %s\n", decompiled.Args.Symbol)
	fmt.Fprintf(out, "URI:            %s\n", decompiled.Args.URI)
	fmt.Fprintf(out, "Seller Fee:     %d\n", decompiled.Options.SellerFeeBasisPoints)
	fmt.Fprintf(out, "Mutable:        %t\n", decompiled.Options.IsMutable)
	fmt.Fprintf(out, "Mint Lamports:  %d\n", decompiled.MintLamports)
	fmt.Fprintln(out, txn.String())
	fmt.Fprintf(out, "Transaction (base64): %s\n", base64.StdEncoding.EncodeToString(txn.Marshal()))
	return nil
}
