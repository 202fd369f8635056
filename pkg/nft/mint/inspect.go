package mint

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/code-payments/nft-minter/pkg/metrics"
	"github.com/code-payments/nft-minter/pkg/nft/common"
	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

// Record is the on-chain state of a minted NFT.
type Record struct {
	Accounts *common.NftAccounts

	Mint          *token.Mint
	TokenAccount  *token.Account
	Metadata      *metadata.MetadataAccount
	MasterEdition *metadata.MasterEditionAccount
}

// Inspect reads the on-chain state of the NFT for mint. When holder is nil,
// the metadata update authority is assumed to hold the token.
func (m *Minter) Inspect(ctx context.Context, mint, holder *common.Account) (*Record, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Inspect")
	defer tracer.End()

	record, err := m.inspect(ctx, mint, holder)
	if err != nil {
		tracer.OnError(err)
	}
	return record, err
}

func (m *Minter) inspect(ctx context.Context, mint, holder *common.Account) (*Record, error) {
	log := m.log.WithField("method", "Inspect")

	if err := mint.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidAccounts, err.Error())
	}
	log = log.WithField("mint", mint.String())

	commitment, err := solana.CommitmentFromString(m.conf.confirmationCommitment.Get(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "invalid confirmation commitment")
	}

	// The token account depends on the holder, so derive against the mint
	// itself until the holder is known.
	derived, err := mint.GetNftAccounts(mint)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAccounts, err.Error())
	}

	record := &Record{}

	var eg errgroup.Group
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		record.Mint, err = m.tc.GetMint(mint.PublicKey().ToBytes(), commitment)
		if err == token.ErrAccountNotFound {
			return errors.Wrapf(ErrNftNotFound, "mint %s does not exist", mint)
		}
		return errors.Wrap(err, "error getting mint")
	})
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		record.Metadata, err = metadata.GetMetadata(m.sc, derived.Metadata.PublicKey().ToBytes(), commitment)
		if err == metadata.ErrAccountNotFound {
			return errors.Wrapf(ErrNftNotFound, "metadata %s does not exist", derived.Metadata)
		}
		return errors.Wrap(err, "error getting metadata")
	})
	eg.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		record.MasterEdition, err = metadata.GetMasterEdition(m.sc, derived.MasterEdition.PublicKey().ToBytes(), commitment)
		if err == metadata.ErrAccountNotFound {
			return errors.Wrapf(ErrNftNotFound, "master edition %s does not exist", derived.MasterEdition)
		}
		return errors.Wrap(err, "error getting master edition")
	})
	if err := eg.Wait(); err != nil {
		log.WithError(err).Debug("failed to inspect nft")
		return nil, err
	}

	if holder == nil {
		holder, err = common.NewAccountFromPublicKeyBytes(record.Metadata.UpdateAuthority)
		if err != nil {
			return nil, errors.Wrap(err, "invalid update authority")
		}
	}
	log = log.WithField("holder", holder.String())

	record.Accounts, err = mint.GetNftAccounts(holder)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAccounts, err.Error())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record.TokenAccount, err = m.tc.GetAccount(record.Accounts.TokenAccount.PublicKey().ToBytes(), mint.PublicKey().ToBytes(), commitment)
	if err == token.ErrAccountNotFound {
		log.Debug("holder token account does not exist")
		return nil, errors.Wrapf(ErrNftNotFound, "token account %s does not exist", record.Accounts.TokenAccount)
	} else if err != nil {
		return nil, errors.Wrap(err, "error getting token account")
	}

	log.WithFields(logrus.Fields{
		"name":   record.Metadata.Name,
		"amount": record.TokenAccount.Amount,
	}).Debug("inspected nft")

	return record, nil
}

// Check verifies the record describes a one of one NFT held and controlled
// by authority with the given metadata strings.
func (r *Record) Check(authority *common.Account, args *Args) error {
	if err := authority.Validate(); err != nil {
		return errors.Wrap(ErrInvalidAccounts, err.Error())
	}
	if args == nil {
		return errors.Wrap(ErrRecordMismatch, "args are nil")
	}

	authorityKey := authority.PublicKey().ToBytes()
	editionKey := r.Accounts.MasterEdition.PublicKey().ToBytes()

	mismatch := func(format string, a ...interface{}) error {
		return errors.Wrapf(ErrRecordMismatch, format, a...)
	}

	switch {
	case r.Mint.Decimals != Decimals:
		return mismatch("mint decimals %d", r.Mint.Decimals)
	case r.Mint.Supply != Supply:
		return mismatch("mint supply %d", r.Mint.Supply)
	case !keyEquals(r.Mint.MintAuthority, editionKey):
		return mismatch("mint authority is not the master edition")
	case !keyEquals(r.Mint.FreezeAuthority, editionKey):
		return mismatch("freeze authority is not the master edition")
	}

	switch {
	case !keyEquals(r.TokenAccount.Owner, authorityKey):
		return mismatch("token account owner is not the authority")
	case r.TokenAccount.Amount != Supply:
		return mismatch("token account amount %d", r.TokenAccount.Amount)
	case r.TokenAccount.State != token.AccountStateInitialized:
		return mismatch("token account state %d", r.TokenAccount.State)
	}

	switch {
	case !keyEquals(r.Metadata.Mint, r.Accounts.Mint.PublicKey().ToBytes()):
		return mismatch("metadata mint")
	case !keyEquals(r.Metadata.UpdateAuthority, authorityKey):
		return mismatch("update authority is not the authority")
	case r.Metadata.Name != args.Name:
		return mismatch("name %q", r.Metadata.Name)
	case r.Metadata.Symbol != args.Symbol:
		return mismatch("symbol %q", r.Metadata.Symbol)
	case r.Metadata.Uri != args.URI:
		return mismatch("uri %q", r.Metadata.Uri)
	case r.Metadata.TokenStandard == nil || *r.Metadata.TokenStandard != metadata.TokenStandardNonFungible:
		return mismatch("token standard is not non-fungible")
	}

	switch {
	case r.MasterEdition.MaxSupply == nil || *r.MasterEdition.MaxSupply != MaxSupply:
		return mismatch("master edition max supply")
	case r.MasterEdition.Supply != 0:
		return mismatch("master edition supply %d", r.MasterEdition.Supply)
	}

	return nil
}

func keyEquals(a, b ed25519.PublicKey) bool {
	return len(a) > 0 && bytes.Equal(a, b)
}
