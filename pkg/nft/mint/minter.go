// Package mint mints one of one non-fungible tokens. All six steps of a mint
// are submitted in a single transaction, so a mint either fully succeeds or
// leaves no trace beyond the failed submission.
package mint

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/nft-minter/pkg/cache"
	"github.com/code-payments/nft-minter/pkg/metrics"
	"github.com/code-payments/nft-minter/pkg/nft/common"
	"github.com/code-payments/nft-minter/pkg/rate"
	"github.com/code-payments/nft-minter/pkg/retry"
	"github.com/code-payments/nft-minter/pkg/retry/backoff"
	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/token"
	sync_util "github.com/code-payments/nft-minter/pkg/sync"
)

const (
	metricsStructName = "nft.mint.minter"

	mintLockStripes = 64

	// Rent exemption is cached per account size, of which a mint uses four.
	rentCacheBudget = 16

	nftMintedEventName  = "NftMinted"
	mintFailedCountName = "NftMintFailed"
)

// Result describes a landed mint.
type Result struct {
	Signature solana.Signature
	Slot      uint64

	Mint          *common.Account
	TokenAccount  *common.Account
	Metadata      *common.Account
	MasterEdition *common.Account
}

// Minter mints NFTs through a Solana client. It is safe for concurrent use.
type Minter struct {
	log  *logrus.Entry
	conf *conf
	sc   solana.Client
	tc   *token.Client

	mintLocks *sync_util.StripedLock
	limiter   rate.Limiter
	rentCache *cache.Cache[uint64, uint64]
}

func NewMinter(sc solana.Client, configProvider ConfigProvider) *Minter {
	c := configProvider()

	var limiter rate.Limiter = &rate.NoLimiter{}
	if limit := c.maxMintsPerSecond.Get(context.Background()); limit > 0 {
		limiter = rate.NewLocalRateLimiter(xrate.Limit(limit), 1)
	}

	return &Minter{
		log:  logrus.StandardLogger().WithField("type", "nft/mint"),
		conf: c,
		sc:   sc,
		tc:   token.NewClient(sc),

		mintLocks: sync_util.NewStripedLock(mintLockStripes),
		limiter:   limiter,
		rentCache: cache.New[uint64, uint64](rentCacheBudget),
	}
}

// Options returns the configured metadata options.
func (m *Minter) Options(ctx context.Context) (*Options, error) {
	sellerFee := m.conf.sellerFeeBasisPoints.Get(ctx)
	if sellerFee > uint64(^uint16(0)) {
		return nil, errors.Wrapf(ErrInvalidOptions, "seller fee basis points %d", sellerFee)
	}

	opts := &Options{
		SellerFeeBasisPoints: uint16(sellerFee),
		IsMutable:            m.conf.isMutable.Get(ctx),
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// BuildTransaction validates the inputs and returns the signed mint
// transaction without submitting it.
func (m *Minter) BuildTransaction(ctx context.Context, authority, mint *common.Account, args *Args) (*solana.Transaction, *Accounts, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BuildTransaction")
	defer tracer.End()

	txn, accounts, err := m.buildTransaction(ctx, authority, mint, args)
	if err != nil {
		tracer.OnError(err)
	}
	return txn, accounts, err
}

func (m *Minter) buildTransaction(ctx context.Context, authority, mint *common.Account, args *Args) (*solana.Transaction, *Accounts, error) {
	if err := args.Validate(); err != nil {
		return nil, nil, err
	}

	opts, err := m.Options(ctx)
	if err != nil {
		return nil, nil, err
	}

	accounts, err := NewAccounts(authority, mint)
	if err != nil {
		return nil, nil, err
	}

	authoritySigner, err := authority.Signer()
	if err != nil {
		return nil, nil, errors.Wrap(ErrMissingPrivateKey, "authority")
	}
	mintSigner, err := mint.Signer()
	if err != nil {
		return nil, nil, errors.Wrap(ErrMissingPrivateKey, "mint")
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	mintLamports, err := m.getMintAccountLamports(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	blockhash, err := m.sc.GetLatestBlockhash()
	if err != nil {
		return nil, nil, errors.Wrap(err, "error getting latest blockhash")
	}

	txn, err := MakeTransaction(accounts, args, mintLamports, blockhash, opts)
	if err != nil {
		return nil, nil, err
	}

	if err := txn.Sign(authoritySigner, mintSigner); err != nil {
		return nil, nil, errors.Wrap(err, "error signing transaction")
	}

	return &txn, accounts, nil
}

// Mint mints a one of one token for mint, held by authority. The authority
// pays for every account and remains the metadata update authority.
//
// The transaction is submitted exactly once. If it fails, the returned error
// is the *solana.TransactionError, whose InstructionError index identifies
// the failed step.
func (m *Minter) Mint(ctx context.Context, authority, mint *common.Account, args *Args) (*Result, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Mint")
	defer tracer.End()
	if mint != nil && mint.Validate() == nil {
		tracer.AddAttribute("mint", mint.String())
	}

	result, err := m.mint(ctx, authority, mint, args)
	if err != nil {
		tracer.OnError(err)
		metrics.RecordCount(ctx, mintFailedCountName, 1)
	}
	return result, err
}

func (m *Minter) mint(ctx context.Context, authority, mint *common.Account, args *Args) (*Result, error) {
	log := m.log.WithFields(logrus.Fields{
		"method":  "Mint",
		"mint_id": uuid.New().String(),
	})
	if authority != nil && authority.Validate() == nil {
		log = log.WithField("authority", authority.String())
	}
	if mint != nil && mint.Validate() == nil {
		log = log.WithField("mint", mint.String())
	}

	start := time.Now()

	// Concurrent mints of the same mint account would race to create it.
	if mint != nil && mint.Validate() == nil {
		unlock := m.mintLocks.Lock(mint.PublicKey().ToBytes())
		defer unlock()
	}

	if authority != nil && authority.Validate() == nil {
		if err := m.limiter.Wait(ctx, authority.String()); err != nil {
			return nil, errors.Wrap(err, "error waiting for mint rate limit")
		}
	}

	txn, accounts, err := m.buildTransaction(ctx, authority, mint, args)
	if err != nil {
		log.WithError(err).Info("failed to build mint transaction")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	commitment, err := solana.CommitmentFromString(m.conf.confirmationCommitment.Get(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "invalid confirmation commitment")
	}

	log = log.WithField("signature", txn.Signatures[0].String())
	log.Debug("submitting mint transaction")

	sig, err := m.sc.SubmitTransaction(*txn, commitment)
	if err != nil {
		var txErr *solana.TransactionError
		if errors.As(err, &txErr) {
			log.WithError(err).Info("mint transaction failed")
			return nil, txErr
		}

		log.WithError(err).Warn("failure submitting mint transaction")
		return nil, errors.Wrap(err, "error submitting transaction")
	}

	status, err := m.waitForConfirmation(ctx, sig, commitment)
	if err != nil {
		log.WithError(err).Warn("mint transaction not confirmed")
		return nil, err
	}
	if status.ErrorResult != nil {
		log.WithError(status.ErrorResult).Info("mint transaction failed")
		return nil, status.ErrorResult
	}

	log.WithField("slot", status.Slot).Info("nft minted")

	metrics.RecordEvent(ctx, nftMintedEventName, map[string]interface{}{
		"mint":      accounts.Mint.String(),
		"authority": accounts.Authority.String(),
		"signature": sig.String(),
	})
	metrics.RecordDuration(ctx, nftMintedEventName, time.Since(start))

	return &Result{
		Signature: sig,
		Slot:      status.Slot,

		Mint:          accounts.Mint,
		TokenAccount:  accounts.TokenAccount,
		Metadata:      accounts.Metadata,
		MasterEdition: accounts.MasterEdition,
	}, nil
}

func (m *Minter) getMintAccountLamports(ctx context.Context) (uint64, error) {
	if lamports := m.conf.mintAccountLamports.Get(ctx); lamports > 0 {
		return lamports, nil
	}

	return m.getMinimumBalanceForRentExemption(token.MintSize)
}

func (m *Minter) getMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	if lamports, ok := m.rentCache.Retrieve(size); ok {
		return lamports, nil
	}

	lamports, err := m.sc.GetMinimumBalanceForRentExemption(size)
	if err != nil {
		return 0, errors.Wrapf(err, "error getting rent exemption for %d bytes", size)
	}

	// Losing an insert race leaves an identical value cached.
	if err := m.rentCache.Insert(size, lamports, 1); err == nil {
		m.log.WithFields(logrus.Fields{
			"method":       "getMinimumBalanceForRentExemption",
			"size":         size,
			"lamports":     lamports,
			"cache_weight": m.rentCache.Weight(),
			"cache_budget": m.rentCache.Budget(),
		}).Trace("cached rent exemption")
	}
	return lamports, nil
}

// waitForConfirmation polls for the signature's status. Cancelling ctx stops
// the wait, but the submitted transaction may still land.
func (m *Minter) waitForConfirmation(ctx context.Context, sig solana.Signature, commitment solana.Commitment) (*solana.SignatureStatus, error) {
	interval := m.conf.confirmationPollInterval.Get(ctx)
	if interval <= 0 {
		interval = defaultConfirmationPollInterval
	}
	attempts := uint(m.conf.confirmationTimeout.Get(ctx)/interval) + 1

	status, err := solana.PollSignatureStatus(
		ctx,
		m.sc,
		sig,
		commitment,
		retry.Limit(attempts),
		retry.Backoff(backoff.Constant(interval), interval),
	)
	if err != nil {
		return nil, errors.Wrapf(ErrNotConfirmed, "signature %s: %s", sig, err.Error())
	}
	return status, nil
}
