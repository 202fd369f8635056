// Package memory provides an in-memory ledger implementing solana.Client.
// It executes transactions atomically against a model of the system, token,
// associated token account and metadata programs.
package memory

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-minter/pkg/solana"
	"github.com/code-payments/nft-minter/pkg/solana/metadata"
	"github.com/code-payments/nft-minter/pkg/solana/system"
	"github.com/code-payments/nft-minter/pkg/solana/token"
)

// DefaultFee is the fee charged to the payer of every landed transaction.
const DefaultFee = system.DefaultLamportsPerSigner

type program func(ctx *instructionContext) error

// Ledger is an in-memory solana.Client. It is safe for concurrent use.
type Ledger struct {
	log *logrus.Entry

	mu          sync.Mutex
	accounts    map[string]solana.AccountInfo
	statuses    map[solana.Signature]*solana.SignatureStatus
	blockhashes map[solana.Blockhash]struct{}
	blockhash   solana.Blockhash
	slot        uint64
	programs    map[string]program
	faults      map[int]error
	submissions int
}

// NewLedger returns an empty ledger with the system, token, associated token
// account and metadata programs deployed.
func NewLedger() *Ledger {
	l := &Ledger{
		log:         logrus.StandardLogger().WithField("type", "solana/memory"),
		accounts:    make(map[string]solana.AccountInfo),
		statuses:    make(map[solana.Signature]*solana.SignatureStatus),
		blockhashes: make(map[solana.Blockhash]struct{}),
		faults:      make(map[int]error),
	}

	l.programs = map[string]program{
		string(system.SystemAccount):                   executeSystem,
		string(token.ProgramKey):                       executeToken,
		string(token.AssociatedTokenAccountProgramKey): executeAssociatedTokenAccount,
		string(metadata.PROGRAM_ID):                    executeMetadata,
	}
	for key := range l.programs {
		l.accounts[key] = solana.AccountInfo{
			Owner:      solana.MustBase58Decode("BPFLoaderUpgradeab1e11111111111111111111111"),
			Lamports:   1,
			Executable: true,
		}
	}
	l.accounts[string(system.RentSysVar)] = solana.AccountInfo{
		Owner:    solana.MustBase58Decode("Sysvar1111111111111111111111111111111111111"),
		Lamports: 1,
		Data:     make([]byte, 17),
	}

	l.advanceBlockhash()
	return l
}

// FailInstruction makes the next submitted transaction fail at the given
// instruction index with err, as if the invoked program had returned it.
func (l *Ledger) FailInstruction(index int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.faults[index] = err
}

// SetAccount stores an account, replacing any existing one.
func (l *Ledger) SetAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts[string(address)] = cloneAccount(info)
}

// Accounts returns a copy of every account in the ledger, keyed by address.
func (l *Ledger) Accounts() map[string]solana.AccountInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := make(map[string]solana.AccountInfo, len(l.accounts))
	for k, v := range l.accounts {
		accounts[k] = cloneAccount(v)
	}
	return accounts
}

// Submissions returns the number of transactions submitted to the ledger,
// whether or not they landed.
func (l *Ledger) Submissions() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.submissions
}

func (l *Ledger) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.accounts[string(address)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return cloneAccount(info), nil
}

func (l *Ledger) GetBalance(address ed25519.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.accounts[string(address)].Lamports, nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	return system.MinimumBalanceForRentExemption(size), nil
}

func (l *Ledger) GetLatestBlockhash() (solana.Blockhash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.blockhash, nil
}

func (l *Ledger) GetSignatureStatus(sig solana.Signature, commitment solana.Commitment) (*solana.SignatureStatus, error) {
	statuses, err := l.GetSignatureStatuses([]solana.Signature{sig})
	if err != nil {
		return nil, err
	}
	if statuses[0] == nil {
		return nil, solana.ErrSignatureNotFound
	}
	return statuses[0], nil
}

func (l *Ledger) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	statuses := make([]*solana.SignatureStatus, len(sigs))
	for i, sig := range sigs {
		if s, ok := l.statuses[sig]; ok {
			copied := *s
			statuses[i] = &copied
		}
	}
	return statuses, nil
}

// RequestAirdrop credits lamports to a system account, creating it if needed.
func (l *Ledger) RequestAirdrop(address ed25519.PublicKey, lamports uint64, _ solana.Commitment) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.accounts[string(address)]
	if ok && !system.IsSystemAccount(info.Owner) {
		return solana.Signature{}, errors.New("airdrop recipient is not a system account")
	}
	if !ok {
		info.Owner = system.SystemAccount
	}
	info.Lamports += lamports
	l.accounts[string(address)] = info

	var sig solana.Signature
	if _, err := rand.Read(sig[:]); err != nil {
		return sig, errors.Wrap(err, "failed to generate signature")
	}
	l.land(sig, nil)

	return sig, nil
}

// SubmitTransaction executes the transaction. Like a cluster with preflight
// enabled, a transaction that fails is rejected without charging a fee or
// modifying any account.
func (l *Ledger) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.submissions++
	faults := l.faults
	l.faults = make(map[int]error)

	var sig solana.Signature
	if len(txn.Signatures) > 0 {
		sig = txn.Signatures[0]
	}

	log := l.log.WithField("signature", sig.String())

	txErr := l.execute(txn, faults)
	if txErr != nil {
		log.WithError(txErr).Debug("transaction rejected")
		return sig, txErr
	}

	log.Debug("transaction landed")
	return sig, nil
}

func (l *Ledger) execute(txn solana.Transaction, faults map[int]error) *solana.TransactionError {
	if len(txn.Marshal()) > solana.MaxTransactionSize {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	if txn.Message.Header.NumSignatures == 0 || len(txn.Signatures) == 0 {
		return solana.NewTransactionError(solana.TransactionErrorMissingSignatureForFee)
	}
	if err := txn.VerifySignatures(); err != nil {
		return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}
	if _, ok := l.statuses[txn.Signatures[0]]; ok {
		return solana.NewTransactionError(solana.TransactionErrorDuplicateSignature)
	}
	if _, ok := l.blockhashes[txn.Message.RecentBlockhash]; !ok {
		return solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	}

	state := newWorkingSet(l.accounts)

	payer := txn.Message.Accounts[0]
	payerInfo, ok := state.get(payer)
	if !ok {
		return solana.NewTransactionError(solana.TransactionErrorAccountNotFound)
	}
	if !system.IsSystemAccount(payerInfo.Owner) {
		return solana.NewTransactionError(solana.TransactionErrorInvalidAccountForFee)
	}
	if payerInfo.Lamports < DefaultFee {
		return solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	}
	payerInfo.Lamports -= DefaultFee
	state.put(payer, payerInfo)

	for index, compiled := range txn.Message.Instructions {
		programID := txn.Message.Accounts[compiled.ProgramIndex]
		execute, ok := l.programs[string(programID)]
		if !ok {
			return solana.NewTransactionError(solana.TransactionErrorInvalidProgramForExecution)
		}

		ctx := &instructionContext{
			message: txn.Message,
			index:   index,
			state:   state,
		}

		err := faults[index]
		if err == nil {
			err = execute(ctx)
		}
		if err != nil {
			txErr, convErr := solana.TransactionErrorFromInstructionError(solana.NewInstructionError(index, err))
			if convErr != nil {
				return solana.NewTransactionError(solana.TransactionErrorInternal)
			}
			return txErr
		}
	}

	state.commit(l.accounts)
	l.land(txn.Signatures[0], nil)

	return nil
}

func (l *Ledger) land(sig solana.Signature, txErr *solana.TransactionError) {
	l.slot++
	l.statuses[sig] = &solana.SignatureStatus{
		Slot:               l.slot,
		ErrorResult:        txErr,
		ConfirmationStatus: "finalized",
	}
	l.advanceBlockhash()
}

func (l *Ledger) advanceBlockhash() {
	var seed [8]byte
	_, _ = rand.Read(seed[:])

	l.blockhash = sha256.Sum256(append(l.blockhash[:], seed[:]...))
	l.blockhashes[l.blockhash] = struct{}{}
}

func cloneAccount(info solana.AccountInfo) solana.AccountInfo {
	cloned := info
	cloned.Data = append([]byte(nil), info.Data...)
	cloned.Owner = append(ed25519.PublicKey(nil), info.Owner...)
	return cloned
}
