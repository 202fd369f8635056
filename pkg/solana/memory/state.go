package memory

import (
	"crypto/ed25519"

	"github.com/code-payments/nft-minter/pkg/solana"
)

// workingSet is a copy-on-write view over the ledger's accounts. Changes are
// only visible to the ledger once committed.
type workingSet struct {
	base    map[string]solana.AccountInfo
	changed map[string]solana.AccountInfo
}

func newWorkingSet(base map[string]solana.AccountInfo) *workingSet {
	return &workingSet{
		base:    base,
		changed: make(map[string]solana.AccountInfo),
	}
}

func (s *workingSet) get(address ed25519.PublicKey) (solana.AccountInfo, bool) {
	if info, ok := s.changed[string(address)]; ok {
		return cloneAccount(info), true
	}
	if info, ok := s.base[string(address)]; ok {
		return cloneAccount(info), true
	}
	return solana.AccountInfo{}, false
}

func (s *workingSet) put(address ed25519.PublicKey, info solana.AccountInfo) {
	s.changed[string(address)] = cloneAccount(info)
}

func (s *workingSet) commit(dst map[string]solana.AccountInfo) {
	for k, v := range s.changed {
		dst[k] = v
	}
}

// instructionContext gives a program access to the accounts of the
// instruction it is executing, enforcing the message's signer and writable
// flags.
type instructionContext struct {
	message solana.Message
	index   int
	state   *workingSet
}

func (c *instructionContext) accountIndex(address ed25519.PublicKey) int {
	for i, a := range c.message.Accounts {
		if string(a) == string(address) {
			return i
		}
	}
	return -1
}

func (c *instructionContext) isSigner(address ed25519.PublicKey) bool {
	i := c.accountIndex(address)
	return i >= 0 && c.message.IsSigner(i)
}

func (c *instructionContext) isWritable(address ed25519.PublicKey) bool {
	i := c.accountIndex(address)
	return i >= 0 && c.message.IsWritable(i)
}

// get returns the account at address. Missing accounts are returned as empty
// system owned accounts, matching the runtime's view of unfunded addresses.
func (c *instructionContext) get(address ed25519.PublicKey) (solana.AccountInfo, bool) {
	info, ok := c.state.get(address)
	if !ok {
		info = solana.AccountInfo{Owner: make(ed25519.PublicKey, ed25519.PublicKeySize)}
	}
	return info, ok
}

func (c *instructionContext) put(address ed25519.PublicKey, info solana.AccountInfo) error {
	if !c.isWritable(address) {
		return instructionError(solana.InstructionErrorReadonlyDataModified)
	}

	c.state.put(address, info)
	return nil
}

// transfer moves lamports from a system owned signer to another account.
func (c *instructionContext) transfer(from, to ed25519.PublicKey, lamports uint64, insufficient error) error {
	if !c.isSigner(from) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	fromInfo, _ := c.get(from)
	if fromInfo.Lamports < lamports {
		return insufficient
	}
	fromInfo.Lamports -= lamports
	if err := c.put(from, fromInfo); err != nil {
		return err
	}

	toInfo, _ := c.get(to)
	toInfo.Lamports += lamports
	return c.put(to, toInfo)
}

// instructionErrorKey is a runtime instruction error, as opposed to a
// program's custom error.
type instructionErrorKey solana.InstructionErrorKey

func (k instructionErrorKey) Error() string {
	return string(k)
}

func instructionError(key solana.InstructionErrorKey) error {
	return instructionErrorKey(key)
}
