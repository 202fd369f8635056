package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is an account referenced by an instruction, along with the
// access the instruction needs to it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	isPayer   bool
	isProgram bool
}

// NewAccountMeta returns a writable AccountMeta.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner, IsWritable: true}
}

// NewReadonlyAccountMeta returns a read-only AccountMeta.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner}
}

// sortsBefore orders accounts within a message: the payer first, then
// signers, then writable accounts, with programs last. Ties are broken by
// key so compilation is deterministic.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
func (a AccountMeta) sortsBefore(b AccountMeta) bool {
	switch {
	case a.isPayer != b.isPayer:
		return a.isPayer
	case a.isProgram != b.isProgram:
		return !a.isProgram
	case a.IsSigner != b.IsSigner:
		return a.IsSigner
	case a.IsWritable != b.IsWritable:
		return a.IsWritable
	default:
		return bytes.Compare(a.PublicKey, b.PublicKey) < 0
	}
}

// merge widens a's access with b's.
func (a *AccountMeta) merge(b AccountMeta) {
	a.IsSigner = a.IsSigner || b.IsSigner
	a.IsWritable = a.IsWritable || b.IsWritable
	a.isPayer = a.isPayer || b.isPayer
}

type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// Signers returns the keys of every account the instruction requires a
// signature from, in account order.
func (i Instruction) Signers() []ed25519.PublicKey {
	var signers []ed25519.PublicKey
	for _, a := range i.Accounts {
		if a.IsSigner {
			signers = append(signers, a.PublicKey)
		}
	}
	return signers
}

// CompiledInstruction is an instruction whose program and accounts are
// indexes into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

// IsSigner reports whether the account at index must sign the message.
func (m Message) IsSigner(index int) bool {
	return index < int(m.Header.NumSignatures)
}

// IsWritable reports whether the account at index is writable according to
// the message header.
func (m Message) IsWritable(index int) bool {
	signers := int(m.Header.NumSignatures)
	if index < signers {
		return index < signers-int(m.Header.NumReadonlySigned)
	}
	return index < len(m.Accounts)-int(m.Header.NumReadOnly)
}
