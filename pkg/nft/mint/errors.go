package mint

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidArgs        = errors.New("invalid nft mint args")
	ErrInvalidName        = errors.New("invalid nft name")
	ErrInvalidSymbol      = errors.New("invalid nft symbol")
	ErrInvalidURI         = errors.New("invalid nft uri")
	ErrInvalidAccounts    = errors.New("invalid nft mint accounts")
	ErrInvalidOptions     = errors.New("invalid nft mint options")
	ErrMissingPrivateKey  = errors.New("signer private key not available")
	ErrInvalidTransaction = errors.New("transaction is not an nft mint")
	ErrNotConfirmed       = errors.New("transaction not confirmed")
	ErrNftNotFound        = errors.New("nft not found")
	ErrRecordMismatch     = errors.New("nft record does not match expectations")
)
