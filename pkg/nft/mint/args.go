package mint

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-minter/pkg/solana/metadata"
)

const (
	DefaultSellerFeeBasisPoints = 1
	DefaultIsMutable            = false
)

// Args are the caller supplied metadata strings.
type Args struct {
	Name   string
	Symbol string
	URI    string
}

// Validate checks the strings can be stored byte for byte. The metadata
// program pads stored strings with NUL bytes, so values containing NUL or
// exceeding the maximum lengths would not read back verbatim.
func (a *Args) Validate() error {
	if a == nil {
		return errors.Wrap(ErrInvalidArgs, "args are nil")
	}

	for _, check := range []struct {
		value     string
		maxLength int
		err       error
	}{
		{a.Name, metadata.MaxNameLength, ErrInvalidName},
		{a.Symbol, metadata.MaxSymbolLength, ErrInvalidSymbol},
		{a.URI, metadata.MaxURILength, ErrInvalidURI},
	} {
		if len(check.value) > check.maxLength {
			return errors.Wrapf(check.err, "%d bytes exceeds the maximum of %d", len(check.value), check.maxLength)
		}
		if !utf8.ValidString(check.value) {
			return errors.Wrap(check.err, "value is not valid utf-8")
		}
		if strings.ContainsRune(check.value, 0) {
			return errors.Wrap(check.err, "value contains a NUL byte")
		}
	}

	return nil
}

// Options are the metadata fields that are not supplied per mint.
type Options struct {
	SellerFeeBasisPoints uint16
	IsMutable            bool
}

func DefaultOptions() *Options {
	return &Options{
		SellerFeeBasisPoints: DefaultSellerFeeBasisPoints,
		IsMutable:            DefaultIsMutable,
	}
}

func (o *Options) Validate() error {
	if o == nil {
		return errors.Wrap(ErrInvalidOptions, "options are nil")
	}
	if o.SellerFeeBasisPoints > metadata.MaxSellerFeeBasisPoints {
		return errors.Wrapf(ErrInvalidOptions, "seller fee basis points exceeds %d", metadata.MaxSellerFeeBasisPoints)
	}
	return nil
}
