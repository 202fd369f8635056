// Package shortvec implements the compact-u16 length encoding used by the
// Solana wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// maxEncodedLen is the number of bytes needed to encode math.MaxUint16.
const maxEncodedLen = 3

// EncodeLen encodes the specified len into the writer.
//
// If len > math.MaxUint16, an error is returned.
func EncodeLen(w io.Writer, len int) (n int, err error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, errors.Errorf("len out of range [0, %d]: %d", math.MaxUint16, len)
	}

	var buf [maxEncodedLen]byte
	for {
		buf[n] = byte(len & 0x7f)
		len >>= 7
		if len == 0 {
			n++
			break
		}

		buf[n] |= 0x80
		n++
	}

	return w.Write(buf[:n])
}

// DecodeLen decodes a shortvec encoded len from the reader.
func DecodeLen(r io.Reader) (val int, err error) {
	var b [1]byte
	for offset := 0; ; offset++ {
		if offset >= maxEncodedLen {
			return 0, errors.Errorf("invalid size: more than %d bytes", maxEncodedLen)
		}

		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		val |= int(b[0]&0x7f) << (offset * 7)
		if b[0]&0x80 == 0 {
			break
		}
	}

	if val > math.MaxUint16 {
		return 0, errors.Errorf("decoded len exceeds %d: %d", math.MaxUint16, val)
	}

	return val, nil
}
