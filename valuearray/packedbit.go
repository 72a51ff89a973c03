package valuearray

import (
	"io"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/internal/bytesx"
	"github.com/sbdf-go/sbdf/value"
)

// writePackedBit emits i32 n followed by ceil(n/8) bytes, bits packed
// MSB-first within each byte: the first logical bool occupies bit 7 of
// the first byte, then bit 6, and so on. This is opposite to some common
// conventions — see the source format's own note on this (Design Note,
// "Packed-bit bit order").
func writePackedBit(w io.Writer, values []value.Value) error {
	n := len(values)
	if err := bytesx.WriteInt32(w, int32(n)); err != nil {
		return err
	}
	buf := make([]byte, (n+7)/8)
	for i, v := range values {
		if v.Bool() {
			buf[i/8] |= 1 << uint(7-i%8)
		}
	}
	_, err := w.Write(buf)
	return err
}

func readPackedBit(r io.Reader) ([]value.Value, error) {
	n, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "negative packed-bit count", nil)
	}
	buf := make([]byte, (int64(n)+7)/8)
	if err := bytesx.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out := make([]value.Value, n)
	for i := range out {
		bit := (buf[i/8] >> uint(7-i%8)) & 1
		out[i] = value.NewBool(bit != 0)
	}
	return out, nil
}

func skipPackedBit(r io.Reader) error {
	n, err := bytesx.ReadInt32(r)
	if err != nil {
		return err
	}
	if n < 0 {
		return errs.NewFormatError(errs.KindUnexpectedEOF, "negative packed-bit count", nil)
	}
	_, err = io.CopyN(io.Discard, r, (int64(n)+7)/8)
	return err
}
