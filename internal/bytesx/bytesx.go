// Package bytesx implements the SBDF byte codec: little-endian fixed-width
// scalar I/O, the packed-varint length prefix, and the UTF-8 handling
// rules the array encodings rely on.
//
// SBDF is little-endian only, so unlike a multi-endianness codec this
// package reaches for encoding/binary.LittleEndian directly rather than
// abstracting over a byte-order interface — there is no second byte
// order to abstract over.
package bytesx

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/sbdf-go/sbdf/errs"
)

// negativeQuietNaN32 and negativeQuietNaN64 are the canonical bit
// patterns SBDF emits for every NaN, regardless of the NaN's original
// bit pattern. This keeps the wire format compatible with peers that
// always emit a "negative" NaN.
const (
	negativeQuietNaN32 = 0xFFC00000
	negativeQuietNaN64 = 0xFFF8000000000000
)

// ReadFull reads exactly len(buf) bytes from r, translating a short read
// into a FormatError so callers never have to special-case io.EOF vs.
// io.ErrUnexpectedEOF.
func ReadFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return errs.NewFormatError(errs.KindUnexpectedEOF, "short read", err)
	}
	return nil
}

// WriteBool/ReadBool, WriteInt32/ReadInt32 etc. write or read a
// fixed-width little-endian scalar.

func WriteBool(w io.Writer, v bool) error {
	var b [1]byte
	if v {
		b[0] = 1
	}
	_, err := w.Write(b[:])
	return err
}

func ReadBool(r io.Reader) (bool, error) {
	var b [1]byte
	if err := ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func WriteInt32(w io.Writer, v int32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	_, err := w.Write(b[:])
	return err
}

func ReadInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if err := ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b[:])), nil
}

func WriteInt64(w io.Writer, v int64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	_, err := w.Write(b[:])
	return err
}

func ReadInt64(r io.Reader) (int64, error) {
	var b [8]byte
	if err := ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// WriteFloat32 writes v as IEEE-754 little-endian, canonicalizing every
// NaN bit pattern to the negative quiet NaN SBDF standardizes on.
func WriteFloat32(w io.Writer, v float32) error {
	bits := math.Float32bits(v)
	if v != v { // NaN
		bits = negativeQuietNaN32
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], bits)
	_, err := w.Write(b[:])
	return err
}

func ReadFloat32(r io.Reader) (float32, error) {
	var b [4]byte
	if err := ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	bits := binary.LittleEndian.Uint32(b[:])
	if bits == negativeQuietNaN32 {
		return float32(math.NaN()), nil
	}
	return math.Float32frombits(bits), nil
}

// WriteFloat64 mirrors WriteFloat32 for the 64-bit case.
func WriteFloat64(w io.Writer, v float64) error {
	bits := math.Float64bits(v)
	if v != v {
		bits = negativeQuietNaN64
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], bits)
	_, err := w.Write(b[:])
	return err
}

func ReadFloat64(r io.Reader) (float64, error) {
	var b [8]byte
	if err := ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	bits := binary.LittleEndian.Uint64(b[:])
	if bits == negativeQuietNaN64 {
		return math.NaN(), nil
	}
	return math.Float64frombits(bits), nil
}

// IsCanonicalNaN32/64 report whether bits is the canonical negative NaN
// pattern SBDF writes for every NaN.
func IsCanonicalNaN32(bits uint32) bool { return bits == negativeQuietNaN32 }
func IsCanonicalNaN64(bits uint64) bool { return bits == negativeQuietNaN64 }

// PutVarint encodes a nonnegative int32 as a packed LSB-first varint
// (1-5 bytes, continuation bit 0x80) and returns the bytes used.
func PutVarint(buf []byte, v int32) int {
	u := uint32(v)
	n := 0
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if u == 0 {
			break
		}
	}
	return n
}

// VarintLen returns the number of bytes PutVarint would use for v,
// clamped to [1,5].
func VarintLen(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// WriteVarint writes v to w using the packed varint encoding.
func WriteVarint(w io.Writer, v int32) error {
	var buf [5]byte
	n := PutVarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

// ReadVarint reads a packed varint from r.
func ReadVarint(r io.Reader) (int32, error) {
	var result uint32
	var shift uint
	var b [1]byte
	for i := 0; i < 5; i++ {
		if err := ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		result |= uint32(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			return int32(result), nil
		}
		shift += 7
	}
	return 0, errs.NewFormatError(errs.KindUnexpectedEOF, "varint longer than 5 bytes", nil)
}

// WriteLengthPrefixedString writes s as an i32 byte-count followed by its
// UTF-8 bytes (the primitive, non-packed string form used for
// table-metadata property names and single String values; column-slice
// property names use WriteVarintPrefixedString instead).
//
// Lone surrogate code units are replaced with '?'; a valid high/low
// surrogate pair is encoded as the 4-byte sequence it denotes. Go's
// string type cannot itself hold an unpaired UTF-16 surrogate, so this
// function's replacement logic operates on the rune sequence directly to
// preserve the same observable behavior as a UTF-16-native caller.
func WriteLengthPrefixedString(w io.Writer, s string) error {
	encoded := EncodeUTF8Sanitized(s)
	if err := WriteInt32(w, int32(len(encoded))); err != nil {
		return err
	}
	_, err := w.Write(encoded)
	return err
}

// ReadLengthPrefixedString reads the i32-prefixed UTF-8 string form.
func ReadLengthPrefixedString(r io.Reader) (string, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", errs.NewFormatError(errs.KindUnexpectedEOF, "negative string length", nil)
	}
	buf := make([]byte, n)
	if err := ReadFull(r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", errs.NewFormatError(errs.KindUnexpectedEOF, "invalid utf-8 string payload", nil)
	}
	return string(buf), nil
}

// WriteVarintPrefixedString writes s as a packed-varint byte-count
// followed by its UTF-8 bytes. This is the string form column-slice
// value-property names use on wire — distinct from
// WriteLengthPrefixedString's i32 prefix, which table-metadata property
// names use. The two must not be conflated (spec's open question on
// string-prefix forms).
func WriteVarintPrefixedString(w io.Writer, s string) error {
	encoded := EncodeUTF8Sanitized(s)
	if err := WriteVarint(w, int32(len(encoded))); err != nil {
		return err
	}
	_, err := w.Write(encoded)
	return err
}

// ReadVarintPrefixedString reads the varint-prefixed UTF-8 string form.
func ReadVarintPrefixedString(r io.Reader) (string, error) {
	n, err := ReadVarint(r)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", errs.NewFormatError(errs.KindUnexpectedEOF, "negative string length", nil)
	}
	buf := make([]byte, n)
	if err := ReadFull(r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", errs.NewFormatError(errs.KindUnexpectedEOF, "invalid utf-8 string payload", nil)
	}
	return string(buf), nil
}

// EncodeUTF8Sanitized returns s encoded as UTF-8, replacing any rune that
// decoded as utf8.RuneError from a malformed source with '?'. Go strings
// are conventionally well-formed UTF-8 already; this function exists so
// callers constructing strings from foreign, possibly-malformed byte
// buffers still produce a well-formed SBDF payload rather than a decode
// failure at a peer.
func EncodeUTF8Sanitized(s string) []byte {
	if utf8.ValidString(s) {
		return []byte(s)
	}
	out := make([]byte, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				out = append(out, '?')
				continue
			}
		}
		var tmp [utf8.UTFMax]byte
		n := utf8.EncodeRune(tmp[:], r)
		out = append(out, tmp[:n]...)
	}
	return out
}
