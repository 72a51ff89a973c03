// Package decimal128 implements the SBDF wire codec for the Decimal value
// kind: a 16-byte, little-endian, biased-exponent combination-field
// layout loosely modeled on the IEEE-754-2008 decimal128 interchange
// format's "binary significand" (BID) variant.
//
// The caller-facing runtime type is github.com/shopspring/decimal.Decimal
// — the same big.Int-backed decimal type a sibling wire-protocol codec in
// this family uses at its API boundary for DECIMAL/NUMERIC values — not a
// hand-rolled struct. No available third-party package implements this
// specific 128-bit wire layout, so the bit-packing in this file is the
// core's own logic; everything above it (parsing, arithmetic, ordered
// comparison) defers to decimal.Decimal.
package decimal128

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/sbdf-go/sbdf/errs"
)

// Size is the on-wire byte width of a Decimal value.
const Size = 16

// MaxScale is the largest supported number of digits after the decimal point.
const MaxScale = 34

const exponentBias = 6176

// nanBiasedExponent is the reserved biased-exponent pattern (all 14 bits
// set) that, combined with combination class 3, marks a NaN encoding.
// No value this codec ever writes reaches it — the supported scale range
// keeps the biased exponent within [exponentBias-MaxScale, exponentBias].
const nanBiasedExponent = 0x3FFF

// maxSignificand is 10^34 - 1, the largest unscaled significand (34
// nines) this format can carry.
var maxSignificand = func() *big.Int {
	n := new(big.Int).Exp(big.NewInt(10), big.NewInt(34), nil)
	return n.Sub(n, big.NewInt(1))
}()

// trailingMask selects the low 111 bits of the binary significand.
var trailingMask = func() *big.Int {
	n := big.NewInt(1)
	n.Lsh(n, 111)
	return n.Sub(n, big.NewInt(1))
}()

// Encode writes d's 16-byte decimal128 wire form into dst, which must be
// at least Size bytes long. It returns an InvalidUsageError if the
// unscaled significand exceeds 34 nines or the value needs more than
// MaxScale digits after the decimal point. decimal.Decimal has no
// NaN/Inf representation, so no finiteness check is made.
func Encode(dst []byte, d decimal.Decimal) error {
	if len(dst) < Size {
		return errs.NewInvalidUsageError(errs.KindNilOrEmptyArgument, "decimal128: destination buffer too small", nil)
	}

	coeff := d.Coefficient()
	exp := d.Exponent()

	// Normalize a positive exponent (scale < 0) by folding it into the
	// coefficient so the wire form only ever needs a nonnegative scale.
	if exp > 0 {
		scaleUp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
		coeff = new(big.Int).Mul(coeff, scaleUp)
		exp = 0
	}

	scale := -int64(exp)
	if scale > MaxScale {
		return errs.NewInvalidUsageError(errs.KindDecimalOverflow, "decimal128: scale exceeds 34 digits", nil)
	}

	sign := coeff.Sign() < 0
	abs := new(big.Int).Abs(coeff)
	if abs.Cmp(maxSignificand) > 0 {
		return errs.NewInvalidUsageError(errs.KindDecimalOverflow, "decimal128: unscaled significand exceeds 34 nines", nil)
	}

	biasedExp := uint16(exponentBias - scale)

	top2 := uint8(new(big.Int).Rsh(abs, 111).Uint64() & 0x3)
	trailing := new(big.Int).And(abs, trailingMask)

	var tb [15]byte // bytes 0..14, trailing significand + low exponent bits
	trailingBytes := trailing.FillBytes(make([]byte, 14))
	// trailingBytes is big-endian 14 bytes holding the low 111 bits (top
	// 7 padding bits are always zero since trailing < 2^111).
	copy(tb[0:13], reverseBytes(trailingBytes[1:14])) // bytes 0..12 little-endian
	// byte 13: high bit = exponent LSB, low 7 bits = top 7 bits of trailing (bits 110..104)
	top7 := trailingBytes[0] & 0x7F // top 7 bits of the 111-bit field live in the first kept byte's low 7 bits
	tb[13] = top7 | (byte(biasedExp&0x1) << 7)

	for i := range dst[:Size] {
		dst[i] = 0
	}
	copy(dst[0:13], tb[0:13])
	dst[13] = tb[13]
	dst[14] = byte((biasedExp >> 1) & 0xFF)
	dst[15] = byte((biasedExp>>9)&0x1F) | (top2 << 5)
	if sign {
		dst[15] |= 0x80
	}

	return nil
}

// Decode parses a 16-byte decimal128 wire form into a decimal.Decimal.
// It returns a FormatError (Kind: DecimalNaN) if src encodes the
// reserved NaN combination.
func Decode(src []byte) (decimal.Decimal, error) {
	if len(src) < Size {
		return decimal.Decimal{}, errs.NewFormatError(errs.KindUnexpectedEOF, "decimal128: source buffer too small", nil)
	}

	sign := src[15]&0x80 != 0
	top2 := (src[15] >> 5) & 0x3
	biasedExp := uint16(src[15]&0x1F)<<9 | uint16(src[14])<<1 | uint16(src[13]>>7)

	if top2 == 0x3 && biasedExp == nanBiasedExponent {
		return decimal.Decimal{}, errs.NewFormatError(errs.KindDecimalNaN, "decimal128: NaN combination field", nil)
	}

	var trailingBE [14]byte
	trailingBE[0] = src[13] & 0x7F
	rev := reverseBytes(append([]byte{}, src[0:13]...))
	copy(trailingBE[1:14], rev)

	trailing := new(big.Int).SetBytes(trailingBE[:])
	top := new(big.Int).Lsh(big.NewInt(int64(top2)), 111)
	abs := new(big.Int).Or(top, trailing)

	if sign {
		abs.Neg(abs)
	}

	scale := exponentBias - int64(biasedExp)

	return decimal.NewFromBigInt(abs, int32(-scale)), nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
