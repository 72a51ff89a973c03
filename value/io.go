package value

import (
	"io"
	"time"

	"github.com/sbdf-go/sbdf/decimal128"
	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/internal/bytesx"
)

// epochShiftMillis is the gap, in milliseconds, between the wire epoch
// (0001-01-01 00:00:00 UTC) and the Unix epoch. Kept in one place per the
// source format's own design note.
const epochShiftMillis = 62135596800000

// minWireUnixMillis is the earliest Unix-epoch millisecond the writer
// accepts for DateTime/Date: 1583-01-01 00:00:00 UTC.
const minWireUnixMillis = -12212553600000

const millisPerDay = 86400000

// WriteValue emits v's fixed-width or length-prefixed primitive form for
// its declared kind. v must carry a Plain envelope; callers demultiplex
// Invalid/Error/Replaced into sideband arrays before calling this.
func WriteValue(w io.Writer, v Value) error {
	switch v.kind {
	case format.Bool:
		return bytesx.WriteBool(w, v.b)
	case format.Int:
		return bytesx.WriteInt32(w, v.i32)
	case format.Long:
		return bytesx.WriteInt64(w, v.i64)
	case format.Float:
		return bytesx.WriteFloat32(w, v.f32)
	case format.Double:
		return bytesx.WriteFloat64(w, v.f64)
	case format.DateTime, format.Date:
		wire, err := dateTimeToWire(v.t)
		if err != nil {
			return err
		}
		return bytesx.WriteInt64(w, wire)
	case format.Time:
		return bytesx.WriteInt64(w, normalizeTimeOfDayMillis(v.d))
	case format.TimeSpan:
		return bytesx.WriteInt64(w, int64(v.d/time.Millisecond))
	case format.String:
		return bytesx.WriteLengthPrefixedString(w, v.s)
	case format.Binary:
		if err := bytesx.WriteInt32(w, int32(len(v.bin))); err != nil {
			return err
		}
		_, err := w.Write(v.bin)
		return err
	case format.Decimal:
		var buf [decimal128.Size]byte
		if err := decimal128.Encode(buf[:], v.dec); err != nil {
			return err
		}
		_, err := w.Write(buf[:])
		return err
	default:
		return errs.NewInvalidUsageError(errs.KindKindMismatch, "write_value: unsupported kind", nil)
	}
}

// ReadValue reads one Plain-envelope value of kind from r.
func ReadValue(r io.Reader, kind format.ValueType) (Value, error) {
	switch kind {
	case format.Bool:
		b, err := bytesx.ReadBool(r)
		return Value{kind: kind, b: b}, err
	case format.Int:
		i, err := bytesx.ReadInt32(r)
		return Value{kind: kind, i32: i}, err
	case format.Long:
		i, err := bytesx.ReadInt64(r)
		return Value{kind: kind, i64: i}, err
	case format.Float:
		f, err := bytesx.ReadFloat32(r)
		return Value{kind: kind, f32: f}, err
	case format.Double:
		f, err := bytesx.ReadFloat64(r)
		return Value{kind: kind, f64: f}, err
	case format.DateTime, format.Date:
		wire, err := bytesx.ReadInt64(r)
		if err != nil {
			return Value{}, err
		}
		t, err := wireToDateTime(wire)
		return Value{kind: kind, t: t}, err
	case format.Time:
		ms, err := bytesx.ReadInt64(r)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: kind, d: time.Duration(ms) * time.Millisecond}, nil
	case format.TimeSpan:
		ms, err := bytesx.ReadInt64(r)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: kind, d: time.Duration(ms) * time.Millisecond}, nil
	case format.String:
		s, err := bytesx.ReadLengthPrefixedString(r)
		return Value{kind: kind, s: s}, err
	case format.Binary:
		n, err := bytesx.ReadInt32(r)
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return Value{}, errs.NewFormatError(errs.KindUnexpectedEOF, "negative binary length", nil)
		}
		buf := make([]byte, n)
		if err := bytesx.ReadFull(r, buf); err != nil {
			return Value{}, err
		}
		return Value{kind: kind, bin: buf}, nil
	case format.Decimal:
		var buf [decimal128.Size]byte
		if err := bytesx.ReadFull(r, buf[:]); err != nil {
			return Value{}, err
		}
		d, err := decimal128.Decode(buf[:])
		return Value{kind: kind, dec: d}, err
	default:
		return Value{}, errs.NewFormatError(errs.KindUnknownValueKind, "read_value: unsupported kind", nil)
	}
}

// SkipValue advances past one Plain-envelope value of kind without
// allocating it, for column-subset reads.
func SkipValue(r io.Reader, kind format.ValueType) error {
	if kind.IsSimple() {
		var buf [16]byte
		return bytesx.ReadFull(r, buf[:kind.FixedSize()])
	}
	switch kind {
	case format.String, format.Binary:
		n, err := bytesx.ReadInt32(r)
		if err != nil {
			return err
		}
		if n < 0 {
			return errs.NewFormatError(errs.KindUnexpectedEOF, "negative length", nil)
		}
		_, err = io.CopyN(io.Discard, r, int64(n))
		return err
	default:
		return errs.NewFormatError(errs.KindUnknownValueKind, "skip_value: unsupported kind", nil)
	}
}

func dateTimeToWire(t time.Time) (int64, error) {
	unixMillis := t.UnixMilli()
	if unixMillis < minWireUnixMillis {
		return 0, errs.NewFormatError(errs.KindDateOutOfRange, "datetime earlier than 1583-01-01T00:00:00Z", nil)
	}
	return unixMillis + epochShiftMillis, nil
}

func wireToDateTime(wire int64) (time.Time, error) {
	unixMillis := wire - epochShiftMillis
	if unixMillis < minWireUnixMillis {
		return time.Time{}, errs.NewFormatError(errs.KindDateOutOfRange, "datetime earlier than 1583-01-01T00:00:00Z", nil)
	}
	return time.UnixMilli(unixMillis).UTC(), nil
}

// normalizeTimeOfDayMillis folds d into the half-open interval
// [0, 86400000) ms, wrapping a negative offset by adding one day.
func normalizeTimeOfDayMillis(d time.Duration) int64 {
	ms := int64(d / time.Millisecond)
	ms %= millisPerDay
	if ms < 0 {
		ms += millisPerDay
	}
	return ms
}

// WriteArray emits the homogeneous raw array form used as a ValueArray
// payload: i32 n followed by the fixed-width bytes (simple kinds) or the
// packed varint-length-prefixed block (String/Binary).
func WriteArray(w io.Writer, kind format.ValueType, values []Value) error {
	if err := bytesx.WriteInt32(w, int32(len(values))); err != nil {
		return err
	}
	if kind.IsSimple() {
		for _, v := range values {
			if err := WriteValue(w, v); err != nil {
				return err
			}
		}
		return nil
	}
	switch kind {
	case format.String, format.Binary:
		return writePackedBlock(w, kind, values)
	default:
		return errs.NewInvalidUsageError(errs.KindKindMismatch, "write_array: unsupported kind", nil)
	}
}

// writePackedBlock writes the i32 block_length followed by n
// (varint element_length, element_bytes) pairs.
func writePackedBlock(w io.Writer, kind format.ValueType, values []Value) error {
	var elems [][]byte
	blockLen := 0
	for _, v := range values {
		var b []byte
		if kind == format.String {
			b = bytesx.EncodeUTF8Sanitized(v.s)
		} else {
			b = v.bin
		}
		elems = append(elems, b)
		blockLen += bytesx.VarintLen(int32(len(b))) + len(b)
	}
	if err := bytesx.WriteInt32(w, int32(blockLen)); err != nil {
		return err
	}
	for _, b := range elems {
		if err := bytesx.WriteVarint(w, int32(len(b))); err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// ReadArray reads n values of kind back in WriteArray's form.
func ReadArray(r io.Reader, kind format.ValueType) ([]Value, error) {
	n, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "negative array length", nil)
	}
	out := make([]Value, n)
	if kind.IsSimple() {
		for i := range out {
			v, err := ReadValue(r, kind)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	switch kind {
	case format.String, format.Binary:
		return readPackedBlock(r, kind, int(n))
	default:
		return nil, errs.NewFormatError(errs.KindUnknownValueKind, "read_array: unsupported kind", nil)
	}
}

func readPackedBlock(r io.Reader, kind format.ValueType, n int) ([]Value, error) {
	blockLen, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if blockLen < 0 {
		return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "negative block length", nil)
	}
	block := make([]byte, blockLen)
	if err := bytesx.ReadFull(r, block); err != nil {
		return nil, err
	}
	out := make([]Value, n)
	pos := 0
	for i := 0; i < n; i++ {
		elemLen, size, err := decodeVarintFromSlice(block[pos:])
		if err != nil {
			return nil, err
		}
		pos += size
		if elemLen < 0 || pos+int(elemLen) > len(block) {
			return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "packed array element overruns block", nil)
		}
		elem := block[pos : pos+int(elemLen)]
		pos += int(elemLen)
		if kind == format.String {
			out[i] = NewString(string(elem))
		} else {
			cp := make([]byte, len(elem))
			copy(cp, elem)
			out[i] = NewBinary(cp)
		}
	}
	return out, nil
}

func decodeVarintFromSlice(b []byte) (int32, int, error) {
	var result uint32
	var shift uint
	for i := 0; i < 5; i++ {
		if i >= len(b) {
			return 0, 0, errs.NewFormatError(errs.KindUnexpectedEOF, "truncated varint", nil)
		}
		result |= uint32(b[i]&0x7F) << shift
		if b[i]&0x80 == 0 {
			return int32(result), i + 1, nil
		}
		shift += 7
	}
	return 0, 0, errs.NewFormatError(errs.KindUnexpectedEOF, "varint longer than 5 bytes", nil)
}

// SkipArray advances past a homogeneous array without allocating it.
func SkipArray(r io.Reader, kind format.ValueType) error {
	n, err := bytesx.ReadInt32(r)
	if err != nil {
		return err
	}
	if n < 0 {
		return errs.NewFormatError(errs.KindUnexpectedEOF, "negative array length", nil)
	}
	if kind.IsSimple() {
		_, err := io.CopyN(io.Discard, r, int64(n)*int64(kind.FixedSize()))
		return err
	}
	switch kind {
	case format.String, format.Binary:
		blockLen, err := bytesx.ReadInt32(r)
		if err != nil {
			return err
		}
		if blockLen < 0 {
			return errs.NewFormatError(errs.KindUnexpectedEOF, "negative block length", nil)
		}
		_, err = io.CopyN(io.Discard, r, int64(blockLen))
		return err
	default:
		return errs.NewFormatError(errs.KindUnknownValueKind, "skip_array: unsupported kind", nil)
	}
}
