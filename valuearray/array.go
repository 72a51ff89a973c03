// Package valuearray implements the SBDF array encoding layer (spec
// component 4): the self-describing ValueArray envelope and its three
// encodings, Plain, RunLength, and PackedBit.
//
// Dispatch across encodings is table-driven per the source's own design
// note ("the source uses an array of deserializer objects indexed by
// encoding id... naturally expressed as a tagged-union dispatch or a
// table of function pointers"); here that dispatch is a switch over
// format.EncodingID in Write, Read and Skip below.
package valuearray

import (
	"io"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/internal/bytesx"
	"github.com/sbdf-go/sbdf/value"
)

// ValueArray is a decoded, self-describing column or value-property
// array: the encoding it was read with (or will be written with) plus
// its values.
type ValueArray struct {
	Encoding format.EncodingID
	Kind     format.ValueType
	Values   []value.Value
}

// Plain constructs a Plain-encoded ValueArray.
func Plain(kind format.ValueType, values []value.Value) ValueArray {
	return ValueArray{Encoding: format.EncodingPlain, Kind: kind, Values: values}
}

// PackedBit constructs a PackedBit-encoded ValueArray. kind must be Bool.
func PackedBit(values []value.Value) ValueArray {
	return ValueArray{Encoding: format.EncodingPackedBit, Kind: format.Bool, Values: values}
}

// RunLength constructs a RunLength-encoded ValueArray.
func RunLength(kind format.ValueType, values []value.Value) ValueArray {
	return ValueArray{Encoding: format.EncodingRunLength, Kind: kind, Values: values}
}

// DefaultEncoding chooses the encoding an encoder should use for kind
// when the caller has not opted into RLE: Bool packs to bits; every
// other simple or array kind is Plain. RLE is never selected
// automatically (spec §4.4).
func DefaultEncoding(kind format.ValueType) (format.EncodingID, error) {
	switch {
	case kind == format.Bool:
		return format.EncodingPackedBit, nil
	case kind.IsSimple() || kind.IsArray():
		return format.EncodingPlain, nil
	default:
		return 0, errs.NewInvalidUsageError(errs.KindKindMismatch, "no default encoding for kind", nil)
	}
}

// EncodeDefault builds a ValueArray using kind's default encoding.
func EncodeDefault(kind format.ValueType, values []value.Value) (ValueArray, error) {
	enc, err := DefaultEncoding(kind)
	if err != nil {
		return ValueArray{}, err
	}
	return ValueArray{Encoding: enc, Kind: kind, Values: values}, nil
}

// Write emits the array's self-describing header (encoding_id, value_kind)
// followed by its encoding-specific payload.
func Write(w io.Writer, a ValueArray) error {
	if err := writeTag(w, byte(a.Encoding)); err != nil {
		return err
	}
	if err := writeTag(w, byte(a.Kind)); err != nil {
		return err
	}
	switch a.Encoding {
	case format.EncodingPlain:
		return value.WriteArray(w, a.Kind, a.Values)
	case format.EncodingRunLength:
		return writeRunLength(w, a.Kind, a.Values)
	case format.EncodingPackedBit:
		return writePackedBit(w, a.Values)
	default:
		return errs.NewInvalidUsageError(errs.KindKindMismatch, "unknown encoding on write", nil)
	}
}

// Read decodes a ValueArray's header and payload from r.
func Read(r io.Reader) (ValueArray, error) {
	encByte, err := readTag(r)
	if err != nil {
		return ValueArray{}, err
	}
	kindByte, err := readTag(r)
	if err != nil {
		return ValueArray{}, err
	}
	kind := format.ValueType(kindByte)
	if !kind.IsValid() {
		return ValueArray{}, errs.NewFormatError(errs.KindUnknownValueKind, "value array: unknown value kind", nil)
	}

	enc := format.EncodingID(encByte)
	switch enc {
	case format.EncodingPlain:
		values, err := value.ReadArray(r, kind)
		if err != nil {
			return ValueArray{}, err
		}
		return ValueArray{Encoding: enc, Kind: kind, Values: values}, nil
	case format.EncodingRunLength:
		values, err := readRunLength(r, kind)
		if err != nil {
			return ValueArray{}, err
		}
		return ValueArray{Encoding: enc, Kind: kind, Values: values}, nil
	case format.EncodingPackedBit:
		if kind != format.Bool {
			return ValueArray{}, errs.NewFormatError(errs.KindUnknownEncoding, "packed-bit encoding used for non-bool kind", nil)
		}
		values, err := readPackedBit(r)
		if err != nil {
			return ValueArray{}, err
		}
		return ValueArray{Encoding: enc, Kind: kind, Values: values}, nil
	default:
		return ValueArray{}, errs.NewFormatError(errs.KindUnknownEncoding, "unknown array encoding id", nil)
	}
}

// Skip advances past a ValueArray's header and payload without
// materializing its values, for column-subset reads.
func Skip(r io.Reader) error {
	encByte, err := readTag(r)
	if err != nil {
		return err
	}
	kindByte, err := readTag(r)
	if err != nil {
		return err
	}
	kind := format.ValueType(kindByte)

	switch format.EncodingID(encByte) {
	case format.EncodingPlain:
		return value.SkipArray(r, kind)
	case format.EncodingRunLength:
		return skipRunLength(r, kind)
	case format.EncodingPackedBit:
		return skipPackedBit(r)
	default:
		return errs.NewFormatError(errs.KindUnknownEncoding, "unknown array encoding id", nil)
	}
}

func writeTag(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readTag(r io.Reader) (byte, error) {
	var b [1]byte
	if err := bytesx.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
