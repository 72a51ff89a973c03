package section

import (
	"io"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/internal/bytesx"
	"github.com/sbdf-go/sbdf/valuearray"
)

// Reserved column-slice value-property names. Their kind is enforced:
// setting one with a different kind is an InvalidUsageError.
const (
	IsInvalidProperty        = "IsInvalid"
	HasReplacedValueProperty = "HasReplacedValue"
	ErrorCodeProperty        = "ErrorCode"
)

// NamedArray pairs a value-property name with its encoded array.
// ColumnSlice keeps these in an ordered slice (not a map) because
// property order is significant on wire.
type NamedArray struct {
	Name   string
	Values valuearray.ValueArray
}

// ColumnSlice is one column's data array plus its ordered
// value-properties (spec §3's ColumnSlice, §4.5's wire form).
type ColumnSlice struct {
	Values     valuearray.ValueArray
	Properties []NamedArray
}

// Validate checks the three reserved sideband kinds and the
// same-length-as-values invariant for every property.
func (cs ColumnSlice) Validate() error {
	n := len(cs.Values.Values)
	for _, p := range cs.Properties {
		if len(p.Values.Values) != n {
			return errs.NewInvalidUsageError(errs.KindSidebandLengthMismatch, "sideband array length does not match column values: "+p.Name, nil)
		}
		switch p.Name {
		case IsInvalidProperty, HasReplacedValueProperty:
			if p.Values.Kind != format.Bool {
				return errs.NewInvalidUsageError(errs.KindKindMismatch, p.Name+" must be a Bool array", nil)
			}
		case ErrorCodeProperty:
			if p.Values.Kind != format.String {
				return errs.NewInvalidUsageError(errs.KindKindMismatch, ErrorCodeProperty+" must be a String array", nil)
			}
		}
	}
	return nil
}

// Property looks up a named value-property.
func (cs ColumnSlice) Property(name string) (valuearray.ValueArray, bool) {
	for _, p := range cs.Properties {
		if p.Name == name {
			return p.Values, true
		}
	}
	return valuearray.ValueArray{}, false
}

// WriteColumnSlice emits magic + 0x04 + the values array + the ordered
// value-properties, each name in the varint-prefixed string form (not
// the i32-prefixed form the table-metadata section's property names
// use — this is the format's own open question about the two distinct
// string-prefix encodings).
func WriteColumnSlice(w io.Writer, cs ColumnSlice) error {
	if err := cs.Validate(); err != nil {
		return err
	}
	if err := WriteMagic(w, format.SectionColumnSlice); err != nil {
		return err
	}
	if err := valuearray.Write(w, cs.Values); err != nil {
		return err
	}
	if err := bytesx.WriteInt32(w, int32(len(cs.Properties))); err != nil {
		return err
	}
	for _, p := range cs.Properties {
		if err := bytesx.WriteVarintPrefixedString(w, p.Name); err != nil {
			return err
		}
		if err := valuearray.Write(w, p.Values); err != nil {
			return err
		}
	}
	return nil
}

// ReadColumnSlice decodes a column-slice section in full.
func ReadColumnSlice(r io.Reader) (ColumnSlice, error) {
	tag, err := ReadTag(r)
	if err != nil {
		return ColumnSlice{}, err
	}
	if tag != format.SectionColumnSlice {
		return ColumnSlice{}, errs.NewFormatError(errs.KindUnknownSectionTag, "expected column slice section", nil)
	}
	values, err := valuearray.Read(r)
	if err != nil {
		return ColumnSlice{}, err
	}
	propCount, err := bytesx.ReadInt32(r)
	if err != nil {
		return ColumnSlice{}, err
	}
	if propCount < 0 {
		return ColumnSlice{}, errs.NewFormatError(errs.KindUnexpectedEOF, "negative property count", nil)
	}
	props := make([]NamedArray, propCount)
	for i := range props {
		name, err := bytesx.ReadVarintPrefixedString(r)
		if err != nil {
			return ColumnSlice{}, err
		}
		arr, err := valuearray.Read(r)
		if err != nil {
			return ColumnSlice{}, err
		}
		props[i] = NamedArray{Name: name, Values: arr}
	}
	cs := ColumnSlice{Values: values, Properties: props}
	return cs, cs.Validate()
}

// SkipColumnSlice advances past a column-slice section without
// materializing its arrays, for columns excluded by a reader's subset
// mask.
func SkipColumnSlice(r io.Reader) error {
	tag, err := ReadTag(r)
	if err != nil {
		return err
	}
	if tag != format.SectionColumnSlice {
		return errs.NewFormatError(errs.KindUnknownSectionTag, "expected column slice section", nil)
	}
	if err := valuearray.Skip(r); err != nil {
		return err
	}
	propCount, err := bytesx.ReadInt32(r)
	if err != nil {
		return err
	}
	for i := int32(0); i < propCount; i++ {
		if _, err := bytesx.ReadVarintPrefixedString(r); err != nil {
			return err
		}
		if err := valuearray.Skip(r); err != nil {
			return err
		}
	}
	return nil
}
