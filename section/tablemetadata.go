package section

import (
	"io"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/internal/bytesx"
	"github.com/sbdf-go/sbdf/metadata"
	"github.com/sbdf-go/sbdf/value"
)

// WriteTableMetadata emits the table-metadata section: magic + 0x02,
// the table property table, the distinct column-property-key table, and
// the per-column presence/value grid (spec §4.5).
//
// Property names in this section use the i32-length-prefixed UTF-8 form
// (bytesx.WriteLengthPrefixedString), not the packed-varint form used
// inside packed string arrays, and not the varint-prefixed form
// column-slice property names use — the three must not be conflated.
func WriteTableMetadata(w io.Writer, tm *metadata.TableMetadata) error {
	if err := WriteMagic(w, format.SectionTableMetadata); err != nil {
		return err
	}

	tableProps := tm.Properties().Properties()
	if err := bytesx.WriteInt32(w, int32(len(tableProps))); err != nil {
		return err
	}
	for _, p := range tableProps {
		if err := writeTableProperty(w, p); err != nil {
			return err
		}
	}

	if err := bytesx.WriteInt32(w, int32(tm.ColumnCount())); err != nil {
		return err
	}

	keys := distinctColumnPropertyKeys(tm.Columns())
	if err := bytesx.WriteInt32(w, int32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := bytesx.WriteLengthPrefixedString(w, k.Name); err != nil {
			return err
		}
		if _, err := w.Write([]byte{byte(k.Kind)}); err != nil {
			return err
		}
		if err := bytesx.WriteBool(w, k.Default != nil); err != nil {
			return err
		}
		if k.Default != nil {
			if err := value.WriteValue(w, *k.Default); err != nil {
				return err
			}
		}
	}

	for _, col := range tm.Columns() {
		for _, k := range keys {
			p, ok := col.Collection().Get(k.Name)
			if err := bytesx.WriteBool(w, ok); err != nil {
				return err
			}
			if !ok {
				continue
			}
			if p.Value == nil {
				return errs.NewInvalidUsageError(errs.KindNilOrEmptyArgument, "column property present without a value: "+k.Name, nil)
			}
			if err := value.WriteValue(w, *p.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeTableProperty(w io.Writer, p metadata.Property) error {
	if err := bytesx.WriteLengthPrefixedString(w, p.Name); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(p.Kind)}); err != nil {
		return err
	}
	if err := bytesx.WriteBool(w, p.Value != nil); err != nil {
		return err
	}
	if p.Value != nil {
		if err := value.WriteValue(w, *p.Value); err != nil {
			return err
		}
	}
	if err := bytesx.WriteBool(w, p.Default != nil); err != nil {
		return err
	}
	if p.Default != nil {
		if err := value.WriteValue(w, *p.Default); err != nil {
			return err
		}
	}
	return nil
}

type columnPropertyKey struct {
	Name    string
	Kind    format.ValueType
	Default *value.Value
}

// distinctColumnPropertyKeys walks columns in order, recording each
// property name's first-seen kind and default. Callers (the builder)
// are responsible for ensuring a shared name means the same kind and
// default everywhere; this function trusts that invariant rather than
// re-validating it.
func distinctColumnPropertyKeys(columns []*metadata.ColumnMetadata) []columnPropertyKey {
	var keys []columnPropertyKey
	seen := make(map[string]bool)
	for _, col := range columns {
		for _, p := range col.Collection().Properties() {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			keys = append(keys, columnPropertyKey{Name: p.Name, Kind: p.Kind, Default: p.Default})
		}
	}
	return keys
}

// ReadTableMetadata decodes a table-metadata section.
func ReadTableMetadata(r io.Reader) (*metadata.TableMetadata, error) {
	tag, err := ReadTag(r)
	if err != nil {
		return nil, err
	}
	if tag != format.SectionTableMetadata {
		return nil, errs.NewFormatError(errs.KindUnknownSectionTag, "expected table metadata section", nil)
	}

	builder := metadata.NewBuilder()

	propCount, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < propCount; i++ {
		p, err := readTableProperty(r)
		if err != nil {
			return nil, err
		}
		if err := builder.AddTypedProperty(p); err != nil {
			return nil, err
		}
	}

	columnCount, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}

	keyCount, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if keyCount < 0 {
		return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "negative column property key count", nil)
	}
	keys := make([]columnPropertyKey, keyCount)
	for i := range keys {
		name, err := bytesx.ReadLengthPrefixedString(r)
		if err != nil {
			return nil, err
		}
		kindByte, err := readByte(r)
		if err != nil {
			return nil, err
		}
		kind := format.ValueType(kindByte)
		hasDefault, err := bytesx.ReadBool(r)
		if err != nil {
			return nil, err
		}
		var def *value.Value
		if hasDefault {
			v, err := value.ReadValue(r, kind)
			if err != nil {
				return nil, err
			}
			def = &v
		}
		keys[i] = columnPropertyKey{Name: name, Kind: kind, Default: def}
	}

	for c := int32(0); c < columnCount; c++ {
		props := make(map[string]metadata.Property)
		for _, k := range keys {
			present, err := bytesx.ReadBool(r)
			if err != nil {
				return nil, err
			}
			if !present {
				continue
			}
			v, err := value.ReadValue(r, k.Kind)
			if err != nil {
				return nil, err
			}
			props[k.Name] = metadata.Property{Name: k.Name, Kind: k.Kind, Value: &v, Default: k.Default}
		}

		nameProp, ok := props[metadata.NameProperty]
		if !ok {
			return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "column missing reserved Name property", nil)
		}
		dataTypeProp, ok := props[metadata.DataTypeProperty]
		if !ok {
			return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "column missing reserved DataType property", nil)
		}
		kindByte := dataTypeProp.Value.Binary()
		if len(kindByte) == 0 {
			return nil, errs.NewFormatError(errs.KindUnknownValueKind, "empty DataType property", nil)
		}

		var extra []metadata.Property
		for _, k := range keys {
			if k.Name == metadata.NameProperty || k.Name == metadata.DataTypeProperty {
				continue
			}
			if p, ok := props[k.Name]; ok {
				extra = append(extra, p)
			}
		}
		col, err := metadata.NewColumnMetadata(nameProp.Value.String(), format.ValueType(kindByte[0]), extra...)
		if err != nil {
			return nil, err
		}
		if err := builder.AddColumn(col); err != nil {
			return nil, err
		}
	}

	return builder.Build(), nil
}

func readTableProperty(r io.Reader) (metadata.Property, error) {
	name, err := bytesx.ReadLengthPrefixedString(r)
	if err != nil {
		return metadata.Property{}, err
	}
	kindByte, err := readByte(r)
	if err != nil {
		return metadata.Property{}, err
	}
	kind := format.ValueType(kindByte)

	hasValue, err := bytesx.ReadBool(r)
	if err != nil {
		return metadata.Property{}, err
	}
	var val *value.Value
	if hasValue {
		v, err := value.ReadValue(r, kind)
		if err != nil {
			return metadata.Property{}, err
		}
		val = &v
	}

	hasDefault, err := bytesx.ReadBool(r)
	if err != nil {
		return metadata.Property{}, err
	}
	var def *value.Value
	if hasDefault {
		v, err := value.ReadValue(r, kind)
		if err != nil {
			return metadata.Property{}, err
		}
		def = &v
	}

	return metadata.Property{Name: name, Kind: kind, Value: val, Default: def}, nil
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if err := bytesx.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
