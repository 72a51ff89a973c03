package section

import (
	"io"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/internal/bytesx"
)

// WriteTableSlice emits magic + 0x03 + column_count + each column's
// slice section in order. A writer always emits every column; selecting
// a subset is a read-side concern only.
func WriteTableSlice(w io.Writer, columns []ColumnSlice) error {
	if err := WriteMagic(w, format.SectionTableSlice); err != nil {
		return err
	}
	if err := bytesx.WriteInt32(w, int32(len(columns))); err != nil {
		return err
	}
	for _, cs := range columns {
		if err := WriteColumnSlice(w, cs); err != nil {
			return err
		}
	}
	return nil
}

// ReadTableSlice decodes a table-slice section, materializing only the
// columns selected by mask (a nil mask means "materialize all").
// mask must have one entry per column when non-nil; a length mismatch
// is an InvalidUsageError.
func ReadTableSlice(r io.Reader, mask []bool) ([]ColumnSlice, error) {
	tag, err := ReadTag(r)
	if err != nil {
		return nil, err
	}
	if tag != format.SectionTableSlice {
		return nil, errs.NewFormatError(errs.KindUnknownSectionTag, "expected table slice section", nil)
	}
	return ReadTableSliceBody(r, mask)
}

// ReadTableSliceBody decodes a table-slice section's payload, assuming
// the caller already consumed and validated the magic+tag header — used
// by the streaming reader, which must peek the tag to distinguish a
// table slice from the end-of-table marker before committing to a full
// parse.
func ReadTableSliceBody(r io.Reader, mask []bool) ([]ColumnSlice, error) {
	columnCount, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if columnCount < 0 {
		return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "negative column count", nil)
	}
	if mask != nil && len(mask) != int(columnCount) {
		return nil, errs.NewInvalidUsageError(errs.KindSubsetMaskMismatch, "column subset mask length does not match column count", nil)
	}

	out := make([]ColumnSlice, columnCount)
	for i := int32(0); i < columnCount; i++ {
		if mask == nil || mask[i] {
			cs, err := ReadColumnSlice(r)
			if err != nil {
				return nil, err
			}
			out[i] = cs
		} else if err := SkipColumnSlice(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WriteTableEnd emits the end-of-table marker, magic + 0x05.
func WriteTableEnd(w io.Writer) error {
	return WriteMagic(w, format.SectionTableEnd)
}
