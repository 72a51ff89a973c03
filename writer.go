// Package sbdf is the root of the table streaming protocol (spec
// component 6's TableReader/TableWriter): sequential, row-at-a-time
// writing and reading of an SBDF table over a caller-owned byte sink or
// source.
package sbdf

import (
	"io"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/internal/pool"
	"github.com/sbdf-go/sbdf/metadata"
	"github.com/sbdf-go/sbdf/section"
	"github.com/sbdf-go/sbdf/value"
	"github.com/sbdf-go/sbdf/valuearray"
)

// SliceLimit is the maximum number of buffered rows per table slice.
const SliceLimit = 10000

type columnBuffer struct {
	kind         format.ValueType
	values       []value.Value
	isInvalid    []bool
	hasReplaced  []bool
	errorCode    []string
}

// TableWriter streams row values to sink, buffering up to SliceLimit
// rows per column before encoding and emitting a TableSlice.
type TableWriter struct {
	sink     io.Writer
	metadata *metadata.TableMetadata
	columns  []columnBuffer
	colCur   int
	rowCur   int
	dirty    bool
}

// NewTableWriter writes the file header and table-metadata section for
// md to sink, then returns a TableWriter ready for AddValue calls.
func NewTableWriter(sink io.Writer, md *metadata.TableMetadata) (*TableWriter, error) {
	if sink == nil || md == nil {
		return nil, errs.NewInvalidUsageError(errs.KindNilOrEmptyArgument, "sink and metadata are required", nil)
	}
	if err := section.WriteFileHeader(sink); err != nil {
		return nil, err
	}
	if err := section.WriteTableMetadata(sink, md); err != nil {
		return nil, err
	}
	cols := make([]columnBuffer, md.ColumnCount())
	for i, cm := range md.Columns() {
		cols[i].kind = cm.ValueKind()
	}
	return &TableWriter{sink: sink, metadata: md, columns: cols}, nil
}

// AddValue stores v into the current column's buffer and advances the
// cursor, flushing a slice once SliceLimit rows have accumulated.
//
// v is kind-checked against the current column's declared kind unless
// it carries an Invalid, Error, or Replaced envelope, which are always
// accepted regardless of the kind tag they happen to carry.
func (tw *TableWriter) AddValue(v value.Value) error {
	col := &tw.columns[tw.colCur]
	if v.IsPlain() && v.Kind() != col.kind {
		return errs.NewInvalidUsageError(errs.KindKindMismatch, "value kind does not match column kind", nil)
	}

	col.values = append(col.values, v)
	tw.dirty = true

	tw.colCur++
	if tw.colCur == len(tw.columns) {
		tw.colCur = 0
		tw.rowCur++
	}
	if tw.rowCur == SliceLimit {
		return tw.flush()
	}
	return nil
}

// flush encodes every column's buffered range into a ColumnSlice,
// assembles and writes one TableSlice, and resets the writer's cursors.
func (tw *TableWriter) flush() error {
	slices := make([]section.ColumnSlice, len(tw.columns))
	for i := range tw.columns {
		cs, err := buildColumnSlice(&tw.columns[i])
		if err != nil {
			return err
		}
		slices[i] = cs
	}
	buf := pool.GetSectionBuffer()
	defer pool.PutSectionBuffer(buf)
	if err := section.WriteTableSlice(buf, slices); err != nil {
		return err
	}
	if _, err := buf.WriteTo(tw.sink); err != nil {
		return err
	}
	for i := range tw.columns {
		tw.columns[i].values = nil
		tw.columns[i].isInvalid = nil
		tw.columns[i].hasReplaced = nil
		tw.columns[i].errorCode = nil
	}
	tw.rowCur = 0
	tw.colCur = 0
	tw.dirty = false
	return nil
}

// buildColumnSlice demultiplexes a buffered column's envelopes into the
// IsInvalid/HasReplacedValue/ErrorCode sideband arrays, allocating each
// lazily on first occurrence and back-filling earlier rows with that
// sideband's default (spec §4.6's flush operation).
func buildColumnSlice(col *columnBuffer) (section.ColumnSlice, error) {
	data := make([]value.Value, len(col.values))
	for i, v := range col.values {
		switch {
		case v.IsInvalid():
			recordSideband(col, i, true, false, "")
			data[i] = value.Default(col.kind)
		case v.IsError():
			recordSideband(col, i, false, false, v.ErrorMessage())
			data[i] = value.Default(col.kind)
		case v.IsReplaced():
			recordSideband(col, i, false, true, "")
			data[i] = v.AsPlain()
		default:
			data[i] = v
		}
	}

	valuesArray, err := valuearray.EncodeDefault(col.kind, data)
	if err != nil {
		return section.ColumnSlice{}, err
	}

	var props []section.NamedArray
	if col.isInvalid != nil {
		arr, err := encodeBoolSideband(col.isInvalid)
		if err != nil {
			return section.ColumnSlice{}, err
		}
		props = append(props, section.NamedArray{Name: section.IsInvalidProperty, Values: arr})
	}
	if col.hasReplaced != nil {
		arr, err := encodeBoolSideband(col.hasReplaced)
		if err != nil {
			return section.ColumnSlice{}, err
		}
		props = append(props, section.NamedArray{Name: section.HasReplacedValueProperty, Values: arr})
	}
	if col.errorCode != nil {
		strs := make([]value.Value, len(col.errorCode))
		for i, s := range col.errorCode {
			strs[i] = value.NewString(s)
		}
		arr, err := valuearray.EncodeDefault(format.String, strs)
		if err != nil {
			return section.ColumnSlice{}, err
		}
		props = append(props, section.NamedArray{Name: section.ErrorCodeProperty, Values: arr})
	}

	return section.ColumnSlice{Values: valuesArray, Properties: props}, nil
}

func encodeBoolSideband(flags []bool) (valuearray.ValueArray, error) {
	vals := make([]value.Value, len(flags))
	for i, b := range flags {
		vals[i] = value.NewBool(b)
	}
	return valuearray.EncodeDefault(format.Bool, vals)
}

// recordSideband allocates each sideband lazily at row i, back-filling
// every earlier row in the current buffer range with that sideband's
// default before recording this row's value.
func recordSideband(col *columnBuffer, i int, invalid, replaced bool, errMsg string) {
	if invalid && col.isInvalid == nil {
		col.isInvalid = make([]bool, len(col.values))
	}
	if replaced && col.hasReplaced == nil {
		col.hasReplaced = make([]bool, len(col.values))
	}
	if errMsg != "" && col.errorCode == nil {
		col.errorCode = make([]string, len(col.values))
	}
	if col.isInvalid != nil {
		col.isInvalid[i] = invalid
	}
	if col.hasReplaced != nil {
		col.hasReplaced[i] = replaced
	}
	if col.errorCode != nil {
		col.errorCode[i] = errMsg
	}
}

// WriteEndOfTable flushes any buffered rows (if the writer is dirty) and
// writes the end-of-table marker. It fails if rows are buffered for a
// partial row (some but not all columns of the current row filled).
func (tw *TableWriter) WriteEndOfTable() error {
	if tw.colCur != 0 {
		return errs.NewInvalidUsageError(errs.KindIncompleteRow, "cannot end table mid-row", nil)
	}
	if tw.dirty {
		if err := tw.flush(); err != nil {
			return err
		}
	}
	return section.WriteTableEnd(tw.sink)
}

// WriteTables writes each table in order to w as an independent
// file-header-less stream segment: table metadata, its slices, and its
// end-of-table marker. The very first table is preceded by the shared
// file header. This is the supplemented multi-table form the format
// allows ("each with its own metadata section") but a single-table
// caller never needs.
func WriteTables(w io.Writer, tables ...*Table) error {
	if len(tables) == 0 {
		return errs.NewInvalidUsageError(errs.KindNilOrEmptyArgument, "WriteTables requires at least one table", nil)
	}
	if err := section.WriteFileHeader(w); err != nil {
		return err
	}
	for _, t := range tables {
		if err := section.WriteTableMetadata(w, t.Metadata); err != nil {
			return err
		}
		writer := &TableWriter{sink: w, metadata: t.Metadata, columns: make([]columnBuffer, t.Metadata.ColumnCount())}
		for i, cm := range t.Metadata.Columns() {
			writer.columns[i].kind = cm.ValueKind()
		}
		for _, row := range t.Rows {
			for _, v := range row {
				if err := writer.AddValue(v); err != nil {
					return err
				}
			}
		}
		if err := writer.WriteEndOfTable(); err != nil {
			return err
		}
	}
	return nil
}
