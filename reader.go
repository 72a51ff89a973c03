package sbdf

import (
	"bufio"
	"io"
	"iter"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/metadata"
	"github.com/sbdf-go/sbdf/section"
	"github.com/sbdf-go/sbdf/value"
)

// ReadFileHeader validates source's file header and returns its version.
func ReadFileHeader(source io.Reader) (section.Version, error) {
	return section.ReadFileHeader(source)
}

// ReadTableMetadata decodes a table-metadata section from source.
func ReadTableMetadata(source io.Reader) (*metadata.TableMetadata, error) {
	return section.ReadTableMetadata(source)
}

// TableReader consumes table slices from source on demand, exposing
// row-major values (via ReadValue / Values). ReadNextTableSlice advances
// one slice at a time; the decoded columnar arrays of the current slice
// are not exposed to callers. An optional column mask selects which
// columns are materialized; unselected columns are skipped byte-for-byte.
type TableReader struct {
	br       *bufio.Reader
	metadata *metadata.TableMetadata
	selected []int // indices into metadata.Columns() that are materialized, in order
	mask     []bool

	current []section.ColumnSlice // one entry per selected column, from the current slice
	rowCur  int
	colCur  int
	lastErr error
}

// NewTableReader returns a TableReader over source for the given
// metadata. mask, if non-nil, must have one entry per column; only
// columns with mask[i] true are materialized. A nil mask materializes
// every column.
func NewTableReader(source io.Reader, md *metadata.TableMetadata, mask []bool) (*TableReader, error) {
	if source == nil || md == nil {
		return nil, errs.NewInvalidUsageError(errs.KindNilOrEmptyArgument, "source and metadata are required", nil)
	}
	if mask != nil && len(mask) != md.ColumnCount() {
		return nil, errs.NewInvalidUsageError(errs.KindSubsetMaskMismatch, "column subset mask length does not match column count", nil)
	}
	var selected []int
	for i := 0; i < md.ColumnCount(); i++ {
		if mask == nil || mask[i] {
			selected = append(selected, i)
		}
	}
	return &TableReader{br: asBufioReader(source), metadata: md, selected: selected, mask: mask}, nil
}

func asBufioReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// Columns returns the table's full column schema, independent of any
// subset mask this reader was constructed with.
func (tr *TableReader) Columns() []*metadata.ColumnMetadata { return tr.metadata.Columns() }

// ReadNextTableSlice reads the next section. If it is the end-of-table
// marker, it returns false. Otherwise it reads a table-slice section,
// materializing selected columns and skipping the rest, and returns true.
func (tr *TableReader) ReadNextTableSlice() (bool, error) {
	tag, err := section.ReadTag(tr.br)
	if err != nil {
		return false, err
	}
	switch tag {
	case format.SectionTableEnd:
		return false, nil
	case format.SectionTableSlice:
		cols, err := section.ReadTableSliceBody(tr.br, tr.mask)
		if err != nil {
			return false, err
		}
		tr.current = make([]section.ColumnSlice, len(tr.selected))
		for i, idx := range tr.selected {
			tr.current[i] = cols[idx]
		}
		tr.rowCur = 0
		tr.colCur = 0
		return true, nil
	default:
		return false, errs.NewFormatError(errs.KindUnknownSectionTag, "expected table slice or table end section", nil)
	}
}

func (tr *TableReader) currentRowCount() int {
	if len(tr.current) == 0 {
		return 0
	}
	return len(tr.current[0].Values.Values)
}

// ReadValue returns the next row-major value and true, or the
// end-of-stream sentinel (the zero Value and false) once the
// end-of-table marker has been read. The explicit bool keeps the
// sentinel from colliding with a legitimate zero-valued payload.
func (tr *TableReader) ReadValue() (value.Value, bool, error) {
	for tr.rowCur >= tr.currentRowCount() {
		more, err := tr.ReadNextTableSlice()
		if err != nil {
			return value.Value{}, false, err
		}
		if !more {
			return value.Value{}, false, nil
		}
	}
	cs := tr.current[tr.colCur]
	v := reconstructValue(cs, tr.rowCur)

	tr.colCur++
	if tr.colCur == len(tr.current) {
		tr.colCur = 0
		tr.rowCur++
	}
	return v, true, nil
}

// reconstructValue applies the sideband precedence rule: IsInvalid
// overrides everything; else a non-empty ErrorCode wraps an error
// envelope; else HasReplacedValue wraps the data value; else the raw
// data value is returned as-is.
func reconstructValue(cs section.ColumnSlice, row int) value.Value {
	kind := cs.Values.Kind
	data := cs.Values.Values[row]

	if arr, ok := cs.Property(section.IsInvalidProperty); ok && arr.Values[row].Bool() {
		return value.NewInvalid(kind)
	}
	if arr, ok := cs.Property(section.ErrorCodeProperty); ok {
		if msg := arr.Values[row].String(); msg != "" {
			return value.WrapError(kind, msg)
		}
	}
	if arr, ok := cs.Property(section.HasReplacedValueProperty); ok && arr.Values[row].Bool() {
		return value.WrapReplaced(data)
	}
	return data
}

// Values returns a single-pass, lazy row-major sequence of this
// reader's values, terminating at end-of-stream. Two concurrent
// iterations over the same reader are not supported. Check Err after
// the sequence ends to distinguish a clean end-of-stream from a failure.
func (tr *TableReader) Values() iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for {
			v, ok, err := tr.ReadValue()
			if err != nil {
				tr.lastErr = err
				return
			}
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Err returns the error, if any, that ended the most recent Values
// iteration.
func (tr *TableReader) Err() error { return tr.lastErr }

// Next reports whether another table-metadata section follows
// immediately in the stream, without consuming it. Used to detect a
// multi-table stream after a TableReader has been fully drained.
func (tr *TableReader) Next() (bool, error) {
	peek, err := tr.br.Peek(3)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return format.SectionTag(peek[2]) == format.SectionTableMetadata, nil
}

// NextTable reads the next table-metadata section from this reader's
// stream and returns a new TableReader for it, sharing the same
// buffered source so no already-read-ahead bytes are lost. It returns
// (nil, nil) when no further table follows.
func (tr *TableReader) NextTable() (*TableReader, error) {
	more, err := tr.Next()
	if err != nil || !more {
		return nil, err
	}
	md, err := section.ReadTableMetadata(tr.br)
	if err != nil {
		return nil, err
	}
	return NewTableReader(tr.br, md, nil)
}

// materialize drains tr into a fully in-memory Table.
func materialize(tr *TableReader) (*Table, error) {
	t := &Table{Metadata: tr.metadata}
	row := make([]value.Value, 0, len(tr.selected))
	for {
		v, ok, err := tr.ReadValue()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		row = append(row, v)
		if len(row) == len(tr.selected) {
			t.Rows = append(t.Rows, row)
			row = make([]value.Value, 0, len(tr.selected))
		}
	}
	return t, nil
}

// ReadTables reads source's file header and every table in the stream,
// materializing each fully in memory. It is WriteTables's counterpart
// for callers that want whole tables rather than a streaming reader.
func ReadTables(source io.Reader) ([]*Table, error) {
	if _, err := section.ReadFileHeader(source); err != nil {
		return nil, err
	}
	md, err := section.ReadTableMetadata(source)
	if err != nil {
		return nil, err
	}
	tr, err := NewTableReader(source, md, nil)
	if err != nil {
		return nil, err
	}

	var tables []*Table
	for {
		t, err := materialize(tr)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)

		next, err := tr.NextTable()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return tables, nil
		}
		tr = next
	}
}
