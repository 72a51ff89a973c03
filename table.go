package sbdf

import (
	"github.com/sbdf-go/sbdf/metadata"
	"github.com/sbdf-go/sbdf/value"
)

// Table is a fully materialized in-memory table: its schema plus every
// row, row-major. It exists for callers that want to build or consume a
// whole table at once (WriteTables, ReadTables) rather than stream row
// by row through a TableWriter/TableReader.
type Table struct {
	Metadata *metadata.TableMetadata
	Rows     [][]value.Value
}

// Row returns the i'th row.
func (t *Table) Row(i int) []value.Value { return t.Rows[i] }

// RowCount returns the number of materialized rows.
func (t *Table) RowCount() int { return len(t.Rows) }
