package sbdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/metadata"
	"github.com/sbdf-go/sbdf/value"
)

func twoColumnMetadata(t *testing.T) *metadata.TableMetadata {
	t.Helper()
	nameCol, err := metadata.NewColumnMetadata("name", format.String)
	require.NoError(t, err)
	ageCol, err := metadata.NewColumnMetadata("age", format.Int)
	require.NoError(t, err)

	b := metadata.NewBuilder()
	require.NoError(t, b.AddColumn(nameCol))
	require.NoError(t, b.AddColumn(ageCol))
	return b.Build()
}

func TestTableWriterReaderRoundTrip(t *testing.T) {
	require := require.New(t)

	md := twoColumnMetadata(t)
	var buf bytes.Buffer

	w, err := NewTableWriter(&buf, md)
	require.NoError(err)

	rows := [][2]value.Value{
		{value.NewString("alice"), value.NewInt(30)},
		{value.NewString("bob"), value.NewInt(25)},
		{value.NewString("carol"), value.NewInt(40)},
	}
	for _, row := range rows {
		require.NoError(w.AddValue(row[0]))
		require.NoError(w.AddValue(row[1]))
	}
	require.NoError(w.WriteEndOfTable())

	_, err = ReadFileHeader(&buf)
	require.NoError(err)
	gotMD, err := ReadTableMetadata(&buf)
	require.NoError(err)
	require.Equal(2, gotMD.ColumnCount())

	tr, err := NewTableReader(&buf, gotMD, nil)
	require.NoError(err)

	var got [][2]value.Value
	for {
		name, ok, err := tr.ReadValue()
		require.NoError(err)
		if !ok {
			break
		}
		age, ok, err := tr.ReadValue()
		require.NoError(err)
		require.True(ok)
		got = append(got, [2]value.Value{name, age})
	}

	require.Len(got, 3)
	for i, row := range rows {
		require.Equal(row[0].String(), got[i][0].String())
		require.Equal(row[1].Int(), got[i][1].Int())
	}
}

func TestTableWriterReaderEnvelopes(t *testing.T) {
	require := require.New(t)

	col, err := metadata.NewColumnMetadata("score", format.Int)
	require.NoError(err)
	b := metadata.NewBuilder()
	require.NoError(b.AddColumn(col))
	md := b.Build()

	var buf bytes.Buffer
	w, err := NewTableWriter(&buf, md)
	require.NoError(err)

	require.NoError(w.AddValue(value.NewInt(1)))
	require.NoError(w.AddValue(value.NewInvalid(format.Int)))
	require.NoError(w.AddValue(value.WrapError(format.Int, "parse failure")))
	require.NoError(w.AddValue(value.WrapReplaced(value.NewInt(99))))
	require.NoError(w.WriteEndOfTable())

	_, err = ReadFileHeader(&buf)
	require.NoError(err)
	gotMD, err := ReadTableMetadata(&buf)
	require.NoError(err)

	tr, err := NewTableReader(&buf, gotMD, nil)
	require.NoError(err)

	var got []value.Value
	for {
		v, ok, err := tr.ReadValue()
		require.NoError(err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Len(got, 4)
	require.True(got[0].IsPlain())
	require.Equal(int32(1), got[0].Int())
	require.True(got[1].IsInvalid())
	require.True(got[2].IsError())
	require.Equal("parse failure", got[2].ErrorMessage())
	require.True(got[3].IsReplaced())
	require.Equal(int32(99), got[3].Int())
}

func TestWriteTablesReadTablesMultiTable(t *testing.T) {
	require := require.New(t)

	md1 := twoColumnMetadata(t)
	col, err := metadata.NewColumnMetadata("flag", format.Bool)
	require.NoError(err)
	b2 := metadata.NewBuilder()
	require.NoError(b2.AddColumn(col))
	md2 := b2.Build()

	t1 := &Table{Metadata: md1, Rows: [][]value.Value{
		{value.NewString("x"), value.NewInt(1)},
	}}
	t2 := &Table{Metadata: md2, Rows: [][]value.Value{
		{value.NewBool(true)},
		{value.NewBool(false)},
	}}

	var buf bytes.Buffer
	require.NoError(WriteTables(&buf, t1, t2))

	tables, err := ReadTables(&buf)
	require.NoError(err)
	require.Len(tables, 2)
	require.Equal(1, tables[0].RowCount())
	require.Equal(2, tables[1].RowCount())
	require.Equal(int32(1), tables[0].Row(0)[1].Int())
	require.Equal(true, tables[1].Row(0)[0].Bool())
	require.Equal(false, tables[1].Row(1)[0].Bool())
}
