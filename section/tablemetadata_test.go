package section

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/metadata"
	"github.com/sbdf-go/sbdf/value"
)

// TestTableMetadataRoundTripPreservesColumnPropertyOrder guards against a
// regression where ReadTableMetadata rebuilt a column's non-reserved
// properties by ranging over a map keyed by name, scrambling the order
// Collection documents as preserved on iteration and on wire. Each column
// here carries two custom properties so a single read/decode/re-encode
// cycle has something to scramble if the bug returns.
func TestTableMetadataRoundTripPreservesColumnPropertyOrder(t *testing.T) {
	require := require.New(t)

	unit := value.NewString("USD")
	unitProp, err := metadata.NewProperty("Unit", format.String, &unit, nil)
	require.NoError(err)
	precision := value.NewInt(2)
	precisionProp, err := metadata.NewProperty("Precision", format.Int, &precision, nil)
	require.NoError(err)
	priceCol, err := metadata.NewColumnMetadata("price", format.Double, unitProp, precisionProp)
	require.NoError(err)

	source := value.NewString("import")
	sourceProp, err := metadata.NewProperty("Source", format.String, &source, nil)
	require.NoError(err)
	revision := value.NewInt(7)
	revisionProp, err := metadata.NewProperty("Revision", format.Int, &revision, nil)
	require.NoError(err)
	qtyCol, err := metadata.NewColumnMetadata("qty", format.Int, sourceProp, revisionProp)
	require.NoError(err)

	b := metadata.NewBuilder()
	require.NoError(b.AddColumn(priceCol))
	require.NoError(b.AddColumn(qtyCol))
	tm := b.Build()

	var buf bytes.Buffer
	require.NoError(WriteTableMetadata(&buf, tm))

	for i := 0; i < 5; i++ {
		got, err := ReadTableMetadata(bytes.NewReader(buf.Bytes()))
		require.NoError(err)
		require.Equal(2, got.ColumnCount())

		gotPrice := got.Columns()[0].AssignedProperties()
		require.Len(gotPrice, 2)
		require.Equal([]string{"Unit", "Precision"}, []string{gotPrice[0].Name, gotPrice[1].Name})

		gotQty := got.Columns()[1].AssignedProperties()
		require.Len(gotQty, 2)
		require.Equal([]string{"Source", "Revision"}, []string{gotQty[0].Name, gotQty[1].Name})

		var rebuf bytes.Buffer
		require.NoError(WriteTableMetadata(&rebuf, got))
		require.Equal(buf.Bytes(), rebuf.Bytes())
	}
}
