package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/value"
)

func TestColumnMetadataReservedProperties(t *testing.T) {
	require := require.New(t)

	cm, err := NewColumnMetadata("price", format.Double)
	require.NoError(err)
	require.Equal("price", cm.Name())
	require.Equal(format.Double, cm.ValueKind())
	require.Empty(cm.AssignedProperties())
}

func TestColumnMetadataRejectsOverridingReserved(t *testing.T) {
	require := require.New(t)

	nameVal := value.NewString("oops")
	extra, err := NewProperty(NameProperty, format.String, &nameVal, nil)
	require.NoError(err)

	_, err = NewColumnMetadata("price", format.Double, extra)
	require.Error(err)
}

func TestSealedCollectionRejectsAdd(t *testing.T) {
	require := require.New(t)

	c := NewCollection()
	c.Seal()
	require.True(c.Sealed())

	nameVal := value.NewString("x")
	p, err := NewProperty("x", format.String, &nameVal, nil)
	require.NoError(err)
	require.Error(c.Add(p))
}

func TestBuilderRejectsConflictingSharedProperty(t *testing.T) {
	require := require.New(t)

	unitA := value.NewString("USD")
	propA, err := NewProperty("Unit", format.String, &unitA, nil)
	require.NoError(err)
	colA, err := NewColumnMetadata("price", format.Double, propA)
	require.NoError(err)

	unitB := value.NewInt(1) // conflicting kind for the same property name
	propB, err := NewProperty("Unit", format.Int, &unitB, nil)
	require.NoError(err)
	colB, err := NewColumnMetadata("qty", format.Int, propB)
	require.NoError(err)

	b := NewBuilder()
	require.NoError(b.AddColumn(colA))
	require.Error(b.AddColumn(colB))
}

func TestBuilderAcceptsConsistentSharedProperty(t *testing.T) {
	require := require.New(t)

	unitA := value.NewString("USD")
	propA, err := NewProperty("Unit", format.String, &unitA, nil)
	require.NoError(err)
	colA, err := NewColumnMetadata("price", format.Double, propA)
	require.NoError(err)

	unitB := value.NewString("USD")
	propB, err := NewProperty("Unit", format.String, &unitB, nil)
	require.NoError(err)
	colB, err := NewColumnMetadata("cost", format.Double, propB)
	require.NoError(err)

	b := NewBuilder()
	require.NoError(b.AddColumn(colA))
	require.NoError(b.AddColumn(colB))

	tm := b.Build()
	require.Equal(2, tm.ColumnCount())
}
