package metadata

import (
	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/value"
)

// Builder accumulates table properties and columns, then seals them into
// an immutable TableMetadata.
type Builder struct {
	properties *Collection
	columns    []*ColumnMetadata
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{properties: NewCollection()}
}

// AddProperty adds a table-level property to the builder whose kind is
// v's kind, wrapping v as the property's Value with no default. Use
// AddTypedProperty when a default is needed.
func (b *Builder) AddProperty(name string, v value.Value) error {
	p, err := NewProperty(name, v.Kind(), &v, nil)
	if err != nil {
		return err
	}
	return b.properties.Add(p)
}

// AddTypedProperty adds a fully-formed table-level property.
func (b *Builder) AddTypedProperty(p Property) error {
	return b.properties.Add(p)
}

// AddColumn appends col to the table, after checking that any property
// name col shares with an already-added column carries the same kind
// and default on both. A mismatch fails the build immediately per the
// writer invariant (spec §4.5): a shared property name across columns
// must mean the same thing everywhere.
func (b *Builder) AddColumn(col *ColumnMetadata) error {
	for _, existing := range b.columns {
		if err := checkSharedProperties(existing, col); err != nil {
			return err
		}
	}
	b.columns = append(b.columns, col)
	return nil
}

func checkSharedProperties(a, b *ColumnMetadata) error {
	for _, pa := range a.Collection().Properties() {
		pb, ok := b.Collection().Get(pa.Name)
		if !ok {
			continue
		}
		if pa.Kind != pb.Kind {
			return errs.NewInvalidUsageError(errs.KindPropertyConflict, "conflicting kind for shared property: "+pa.Name, nil)
		}
		if !defaultsEqual(pa.Default, pb.Default) {
			return errs.NewInvalidUsageError(errs.KindPropertyConflict, "conflicting default for shared property: "+pa.Name, nil)
		}
	}
	return nil
}

func defaultsEqual(a, b *value.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return value.Equal(*a, *b)
}

// Build seals the table property collection and every column's
// collection (columns are already sealed by NewColumnMetadata) and
// returns the immutable TableMetadata.
func (b *Builder) Build() *TableMetadata {
	b.properties.Seal()
	return &TableMetadata{properties: b.properties, columns: b.columns}
}
