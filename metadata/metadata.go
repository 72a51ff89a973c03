// Package metadata implements the SBDF metadata layer (spec component
// 5): named/typed property collections for tables and columns, with a
// builder to immutable-collection transition.
package metadata

import (
	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/value"
)

// Reserved column property names, always present on every ColumnMetadata.
const (
	NameProperty     = "Name"
	DataTypeProperty = "DataType"
)

// Property is a single named, typed metadata entry. Value and Default
// are optional (either may be absent independent of the other); when
// present, both must match Kind. Properties are immutable once
// constructed.
type Property struct {
	Name    string
	Kind    format.ValueType
	Value   *value.Value
	Default *value.Value
}

// NewProperty validates name, kind, and the optional value/default
// against each other before returning a Property.
func NewProperty(name string, kind format.ValueType, val, def *value.Value) (Property, error) {
	if name == "" {
		return Property{}, errs.NewInvalidUsageError(errs.KindNilOrEmptyArgument, "property name must be non-empty", nil)
	}
	if val != nil && val.Kind() != kind {
		return Property{}, errs.NewInvalidUsageError(errs.KindKindMismatch, "property value kind mismatch", nil)
	}
	if def != nil && def.Kind() != kind {
		return Property{}, errs.NewInvalidUsageError(errs.KindKindMismatch, "property default kind mismatch", nil)
	}
	return Property{Name: name, Kind: kind, Value: val, Default: def}, nil
}

// Collection is an ordered, name-unique property map with a
// mutable/sealed state flag. Insertion order is preserved on iteration
// and on wire.
type Collection struct {
	order  []string
	byName map[string]Property
	sealed bool
}

// NewCollection returns an empty, mutable Collection.
func NewCollection() *Collection {
	return &Collection{byName: make(map[string]Property)}
}

// Add inserts p, failing if the collection is sealed or already has a
// property of that name.
func (c *Collection) Add(p Property) error {
	if c.sealed {
		return errs.NewInvalidUsageError(errs.KindSealedMutation, "cannot add property to sealed collection", nil)
	}
	if _, exists := c.byName[p.Name]; exists {
		return errs.NewInvalidUsageError(errs.KindDuplicateProperty, "duplicate property name: "+p.Name, nil)
	}
	c.byName[p.Name] = p
	c.order = append(c.order, p.Name)
	return nil
}

// Seal marks the collection immutable; further Add calls fail.
func (c *Collection) Seal() { c.sealed = true }

// Sealed reports whether the collection has been sealed.
func (c *Collection) Sealed() bool { return c.sealed }

// Get looks up a property by name.
func (c *Collection) Get(name string) (Property, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Names returns property names in insertion order.
func (c *Collection) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Properties returns properties in insertion order.
func (c *Collection) Properties() []Property {
	out := make([]Property, len(c.order))
	for i, name := range c.order {
		out[i] = c.byName[name]
	}
	return out
}

// Len reports the number of properties in the collection.
func (c *Collection) Len() int { return len(c.order) }

// ColumnMetadata is a sealed property Collection for one column. It
// always carries the reserved Name (String) and DataType (Binary)
// properties; AssignedProperties excludes both, exposing only
// caller-added properties.
type ColumnMetadata struct {
	collection *Collection
}

// NewColumnMetadata builds a sealed ColumnMetadata for a column named
// name with value kind kind, plus any additional properties.
func NewColumnMetadata(name string, kind format.ValueType, extra ...Property) (*ColumnMetadata, error) {
	if name == "" {
		return nil, errs.NewInvalidUsageError(errs.KindNilOrEmptyArgument, "column name must be non-empty", nil)
	}
	if !kind.IsValid() {
		return nil, errs.NewInvalidUsageError(errs.KindKindMismatch, "column kind must be a standard writable kind", nil)
	}

	c := NewCollection()
	nameVal := value.NewString(name)
	if err := c.Add(Property{Name: NameProperty, Kind: format.String, Value: &nameVal}); err != nil {
		return nil, err
	}
	dataTypeVal := value.NewBinary([]byte{byte(kind)})
	if err := c.Add(Property{Name: DataTypeProperty, Kind: format.Binary, Value: &dataTypeVal}); err != nil {
		return nil, err
	}
	for _, p := range extra {
		if p.Name == NameProperty || p.Name == DataTypeProperty {
			return nil, errs.NewInvalidUsageError(errs.KindDuplicateProperty, "cannot override reserved property: "+p.Name, nil)
		}
		if err := c.Add(p); err != nil {
			return nil, err
		}
	}
	c.Seal()
	return &ColumnMetadata{collection: c}, nil
}

// Name returns the column's declared name.
func (cm *ColumnMetadata) Name() string {
	p, _ := cm.collection.Get(NameProperty)
	return p.Value.String()
}

// ValueKind returns the column's declared value kind, decoded from the
// DataType property's single byte.
func (cm *ColumnMetadata) ValueKind() format.ValueType {
	p, _ := cm.collection.Get(DataTypeProperty)
	b := p.Value.Binary()
	if len(b) == 0 {
		return format.Unknown
	}
	return format.ValueType(b[0])
}

// AssignedProperties returns every property on this column except the
// reserved Name and DataType.
func (cm *ColumnMetadata) AssignedProperties() []Property {
	var out []Property
	for _, p := range cm.collection.Properties() {
		if p.Name == NameProperty || p.Name == DataTypeProperty {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Collection exposes the underlying sealed property collection, e.g.
// for the section codec to serialize every property uniformly.
func (cm *ColumnMetadata) Collection() *Collection { return cm.collection }

// TableMetadata is an immutable property Collection plus an ordered
// sequence of immutable ColumnMetadata. Column order is significant and
// must match slice column order on wire.
type TableMetadata struct {
	properties *Collection
	columns    []*ColumnMetadata
}

// Properties returns the table-level property collection.
func (t *TableMetadata) Properties() *Collection { return t.properties }

// Columns returns the table's columns in declared order.
func (t *TableMetadata) Columns() []*ColumnMetadata { return t.columns }

// ColumnCount returns the number of columns.
func (t *TableMetadata) ColumnCount() int { return len(t.columns) }
