// Package format defines the closed, on-wire tag sets shared by every
// other SBDF package: value kinds (§3/§4.2 of the format) and array
// encoding ids (§4.4). Both are single bytes so they round-trip through
// a plain switch with no allocation.
package format

import "fmt"

// ValueType is the single-byte kind tag written for every column,
// metadata property, and array in an SBDF stream.
type ValueType uint8

const (
	Unknown     ValueType = 0x00 // sentinel; never serialized
	Bool        ValueType = 0x01
	Int         ValueType = 0x02
	Long        ValueType = 0x03
	Float       ValueType = 0x04
	Double      ValueType = 0x05
	DateTime    ValueType = 0x06
	Date        ValueType = 0x07
	Time        ValueType = 0x08
	TimeSpan    ValueType = 0x09
	String      ValueType = 0x0A
	Binary      ValueType = 0x0C
	Decimal     ValueType = 0x0D
	UserDefined ValueType = 0xFF // reserved; the core never writes it
)

// String implements fmt.Stringer.
func (v ValueType) String() string {
	switch v {
	case Unknown:
		return "Unknown"
	case Bool:
		return "Bool"
	case Int:
		return "Int"
	case Long:
		return "Long"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case DateTime:
		return "DateTime"
	case Date:
		return "Date"
	case Time:
		return "Time"
	case TimeSpan:
		return "TimeSpan"
	case String:
		return "String"
	case Binary:
		return "Binary"
	case Decimal:
		return "Decimal"
	case UserDefined:
		return "UserDefined"
	default:
		return fmt.Sprintf("ValueType(0x%02X)", uint8(v))
	}
}

// IsValid reports whether v is one of the standard, writable kinds.
// UserDefined is a known tag but is never writable by this core, so it
// is excluded.
func (v ValueType) IsValid() bool {
	switch v {
	case Bool, Int, Long, Float, Double, DateTime, Date, Time, TimeSpan, String, Binary, Decimal:
		return true
	default:
		return false
	}
}

// IsSimple reports whether v has a fixed on-wire size (everything except
// the two array kinds, String and Binary).
func (v ValueType) IsSimple() bool {
	switch v {
	case Bool, Int, Long, Float, Double, DateTime, Date, Time, TimeSpan, Decimal:
		return true
	default:
		return false
	}
}

// IsArray reports whether v is a variable-length array kind.
func (v ValueType) IsArray() bool {
	return v == String || v == Binary
}

// FixedSize returns the on-wire byte width of a single value of a simple
// kind, or 0 for array kinds and Unknown/UserDefined.
func (v ValueType) FixedSize() int {
	switch v {
	case Bool:
		return 1
	case Int, Float:
		return 4
	case Long, Double, DateTime, Date, Time, TimeSpan:
		return 8
	case Decimal:
		return 16
	default:
		return 0
	}
}

// EncodingID is the single-byte tag at the start of every self-describing
// ValueArray payload (§4.4).
type EncodingID uint8

const (
	EncodingPlain     EncodingID = 0x01
	EncodingRunLength EncodingID = 0x02
	EncodingPackedBit EncodingID = 0x03
)

func (e EncodingID) String() string {
	switch e {
	case EncodingPlain:
		return "Plain"
	case EncodingRunLength:
		return "RunLength"
	case EncodingPackedBit:
		return "PackedBit"
	default:
		return fmt.Sprintf("EncodingID(0x%02X)", uint8(e))
	}
}

// SectionTag identifies the kind of section following a magic number (§4.5).
type SectionTag uint8

const (
	SectionFileHeader     SectionTag = 0x01
	SectionTableMetadata  SectionTag = 0x02
	SectionTableSlice     SectionTag = 0x03
	SectionColumnSlice    SectionTag = 0x04
	SectionTableEnd       SectionTag = 0x05
)

func (t SectionTag) String() string {
	switch t {
	case SectionFileHeader:
		return "FileHeader"
	case SectionTableMetadata:
		return "TableMetadata"
	case SectionTableSlice:
		return "TableSlice"
	case SectionColumnSlice:
		return "ColumnSlice"
	case SectionTableEnd:
		return "TableEnd"
	default:
		return fmt.Sprintf("SectionTag(0x%02X)", uint8(t))
	}
}
