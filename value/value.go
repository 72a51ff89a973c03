// Package value implements the SBDF value-type system (spec component 2)
// and primitive value I/O (component 3): a single boxed sum type covering
// every standard kind plus the three non-plain envelopes, and the
// read/write/skip operations for one value or one homogeneous array of
// values.
//
// Per the source format's own design note, the write path takes typed
// inputs through the New* constructors below rather than a single
// dynamic-object type; Value itself is the boxed form the read path
// returns, modeled as a tagged union (Design Note 2: "avoid a single
// dynamic-object type... take typed inputs in strongly-typed variants").
package value

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sbdf-go/sbdf/format"
)

// Envelope is the API-level wrapper kind a Value carries. Only Plain
// values are ever written directly to the wire; Invalid, Error, and
// Replaced are demultiplexed into per-column sideband arrays by the
// table writer (spec §4.2, §4.6).
type Envelope uint8

const (
	Plain Envelope = iota
	Invalid
	ErrorEnvelope
	Replaced
)

func (e Envelope) String() string {
	switch e {
	case Plain:
		return "Plain"
	case Invalid:
		return "Invalid"
	case ErrorEnvelope:
		return "Error"
	case Replaced:
		return "Replaced"
	default:
		return "Envelope(?)"
	}
}

// Value is a boxed, kind-tagged value covering every standard SBDF kind
// plus its envelope state. Only the field matching Kind is meaningful
// except for Replaced, where the wrapped plain payload also lives in
// these same fields and eMsg is unused.
//
// Time's runtime representation is time.Duration (offset since
// midnight), not time.Time: the wire payload carries no calendar
// component, and Go's standard library has no time-of-day-only type, so
// a duration is the better fit even though DateTime/Date use time.Time.
type Value struct {
	kind     format.ValueType
	envelope Envelope

	b    bool
	i32  int32
	i64  int64
	f32  float32
	f64  float64
	t    time.Time
	d    time.Duration
	s    string
	bin  []byte
	dec  decimal.Decimal
	eMsg string
}

// Kind returns the value's declared SBDF kind.
func (v Value) Kind() format.ValueType { return v.kind }

// IsPlain, IsInvalid, IsError, IsReplaced recognize the value's envelope.
func (v Value) IsPlain() bool    { return v.envelope == Plain }
func (v Value) IsInvalid() bool  { return v.envelope == Invalid }
func (v Value) IsError() bool    { return v.envelope == ErrorEnvelope }
func (v Value) IsReplaced() bool { return v.envelope == Replaced }

// ErrorMessage returns the carried message for an Error-envelope value;
// it is empty for every other envelope.
func (v Value) ErrorMessage() string { return v.eMsg }

// Bool, Int, Long, Float, Double, DateTime, Date, Time, TimeSpan, String,
// Binary, Decimal unbox the plain (or replaced-inner) payload. Calling
// the accessor for the wrong kind returns the kind's zero value; callers
// are expected to check Kind() first, mirroring the write side's
// kind-checked add_value.
func (v Value) Bool() bool                 { return v.b }
func (v Value) Int() int32                 { return v.i32 }
func (v Value) Long() int64                { return v.i64 }
func (v Value) Float() float32             { return v.f32 }
func (v Value) Double() float64            { return v.f64 }
func (v Value) DateTime() time.Time        { return v.t }
func (v Value) Date() time.Time            { return v.t }
func (v Value) Time() time.Duration        { return v.d }
func (v Value) TimeSpan() time.Duration    { return v.d }
func (v Value) String() string             { return v.s }
func (v Value) Binary() []byte             { return v.bin }
func (v Value) Decimal() decimal.Decimal   { return v.dec }

// NewBool, NewInt, ... construct a Plain-envelope value of the named kind.
func NewBool(b bool) Value       { return Value{kind: format.Bool, b: b} }
func NewInt(i int32) Value       { return Value{kind: format.Int, i32: i} }
func NewLong(i int64) Value      { return Value{kind: format.Long, i64: i} }
func NewFloat(f float32) Value   { return Value{kind: format.Float, f32: f} }
func NewDouble(f float64) Value  { return Value{kind: format.Double, f64: f} }
func NewDateTime(t time.Time) Value { return Value{kind: format.DateTime, t: t} }
func NewDate(t time.Time) Value     { return Value{kind: format.Date, t: t} }
func NewTime(d time.Duration) Value     { return Value{kind: format.Time, d: d} }
func NewTimeSpan(d time.Duration) Value { return Value{kind: format.TimeSpan, d: d} }
func NewString(s string) Value   { return Value{kind: format.String, s: s} }
func NewBinary(b []byte) Value   { return Value{kind: format.Binary, bin: b} }
func NewDecimal(d decimal.Decimal) Value { return Value{kind: format.Decimal, dec: d} }

// NewInvalid returns the invalid (null) sentinel for kind. It is
// kind-agnostic at the API level but tagged with kind so the writer
// knows which column it was produced against.
func NewInvalid(kind format.ValueType) Value {
	v := Default(kind)
	v.envelope = Invalid
	return v
}

// WrapError returns an Error-envelope value carrying msg, tagged as kind.
func WrapError(kind format.ValueType, msg string) Value {
	v := Default(kind)
	v.envelope = ErrorEnvelope
	v.eMsg = msg
	return v
}

// WrapReplaced returns a Replaced-envelope value wrapping inner's plain
// payload. inner must itself be a Plain value of the intended kind.
func WrapReplaced(inner Value) Value {
	v := inner
	v.envelope = Replaced
	return v
}

// AsPlain returns a copy of v with its envelope forced to Plain,
// exposing a Replaced value's wrapped inner payload (or, for any other
// envelope, reinterpreting whatever payload fields are set). The table
// writer uses this to compute the data value it writes to a column's
// plain array once the envelope itself has been demultiplexed into
// sideband arrays.
func (v Value) AsPlain() Value {
	v.envelope = Plain
	v.eMsg = ""
	return v
}

// Default returns the zero value for kind per spec §4.2: false for Bool,
// 0 for numeric kinds, the minimum DateTime/Date (year 1), 0 for
// Time/TimeSpan, "" for String, an empty slice for Binary, and 0 for
// Decimal.
func Default(kind format.ValueType) Value {
	switch kind {
	case format.Bool:
		return NewBool(false)
	case format.Int:
		return NewInt(0)
	case format.Long:
		return NewLong(0)
	case format.Float:
		return NewFloat(0)
	case format.Double:
		return NewDouble(0)
	case format.DateTime:
		return NewDateTime(minDateTime)
	case format.Date:
		return NewDate(minDateTime)
	case format.Time:
		return NewTime(0)
	case format.TimeSpan:
		return NewTimeSpan(0)
	case format.String:
		return NewString("")
	case format.Binary:
		return NewBinary([]byte{})
	case format.Decimal:
		return NewDecimal(decimal.Zero)
	default:
		return Value{kind: kind}
	}
}

// minDateTime is the wire value-0 instant: 0001-01-01 00:00:00 UTC.
var minDateTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)

func (v Value) GoString() string {
	return fmt.Sprintf("value.Value{kind:%s, envelope:%s}", v.kind, v.envelope)
}

// Equal reports whether a and b carry the same kind, envelope, and
// payload. Value embeds a []byte field (Binary's payload), so it is not
// comparable with Go's == operator; this method is the supported way to
// compare two values structurally. Floats compare by IEEE-754 bit
// pattern and Decimal by ordered comparison, matching the array
// encoder's run-grouping equality rule (valuearray's RLE packer uses
// the same rule independently, scoped to its own package).
func Equal(a, b Value) bool {
	if a.kind != b.kind || a.envelope != b.envelope {
		return false
	}
	switch a.kind {
	case format.Bool:
		return a.b == b.b
	case format.Int:
		return a.i32 == b.i32
	case format.Long:
		return a.i64 == b.i64
	case format.Float:
		return math.Float32bits(a.f32) == math.Float32bits(b.f32)
	case format.Double:
		return math.Float64bits(a.f64) == math.Float64bits(b.f64)
	case format.DateTime, format.Date:
		return a.t.Equal(b.t)
	case format.Time, format.TimeSpan:
		return a.d == b.d
	case format.String:
		return a.s == b.s
	case format.Binary:
		if len(a.bin) != len(b.bin) {
			return false
		}
		for i := range a.bin {
			if a.bin[i] != b.bin[i] {
				return false
			}
		}
		return true
	case format.Decimal:
		return a.dec.Cmp(b.dec) == 0
	default:
		return true
	}
}
