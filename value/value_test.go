package value

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sbdf-go/sbdf/format"
)

func TestValueIORoundTrip(t *testing.T) {
	require := require.New(t)

	cases := []Value{
		NewBool(true),
		NewBool(false),
		NewInt(-42),
		NewLong(1 << 40),
		NewFloat(3.5),
		NewDouble(-2.25),
		NewDateTime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)),
		NewDate(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)),
		NewTime(3 * time.Hour),
		NewTimeSpan(-90 * time.Minute),
		NewString("hello, sbdf"),
		NewBinary([]byte{0x01, 0x02, 0x03}),
		NewDecimal(decimal.New(31415, -4)),
	}

	for _, v := range cases {
		var buf bytes.Buffer
		require.NoError(WriteValue(&buf, v))

		got, err := ReadValue(&buf, v.Kind())
		require.NoError(err)
		require.True(Equal(v, got), "round-trip mismatch for kind %s", v.Kind())
	}
}

func TestDateTimeBeforeMinimumIsRejected(t *testing.T) {
	require := require.New(t)

	early := NewDateTime(time.Date(1582, 12, 31, 0, 0, 0, 0, time.UTC))
	var buf bytes.Buffer
	err := WriteValue(&buf, early)
	require.Error(err)
}

func TestTimeNormalizesNegativeDuration(t *testing.T) {
	require := require.New(t)

	v := NewTime(-1 * time.Hour)
	var buf bytes.Buffer
	require.NoError(WriteValue(&buf, v))

	got, err := ReadValue(&buf, format.Time)
	require.NoError(err)
	require.Equal(23*time.Hour, got.Time())
}

func TestSkipValueAdvancesPastPayload(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	require.NoError(WriteValue(&buf, NewString("skip me")))
	require.NoError(WriteValue(&buf, NewInt(7)))

	require.NoError(SkipValue(&buf, format.String))
	got, err := ReadValue(&buf, format.Int)
	require.NoError(err)
	require.Equal(int32(7), got.Int())
}

func TestArrayRoundTripSimpleAndPacked(t *testing.T) {
	require := require.New(t)

	ints := []Value{NewInt(1), NewInt(2), NewInt(3)}
	var intBuf bytes.Buffer
	require.NoError(WriteArray(&intBuf, format.Int, ints))
	gotInts, err := ReadArray(&intBuf, format.Int)
	require.NoError(err)
	require.Len(gotInts, 3)
	for i := range ints {
		require.True(Equal(ints[i], gotInts[i]))
	}

	strs := []Value{NewString("a"), NewString("bb"), NewString("")}
	var strBuf bytes.Buffer
	require.NoError(WriteArray(&strBuf, format.String, strs))
	gotStrs, err := ReadArray(&strBuf, format.String)
	require.NoError(err)
	require.Len(gotStrs, 3)
	for i := range strs {
		require.True(Equal(strs[i], gotStrs[i]))
	}
}

func TestDefaultPerKind(t *testing.T) {
	require := require.New(t)

	require.Equal(false, Default(format.Bool).Bool())
	require.Equal("", Default(format.String).String())
	require.Equal(decimal.Zero.Cmp(Default(format.Decimal).Decimal()), 0)
}

func TestInvalidErrorReplacedEnvelopes(t *testing.T) {
	require := require.New(t)

	inv := NewInvalid(format.Int)
	require.True(inv.IsInvalid())
	require.False(inv.IsPlain())

	e := WrapError(format.Int, "boom")
	require.True(e.IsError())
	require.Equal("boom", e.ErrorMessage())

	plain := NewInt(9)
	repl := WrapReplaced(plain)
	require.True(repl.IsReplaced())
	require.Equal(int32(9), repl.AsPlain().Int())
	require.True(repl.AsPlain().IsPlain())
}
