package valuearray

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/value"
)

func ints(vals ...int32) []value.Value {
	out := make([]value.Value, len(vals))
	for i, v := range vals {
		out[i] = value.NewInt(v)
	}
	return out
}

func TestPlainRoundTrip(t *testing.T) {
	require := require.New(t)

	a := Plain(format.Int, ints(1, 2, 3, 4))
	var buf bytes.Buffer
	require.NoError(Write(&buf, a))

	got, err := Read(&buf)
	require.NoError(err)
	require.Equal(format.EncodingPlain, got.Encoding)
	require.Len(got.Values, 4)
}

func TestRunLengthRoundTripEighteenElements(t *testing.T) {
	require := require.New(t)

	// 18 ints: three runs (5x1, 8x2, 5x3) exercising multiple distinct
	// values and run boundaries.
	vals := ints(1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 3)
	a := RunLength(format.Int, vals)

	var buf bytes.Buffer
	require.NoError(Write(&buf, a))

	got, err := Read(&buf)
	require.NoError(err)
	require.Equal(format.EncodingRunLength, got.Encoding)
	require.Len(got.Values, 18)
	for i, v := range vals {
		require.Equal(v.Int(), got.Values[i].Int())
	}
}

func TestRunLength257RunSplitsAtBoundary(t *testing.T) {
	require := require.New(t)

	vals := make([]value.Value, 257)
	for i := range vals {
		vals[i] = value.NewInt(9)
	}
	a := RunLength(format.Int, vals)

	var buf bytes.Buffer
	require.NoError(Write(&buf, a))
	// encoding, kind, total_count (257), then occ_len 2 and occurrences 255, 0.
	require.Equal([]byte{0x02, 0x00, 0x00, 0x00, 0xFF, 0x00}, buf.Bytes()[6:12])

	got, err := Read(&buf)
	require.NoError(err)
	require.Len(got.Values, 257)
	for _, v := range got.Values {
		require.Equal(int32(9), v.Int())
	}
}

func TestPackedBitRoundTrip203Elements(t *testing.T) {
	require := require.New(t)

	vals := make([]value.Value, 203)
	for i := range vals {
		vals[i] = value.NewBool(i%3 == 0)
	}
	a := PackedBit(vals)

	var buf bytes.Buffer
	require.NoError(Write(&buf, a))

	got, err := Read(&buf)
	require.NoError(err)
	require.Equal(format.EncodingPackedBit, got.Encoding)
	require.Len(got.Values, 203)
	for i, v := range vals {
		require.Equal(v.Bool(), got.Values[i].Bool(), "mismatch at index %d", i)
	}
}

func TestSkipAdvancesPastPayload(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	require.NoError(Write(&buf, Plain(format.Int, ints(1, 2, 3))))
	require.NoError(Write(&buf, Plain(format.String, []value.Value{value.NewString("next")})))

	require.NoError(Skip(&buf))
	got, err := Read(&buf)
	require.NoError(err)
	require.Equal("next", got.Values[0].String())
}

func TestDefaultEncodingBoolIsPackedBit(t *testing.T) {
	require := require.New(t)

	enc, err := DefaultEncoding(format.Bool)
	require.NoError(err)
	require.Equal(format.EncodingPackedBit, enc)

	enc, err = DefaultEncoding(format.Int)
	require.NoError(err)
	require.Equal(format.EncodingPlain, enc)
}
