package decimal128

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sbdf-go/sbdf/errs"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	require := require.New(t)

	cases := []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(1),
		decimal.NewFromInt(-1),
		decimal.NewFromFloat(3.14159),
		decimal.NewFromFloat(-2.5),
		decimal.New(123456789, -3),
		decimal.New(-123456789, 5),
	}

	for _, d := range cases {
		buf := make([]byte, Size)
		require.NoError(Encode(buf, d))

		got, err := Decode(buf)
		require.NoError(err)
		require.Zero(got.Cmp(d), "round-trip mismatch for %s: got %s", d, got)
	}
}

func TestEncodeRejectsOverflow(t *testing.T) {
	require := require.New(t)

	huge := decimal.RequireFromString("1" + repeat("0", 40))
	buf := make([]byte, Size)
	err := Encode(buf, huge)
	require.Error(err)
	require.True(errors.Is(err, errs.ErrDecimalOverflow))
}

func TestDecodeRejectsReservedNaN(t *testing.T) {
	require := require.New(t)

	buf := make([]byte, Size)
	buf[15] = 0x60 | 0x1F // top2 == 3 (combination bits set), biased exponent all-ones region
	buf[14] = 0xFF
	buf[13] = 0x80

	_, err := Decode(buf)
	require.Error(err)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
