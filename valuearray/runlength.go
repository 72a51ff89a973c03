package valuearray

import (
	"io"
	"math"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/internal/bytesx"
	"github.com/sbdf-go/sbdf/value"
)

// writeRunLength emits i32 total_count, i32 occ_len, occ_len occurrence
// bytes (each run_length-1, so runs are 1..256), then the distinct
// values as a plain array.
//
// A run is capped at 256 regardless of how many more equal values
// follow: the 257th equal value starts a new run, so 257 equal values
// encode as the occurrence bytes 255, 0 (a run of 256, then a run of 1).
// This is peer-observable behavior to preserve exactly.
func writeRunLength(w io.Writer, kind format.ValueType, values []value.Value) error {
	var occurrences []byte
	var distinct []value.Value

	i := 0
	for i < len(values) {
		runLen := 1
		j := i + 1
		for j < len(values) && runLen < 256 && valuesEqualForRLE(kind, values[i], values[j]) {
			runLen++
			j++
		}
		occurrences = append(occurrences, byte(runLen-1))
		distinct = append(distinct, values[i])
		i = j
	}

	if err := bytesx.WriteInt32(w, int32(len(values))); err != nil {
		return err
	}
	if err := bytesx.WriteInt32(w, int32(len(occurrences))); err != nil {
		return err
	}
	if _, err := w.Write(occurrences); err != nil {
		return err
	}
	return value.WriteArray(w, kind, distinct)
}

func readRunLength(r io.Reader, kind format.ValueType) ([]value.Value, error) {
	totalCount, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	occLen, err := bytesx.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if totalCount < 0 || occLen < 0 {
		return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "negative run-length count", nil)
	}
	occurrences := make([]byte, occLen)
	if err := bytesx.ReadFull(r, occurrences); err != nil {
		return nil, err
	}
	distinct, err := value.ReadArray(r, kind)
	if err != nil {
		return nil, err
	}
	if len(distinct) != len(occurrences) {
		return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "run-length distinct count does not match occurrence count", nil)
	}

	out := make([]value.Value, 0, totalCount)
	for idx, occ := range occurrences {
		runLen := int(occ) + 1
		for k := 0; k < runLen; k++ {
			out = append(out, distinct[idx])
		}
	}
	if int32(len(out)) != totalCount {
		return nil, errs.NewFormatError(errs.KindUnexpectedEOF, "run-length total does not match sum of occurrences", nil)
	}
	return out, nil
}

func skipRunLength(r io.Reader, kind format.ValueType) error {
	if _, err := bytesx.ReadInt32(r); err != nil { // total_count
		return err
	}
	occLen, err := bytesx.ReadInt32(r)
	if err != nil {
		return err
	}
	if occLen < 0 {
		return errs.NewFormatError(errs.KindUnexpectedEOF, "negative occurrence length", nil)
	}
	if _, err := io.CopyN(io.Discard, r, int64(occLen)); err != nil {
		return err
	}
	return value.SkipArray(r, kind)
}

// valuesEqualForRLE implements the per-kind run-grouping equality rule:
// exact bitwise for integers and timestamps, ordered comparison (not
// Equal) for decimal so positive and negative zero are not split into
// separate runs, and strict bit-pattern compare for floats so -0.0/+0.0
// and distinct NaN payloads form distinct runs.
func valuesEqualForRLE(kind format.ValueType, a, b value.Value) bool {
	switch kind {
	case format.Bool:
		return a.Bool() == b.Bool()
	case format.Int:
		return a.Int() == b.Int()
	case format.Long:
		return a.Long() == b.Long()
	case format.Float:
		return math.Float32bits(a.Float()) == math.Float32bits(b.Float())
	case format.Double:
		return math.Float64bits(a.Double()) == math.Float64bits(b.Double())
	case format.DateTime, format.Date:
		return a.DateTime().Equal(b.DateTime())
	case format.Time, format.TimeSpan:
		return a.Time() == b.Time()
	case format.Decimal:
		return a.Decimal().Cmp(b.Decimal()) == 0
	case format.String:
		return a.String() == b.String()
	default:
		return false
	}
}
