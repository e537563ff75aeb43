package dataset

import (
	"math"
	"strconv"

	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Helpers over gota series. A float element built from a NaN float64 is
// not flagged as NA by gota, so every NA test goes through isNA.

func isNumerical(t series.Type) bool {
	return t == series.Int || t == series.Float
}

func isNA(s series.Series, i int) bool {
	e := s.Elem(i)
	if e.IsNA() {
		return true
	}
	return isNumerical(s.Type()) && math.IsNaN(e.Float())
}

func naMask(s series.Series) []bool {
	mask := make([]bool, s.Len())
	for i := range mask {
		mask[i] = isNA(s, i)
	}
	return mask
}

func countNA(s series.Series) int {
	n := 0
	for i := 0; i < s.Len(); i++ {
		if isNA(s, i) {
			n++
		}
	}
	return n
}

// floats returns the values of s with NA as NaN.
func floats(s series.Series) []float64 {
	out := s.Float()
	for i := range out {
		if isNA(s, i) {
			out[i] = math.NaN()
		}
	}
	return out
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// floatSeries builds a Float series whose NaN values are proper NA.
func floatSeries(name string, vals []float64) series.Series {
	recs := make([]string, len(vals))
	for i, v := range vals {
		recs[i] = formatFloat(v)
	}
	return series.New(recs, series.Float, name)
}

// labels renders every element as a category label, NA as "NaN".
func labels(s series.Series) []string {
	out := make([]string, s.Len())
	for i := range out {
		if isNA(s, i) {
			out[i] = "NaN"
			continue
		}
		out[i] = label(s.Elem(i), s.Type())
	}
	return out
}

func label(e series.Element, t series.Type) string {
	if t == series.Float {
		return formatFloat(e.Float())
	}
	return e.String()
}

// toFloat converts a user supplied value into a float.
func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidArgument, "%q is not a number", x)
		}
		return f, nil
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "%v (%T) is not a number", v, v)
	}
}

func typeName(t series.Type) string {
	return string(t)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
