package crossval

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// agreeTolerance is the relative difference under which two numbers count
// as the same value.
const agreeTolerance = 0.05

// ValuesAgree reports whether two observed values corroborate each other.
// Two absent values agree; an absent value never agrees with a present one.
// Strings agree on normalized equality, numbers within 5% relative
// difference, booleans on equality, and arrays as multisets of agreeing
// elements. Mismatched types never agree.
func ValuesAgree(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, ok := asFloat(a); ok {
		bf, bok := asFloat(b)
		if !bok {
			return false
		}
		return numbersAgree(af, bf)
	}

	switch av := a.(type) {
	case string:
		bs, ok := b.(string)
		if !ok {
			return false
		}
		return normalizeString(av) == normalizeString(bs)
	case bool:
		bb, ok := b.(bool)
		if !ok {
			return false
		}
		return av == bb
	}

	if as, ok := asSlice(a); ok {
		bs, bok := asSlice(b)
		if !bok {
			return false
		}
		return slicesAgree(as, bs)
	}

	return false
}

// numbersAgree applies the relative tolerance against the average of the
// two values. A zero average only agrees on exact equality.
func numbersAgree(a, b float64) bool {
	if a == b {
		return true
	}
	denom := math.Abs(a+b) / 2
	if denom == 0 {
		return false
	}
	return math.Abs(a-b)/denom <= agreeTolerance
}

// slicesAgree matches elements as a multiset: every element of a must pair
// with a distinct agreeing element of b. Order is irrelevant.
func slicesAgree(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		matched := false
		for i, bv := range b {
			if used[i] {
				continue
			}
			if ValuesAgree(av, bv) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// normalizeString canonicalizes a string for comparison: NFKC
// normalization, lowercase, trimmed, inner whitespace collapsed.
func normalizeString(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// asFloat widens any numeric kind to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// asSlice widens common slice kinds to []any.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}
