package vectorstore

import (
	"fmt"
	"time"
)

// Filter restricts similarity-search candidates by metadata. A scalar value
// means equality; a Range value means a numeric range. Any other value shape
// is unsupported.
type Filter map[string]any

// Range is a numeric range predicate over a metadata field. Nil bounds are
// unconstrained.
type Range struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// Validate reports whether the filter uses only supported value shapes.
func (f Filter) Validate() error {
	for key, value := range f {
		switch value.(type) {
		case nil:
			return fmt.Errorf("filter %q: nil value", key)
		case string, bool, int, int64, float32, float64, time.Time, Range:
		default:
			return fmt.Errorf("filter %q: unsupported value type %T", key, value)
		}
	}
	return nil
}

// Matches evaluates the filter against a metadata mapping. All clauses must
// hold (conjunction).
func (f Filter) Matches(meta map[string]any) bool {
	for key, want := range f {
		got, ok := meta[key]
		if !ok {
			return false
		}
		if r, isRange := want.(Range); isRange {
			n, ok := toFloat(got)
			if !ok || !r.contains(n) {
				return false
			}
			continue
		}
		if !scalarEqual(want, got) {
			return false
		}
	}
	return true
}

func (r Range) contains(n float64) bool {
	if r.GT != nil && !(n > *r.GT) {
		return false
	}
	if r.GTE != nil && !(n >= *r.GTE) {
		return false
	}
	if r.LT != nil && !(n < *r.LT) {
		return false
	}
	if r.LTE != nil && !(n <= *r.LTE) {
		return false
	}
	return true
}

func scalarEqual(want, got any) bool {
	// Numeric values compare across int/float so that filters survive a JSON
	// round trip, which turns every number into float64.
	if wn, ok := toFloat(want); ok {
		gn, ok := toFloat(got)
		return ok && wn == gn
	}
	if wt, ok := want.(time.Time); ok {
		// Stored timestamps may have round-tripped through JSON as strings.
		switch g := got.(type) {
		case time.Time:
			return wt.Equal(g)
		case string:
			return wt.Format(time.RFC3339Nano) == g
		}
		return false
	}
	return want == got
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Gt returns a Range with an exclusive lower bound.
func Gt(v float64) Range { return Range{GT: &v} }

// Gte returns a Range with an inclusive lower bound.
func Gte(v float64) Range { return Range{GTE: &v} }

// Lt returns a Range with an exclusive upper bound.
func Lt(v float64) Range { return Range{LT: &v} }

// Lte returns a Range with an inclusive upper bound.
func Lte(v float64) Range { return Range{LTE: &v} }

// Between returns a Range inclusive on both ends.
func Between(lo, hi float64) Range { return Range{GTE: &lo, LTE: &hi} }
