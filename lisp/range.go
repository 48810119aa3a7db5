// Copyright © 2024 The ELPS authors

package lisp

import (
	"errors"
	"math"
)

// RangeData is a lazy sequence of numbers from Start up to, but not
// including, End.  Step is always positive and the direction of iteration is
// determined by the order of Start and End.
type RangeData struct {
	Start float64
	End   float64
	Step  float64
}

// NewRange returns a range from start to end.  The sign of step is ignored.
func NewRange(start, end, step float64) (*RangeData, error) {
	step = math.Abs(step)
	if step == 0 || math.IsNaN(step) {
		return nil, errors.New("range step must be non-zero")
	}
	if math.IsInf(start, 0) || math.IsInf(end, 0) {
		return nil, errors.New("range bounds must be finite")
	}
	return &RangeData{Start: start, End: end, Step: step}, nil
}

// RangeValue returns an LVal for r.
func RangeValue(r *RangeData) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LRange,
		Native: r,
	}
}

// Len returns the number of values r produces.
func (r *RangeData) Len() int {
	n := math.Ceil(math.Abs(r.End-r.Start) / r.Step)
	if n < 0 || math.IsNaN(n) {
		return 0
	}
	return int(n)
}

// Each calls fn with every value in r until fn returns false.
func (r *RangeData) Each(fn func(i int, x float64) bool) {
	sign := 1.0
	if r.End < r.Start {
		sign = -1.0
	}
	n := r.Len()
	for i := 0; i < n; i++ {
		if !fn(i, r.Start+sign*float64(i)*r.Step) {
			return
		}
	}
}

// Values returns the numbers in r as lisp values.
func (r *RangeData) Values() []*LVal {
	vals := make([]*LVal, 0, r.Len())
	r.Each(func(_ int, x float64) bool {
		vals = append(vals, Number(x))
		return true
	})
	return vals
}
