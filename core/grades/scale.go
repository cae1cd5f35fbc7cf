// Package grades maps letter grades to GPA point values.
package grades

import (
	"math"
	"strings"
)

// Pass contributes no numeric value and is excluded from averaging;
// Fail counts as 0 like an F.
const (
	Pass = "Pass"
	Fail = "Fail"
)

var scale = map[string]float64{
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"D-": 0.7,
	"F":  0,
	Fail: 0,
}

// Points returns the GPA contribution for a letter grade. ok is false for
// Pass, blank and unknown grades, all of which are excluded from averaging.
func Points(grade string) (pts float64, ok bool) {
	g := strings.TrimSpace(grade)
	if g == "" || g == Pass {
		return 0, false
	}
	pts, ok = scale[g]
	return pts, ok
}

// Known reports whether the grade is part of the scale, Pass included.
func Known(grade string) bool {
	g := strings.TrimSpace(grade)
	if g == Pass {
		return true
	}
	_, ok := scale[g]
	return ok
}

// Average computes the arithmetic mean of all contributing grades, rounded to
// 2 decimal places, along with the number of graded entries. ok is false when
// no grade contributes.
func Average(grades []string) (avg float64, graded int, ok bool) {
	var total float64
	for _, grade := range grades {
		pts, contributes := Points(grade)
		if !contributes {
			continue
		}
		total += pts
		graded++
	}
	if graded == 0 {
		return 0, 0, false
	}
	return math.Round(total/float64(graded)*100) / 100, graded, true
}
