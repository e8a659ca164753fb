package mathutil

import (
	"golang.org/x/exp/constraints"
)

// CeilInts returns a/b rounded toward positive infinity, e.g. the number of
// pages needed for a items at b per page.
func CeilInts[T constraints.Integer](a, b T) T {
	q, r := a/b, a%b
	if r != 0 && (r < 0) == (b < 0) {
		q++
	}
	return q
}
