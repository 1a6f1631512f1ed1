package util

import (
	"sort"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Min[A constraints.Ordered](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Clamp[A constraints.Ordered](v, lo, hi A) A {
	return Min(Max(v, lo), hi)
}

// CeilDiv divides rounding up. b must be positive.
func CeilDiv[A constraints.Integer](a A, b A) A {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// FloorDiv and FloorMod round toward negative infinity.
func FloorDiv[A constraints.Signed](a A, b A) A {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func FloorMod[A constraints.Signed](a A, b A) A {
	return a - FloorDiv(a, b)*b
}

func Abs[A constraints.Signed | constraints.Float](a A) A {
	if a < 0 {
		return -a
	}
	return a
}
