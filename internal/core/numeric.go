package core

import "cmp"

func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if lo > hi {
		lo, hi = hi, lo
	}
	return max(lo, min(v, hi))
}
