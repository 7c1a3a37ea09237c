package cmp

// SliceEq checks two slices have same values in same order.
func SliceEq[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SliceEqWith checks two slices are equal, element-wise, with pred.
func SliceEqWith[T any, U any](a []T, b []U, pred func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !pred(a[i], b[i]) {
			return false
		}
	}
	return true
}
