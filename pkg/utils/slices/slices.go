package slices

// Map applies f to each element and collects the results.
func Map[T any, U any](sli []T, f func(T) U) []U {
	if sli == nil {
		return nil
	}
	out := make([]U, len(sli))
	for i, v := range sli {
		out[i] = f(v)
	}
	return out
}

// Filter collects the elements satisfying pred, keeping their order.
// It always builds a new slice; the input is left as-is.
func Filter[T any](sli []T, pred func(T) bool) []T {
	out := []T{}
	for _, v := range sli {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// First finds the first element satisfying pred.
//
// return: (the element, true) when found. Otherwise (zero value, false).
func First[T any](sli []T, pred func(T) bool) (T, bool) {
	for _, v := range sli {
		if pred(v) {
			return v, true
		}
	}
	return *new(T), false
}

// Clone copies sli shallowly. nil stays nil.
func Clone[T any](sli []T) []T {
	if sli == nil {
		return nil
	}
	out := make([]T, len(sli))
	copy(out, sli)
	return out
}
