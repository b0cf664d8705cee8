// package conditional
//
// small expression helpers go does not ship with
package conditional

// Ternary : returns a when cond is true otherwise b
func Ternary[T any](cond bool, a T, b T) T {
	if cond {
		return a
	}
	return b
}

// Coalesce : returns the first value that is not the zero value
func Coalesce[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
