package slices

// Resize returns slice resized to exactly length items, reusing the backing
// array where possible.
func Resize[T any](slice []T, length int) []T {
	if cap(slice) < length {
		a := make([]T, length)
		copy(a, slice)
		return a
	}
	for len(slice) < length {
		slice = append(slice, *new(T))
	}
	return slice[:length]
}
