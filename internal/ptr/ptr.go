// Package ptr helps taking pointers to values, which Go does not allow
// inline for literals and function results.
package ptr

// Ref returns a pointer to a copy of v.
func Ref[T any](v T) *T {
	return &v
}
