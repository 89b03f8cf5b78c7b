package common

import (
	"cmp"
	"maps"
	"slices"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
// Used to pick display names such as a stage file path falling back to a program label.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SortedKeys returns the keys of m in ascending order. A nil or empty map yields an empty,
// non-nil slice.
//
// Parameters:
//   - m: the map to read keys from
//
// Returns:
//   - []K: the sorted keys
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := slices.Sorted(maps.Keys(m))
	if keys == nil {
		return []K{}
	}
	return keys
}
