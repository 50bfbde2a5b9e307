// Package sliceutil provides generic helpers for keyed slices.
package sliceutil

// Deduplicate keeps the first item of every key, preserving order.
//
// Example:
//
//	unique := sliceutil.Deduplicate(details, func(d catalog.Details) string {
//		return d.TimetableCode
//	})
func Deduplicate[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// IndexBy maps every key to its first item.
func IndexBy[T any, K comparable](items []T, key func(T) K) map[K]T {
	index := make(map[K]T, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := index[k]; !ok {
			index[k] = item
		}
	}
	return index
}
