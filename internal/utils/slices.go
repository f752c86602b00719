package utils

// NonNil returns an empty slice for nil so JSON encodes [] rather than null.
func NonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
