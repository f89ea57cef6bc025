// Copyright (c) 2026 Quotable. All rights reserved.

/*
Package slice compliments the standard [slices] package by providing functional
programming utilities (Map, Filter, Chunk) leveraging generics.
*/
package slice

// Map maps a slice of type T to a slice of type U using the provided transformation function.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}

	return result
}

// Filter filters a slice, returning only elements where the predicate function evaluates to true.
func Filter[T any](input []T, predicate func(T) bool) []T {
	if input == nil {
		return nil
	}

	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}

	return result
}

// Unique returns the distinct elements of input in first-seen order.
func Unique[T comparable](input []T) []T {
	seen := make(map[T]struct{}, len(input))
	result := make([]T, 0, len(input))

	for _, v := range input {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

// Chunk splits input into consecutive sub-slices of at most size elements.
// The sub-slices share the backing array of input.
func Chunk[T any](input []T, size int) [][]T {
	if size <= 0 || len(input) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(input)+size-1)/size)
	for start := 0; start < len(input); start += size {
		end := min(start+size, len(input))
		chunks = append(chunks, input[start:end:end])
	}

	return chunks
}

// Difference returns the elements of a that are not in b, preserving the order of a.
func Difference[T comparable](a, b []T) []T {
	exclude := make(map[T]struct{}, len(b))
	for _, v := range b {
		exclude[v] = struct{}{}
	}

	var result []T
	for _, v := range a {
		if _, ok := exclude[v]; !ok {
			result = append(result, v)
		}
	}

	return result
}
