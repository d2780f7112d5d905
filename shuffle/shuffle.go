// Package shuffle implements the deterministic riffle shuffle that
// interleaves multiple ordered page tracks into a single sequence.
package shuffle

// Riffle interleaves the given tracks into one sequence.
//
// One cursor is kept per track, in the order the tracks are given. Each
// round emits the next unconsumed element from every track that still has
// elements; exhausted tracks drop out rather than holding their column
// open. The result's length is the sum of all track lengths, each track's
// internal order is preserved, and the output depends only on track order
// and content.
//
// An empty track set yields an empty (non-nil) sequence.
func Riffle[T any](tracks [][]T) []T {
	total := 0
	for _, track := range tracks {
		total += len(track)
	}

	out := make([]T, 0, total)
	for round := 0; len(out) < total; round++ {
		for _, track := range tracks {
			if round < len(track) {
				out = append(out, track[round])
			}
		}
	}

	return out
}
