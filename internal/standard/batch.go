package standard

// DefaultBatchSize is the largest number of patterns Codacy accepts in one
// tool update.
const DefaultBatchSize = 1000

// Batches splits items into consecutive chunks of at most size elements.
// The chunks share the backing array of items.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(items) == 0 {
		return nil
	}

	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}
