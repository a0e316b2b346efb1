// Package dictionary implements the mutable per-column dictionary: a
// value-to-id map with stable, monotonically assigned ids and geometric
// growth that never invalidates a previously returned id.
package dictionary

import "github.com/arkilian/rtsegment/pkg/schema"

// NotFound is the sentinel id returned by IndexOf for an absent value.
const NotFound int32 = -1

// Dictionary is the per-column value<->id map. Implementations hold
// the live mapping in both directions plus a dense value array indexed
// by id, since ids are assigned in insertion order starting at 0.
type Dictionary interface {
	// Index inserts value if absent and returns its assigned id. The id
	// for an already-present value never changes.
	Index(value schema.Value) int32
	// IndexOf returns the assigned id, or NotFound.
	IndexOf(value schema.Value) int32
	// Get returns the value assigned to id. id must be < Length().
	Get(id int32) schema.Value
	// Length returns the current cardinality.
	Length() int32
	// Compare gives a total ordering over two ids, consistent with the
	// natural order of the underlying values.
	Compare(idA, idB int32) int
	// AvgValueSize reports the mean byte size of stored values, for the
	// stats history snapshot.
	AvgValueSize() float64
	// Close releases the dictionary's resources. Both dictionary variants
	// are plain heap structures, so this is a no-op kept for a uniform
	// teardown path across all per-column index types.
	Close() error
}

// initialCapacity computes min(estimatedCardinality * 1.10, segmentCapacity),
// floored at 4 so tiny test segments still get a usable starting size.
func initialCapacity(estimatedCardinality, segmentCapacity int) int {
	est := int(float64(estimatedCardinality) * 1.10)
	if segmentCapacity > 0 && est > segmentCapacity {
		est = segmentCapacity
	}
	if est < 4 {
		est = 4
	}
	return est
}

// New constructs the dictionary variant matching the column's data type.
// String and bytes columns are backed by an append-only raw-byte region
// with an offset table; numeric columns are backed by a dense value
// slice, since their values are fixed-width and need no separate region.
func New(dt schema.DataType, estimatedCardinality, segmentCapacity int) Dictionary {
	cap := initialCapacity(estimatedCardinality, segmentCapacity)
	switch dt {
	case schema.Int32:
		return newNumericDictionary(cap, func(v schema.Value) int32 { return v.Int32() },
			schema.Int32Value, func(a, b int32) int { return compareInt32(a, b) })
	case schema.Int64:
		return newNumericDictionary(cap, func(v schema.Value) int64 { return v.Int64() },
			schema.Int64Value, compareInt64)
	case schema.Float32:
		return newNumericDictionary(cap, func(v schema.Value) float32 { return v.Float32() },
			schema.Float32Value, compareFloat32)
	case schema.Float64:
		return newNumericDictionary(cap, func(v schema.Value) float64 { return v.Float64() },
			schema.Float64Value, compareFloat64)
	case schema.String, schema.Bytes:
		return newByteDictionary(cap, dt)
	default:
		panic("dictionary: unsupported data type")
	}
}

func compareInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat32(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
