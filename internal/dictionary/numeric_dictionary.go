package dictionary

import (
	"sync"

	"github.com/arkilian/rtsegment/pkg/schema"
)

// numericDictionary is the fixed-width dictionary variant for int32,
// int64, float32 and float64 columns: a dense value slice indexed by id
// plus a lookup map for IndexOf. Modeled on the dictionary-encoded
// low-cardinality column pattern of keeping a parallel dict slice and a
// reverse lookup map that is rebuilt only on load, never on growth.
type numericDictionary[T comparable] struct {
	mu      sync.RWMutex
	values  []T
	lookup  map[T]int32
	extract func(schema.Value) T
	wrap    func(T) schema.Value
	compare func(T, T) int
}

func newNumericDictionary[T comparable](
	initialCap int,
	extract func(schema.Value) T,
	wrap func(T) schema.Value,
	compare func(T, T) int,
) *numericDictionary[T] {
	return &numericDictionary[T]{
		values:  make([]T, 0, initialCap),
		lookup:  make(map[T]int32, initialCap),
		extract: extract,
		wrap:    wrap,
		compare: compare,
	}
}

func (d *numericDictionary[T]) Index(value schema.Value) int32 {
	v := d.extract(value)

	d.mu.RLock()
	if id, ok := d.lookup[v]; ok {
		d.mu.RUnlock()
		return id
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	// Re-check under the write lock: another insert may have raced us.
	if id, ok := d.lookup[v]; ok {
		return id
	}
	id := int32(len(d.values))
	d.values = append(d.values, v)
	d.lookup[v] = id
	return id
}

func (d *numericDictionary[T]) IndexOf(value schema.Value) int32 {
	v := d.extract(value)
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, ok := d.lookup[v]; ok {
		return id
	}
	return NotFound
}

func (d *numericDictionary[T]) Get(id int32) schema.Value {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wrap(d.values[id])
}

func (d *numericDictionary[T]) Length() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int32(len(d.values))
}

func (d *numericDictionary[T]) Compare(idA, idB int32) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.compare(d.values[idA], d.values[idB])
}

func (d *numericDictionary[T]) AvgValueSize() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.values) == 0 {
		return 0
	}
	return float64(d.wrap(d.values[0]).ByteSize())
}

func (d *numericDictionary[T]) Close() error { return nil }
