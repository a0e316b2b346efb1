package dictionary

import (
	"sync"

	"github.com/arkilian/rtsegment/pkg/schema"
)

// offset marks where one value lives in the raw-byte region.
type offset struct {
	start, length int
}

// byteDictionary is the string/bytes dictionary variant: an append-only
// raw-byte region plus an offset table, so every id maps to a stable
// (start, length) pair that growth never rewrites in place.
type byteDictionary struct {
	mu     sync.RWMutex
	typ    schema.DataType
	raw    []byte
	offs   []offset
	lookup map[string]int32
}

func newByteDictionary(initialCap int, typ schema.DataType) *byteDictionary {
	return &byteDictionary{
		typ:    typ,
		raw:    make([]byte, 0, initialCap*16),
		offs:   make([]offset, 0, initialCap),
		lookup: make(map[string]int32, initialCap),
	}
}

func (d *byteDictionary) bytesOf(value schema.Value) []byte {
	if d.typ == schema.String {
		return []byte(value.String())
	}
	return value.Bytes()
}

func (d *byteDictionary) Index(value schema.Value) int32 {
	b := d.bytesOf(value)
	key := string(b)

	d.mu.RLock()
	if id, ok := d.lookup[key]; ok {
		d.mu.RUnlock()
		return id
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.lookup[key]; ok {
		return id
	}

	start := len(d.raw)
	d.raw = append(d.raw, b...)
	d.offs = append(d.offs, offset{start: start, length: len(b)})
	id := int32(len(d.offs) - 1)
	d.lookup[key] = id
	return id
}

func (d *byteDictionary) IndexOf(value schema.Value) int32 {
	key := string(d.bytesOf(value))
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, ok := d.lookup[key]; ok {
		return id
	}
	return NotFound
}

func (d *byteDictionary) Get(id int32) schema.Value {
	d.mu.RLock()
	defer d.mu.RUnlock()
	o := d.offs[id]
	b := d.raw[o.start : o.start+o.length]
	if d.typ == schema.String {
		return schema.StringValue(string(b))
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return schema.BytesValue(cp)
}

func (d *byteDictionary) Length() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int32(len(d.offs))
}

func (d *byteDictionary) Compare(idA, idB int32) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	oa, ob := d.offs[idA], d.offs[idB]
	a := d.raw[oa.start : oa.start+oa.length]
	b := d.raw[ob.start : ob.start+ob.length]
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func (d *byteDictionary) AvgValueSize() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.offs) == 0 {
		return 0
	}
	return float64(len(d.raw)) / float64(len(d.offs))
}

func (d *byteDictionary) Close() error { return nil }
