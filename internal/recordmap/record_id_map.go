// Package recordmap implements the Record-Id Map used for metric
// pre-aggregation: a fixed-length tuple of dictionary ids (the
// dimension key) mapped to the docId that first carried that key.
package recordmap

import (
	"encoding/binary"
	"sync"
)

// sizeEstimate picks the map's initial capacity:
// estimatedRowsToIndex = max(capacity/1000, 1_000_000). Go's builtin map
// grows and chains collisions internally, so no separate overflow table
// is needed; the figure becomes the hint passed to make(map).
func sizeEstimate(capacity int) int {
	estimatedRowsToIndex := capacity / 1000
	if estimatedRowsToIndex < 1_000_000 {
		estimatedRowsToIndex = 1_000_000
	}
	// A segment can never hold more distinct keys than its row capacity,
	// so that's the real ceiling regardless of the floor above.
	if estimatedRowsToIndex > capacity {
		estimatedRowsToIndex = capacity
	}
	return estimatedRowsToIndex
}

// RecordIdMap maps a dimension key (dimension dictionary ids plus the
// time dictionary id, in column order) to the docId that first carried
// it.
type RecordIdMap struct {
	mu sync.Mutex
	m  map[string]int32
}

// New creates a RecordIdMap sized for the segment's configured capacity.
func New(capacity int) *RecordIdMap {
	return &RecordIdMap{m: make(map[string]int32, sizeEstimate(capacity))}
}

// encodeKey packs a dimension key into a byte string usable as a map
// key; int32 tuples pack deterministically and collision-free since
// every entry takes exactly 4 bytes, so tuples that differ in any entry
// or in length encode to different strings.
func encodeKey(key []int32) string {
	buf := make([]byte, 4*len(key))
	for i, v := range key {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(v))
	}
	return string(buf)
}

// Put returns the existing docId bound to key if present; otherwise it
// binds key to nextDocId (the caller passes numDocsIndexed) and returns
// it with isNew = true.
func (r *RecordIdMap) Put(key []int32, nextDocId int32) (docId int32, isNew bool) {
	k := encodeKey(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.m[k]; ok {
		return id, false
	}
	r.m[k] = nextDocId
	return nextDocId, true
}

// Len returns the number of distinct dimension keys recorded.
func (r *RecordIdMap) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}

// Clear empties the map, releasing its entries. Called during segment
// teardown.
func (r *RecordIdMap) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = nil
}
