package forwardindex

import (
	"sync"

	segerrors "github.com/arkilian/rtsegment/internal/errors"
)

// MaxValuesPerRow is the hard per-row cap on a multi-value column;
// exceeding it at ingestion is a fatal, rejecting error.
const MaxValuesPerRow = 1000

type mvHeader struct {
	offset int32
	length int32
}

// MultiValueWriter is the two-level multi-value forward index: a dense
// header array indexed by docId yielding (offset, length) into a packed
// payload array of dictionary ids. The payload grows in geometric
// chunks; the header grows alongside it by simple append, since writes
// only ever happen at the next dense docId.
type MultiValueWriter struct {
	mu      sync.RWMutex
	headers []mvHeader
	payload []int32
}

// NewMultiValueWriter creates a writer with room for an initial estimate
// of rows and average multi-values per row.
func NewMultiValueWriter(estimatedRows, avgValuesPerRow int) *MultiValueWriter {
	if avgValuesPerRow < 1 {
		avgValuesPerRow = 1
	}
	return &MultiValueWriter{
		headers: make([]mvHeader, 0, estimatedRows),
		payload: make([]int32, 0, estimatedRows*avgValuesPerRow),
	}
}

// Append writes the multi-value entry for the next docId, which must
// equal the writer's current row count (ingestion is append-only and
// single-writer). It returns a CAPACITY SegmentError if ids exceeds
// MaxValuesPerRow.
func (w *MultiValueWriter) Append(ids []int32) error {
	if len(ids) > MaxValuesPerRow {
		return segerrors.NewCapacityError(segerrors.CodeMultiValueCap,
			"multi-value row exceeds the 1000-entry cap")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	offset := int32(len(w.payload))
	w.payload = append(w.payload, ids...)
	w.headers = append(w.headers, mvHeader{offset: offset, length: int32(len(ids))})
	return nil
}

// Get returns the dictionary ids stored for docId, in original order.
func (w *MultiValueWriter) Get(docId int32) []int32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	h := w.headers[docId]
	out := make([]int32, h.length)
	copy(out, w.payload[h.offset:h.offset+h.length])
	return out
}

// Len returns the number of rows currently written.
func (w *MultiValueWriter) Len() int32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return int32(len(w.headers))
}

// Close is a no-op: the writer's storage is plain heap memory, not a
// memory-manager buffer, since multi-value columns need reallocation
// semantics append() already provides.
func (w *MultiValueWriter) Close() error { return nil }
