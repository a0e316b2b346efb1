// Package forwardindex implements the per-column forward index: a
// docId-addressed column store, single-value (fixed-width slots) and
// multi-value (offset/length header plus a packed payload array).
package forwardindex

import (
	"encoding/binary"
	"math"
	"sync"

	segerrors "github.com/arkilian/rtsegment/internal/errors"
	"github.com/arkilian/rtsegment/internal/memory"
)

// SingleValueWriter stores one fixed-width slot per docId. The slot
// holds a dictionary id (width 4) for dictionary-encoded columns, or
// the raw value (width 4 or 8) for no-dictionary columns.
type SingleValueWriter struct {
	mu    sync.RWMutex
	mgr   *memory.Manager
	buf   memory.Buffer
	width int
	size  int32 // number of slots currently backed
}

// NewSingleValueWriter acquires a buffer from mgr sized for `capacity`
// slots of `width` bytes, under the allocation context
// `<segmentName>:<columnName>:fwd`.
func NewSingleValueWriter(mgr *memory.Manager, columnName string, width, capacity int) (*SingleValueWriter, error) {
	buf, err := mgr.Acquire(columnName, ":fwd", width*capacity)
	if err != nil {
		return nil, err
	}
	return &SingleValueWriter{mgr: mgr, buf: buf, width: width, size: int32(capacity)}, nil
}

func (w *SingleValueWriter) ensureCapacity(docId int32) {
	if docId < w.size {
		return
	}
	newSize := w.size
	if newSize < 1 {
		newSize = 1
	}
	for docId >= newSize {
		newSize *= 2
	}
	if err := w.buf.Resize(int(newSize) * w.width); err != nil {
		panic(segerrors.NewResourceError(segerrors.CodeAllocationFailed, "grow forward index buffer", err))
	}
	w.size = newSize
}

// SetInt32 writes the slot at docId. The write happens-before any
// subsequent increment of numDocsIndexed observed by a reader, per the
// segment's visibility contract; callers must ensure that ordering.
func (w *SingleValueWriter) SetInt32(docId int32, v int32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureCapacity(docId)
	binary.LittleEndian.PutUint32(w.slot(docId), uint32(v))
}

func (w *SingleValueWriter) GetInt32(docId int32) int32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return int32(binary.LittleEndian.Uint32(w.slot(docId)))
}

func (w *SingleValueWriter) SetInt64(docId int32, v int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureCapacity(docId)
	binary.LittleEndian.PutUint64(w.slot(docId), uint64(v))
}

func (w *SingleValueWriter) GetInt64(docId int32) int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return int64(binary.LittleEndian.Uint64(w.slot(docId)))
}

func (w *SingleValueWriter) SetFloat32(docId int32, v float32) {
	w.SetInt32(docId, int32(math.Float32bits(v)))
}

func (w *SingleValueWriter) GetFloat32(docId int32) float32 {
	return math.Float32frombits(uint32(w.GetInt32(docId)))
}

func (w *SingleValueWriter) SetFloat64(docId int32, v float64) {
	w.SetInt64(docId, int64(math.Float64bits(v)))
}

func (w *SingleValueWriter) GetFloat64(docId int32) float64 {
	return math.Float64frombits(uint64(w.GetInt64(docId)))
}

// slot returns the byte range for docId. Callers must hold w.mu.
func (w *SingleValueWriter) slot(docId int32) []byte {
	start := int(docId) * w.width
	return w.buf.Bytes()[start : start+w.width]
}

// Close releases nothing directly: the backing buffer is owned and
// released by the memory manager at segment teardown.
func (w *SingleValueWriter) Close() error { return nil }
