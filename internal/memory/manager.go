// Package memory implements the segment's off-heap buffer allocator: a
// named, sized, typed region acquisition contract with guaranteed
// release of every region on teardown.
package memory

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"

	segerrors "github.com/arkilian/rtsegment/internal/errors"
)

// Buffer is a growable, named byte region owned by a Manager.
type Buffer interface {
	// Bytes returns the current backing slice. The slice is only valid
	// until the next Resize call.
	Bytes() []byte
	// Resize grows the buffer to at least newSize bytes, preserving
	// existing contents. Shrinking is not supported.
	Resize(newSize int) error
	// Context is the `<segmentName>:<columnName><indexKind>` allocation
	// label this buffer was created with.
	Context() string
	// Close releases the buffer's resources.
	Close() error
}

// heapBuffer is a plain Go-slice-backed buffer.
type heapBuffer struct {
	ctx  string
	data []byte
}

func (b *heapBuffer) Bytes() []byte { return b.data }

func (b *heapBuffer) Resize(newSize int) error {
	if newSize <= len(b.data) {
		return nil
	}
	grown := make([]byte, newSize)
	copy(grown, b.data)
	b.data = grown
	return nil
}

func (b *heapBuffer) Context() string { return b.ctx }

func (b *heapBuffer) Close() error { return nil }

// mmapBuffer is backed by an RDWR memory-mapped file region via
// edsrzf/mmap-go, for segments configured to run off-heap.
type mmapBuffer struct {
	ctx string
	mm  mmap.MMap
	f   *os.File
}

func (b *mmapBuffer) Bytes() []byte { return b.mm }

func (b *mmapBuffer) Resize(newSize int) error {
	if newSize <= len(b.mm) {
		return nil
	}
	if err := b.mm.Unmap(); err != nil {
		return segerrors.NewResourceError(segerrors.CodeAllocationFailed, "unmap before resize", err)
	}
	if err := b.f.Truncate(int64(newSize)); err != nil {
		return segerrors.NewResourceError(segerrors.CodeAllocationFailed, "truncate backing file", err)
	}
	grown, err := mmap.MapRegion(b.f, newSize, mmap.RDWR, 0, 0)
	if err != nil {
		return segerrors.NewResourceError(segerrors.CodeAllocationFailed, "remap grown region", err)
	}
	b.mm = grown
	return nil
}

func (b *mmapBuffer) Context() string { return b.ctx }

func (b *mmapBuffer) Close() error {
	if err := b.mm.Unmap(); err != nil {
		return segerrors.NewResourceError(segerrors.CodeCloseFailed, "unmap region", err)
	}
	return b.f.Close()
}

// Manager is the segment's exclusive memory allocator. It is owned by
// exactly one segment and passed by borrow to subcomponents; it never
// holds a back-reference to its owner.
type Manager struct {
	mu          sync.Mutex
	buffers     []Buffer
	offHeap     bool
	totalBytes  int64
	segmentName string
}

// New creates a Manager for the named segment. offHeap selects whether
// Acquire backs new buffers with memory-mapped files (true) or plain Go
// slices (false); the acquisition contract is identical either way.
func New(segmentName string, offHeap bool) *Manager {
	return &Manager{
		segmentName: segmentName,
		offHeap:     offHeap,
	}
}

// Acquire allocates a named buffer of the given initial size. columnName
// and indexKind compose the allocation context string used for
// observability: `<segmentName>:<columnName><indexKind>`.
func (m *Manager) Acquire(columnName, indexKind string, initialSize int) (Buffer, error) {
	ctx := fmt.Sprintf("%s:%s%s", m.segmentName, columnName, indexKind)

	var buf Buffer
	if m.offHeap {
		mb, err := newMmapBuffer(ctx, initialSize)
		if err != nil {
			return nil, err
		}
		buf = mb
	} else {
		buf = &heapBuffer{ctx: ctx, data: make([]byte, initialSize)}
	}

	m.mu.Lock()
	m.buffers = append(m.buffers, buf)
	atomic.AddInt64(&m.totalBytes, int64(initialSize))
	m.mu.Unlock()

	return buf, nil
}

// TotalBytes returns the sum of currently allocated buffer sizes. It is
// an estimate: growth via Resize is not separately tracked, since the
// precise figure only matters for the stats snapshot taken at teardown.
func (m *Manager) TotalBytes() int64 {
	return atomic.LoadInt64(&m.totalBytes)
}

// Close releases every buffer acquired from this manager. Close failures
// on individual buffers are collected but do not stop release of the
// remaining ones, per the teardown error policy.
func (m *Manager) Close() error {
	m.mu.Lock()
	buffers := m.buffers
	m.buffers = nil
	m.mu.Unlock()

	var firstErr error
	for _, b := range buffers {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
