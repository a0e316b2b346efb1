package memory

import (
	"os"

	"github.com/edsrzf/mmap-go"

	segerrors "github.com/arkilian/rtsegment/internal/errors"
)

// newMmapBuffer backs a buffer with an anonymous temp file mapped RDWR,
// giving the segment a growable off-heap region outside the Go heap and
// GC scan set. The temp file is unlinked immediately; the mapping keeps
// the underlying storage alive until Close.
func newMmapBuffer(ctx string, initialSize int) (*mmapBuffer, error) {
	f, err := os.CreateTemp("", "rtsegment-*.buf")
	if err != nil {
		return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "create backing file", err)
	}
	// Unlink now; the fd keeps the storage alive for the buffer's lifetime
	// and the OS reclaims the space the moment Close releases the fd.
	name := f.Name()
	defer os.Remove(name)

	if initialSize < 1 {
		initialSize = 1
	}
	if err := f.Truncate(int64(initialSize)); err != nil {
		f.Close()
		return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "truncate backing file", err)
	}

	region, err := mmap.MapRegion(f, initialSize, mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "mmap backing file", err)
	}

	return &mmapBuffer{ctx: ctx, mm: region, f: f}, nil
}
