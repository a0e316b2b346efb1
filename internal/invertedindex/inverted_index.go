// Package invertedindex implements the realtime inverted index: a
// per-column map from dictionary id to a mutable compressed bitmap of
// docIds, with snapshot iteration bounded by the caller's own
// numDocsIndexed read.
package invertedindex

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// postingList wraps a *roaring.Bitmap the same way a local document
// store wraps its vector postings: a thin, lock-protected adapter so the
// bitmap's mutation and snapshot operations stay on one object.
type postingList struct {
	mu sync.RWMutex
	bm *roaring.Bitmap
}

func newPostingList() *postingList {
	return &postingList{bm: roaring.New()}
}

func (p *postingList) add(docID int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bm.Add(uint32(docID))
}

// snapshot returns a cloned bitmap safe for a reader to iterate without
// holding the index's lock.
func (p *postingList) snapshot() *roaring.Bitmap {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bm.Clone()
}

// InvertedIndex is the per-column dictId -> postings map.
type InvertedIndex struct {
	mu       sync.RWMutex
	postings map[int32]*postingList
}

// New creates an empty inverted index.
func New() *InvertedIndex {
	return &InvertedIndex{postings: make(map[int32]*postingList)}
}

// Add records that dictId occurs in docId. Safe for a single writer
// concurrent with any number of readers calling GetDocIds.
func (ix *InvertedIndex) Add(dictID int32, docID int32) {
	ix.mu.RLock()
	pl, ok := ix.postings[dictID]
	ix.mu.RUnlock()
	if !ok {
		ix.mu.Lock()
		pl, ok = ix.postings[dictID]
		if !ok {
			pl = newPostingList()
			ix.postings[dictID] = pl
		}
		ix.mu.Unlock()
	}
	pl.add(docID)
}

// GetDocIds returns a snapshot bitmap for dictId whose iterator yields
// docIds in ascending order. A dictId with no postings yields an empty,
// non-nil bitmap.
func (ix *InvertedIndex) GetDocIds(dictID int32) *roaring.Bitmap {
	ix.mu.RLock()
	pl, ok := ix.postings[dictID]
	ix.mu.RUnlock()
	if !ok {
		return roaring.New()
	}
	return pl.snapshot()
}

// Close releases the index. Postings are heap-backed Go structures, so
// there is nothing to release beyond letting the map be garbage
// collected; Close exists to satisfy the segment's uniform teardown
// path across all per-column index types.
func (ix *InvertedIndex) Close() error { return nil }
