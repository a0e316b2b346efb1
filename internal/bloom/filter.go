// Package bloom implements the per-column membership filter a segment
// may carry alongside a column's dictionary and inverted index. The
// filter itself never rejects a lookup that should have matched; it
// only ever lets a query skip a column that provably cannot contain a
// value.
package bloom

import (
	"math"
	"sync"

	"github.com/spaolacci/murmur3"
)

// ColumnFilter is a fixed-size probabilistic set, sized once at
// construction from an estimated column cardinality and never resized
// afterward: growing it would require rehashing every bit already set,
// which defeats the point of a cheap membership check.
type ColumnFilter struct {
	mu        sync.RWMutex
	bits      []uint64
	numBits   uint64
	numHashes uint64
	count     uint64
}

// New builds a ColumnFilter with an explicit bit width and hash count.
func New(numBits, numHashes int) *ColumnFilter {
	if numBits <= 0 {
		numBits = 1024
	}
	if numHashes <= 0 {
		numHashes = 7
	}

	numWords := (numBits + 63) / 64
	actualBits := uint64(numWords * 64)

	return &ColumnFilter{
		bits:      make([]uint64, numWords),
		numBits:   actualBits,
		numHashes: uint64(numHashes),
	}
}

// NewWithEstimates sizes a ColumnFilter for an expected column
// cardinality and a target false positive rate, the way a segment picks
// its bloom filter dimensions at construction from a stats-history
// cardinality estimate.
func NewWithEstimates(expectedItems int, targetFPR float64) *ColumnFilter {
	if expectedItems <= 0 {
		expectedItems = 1000
	}
	if targetFPR <= 0 || targetFPR >= 1 {
		targetFPR = 0.01
	}

	numBits, numHashes := OptimalParameters(expectedItems, targetFPR)
	return New(numBits, numHashes)
}

// OptimalParameters computes the bit width and hash count that hit a
// target false positive rate for an expected cardinality:
//
//	m = -n * ln(p) / (ln(2)^2)   bits for n items at false positive rate p
//	k = (m/n) * ln(2)            hash functions
func OptimalParameters(expectedItems int, targetFPR float64) (numBits, numHashes int) {
	if expectedItems <= 0 {
		expectedItems = 1000
	}
	if targetFPR <= 0 || targetFPR >= 1 {
		targetFPR = 0.01
	}

	n := float64(expectedItems)
	p := targetFPR
	ln2Sq := math.Ln2 * math.Ln2

	m := -n * math.Log(p) / ln2Sq
	numBits = int(math.Ceil(m))

	k := (m / n) * math.Ln2
	numHashes = int(math.Ceil(k))

	if numBits < 64 {
		numBits = 64
	}
	if numHashes < 1 {
		numHashes = 1
	}
	return numBits, numHashes
}

// Add records a value's presence. Called only by the external
// collaborator that populates the filter at seal time; the filter is
// read-only during the mutable, ingesting phase of a column's life.
func (f *ColumnFilter) Add(item []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	h1, h2 := f.hash128(item)
	for i := uint64(0); i < f.numHashes; i++ {
		f.setBit((h1 + i*h2) % f.numBits)
	}
	f.count++
}

// Contains reports whether item might be present. False means
// definitely absent; true may be a false positive.
func (f *ColumnFilter) Contains(item []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	h1, h2 := f.hash128(item)
	for i := uint64(0); i < f.numHashes; i++ {
		if !f.getBit((h1 + i*h2) % f.numBits) {
			return false
		}
	}
	return true
}

func (f *ColumnFilter) hash128(item []byte) (uint64, uint64) {
	h := murmur3.New128()
	h.Write(item)
	return h.Sum128()
}

func (f *ColumnFilter) setBit(pos uint64) {
	f.bits[pos/64] |= 1 << (pos % 64)
}

func (f *ColumnFilter) getBit(pos uint64) bool {
	return f.bits[pos/64]&(1<<(pos%64)) != 0
}

// NumBits returns the filter's bit width.
func (f *ColumnFilter) NumBits() int { return int(f.numBits) }

// NumHashes returns the number of hash functions used per item.
func (f *ColumnFilter) NumHashes() int { return int(f.numHashes) }

// Count returns the number of items added.
func (f *ColumnFilter) Count() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

// FalsePositiveRate estimates the current false positive rate from the
// fill ratio: (1 - e^(-k*n/m))^k, k = numHashes, n = count, m = numBits.
func (f *ColumnFilter) FalsePositiveRate() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.count == 0 {
		return 0
	}
	k := float64(f.numHashes)
	n := float64(f.count)
	m := float64(f.numBits)
	return math.Pow(1-math.Exp(-k*n/m), k)
}
