package bloom

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// headerSize is the fixed, uncompressed header written ahead of the
// snappy-compressed bit array: numBits, numHashes, count, each a
// little-endian uint64.
const headerSize = 24

// Serialize snapshots the filter as a snappy-compressed byte string, the
// handoff format an external collaborator uses to carry a populated
// filter into a sealed segment's column metadata.
func (f *ColumnFilter) Serialize() []byte {
	f.mu.RLock()
	defer f.mu.RUnlock()

	raw := make([]byte, len(f.bits)*8)
	for i, word := range f.bits {
		binary.LittleEndian.PutUint64(raw[i*8:(i+1)*8], word)
	}
	compressed := snappy.Encode(nil, raw)

	buf := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint64(buf[0:8], f.numBits)
	binary.LittleEndian.PutUint64(buf[8:16], f.numHashes)
	binary.LittleEndian.PutUint64(buf[16:24], f.count)
	copy(buf[headerSize:], compressed)
	return buf
}

// Deserialize reconstructs a ColumnFilter from bytes produced by
// Serialize.
func Deserialize(data []byte) (*ColumnFilter, error) {
	if len(data) < headerSize {
		return nil, errors.New("bloom: serialized filter too short")
	}

	numBits := binary.LittleEndian.Uint64(data[0:8])
	numHashes := binary.LittleEndian.Uint64(data[8:16])
	count := binary.LittleEndian.Uint64(data[16:24])
	if numBits == 0 || numHashes == 0 {
		return nil, errors.New("bloom: invalid serialized filter parameters")
	}

	raw, err := snappy.Decode(nil, data[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("bloom: snappy decompress: %w", err)
	}

	numWords := (numBits + 63) / 64
	if uint64(len(raw)) < numWords*8 {
		return nil, fmt.Errorf("bloom: decompressed data too short: want %d bytes, got %d", numWords*8, len(raw))
	}

	bits := make([]uint64, numWords)
	for i := range bits {
		bits[i] = binary.LittleEndian.Uint64(raw[i*8 : (i+1)*8])
	}

	return &ColumnFilter{
		bits:      bits,
		numBits:   numBits,
		numHashes: numHashes,
		count:     count,
	}, nil
}
