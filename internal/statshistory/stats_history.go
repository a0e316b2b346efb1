// Package statshistory implements the process-wide, append-only log of
// per-segment statistics snapshots consulted at segment construction to
// size dictionaries and other structures, and appended to at segment
// teardown.
package statshistory

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/golang/snappy"

	segerrors "github.com/arkilian/rtsegment/internal/errors"
	"github.com/arkilian/rtsegment/pkg/types"
)

// ColumnStats is the per-column slice of a stats snapshot.
type ColumnStats struct {
	Name         string  `json:"name"`
	Cardinality  int64   `json:"cardinality"`
	AvgValueSize float64 `json:"avg_value_size"`
}

// Record is one segment's stats snapshot, written at destroy() and read
// back the next time a segment with the same name is constructed.
type Record struct {
	RecordID     string        `json:"record_id"`
	SegmentName  string        `json:"segment_name"`
	RowsConsumed int64         `json:"rows_consumed"`
	RowsIndexed  int64         `json:"rows_indexed"`
	BytesUsed    int64         `json:"bytes_used"`
	Seconds      float64       `json:"seconds"`
	Columns      []ColumnStats `json:"columns"`
	RecordedAt   time.Time     `json:"recorded_at"`
}

// History is the append-only SQLite-backed stats log. It is safe for
// concurrent use across segments in the same process.
type History struct {
	mu   sync.Mutex
	db   *sql.DB
	ulid *types.ULIDGenerator
}

// Open opens (creating if absent) the SQLite-backed stats history at
// path. Pass ":memory:" for an ephemeral, process-local history.
func Open(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "open stats history database", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS segment_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	record_id TEXT NOT NULL,
	segment_name TEXT NOT NULL,
	rows_consumed INTEGER NOT NULL,
	rows_indexed INTEGER NOT NULL,
	bytes_used INTEGER NOT NULL,
	seconds REAL NOT NULL,
	columns_snappy BLOB NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_segment_stats_name ON segment_stats(segment_name);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "create stats history schema", err)
	}

	return &History{db: db, ulid: types.NewULIDGenerator()}, nil
}

// Append writes a new stats record. Column stats are JSON-encoded then
// Snappy-compressed before the BLOB write.
func (h *History) Append(rec Record) error {
	raw, err := json.Marshal(rec.Columns)
	if err != nil {
		return segerrors.NewInternalError("marshal column stats", err)
	}
	compressed := snappy.Encode(nil, raw)

	id, err := h.ulid.Generate()
	if err != nil {
		return segerrors.NewResourceError(segerrors.CodeAllocationFailed, "generate stats record id", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err = h.db.Exec(
		`INSERT INTO segment_stats (record_id, segment_name, rows_consumed, rows_indexed, bytes_used, seconds, columns_snappy, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), rec.SegmentName, rec.RowsConsumed, rec.RowsIndexed, rec.BytesUsed, rec.Seconds, compressed, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return segerrors.NewResourceError(segerrors.CodeAllocationFailed, "append stats record", err)
	}
	return nil
}

// Latest returns the most recent stats record for segmentName, or nil
// if none exists. Used at construction time to size dictionaries and
// bloom filters from historical per-column cardinality; the recorded
// value sizes are not used for sizing.
func (h *History) Latest(segmentName string) (*Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	row := h.db.QueryRow(
		`SELECT record_id, rows_consumed, rows_indexed, bytes_used, seconds, columns_snappy, recorded_at
		 FROM segment_stats WHERE segment_name = ? ORDER BY id DESC LIMIT 1`,
		segmentName,
	)

	var rec Record
	var compressed []byte
	var recordedAt string
	rec.SegmentName = segmentName

	err := row.Scan(&rec.RecordID, &rec.RowsConsumed, &rec.RowsIndexed, &rec.BytesUsed, &rec.Seconds, &compressed, &recordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "query latest stats record", err)
	}
	if _, err := types.ParseULID(rec.RecordID); err != nil {
		return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "stats record has a malformed record id", err)
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, segerrors.NewInternalError("decompress column stats", err)
	}
	if err := json.Unmarshal(raw, &rec.Columns); err != nil {
		return nil, segerrors.NewInternalError("unmarshal column stats", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
		rec.RecordedAt = t
	}

	return &rec, nil
}

// EstimatedCardinality returns the last-observed cardinality for column,
// or 0 if no history is available.
func (r *Record) EstimatedCardinality(column string) int {
	if r == nil {
		return 0
	}
	for _, c := range r.Columns {
		if c.Name == column {
			return int(c.Cardinality)
		}
	}
	return 0
}

// Close releases the underlying database handle.
func (h *History) Close() error {
	return h.db.Close()
}
