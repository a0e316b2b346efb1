// Package segment implements the mutable segment: the coordinator that
// owns one instance each of the memory manager, per-column
// dictionaries, forward indexes, inverted indexes, bloom filters and
// the optional record-id map, and drives the single-writer ingestion
// state machine described by the rest of this module.
package segment

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arkilian/rtsegment/internal/bloom"
	"github.com/arkilian/rtsegment/internal/config"
	"github.com/arkilian/rtsegment/internal/dictionary"
	segerrors "github.com/arkilian/rtsegment/internal/errors"
	"github.com/arkilian/rtsegment/internal/forwardindex"
	"github.com/arkilian/rtsegment/internal/invertedindex"
	"github.com/arkilian/rtsegment/internal/recordmap"
	"github.com/arkilian/rtsegment/internal/statshistory"
	"github.com/arkilian/rtsegment/pkg/schema"
)

// VirtualColumnProvider services reads for columns the segment does not
// physically store. It is an external collaborator; the segment only
// holds the interface.
type VirtualColumnProvider interface {
	Value(docID int32, column string) (schema.Value, error)
}

// Segment is the mutable, in-memory columnar segment.
type Segment struct {
	cfg    *config.SegmentConfig
	schema schema.Schema

	virtualProvider VirtualColumnProvider

	// numDocsIndexed is the visibility counter. Writes to per-column
	// structures for docId d must complete before this reaches d+1; the
	// atomic Store/Load pair gives the release/acquire pairing the
	// concurrency contract requires.
	numDocsIndexed atomic.Int32
	capacity       int32

	dictionaries map[string]dictionary.Dictionary
	forwardSV    map[string]*forwardindex.SingleValueWriter
	forwardMV    map[string]*forwardindex.MultiValueWriter
	invertedIdx  map[string]*invertedindex.InvertedIndex
	bloomFilters map[string]*bloom.ColumnFilter

	maxMultiValuesSeen sync.Map // column name -> int32, atomic-ish via Map + CAS loop

	aggregationEnabled bool
	recordIDMap        *recordmap.RecordIdMap

	minTimeMs atomic.Int64
	maxTimeMs atomic.Int64
	timeSeen  atomic.Bool

	lastIndexedTimeMs     atomic.Int64
	latestIngestionTimeMs atomic.Int64

	rowsConsumed atomic.Int64
	rowsIndexed  atomic.Int64

	createdAt time.Time

	destroyOnce sync.Once
}

// New constructs a Segment from a validated config, schema, and stats
// history snapshot. Aggregation enablement is decided here, once, per
// the conditions in the aggregation-enablement check; a schema that
// requests aggregation but fails a condition merely disables it with a
// warning rather than failing construction.
func New(cfg *config.SegmentConfig, sch schema.Schema, provider VirtualColumnProvider) (*Segment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, segerrors.NewInternalError("invalid segment config", err)
	}

	// Bake the config's no-dictionary/inverted-index overlay into the
	// schema once, here, so every later read (aggregation-enablement
	// check, ingestion, query) sees one consistent Column value instead
	// of re-deriving it from cfg on every access.
	columns := make([]schema.Column, len(sch.Columns))
	for i, col := range sch.Columns {
		col.NoDictionary = cfg.NoDictionaryColumns[col.Name]
		col.HasInvertedIdx = cfg.InvertedIndexColumns[col.Name]
		if err := col.Validate(); err != nil {
			return nil, segerrors.NewSchemaError(segerrors.CodeNoDictionaryUnsupported, err.Error()).WithColumn(col.Name)
		}
		columns[i] = col
	}
	sch.Columns = columns

	var stats *statshistory.Record
	if cfg.StatsHistory != nil {
		r, err := cfg.StatsHistory.Latest(cfg.SegmentName)
		if err != nil {
			return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "read stats history", err)
		}
		stats = r
	}

	seg := &Segment{
		cfg:             cfg,
		schema:          sch,
		virtualProvider: provider,
		capacity:        int32(cfg.Capacity),
		dictionaries:    make(map[string]dictionary.Dictionary),
		forwardSV:       make(map[string]*forwardindex.SingleValueWriter),
		forwardMV:       make(map[string]*forwardindex.MultiValueWriter),
		invertedIdx:     make(map[string]*invertedindex.InvertedIndex),
		bloomFilters:    make(map[string]*bloom.ColumnFilter),
		createdAt:       time.Now(),
	}

	for _, col := range sch.Columns {
		if col.Virtual {
			continue
		}

		if !col.NoDictionary {
			estCard := stats.EstimatedCardinality(col.Name)
			if estCard == 0 {
				estCard = 1000
			}
			seg.dictionaries[col.Name] = dictionary.New(col.Type, estCard, cfg.Capacity)
		}

		width := 4 // dictionary id width
		if col.NoDictionary {
			width = col.Type.Width()
		}

		if col.MultiValue {
			seg.forwardMV[col.Name] = forwardindex.NewMultiValueWriter(cfg.Capacity, cfg.AvgMultiValuesEstimate)
		} else {
			w, err := forwardindex.NewSingleValueWriter(cfg.MemoryManager, col.Name, width, cfg.Capacity)
			if err != nil {
				return nil, segerrors.NewResourceError(segerrors.CodeAllocationFailed, "allocate forward index", err).WithColumn(col.Name)
			}
			seg.forwardSV[col.Name] = w
		}

		if cfg.InvertedIndexColumns[col.Name] {
			seg.invertedIdx[col.Name] = invertedindex.New()
		}
		if cfg.BloomFilterColumns[col.Name] {
			estCard := stats.EstimatedCardinality(col.Name)
			if estCard == 0 {
				estCard = 1000
			}
			seg.bloomFilters[col.Name] = bloom.NewWithEstimates(estCard, 0.01)
		}
	}

	seg.aggregationEnabled = seg.checkAggregationEnablement()
	if seg.aggregationEnabled {
		seg.recordIDMap = recordmap.New(cfg.Capacity)
	}

	return seg, nil
}

// checkAggregationEnablement implements the once-at-construction check:
// the flag must be set, every metric column must be no-dictionary and
// single-value, every dimension column must be dictionary-encoded and
// single-value, and the time column (if any) must be dictionary-encoded.
// Any failing condition disables aggregation with a logged warning
// rather than failing construction.
func (s *Segment) checkAggregationEnablement() bool {
	if !s.cfg.AggregateMetrics {
		return false
	}

	for _, c := range s.schema.MetricColumns() {
		if !c.NoDictionary || c.MultiValue {
			log.Printf("segment %s: aggregation disabled: metric column %q is not no-dictionary single-value", s.cfg.SegmentName, c.Name)
			return false
		}
	}
	for _, c := range s.schema.DimensionColumns() {
		if c.NoDictionary || c.MultiValue {
			log.Printf("segment %s: aggregation disabled: dimension column %q is not dictionary-encoded single-value", s.cfg.SegmentName, c.Name)
			return false
		}
	}
	if tc, ok := s.schema.TimeColumnDef(); ok {
		if tc.NoDictionary {
			log.Printf("segment %s: aggregation disabled: time column %q is not dictionary-encoded", s.cfg.SegmentName, tc.Name)
			return false
		}
	}
	return true
}

// NumDocsIndexed returns the monotonically increasing visibility
// counter.
func (s *Segment) NumDocsIndexed() int32 {
	return s.numDocsIndexed.Load()
}

// Capacity returns the segment's configured row capacity.
func (s *Segment) Capacity() int32 {
	return s.capacity
}

// AggregationEnabled reports whether metric pre-aggregation is active
// for this segment.
func (s *Segment) AggregationEnabled() bool {
	return s.aggregationEnabled
}

func (s *Segment) setMaxMultiValues(column string, n int32) {
	for {
		v, _ := s.maxMultiValuesSeen.LoadOrStore(column, n)
		cur := v.(int32)
		if n <= cur {
			return
		}
		if s.maxMultiValuesSeen.CompareAndSwap(column, cur, n) {
			return
		}
	}
}

// MaxMultiValuesSeen returns the largest per-row entry count observed
// for a multi-value column.
func (s *Segment) MaxMultiValuesSeen(column string) int32 {
	v, ok := s.maxMultiValuesSeen.Load(column)
	if !ok {
		return 0
	}
	return v.(int32)
}

func asInt64(v schema.Value) int64 {
	switch v.Type() {
	case schema.Int32:
		return int64(v.Int32())
	case schema.Int64:
		return v.Int64()
	case schema.Float32:
		return int64(v.Float32())
	case schema.Float64:
		return int64(v.Float64())
	default:
		return 0
	}
}

func (s *Segment) updateTimeBounds(v schema.Value) {
	t := asInt64(v)
	if s.timeSeen.CompareAndSwap(false, true) {
		s.minTimeMs.Store(t)
		s.maxTimeMs.Store(t)
		return
	}
	for {
		cur := s.minTimeMs.Load()
		if t >= cur || s.minTimeMs.CompareAndSwap(cur, t) {
			break
		}
	}
	for {
		cur := s.maxTimeMs.Load()
		if t <= cur || s.maxTimeMs.CompareAndSwap(cur, t) {
			break
		}
	}
}

// MinTime and MaxTime return the observed time-column bounds. Both are
// zero until at least one row has been indexed.
func (s *Segment) MinTime() int64 { return s.minTimeMs.Load() }
func (s *Segment) MaxTime() int64 { return s.maxTimeMs.Load() }

func (s *Segment) column(name string) (schema.Column, error) {
	c, ok := s.schema.Column(name)
	if !ok {
		return schema.Column{}, segerrors.NewSchemaError(segerrors.CodeUnknownColumn, fmt.Sprintf("unknown column %q", name)).WithColumn(name)
	}
	return c, nil
}
