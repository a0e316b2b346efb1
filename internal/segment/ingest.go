package segment

import (
	"time"

	segerrors "github.com/arkilian/rtsegment/internal/errors"
	"github.com/arkilian/rtsegment/pkg/schema"
)

// RowMetadata carries ingestion-time bookkeeping alongside a row.
type RowMetadata = schema.RowMetadata

// resolvedColumn carries the per-column outcome of the dictionary-update
// phase, so the docId-resolution and write phases don't re-derive it.
type resolvedColumn struct {
	col     schema.Column
	dictID  int32   // single-value dictionary-encoded columns
	dictIDs []int32 // multi-value dictionary-encoded columns
	raw     schema.Value
}

// Index ingests one row and reports whether the segment can take more:
// true means the row fit and there may be room for further rows; false
// means the row fit but the segment is now at capacity and must not be
// fed again.
func (s *Segment) Index(row schema.Row, meta RowMetadata) (bool, error) {
	s.rowsConsumed.Add(1)

	// Phase 1a: validate every column's row-level constraints before any
	// dictionary mutates. A row that fails on column k must leave columns
	// 0..k-1 untouched: dict.Index, time-bounds, and max-multi-value
	// bookkeeping are all write side effects, so none of them may run
	// until the whole row is known to be acceptable.
	for _, col := range s.schema.Columns {
		if col.Virtual {
			continue
		}

		if col.MultiValue {
			values, ok := row.MultiValues[col.Name]
			if !ok {
				return false, segerrors.NewCastError(segerrors.CodeTypeMismatch,
					"missing multi-value column").WithColumn(col.Name)
			}
			if len(values) > 1000 {
				return false, segerrors.NewCapacityError(segerrors.CodeMultiValueCap,
					"row exceeds the 1000-entry multi-value cap").WithColumn(col.Name)
			}
			if col.Kind == schema.Metric {
				return false, segerrors.NewSchemaError(segerrors.CodeMultiValueMetric,
					"metric columns cannot be multi-value").WithColumn(col.Name)
			}
			for _, v := range values {
				if v.Type() != col.Type {
					return false, segerrors.NewCastError(segerrors.CodeTypeMismatch,
						"value type does not match declared column type").WithColumn(col.Name)
				}
			}
		} else {
			v, ok := row.Values[col.Name]
			if !ok {
				return false, segerrors.NewCastError(segerrors.CodeTypeMismatch,
					"missing column value").WithColumn(col.Name)
			}
			if v.Type() != col.Type {
				return false, segerrors.NewCastError(segerrors.CodeTypeMismatch,
					"value type does not match declared column type").WithColumn(col.Name)
			}
		}
	}

	// A full segment rejects the row here, before any side effect below.
	if s.numDocsIndexed.Load() >= s.capacity {
		return false, segerrors.NewCapacityError(segerrors.CodeSegmentFull, "segment is at capacity")
	}

	resolved := make([]resolvedColumn, 0, len(s.schema.Columns))

	// Phase 1b: dictionary update. The row is known-valid at this point,
	// so every mutation below is safe to commit.
	for _, col := range s.schema.Columns {
		if col.Virtual {
			continue
		}

		rc := resolvedColumn{col: col}

		if col.MultiValue {
			values := row.MultiValues[col.Name]
			if !col.NoDictionary {
				dict := s.dictionaries[col.Name]
				ids := make([]int32, len(values))
				for i, v := range values {
					ids[i] = dict.Index(v)
				}
				rc.dictIDs = ids
			}
			s.setMaxMultiValues(col.Name, int32(len(values)))
		} else {
			v := row.Values[col.Name]
			rc.raw = v
			if !col.NoDictionary {
				rc.dictID = s.dictionaries[col.Name].Index(v)
			}
			if col.Kind == schema.Time {
				s.updateTimeBounds(v)
			}
		}

		resolved = append(resolved, rc)
	}

	// Phase 2: docId resolution.
	current := s.numDocsIndexed.Load()
	var docID int32
	isNew := true

	if s.aggregationEnabled {
		key := s.buildDimensionKey(resolved)
		id, fresh := s.recordIDMap.Put(key, current)
		docID = id
		isNew = fresh
	} else {
		docID = current
	}

	// Phase 3: branch on docId.
	if isNew {
		if current >= s.capacity {
			return false, segerrors.NewCapacityError(segerrors.CodeSegmentFull, "segment is at capacity")
		}
		for _, rc := range resolved {
			s.writeForward(rc, docID)
			s.writeInverted(rc, docID)
		}
		s.numDocsIndexed.Store(current + 1)
		s.rowsIndexed.Add(1)
	} else {
		if docID >= current {
			return false, segerrors.NewAggregationError(segerrors.CodeAggregationInvariant,
				"recordIdMap returned a docId beyond numDocsIndexed")
		}
		for _, rc := range resolved {
			if rc.col.Kind != schema.Metric {
				continue
			}
			if err := s.foldMetric(rc.col, docID, rc.raw); err != nil {
				return false, err
			}
		}
	}

	// Phase 4: metadata update.
	s.lastIndexedTimeMs.Store(time.Now().UnixMilli())
	if meta.IngestionTimeMs > 0 {
		for {
			cur := s.latestIngestionTimeMs.Load()
			if meta.IngestionTimeMs <= cur || s.latestIngestionTimeMs.CompareAndSwap(cur, meta.IngestionTimeMs) {
				break
			}
		}
	}

	// Phase 5: report capacity.
	return s.numDocsIndexed.Load() < s.capacity, nil
}

// buildDimensionKey assembles [dimDictId_1, ..., dimDictId_k, timeDictId]
// in schema column order, per the aggregation key definition.
func (s *Segment) buildDimensionKey(resolved []resolvedColumn) []int32 {
	key := make([]int32, 0, len(resolved))
	for _, rc := range resolved {
		if rc.col.Kind == schema.Dimension || rc.col.Kind == schema.Time {
			key = append(key, rc.dictID)
		}
	}
	return key
}

func (s *Segment) writeForward(rc resolvedColumn, docID int32) {
	if rc.col.MultiValue {
		s.forwardMV[rc.col.Name].Append(rc.dictIDs)
		return
	}

	w := s.forwardSV[rc.col.Name]
	if rc.col.NoDictionary {
		writeRaw(w, docID, rc.raw)
		return
	}
	w.SetInt32(docID, rc.dictID)
}

func writeRaw(w interface {
	SetInt32(int32, int32)
	SetInt64(int32, int64)
	SetFloat32(int32, float32)
	SetFloat64(int32, float64)
}, docID int32, v schema.Value) {
	switch v.Type() {
	case schema.Int32:
		w.SetInt32(docID, v.Int32())
	case schema.Int64:
		w.SetInt64(docID, v.Int64())
	case schema.Float32:
		w.SetFloat32(docID, v.Float32())
	case schema.Float64:
		w.SetFloat64(docID, v.Float64())
	}
}

func (s *Segment) writeInverted(rc resolvedColumn, docID int32) {
	ix, ok := s.invertedIdx[rc.col.Name]
	if !ok {
		return
	}
	if rc.col.MultiValue {
		for _, id := range rc.dictIDs {
			ix.Add(id, docID)
		}
		return
	}
	ix.Add(rc.dictID, docID)
}

// foldMetric implements the aggregation-path additive fold for an
// existing docId. Integer types add directly; float types follow the
// corrected (not the original apparent-bug) sum of destination and
// incoming value.
func (s *Segment) foldMetric(col schema.Column, docID int32, incoming schema.Value) error {
	w := s.forwardSV[col.Name]
	switch col.Type {
	case schema.Int32:
		w.SetInt32(docID, w.GetInt32(docID)+incoming.Int32())
	case schema.Int64:
		w.SetInt64(docID, w.GetInt64(docID)+incoming.Int64())
	case schema.Float32:
		w.SetFloat32(docID, w.GetFloat32(docID)+incoming.Float32())
	case schema.Float64:
		w.SetFloat64(docID, w.GetFloat64(docID)+incoming.Float64())
	default:
		return segerrors.NewCastError(segerrors.CodeTypeMismatch, "metric column has non-numeric type").WithColumn(col.Name)
	}
	return nil
}
