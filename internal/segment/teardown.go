package segment

import (
	"log"
	"time"

	"github.com/arkilian/rtsegment/internal/statshistory"
)

// Destroy releases every resource owned by the segment. It is
// idempotent: calling it more than once is a no-op after the first
// call. Close failures on individual sub-resources are logged and do
// not abort release of the rest, per the teardown error policy.
func (s *Segment) Destroy() {
	s.destroyOnce.Do(func() {
		if s.cfg.OffHeap && s.rowsIndexed.Load() > 0 && s.cfg.StatsHistory != nil {
			s.appendStatsSnapshot()
		}

		for name, w := range s.forwardSV {
			if err := w.Close(); err != nil {
				log.Printf("segment %s: close forward index %q: %v", s.cfg.SegmentName, name, err)
			}
		}
		for name, w := range s.forwardMV {
			if err := w.Close(); err != nil {
				log.Printf("segment %s: close multi-value forward index %q: %v", s.cfg.SegmentName, name, err)
			}
		}
		for name, ix := range s.invertedIdx {
			if err := ix.Close(); err != nil {
				log.Printf("segment %s: close inverted index %q: %v", s.cfg.SegmentName, name, err)
			}
		}
		for name, d := range s.dictionaries {
			if err := d.Close(); err != nil {
				log.Printf("segment %s: close dictionary %q: %v", s.cfg.SegmentName, name, err)
			}
		}

		if s.recordIDMap != nil {
			s.recordIDMap.Clear()
		}

		if err := s.cfg.MemoryManager.Close(); err != nil {
			log.Printf("segment %s: close memory manager: %v", s.cfg.SegmentName, err)
		}
	})
}

func (s *Segment) appendStatsSnapshot() {
	cols := make([]statshistory.ColumnStats, 0, len(s.schema.Columns))
	for _, c := range s.schema.Columns {
		if c.Virtual {
			continue
		}
		var cardinality int64
		var avgSize float64
		if d, ok := s.dictionaries[c.Name]; ok {
			cardinality = int64(d.Length())
			avgSize = d.AvgValueSize()
		} else {
			avgSize = float64(c.Type.Width())
		}
		cols = append(cols, statshistory.ColumnStats{
			Name:         c.Name,
			Cardinality:  cardinality,
			AvgValueSize: avgSize,
		})
	}

	rec := statshistory.Record{
		SegmentName:  s.cfg.SegmentName,
		RowsConsumed: s.rowsConsumed.Load(),
		RowsIndexed:  s.rowsIndexed.Load(),
		BytesUsed:    s.cfg.MemoryManager.TotalBytes(),
		Seconds:      time.Since(s.createdAt).Seconds(),
		Columns:      cols,
	}
	if err := s.cfg.StatsHistory.Append(rec); err != nil {
		log.Printf("segment %s: append stats snapshot: %v", s.cfg.SegmentName, err)
	}
}
