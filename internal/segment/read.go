package segment

import (
	"sort"

	"github.com/arkilian/rtsegment/internal/dictionary"
	segerrors "github.com/arkilian/rtsegment/internal/errors"
	"github.com/arkilian/rtsegment/internal/forwardindex"
	"github.com/arkilian/rtsegment/internal/invertedindex"
	"github.com/arkilian/rtsegment/pkg/schema"
)

// MetadataView borrows from the live segment and reads its counters at
// call time; it holds no copied state and is safe to keep around across
// many queries.
type MetadataView struct {
	seg *Segment
}

func (m MetadataView) NumDocsIndexed() int32        { return m.seg.NumDocsIndexed() }
func (m MetadataView) MinTimeMs() int64             { return m.seg.MinTime() }
func (m MetadataView) MaxTimeMs() int64             { return m.seg.MaxTime() }
func (m MetadataView) LastIndexedTimeMs() int64     { return m.seg.lastIndexedTimeMs.Load() }
func (m MetadataView) LatestIngestionTimeMs() int64 { return m.seg.latestIngestionTimeMs.Load() }
func (m MetadataView) RowsConsumed() int64          { return m.seg.rowsConsumed.Load() }
func (m MetadataView) RowsIndexed() int64           { return m.seg.rowsIndexed.Load() }

// SegmentMetadata returns a live metadata view over the segment.
func (s *Segment) SegmentMetadata() MetadataView {
	return MetadataView{seg: s}
}

// DataSourceView bundles the snapshot of readers needed to service a
// query against one column, safe to use across queries without further
// coordination with the writer.
type DataSourceView struct {
	Column             schema.Column
	NumDocsIndexed     int32
	MaxMultiValuesSeen int32
	ForwardSV          *forwardIndexReader
	ForwardMV          *multiValueReader
	InvertedIndex      *invertedindex.InvertedIndex
	Dictionary         dictionary.Dictionary
	BloomFilter        bloomReader
}

// forwardIndexReader exposes only the read side of a single-value
// forward index writer.
type forwardIndexReader struct {
	w interface {
		GetInt32(int32) int32
		GetInt64(int32) int64
		GetFloat32(int32) float32
		GetFloat64(int32) float64
	}
}

func (r *forwardIndexReader) Int32(docID int32) int32     { return r.w.GetInt32(docID) }
func (r *forwardIndexReader) Int64(docID int32) int64     { return r.w.GetInt64(docID) }
func (r *forwardIndexReader) Float32(docID int32) float32 { return r.w.GetFloat32(docID) }
func (r *forwardIndexReader) Float64(docID int32) float64 { return r.w.GetFloat64(docID) }

type multiValueReader struct {
	w interface {
		Get(int32) []int32
	}
}

func (r *multiValueReader) Get(docID int32) []int32 { return r.w.Get(docID) }

// bloomReader exposes only Contains; the filter is unpopulated during
// the mutable phase and is filled in at seal time by an external
// collaborator.
type bloomReader interface {
	Contains(item []byte) bool
}

// DataSource returns a read-only view bundling everything a query needs
// for one column. Virtual columns return a view whose readers are all
// nil; callers must route those through the VirtualColumnProvider
// instead.
func (s *Segment) DataSource(columnName string) (DataSourceView, error) {
	col, err := s.column(columnName)
	if err != nil {
		return DataSourceView{}, err
	}

	view := DataSourceView{
		Column:             col,
		NumDocsIndexed:     s.NumDocsIndexed(),
		MaxMultiValuesSeen: s.MaxMultiValuesSeen(columnName),
	}
	if col.Virtual {
		return view, nil
	}

	if col.MultiValue {
		view.ForwardMV = &multiValueReader{w: s.forwardMV[columnName]}
	} else {
		view.ForwardSV = &forwardIndexReader{w: s.forwardSV[columnName]}
	}
	if ix, ok := s.invertedIdx[columnName]; ok {
		view.InvertedIndex = ix
	}
	if d, ok := s.dictionaries[columnName]; ok {
		view.Dictionary = d
	}
	if bf, ok := s.bloomFilters[columnName]; ok {
		view.BloomFilter = bf
	}
	return view, nil
}

// Record reconstructs row docID across every physically stored column,
// dereferencing the dictionary where present. docID must be
// < NumDocsIndexed().
func (s *Segment) Record(docID int32, buf *schema.Row) error {
	n := s.NumDocsIndexed()
	if docID < 0 || docID >= n {
		return segerrors.NewSchemaError(segerrors.CodeUnknownColumn, "docId out of range for record reconstruction")
	}

	if buf.Values == nil {
		buf.Values = make(map[string]schema.Value)
	}
	if buf.MultiValues == nil {
		buf.MultiValues = make(map[string][]schema.Value)
	}

	for _, col := range s.schema.Columns {
		if col.Virtual {
			if s.virtualProvider == nil {
				continue
			}
			v, err := s.virtualProvider.Value(docID, col.Name)
			if err != nil {
				return err
			}
			buf.Values[col.Name] = v
			continue
		}

		if col.MultiValue {
			ids := s.forwardMV[col.Name].Get(docID)
			dict := s.dictionaries[col.Name]
			values := make([]schema.Value, len(ids))
			for i, id := range ids {
				values[i] = dict.Get(id)
			}
			buf.MultiValues[col.Name] = values
			continue
		}

		if col.NoDictionary {
			w := s.forwardSV[col.Name]
			buf.Values[col.Name] = readRaw(w, col.Type, docID)
			continue
		}

		dictID := s.forwardSV[col.Name].GetInt32(docID)
		buf.Values[col.Name] = s.dictionaries[col.Name].Get(dictID)
	}
	return nil
}

func readRaw(w *forwardindex.SingleValueWriter, dt schema.DataType, docID int32) schema.Value {
	switch dt {
	case schema.Int32:
		return schema.Int32Value(w.GetInt32(docID))
	case schema.Int64:
		return schema.Int64Value(w.GetInt64(docID))
	case schema.Float32:
		return schema.Float32Value(w.GetFloat32(docID))
	case schema.Float64:
		return schema.Float64Value(w.GetFloat64(docID))
	default:
		return schema.Value{}
	}
}

// SortedDocIdIteration returns a docId permutation visiting rows in
// ascending order of column: dictionary ids are sorted by the
// dictionary's natural ordering, then each id's posting list is
// concatenated in that order. Requires column to be dictionary-encoded
// and inverted-indexed.
func (s *Segment) SortedDocIdIteration(columnName string) ([]int32, error) {
	col, err := s.column(columnName)
	if err != nil {
		return nil, err
	}
	if col.NoDictionary {
		return nil, segerrors.NewSchemaError(segerrors.CodeNotDictionaryEncoded,
			"sortedDocIdIteration requires a dictionary-encoded column").WithColumn(columnName)
	}
	ix, ok := s.invertedIdx[columnName]
	if !ok {
		return nil, segerrors.NewSchemaError(segerrors.CodeNotDictionaryEncoded,
			"sortedDocIdIteration requires an inverted-indexed column").WithColumn(columnName)
	}
	dict := s.dictionaries[columnName]

	// Sample the visibility counter first: every dictionary id used by a
	// docId below it is then already covered by dict.Length().
	numDocs := s.NumDocsIndexed()

	n := int(dict.Length())
	ids := make([]int32, n)
	for i := range ids {
		ids[i] = int32(i)
	}
	sort.Slice(ids, func(i, j int) bool {
		return dict.Compare(ids[i], ids[j]) < 0
	})

	perm := make([]int32, 0, numDocs)
	for _, dictID := range ids {
		bm := ix.GetDocIds(dictID)
		it := bm.Iterator()
		for it.HasNext() {
			if d := int32(it.Next()); d < numDocs {
				perm = append(perm, d)
			}
		}
	}

	if int32(len(perm)) != numDocs {
		return nil, segerrors.NewInternalError("sortedDocIdIteration permutation length mismatch", nil)
	}
	return perm, nil
}
