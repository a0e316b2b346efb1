package statshistory

import "testing"

func TestHistory_AppendAndLatestRoundTrip(t *testing.T) {
	h, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	rec := Record{
		SegmentName:  "seg0",
		RowsConsumed: 100,
		RowsIndexed:  100,
		BytesUsed:    4096,
		Seconds:      1.5,
		Columns: []ColumnStats{
			{Name: "dim", Cardinality: 2, AvgValueSize: 1.0},
			{Name: "metric", Cardinality: 0, AvgValueSize: 8.0},
		},
	}
	if err := h.Append(rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := h.Latest("seg0")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got == nil {
		t.Fatal("expected a record, got nil")
	}
	if got.RowsIndexed != 100 || got.BytesUsed != 4096 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.EstimatedCardinality("dim") != 2 {
		t.Fatalf("expected dim cardinality 2, got %d", got.EstimatedCardinality("dim"))
	}
	if len(got.RecordID) != 26 {
		t.Fatalf("expected a 26-character ULID record id, got %q", got.RecordID)
	}
}

func TestHistory_LatestReturnsNilWhenAbsent(t *testing.T) {
	h, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	got, err := h.Latest("unknown-segment")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown segment, got %+v", got)
	}
}

func TestHistory_LatestReturnsMostRecentAppend(t *testing.T) {
	h, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	h.Append(Record{SegmentName: "seg0", RowsIndexed: 10})
	h.Append(Record{SegmentName: "seg0", RowsIndexed: 20})

	got, err := h.Latest("seg0")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.RowsIndexed != 20 {
		t.Fatalf("expected most recent append (20), got %d", got.RowsIndexed)
	}
}
