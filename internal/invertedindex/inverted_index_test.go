package invertedindex

import "testing"

func TestInvertedIndex_AddAndGetDocIds(t *testing.T) {
	ix := New()
	ix.Add(0, 0)
	ix.Add(0, 2)
	ix.Add(1, 1)

	bm0 := ix.GetDocIds(0)
	if bm0.GetCardinality() != 2 || !bm0.Contains(0) || !bm0.Contains(2) {
		t.Fatalf("unexpected postings for dictId 0: %v", bm0.ToArray())
	}

	bm1 := ix.GetDocIds(1)
	if bm1.GetCardinality() != 1 || !bm1.Contains(1) {
		t.Fatalf("unexpected postings for dictId 1: %v", bm1.ToArray())
	}
}

func TestInvertedIndex_AscendingIterationOrder(t *testing.T) {
	ix := New()
	for _, d := range []int32{5, 1, 3, 0, 4} {
		ix.Add(0, d)
	}
	arr := ix.GetDocIds(0).ToArray()
	for i := 1; i < len(arr); i++ {
		if arr[i-1] >= arr[i] {
			t.Fatalf("expected ascending order, got %v", arr)
		}
	}
}

func TestInvertedIndex_UnknownDictIdReturnsEmpty(t *testing.T) {
	ix := New()
	bm := ix.GetDocIds(42)
	if bm.GetCardinality() != 0 {
		t.Fatalf("expected empty bitmap, got cardinality %d", bm.GetCardinality())
	}
}

func TestInvertedIndex_SnapshotIsolatedFromLaterWrites(t *testing.T) {
	ix := New()
	ix.Add(0, 0)
	snap := ix.GetDocIds(0)
	ix.Add(0, 1)

	if snap.GetCardinality() != 1 {
		t.Fatalf("snapshot must not observe writes made after it was taken, got cardinality %d", snap.GetCardinality())
	}
}
