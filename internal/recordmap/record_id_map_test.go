package recordmap

import "testing"

func TestRecordIdMap_NewKeyAllocatesNextDocId(t *testing.T) {
	r := New(1000)
	id, isNew := r.Put([]int32{1, 2, 3}, 0)
	if !isNew || id != 0 {
		t.Fatalf("expected new key bound to docId 0, got id=%d isNew=%v", id, isNew)
	}
}

func TestRecordIdMap_ExistingKeyReturnsBoundDocId(t *testing.T) {
	r := New(1000)
	r.Put([]int32{1, 2, 3}, 0)
	id, isNew := r.Put([]int32{1, 2, 3}, 7)
	if isNew || id != 0 {
		t.Fatalf("expected existing key to return bound docId 0, got id=%d isNew=%v", id, isNew)
	}
}

func TestRecordIdMap_DistinctKeysGetDistinctDocIds(t *testing.T) {
	r := New(1000)
	id1, _ := r.Put([]int32{1, 2}, 0)
	id2, _ := r.Put([]int32{1, 3}, 1)
	if id1 == id2 {
		t.Fatalf("distinct keys must map to distinct docIds, got %d == %d", id1, id2)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", r.Len())
	}
}

func TestRecordIdMap_KeyLengthDistinguishesTuples(t *testing.T) {
	r := New(1000)
	// {1, 2} and {1, 2, 0} must not collide despite encoding overlap.
	r.Put([]int32{1, 2}, 0)
	_, isNew := r.Put([]int32{1, 2, 0}, 1)
	if !isNew {
		t.Fatalf("expected distinct arity tuples to be distinct keys")
	}
}
