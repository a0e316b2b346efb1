package dictionary

import (
	"testing"

	"github.com/arkilian/rtsegment/pkg/schema"
)

func TestStringDictionary_InsertAndStableIds(t *testing.T) {
	d := New(schema.String, 4, 100)

	idA := d.Index(schema.StringValue("a"))
	idB := d.Index(schema.StringValue("b"))
	idA2 := d.Index(schema.StringValue("a"))

	if idA != 0 || idB != 1 {
		t.Fatalf("expected ids 0,1 in insertion order, got %d,%d", idA, idB)
	}
	if idA2 != idA {
		t.Fatalf("re-inserting a known value must return the same id, got %d vs %d", idA2, idA)
	}
	if d.Length() != 2 {
		t.Fatalf("expected cardinality 2, got %d", d.Length())
	}
}

func TestStringDictionary_IndexOfUnknown(t *testing.T) {
	d := New(schema.String, 4, 100)
	d.Index(schema.StringValue("a"))

	if got := d.IndexOf(schema.StringValue("missing")); got != NotFound {
		t.Fatalf("expected NotFound, got %d", got)
	}
}

func TestStringDictionary_GetRoundTrip(t *testing.T) {
	d := New(schema.String, 4, 100)
	id := d.Index(schema.StringValue("hello"))
	if got := d.Get(id).String(); got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
}

func TestStringDictionary_Compare(t *testing.T) {
	d := New(schema.String, 4, 100)
	idA := d.Index(schema.StringValue("a"))
	idB := d.Index(schema.StringValue("b"))
	if d.Compare(idA, idB) >= 0 {
		t.Fatalf("expected a < b")
	}
	if d.Compare(idB, idA) <= 0 {
		t.Fatalf("expected b > a")
	}
	if d.Compare(idA, idA) != 0 {
		t.Fatalf("expected a == a")
	}
}

func TestInt64Dictionary_InsertAndGet(t *testing.T) {
	d := New(schema.Int64, 4, 100)
	id := d.Index(schema.Int64Value(42))
	if d.Get(id).Int64() != 42 {
		t.Fatalf("expected 42, got %d", d.Get(id).Int64())
	}
	if d.Index(schema.Int64Value(42)) != id {
		t.Fatalf("re-insert must return stable id")
	}
}

func TestBytesDictionary_RawRegionIsolation(t *testing.T) {
	d := New(schema.Bytes, 4, 100)
	idA := d.Index(schema.BytesValue([]byte{1, 2, 3}))
	idB := d.Index(schema.BytesValue([]byte{4, 5}))

	got := d.Get(idA).Bytes()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("unexpected bytes for idA: %v", got)
	}
	gotB := d.Get(idB).Bytes()
	if len(gotB) != 2 {
		t.Fatalf("unexpected bytes for idB: %v", gotB)
	}
}

func TestDictionary_GrowthPreservesIds(t *testing.T) {
	d := New(schema.Int32, 1, 1000) // tiny initial capacity to force growth
	ids := make([]int32, 0, 64)
	for i := int32(0); i < 64; i++ {
		ids = append(ids, d.Index(schema.Int32Value(i)))
	}
	for i, id := range ids {
		if id != int32(i) {
			t.Fatalf("growth must not reassign ids: index %d got id %d", i, id)
		}
		if d.Get(id).Int32() != int32(i) {
			t.Fatalf("growth must not corrupt stored values at id %d", id)
		}
	}
}
