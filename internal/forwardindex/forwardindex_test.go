package forwardindex

import (
	"testing"

	"github.com/arkilian/rtsegment/internal/memory"
)

func TestSingleValueWriter_Int32RoundTrip(t *testing.T) {
	mgr := memory.New("seg0", false)
	w, err := NewSingleValueWriter(mgr, "dim", 4, 4)
	if err != nil {
		t.Fatalf("NewSingleValueWriter: %v", err)
	}
	w.SetInt32(0, 7)
	w.SetInt32(1, 9)
	if got := w.GetInt32(0); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := w.GetInt32(1); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}

func TestSingleValueWriter_GrowsBeyondInitialCapacity(t *testing.T) {
	mgr := memory.New("seg0", false)
	w, err := NewSingleValueWriter(mgr, "dim", 4, 2)
	if err != nil {
		t.Fatalf("NewSingleValueWriter: %v", err)
	}
	for i := int32(0); i < 50; i++ {
		w.SetInt32(i, i*2)
	}
	for i := int32(0); i < 50; i++ {
		if got := w.GetInt32(i); got != i*2 {
			t.Fatalf("docId %d: got %d, want %d", i, got, i*2)
		}
	}
}

func TestSingleValueWriter_Float64RoundTrip(t *testing.T) {
	mgr := memory.New("seg0", false)
	w, err := NewSingleValueWriter(mgr, "metric", 8, 4)
	if err != nil {
		t.Fatalf("NewSingleValueWriter: %v", err)
	}
	w.SetFloat64(0, 3.14159)
	if got := w.GetFloat64(0); got != 3.14159 {
		t.Fatalf("expected 3.14159, got %v", got)
	}
}

func TestMultiValueWriter_AppendAndGet(t *testing.T) {
	w := NewMultiValueWriter(4, 2)
	if err := w.Append([]int32{1, 2, 3}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Append([]int32{5}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got0 := w.Get(0)
	if len(got0) != 3 || got0[0] != 1 || got0[1] != 2 || got0[2] != 3 {
		t.Fatalf("unexpected docId 0: %v", got0)
	}
	got1 := w.Get(1)
	if len(got1) != 1 || got1[0] != 5 {
		t.Fatalf("unexpected docId 1: %v", got1)
	}
	if w.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", w.Len())
	}
}

func TestMultiValueWriter_RejectsOverCap(t *testing.T) {
	w := NewMultiValueWriter(1, 1)
	ids := make([]int32, MaxValuesPerRow+1)
	if err := w.Append(ids); err == nil {
		t.Fatal("expected a capacity error for over-cap row")
	}
	if w.Len() != 0 {
		t.Fatalf("rejected row must not have been recorded, got len %d", w.Len())
	}
}
