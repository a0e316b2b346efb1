package bloom

import "testing"

func TestColumnFilter_AddAndContains(t *testing.T) {
	f := New(1024, 4)

	f.Add([]byte("us-east"))
	f.Add([]byte("us-west"))

	if !f.Contains([]byte("us-east")) {
		t.Fatal("expected us-east to be reported present")
	}
	if !f.Contains([]byte("us-west")) {
		t.Fatal("expected us-west to be reported present")
	}
	if f.Count() != 2 {
		t.Fatalf("expected count 2, got %d", f.Count())
	}
}

func TestColumnFilter_NeverFalseNegative(t *testing.T) {
	f := NewWithEstimates(500, 0.01)
	items := make([][]byte, 500)
	for i := range items {
		items[i] = []byte{byte(i), byte(i >> 8)}
		f.Add(items[i])
	}
	for i, item := range items {
		if !f.Contains(item) {
			t.Fatalf("item %d must never be reported absent after Add", i)
		}
	}
}

func TestOptimalParameters_WithinBounds(t *testing.T) {
	numBits, numHashes := OptimalParameters(10000, 0.01)
	if numBits < 64 {
		t.Fatalf("expected a sane bit width, got %d", numBits)
	}
	if numHashes < 1 {
		t.Fatalf("expected at least one hash function, got %d", numHashes)
	}
}

func TestColumnFilter_SerializeRoundTrip(t *testing.T) {
	f := NewWithEstimates(200, 0.01)
	f.Add([]byte("eu-central"))
	f.Add([]byte("ap-south"))

	data := f.Serialize()

	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.NumBits() != f.NumBits() || got.NumHashes() != f.NumHashes() {
		t.Fatalf("round trip changed filter dimensions: want bits=%d hashes=%d, got bits=%d hashes=%d",
			f.NumBits(), f.NumHashes(), got.NumBits(), got.NumHashes())
	}
	if got.Count() != f.Count() {
		t.Fatalf("round trip changed count: want %d, got %d", f.Count(), got.Count())
	}
	if !got.Contains([]byte("eu-central")) || !got.Contains([]byte("ap-south")) {
		t.Fatal("round-tripped filter lost a previously added item")
	}
}

func TestDeserialize_RejectsShortInput(t *testing.T) {
	if _, err := Deserialize([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for truncated input")
	}
}
