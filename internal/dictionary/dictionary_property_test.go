package dictionary

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/rtsegment/pkg/schema"
)

// TestProperty_IndexOfInvertsGet validates the dictionary round-trip
// invariant: indexOf(get(i)) == i for every assigned id.
func TestProperty_IndexOfInvertsGet(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("indexOf(get(i)) == i for all assigned ids", prop.ForAll(
		func(values []int64) bool {
			d := New(schema.Int64, 8, 10000)
			seen := make(map[int64]int32)
			for _, v := range values {
				id := d.Index(schema.Int64Value(v))
				if existing, ok := seen[v]; ok && existing != id {
					return false
				}
				seen[v] = id
			}
			for i := int32(0); i < d.Length(); i++ {
				val := d.Get(i)
				if d.IndexOf(val) != i {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-1000, 1000)),
	))

	properties.Property("ids are dense and contiguous in [0, cardinality)", prop.ForAll(
		func(values []string) bool {
			d := New(schema.String, 8, 10000)
			distinct := make(map[string]bool)
			ids := make(map[int32]bool)
			for _, v := range values {
				ids[d.Index(schema.StringValue(v))] = true
				distinct[v] = true
			}
			if int(d.Length()) != len(distinct) || len(ids) != len(distinct) {
				return false
			}
			for id := range ids {
				if id < 0 || id >= d.Length() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
