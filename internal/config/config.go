// Package config provides the mutable segment's construction
// configuration: everything the segment needs at construction time
// besides the schema itself.
package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/arkilian/rtsegment/internal/memory"
	"github.com/arkilian/rtsegment/internal/statshistory"
)

// PartitionConfig optionally scopes a segment to one partition of a
// larger table; carried through unchanged by the segment, not
// interpreted by it.
type PartitionConfig struct {
	PartitionColumn string `json:"partition_column" yaml:"partition_column"`
	PartitionValue  string `json:"partition_value" yaml:"partition_value"`
}

// SegmentConfig is the segment construction contract: segment name,
// capacity, off-heap flag, shared handles to the memory manager and
// stats history, stream name, and the per-column declarations that
// aren't already carried by the schema (no-dictionary set,
// inverted-index set, aggregate-metrics flag, avg-multi-values
// estimate).
type SegmentConfig struct {
	SegmentName string `json:"segment_name" yaml:"segment_name"`

	// Capacity is the maximum number of docIds the segment will accept.
	Capacity int `json:"capacity" yaml:"capacity"`

	// OffHeap selects whether the memory manager backs buffers with
	// memory-mapped files (true) or plain heap slices (false).
	OffHeap bool `json:"off_heap" yaml:"off_heap"`

	// StreamName identifies the upstream source this segment ingests
	// from, carried for observability only.
	StreamName string `json:"stream_name" yaml:"stream_name"`

	// AvgMultiValuesEstimate sizes the initial multi-value payload
	// array: estimatedRows * AvgMultiValuesEstimate.
	AvgMultiValuesEstimate int `json:"avg_multi_values_estimate" yaml:"avg_multi_values_estimate"`

	// NoDictionaryColumns names columns stored without dictionary
	// encoding. Restricted to single-value, non-string columns with no
	// inverted index; validated against the schema at construction.
	NoDictionaryColumns map[string]bool `json:"no_dictionary_columns" yaml:"no_dictionary_columns"`

	// InvertedIndexColumns names columns that carry a realtime inverted
	// index.
	InvertedIndexColumns map[string]bool `json:"inverted_index_columns" yaml:"inverted_index_columns"`

	// BloomFilterColumns names columns that carry a bloom filter,
	// populated at seal time; during the mutable phase the filter is
	// allocated but left empty.
	BloomFilterColumns map[string]bool `json:"bloom_filter_columns" yaml:"bloom_filter_columns"`

	// AggregateMetrics requests metric pre-aggregation by dimension key.
	// Actual enablement additionally requires the schema-level
	// conditions in the aggregation-enablement check; if those fail,
	// aggregation is disabled and a warning is recorded rather than
	// failing construction.
	AggregateMetrics bool `json:"aggregate_metrics" yaml:"aggregate_metrics"`

	// Partition optionally scopes this segment to one table partition.
	Partition *PartitionConfig `json:"partition,omitempty" yaml:"partition,omitempty"`

	// MemoryManager is the segment's exclusive allocator, built by the
	// caller and passed in so ownership is explicit at construction.
	MemoryManager *memory.Manager `json:"-" yaml:"-"`

	// StatsHistory is the process-wide stats log handle.
	StatsHistory *statshistory.History `json:"-" yaml:"-"`
}

// GenerateSegmentName returns a fresh, process-unique segment name for
// callers that don't have a natural one (e.g. an ad hoc or test
// segment), so two unnamed segments never collide in the stats history
// or memory manager allocation contexts.
func GenerateSegmentName() string {
	return "segment-" + uuid.NewString()
}

// DefaultConfig returns a SegmentConfig with conservative defaults
// suitable for a small test or demo segment.
func DefaultConfig(segmentName string) *SegmentConfig {
	return &SegmentConfig{
		SegmentName:            segmentName,
		Capacity:               1_000_000,
		OffHeap:                false,
		AvgMultiValuesEstimate: 1,
		NoDictionaryColumns:    map[string]bool{},
		InvertedIndexColumns:   map[string]bool{},
		BloomFilterColumns:     map[string]bool{},
		AggregateMetrics:       false,
	}
}

// Validate checks the structural requirements the segment relies on at
// construction: a non-empty name, positive capacity, and a memory
// manager handle. The stats history handle is optional and not checked.
// An AvgMultiValuesEstimate below 1 is raised to 1.
func (c *SegmentConfig) Validate() error {
	if c.SegmentName == "" {
		return fmt.Errorf("config: segment_name is required")
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("config: capacity must be positive, got %d", c.Capacity)
	}
	if c.MemoryManager == nil {
		return fmt.Errorf("config: memory_manager handle is required")
	}
	if c.AvgMultiValuesEstimate < 1 {
		c.AvgMultiValuesEstimate = 1
	}
	return nil
}

// LoadFromFile loads a SegmentConfig's static fields (everything but the
// MemoryManager and StatsHistory handles, which are always constructed
// and injected by the caller) from a YAML file.
func LoadFromFile(path string) (*SegmentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read file: %w", err)
	}

	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}
	return cfg, nil
}
