package config

import (
	"testing"

	"github.com/arkilian/rtsegment/internal/memory"
)

func TestSegmentConfig_ValidateRequiresName(t *testing.T) {
	cfg := DefaultConfig("")
	cfg.MemoryManager = memory.New("seg0", false)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for empty segment name")
	}
}

func TestSegmentConfig_ValidateRequiresMemoryManager(t *testing.T) {
	cfg := DefaultConfig("seg0")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for missing memory manager")
	}
}

func TestSegmentConfig_ValidatePasses(t *testing.T) {
	cfg := DefaultConfig("seg0")
	cfg.MemoryManager = memory.New("seg0", false)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestSegmentConfig_ValidateRejectsNonPositiveCapacity(t *testing.T) {
	cfg := DefaultConfig("seg0")
	cfg.MemoryManager = memory.New("seg0", false)
	cfg.Capacity = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for non-positive capacity")
	}
}

func TestGenerateSegmentName_Unique(t *testing.T) {
	a, b := GenerateSegmentName(), GenerateSegmentName()
	if a == b {
		t.Fatal("expected distinct generated segment names")
	}
	cfg := DefaultConfig(a)
	cfg.MemoryManager = memory.New(a, false)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected a generated name to pass validation, got %v", err)
	}
}
