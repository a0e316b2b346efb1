// Package schema models the column and schema types shared by every
// component of the mutable segment: data types, field kinds, and the
// tagged value variant used to move a single column value through the
// ingestion path without per-row dynamic dispatch.
package schema

import "fmt"

// DataType is the static, per-column primitive type. The ingestion and
// read paths switch on it (or on a value's tag) for every row; no
// per-column dispatch is precomputed at construction.
type DataType int

const (
	Int32 DataType = iota
	Int64
	Float32
	Float64
	String
	Bytes
)

func (t DataType) String() string {
	switch t {
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Float32:
		return "FLOAT32"
	case Float64:
		return "FLOAT64"
	case String:
		return "STRING"
	case Bytes:
		return "BYTES"
	default:
		return "UNKNOWN"
	}
}

// Width returns the fixed byte width of the type for slot-addressed
// storage. Strings and bytes are variable-length and return 0; callers
// must use the append-only raw-byte region instead.
func (t DataType) Width() int {
	switch t {
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		return 0
	}
}

// IsNumeric reports whether the type supports additive aggregation.
func (t DataType) IsNumeric() bool {
	switch t {
	case Int32, Int64, Float32, Float64:
		return true
	default:
		return false
	}
}

// FieldKind classifies a column's role in the schema.
type FieldKind int

const (
	Dimension FieldKind = iota
	Metric
	Time
)

func (k FieldKind) String() string {
	switch k {
	case Dimension:
		return "DIMENSION"
	case Metric:
		return "METRIC"
	case Time:
		return "TIME"
	default:
		return "UNKNOWN"
	}
}

// Column describes one column of a segment's schema.
type Column struct {
	Name           string
	Type           DataType
	Kind           FieldKind
	MultiValue     bool
	NoDictionary   bool
	HasInvertedIdx bool
	Virtual        bool // serviced by an external provider, not physically stored
}

// Validate checks the no-dictionary restriction: only single-value,
// non-string columns without an inverted index may forgo the dictionary.
func (c Column) Validate() error {
	if !c.NoDictionary {
		return nil
	}
	if c.MultiValue {
		return fmt.Errorf("column %q: no-dictionary columns must be single-value", c.Name)
	}
	if c.Type == String || c.Type == Bytes {
		return fmt.Errorf("column %q: no-dictionary string/bytes columns are not supported", c.Name)
	}
	if c.HasInvertedIdx {
		return fmt.Errorf("column %q: no-dictionary columns cannot carry an inverted index", c.Name)
	}
	return nil
}

// Schema is the ordered set of a segment's columns, with an optional
// distinguished time column.
type Schema struct {
	Columns    []Column
	TimeColumn string // empty if the schema has no time column
}

// Column looks up a column definition by name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// DimensionColumns returns the schema's non-virtual dimension columns.
func (s Schema) DimensionColumns() []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Kind == Dimension && !c.Virtual {
			out = append(out, c)
		}
	}
	return out
}

// MetricColumns returns the schema's non-virtual metric columns.
func (s Schema) MetricColumns() []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Kind == Metric && !c.Virtual {
			out = append(out, c)
		}
	}
	return out
}

// TimeColumnDef returns the schema's distinguished time column, if any.
func (s Schema) TimeColumnDef() (Column, bool) {
	if s.TimeColumn == "" {
		return Column{}, false
	}
	return s.Column(s.TimeColumn)
}
