package schema

// Value is a tagged variant over the primitive types a column can carry,
// plus string and bytes. It replaces a runtime interface{} switch in the
// hot ingestion path: the tag is read once per value, not dispatched
// through reflection.
type Value struct {
	typ DataType

	i32 int32
	i64 int64
	f32 float32
	f64 float64
	str string
	byt []byte
}

func Int32Value(v int32) Value     { return Value{typ: Int32, i32: v} }
func Int64Value(v int64) Value     { return Value{typ: Int64, i64: v} }
func Float32Value(v float32) Value { return Value{typ: Float32, f32: v} }
func Float64Value(v float64) Value { return Value{typ: Float64, f64: v} }
func StringValue(v string) Value   { return Value{typ: String, str: v} }
func BytesValue(v []byte) Value    { return Value{typ: Bytes, byt: v} }

// Type returns the value's data type tag.
func (v Value) Type() DataType { return v.typ }

func (v Value) Int32() int32     { return v.i32 }
func (v Value) Int64() int64     { return v.i64 }
func (v Value) Float32() float32 { return v.f32 }
func (v Value) Float64() float64 { return v.f64 }
func (v Value) String() string   { return v.str }
func (v Value) Bytes() []byte    { return v.byt }

// Equal reports whether two values of the same type are equal. Values of
// differing types are never equal.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case Int32:
		return v.i32 == other.i32
	case Int64:
		return v.i64 == other.i64
	case Float32:
		return v.f32 == other.f32
	case Float64:
		return v.f64 == other.f64
	case String:
		return v.str == other.str
	case Bytes:
		return string(v.byt) == string(other.byt)
	default:
		return false
	}
}

// Compare gives a total ordering over values of the same type, consistent
// with each type's natural order. Callers must not mix types.
func (v Value) Compare(other Value) int {
	switch v.typ {
	case Int32:
		return compareOrdered(v.i32, other.i32)
	case Int64:
		return compareOrdered(v.i64, other.i64)
	case Float32:
		return compareOrdered(v.f32, other.f32)
	case Float64:
		return compareOrdered(v.f64, other.f64)
	case String:
		return compareOrdered(v.str, other.str)
	case Bytes:
		return compareBytes(v.byt, other.byt)
	default:
		return 0
	}
}

func compareOrdered[T int32 | int64 | float32 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return compareOrdered(int64(len(a)), int64(len(b)))
}

// ByteSize estimates the in-memory footprint of the value, used to
// compute per-column average value size for the stats history.
func (v Value) ByteSize() int {
	switch v.typ {
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	case String:
		return len(v.str)
	case Bytes:
		return len(v.byt)
	default:
		return 0
	}
}

// Row is a single ingested record: one Value per physically stored
// column, keyed by column name. Multi-value columns carry a slice of
// Values under MultiValues instead.
type Row struct {
	Values      map[string]Value
	MultiValues map[string][]Value
}

// RowMetadata carries ingestion-time bookkeeping that travels alongside
// a row but is not itself a column value.
type RowMetadata struct {
	// IngestionTimeMs is the time the upstream message was produced, if
	// known. Zero means absent.
	IngestionTimeMs int64
}
