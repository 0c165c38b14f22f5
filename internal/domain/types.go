package domain

// Column is one column of the target table as reported by a schema source.
// Column order is authoritative for row construction.
type Column struct {
	Name     string
	RawType  string
	Nullable bool
}

// BaseKind is the semantic value category a raw column type maps to.
type BaseKind int

const (
	KindInt BaseKind = iota
	KindUInt
	KindFloat
	KindBool
	KindString
	KindDateTime
	KindFixedPoint
	KindUUID
)

func (k BaseKind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindUInt:
		return "UInt"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindDateTime:
		return "DateTime"
	case KindFixedPoint:
		return "FixedPoint"
	case KindUUID:
		return "UUID"
	default:
		return "Unknown"
	}
}

// Numeric reports whether values of this kind are ordered numbers, i.e.
// whether a [min, max] range hint makes sense for it.
func (k BaseKind) Numeric() bool {
	switch k {
	case KindInt, KindUInt, KindFloat, KindFixedPoint:
		return true
	default:
		return false
	}
}

// Kind carries the base category plus the shape parameters needed to sample
// values of that category. Derived from the raw type string only, never
// inferred from data.
type Kind struct {
	Base BaseKind

	// Bits is the width for integer and float kinds (8, 16, 32 or 64).
	Bits int

	// FixedLen is the exact length for FixedString columns, 0 otherwise.
	FixedLen int

	// Precision and Scale describe Decimal columns.
	Precision int
	Scale     int

	// DateOnly marks Date/Date32 columns (day granularity, no time part).
	DateOnly bool

	// Nullable is set when the raw type carried a Nullable(...) wrapper.
	Nullable bool
}
