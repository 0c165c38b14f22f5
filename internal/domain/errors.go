package domain

import "fmt"

// SchemaError means the table or declaration could not be resolved into an
// ordered column list.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema for table %q: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// UnsupportedTypeError means a column's raw type is outside the modeled kind
// set. Schema resolution aborts rather than silently skipping the column,
// since a skipped column would break the target table's ordering and NOT NULL
// expectations.
type UnsupportedTypeError struct {
	Column  string
	RawType string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("unsupported column type %q", e.RawType)
	}
	return fmt.Sprintf("column %q: unsupported column type %q", e.Column, e.RawType)
}

// HintShapeError means a user hint's shape is incompatible with its column's
// kind. Detected while resolving hints, before any row is generated.
type HintShapeError struct {
	Column string
	Reason string
}

func (e *HintShapeError) Error() string {
	return fmt.Sprintf("hint for column %q: %s", e.Column, e.Reason)
}

// ConfigError means a run parameter is missing or invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// SinkError means a batch insert failed after exhausting retries. RowsFlushed
// is the number of rows already delivered so operators can resume or audit.
type SinkError struct {
	Table       string
	RowsFlushed int64
	Err         error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("insert into %q failed after %d rows flushed: %v", e.Table, e.RowsFlushed, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
