package generators

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rowforge/rowforge/internal/domain"
)

// Resolve merges user hints with kind-derived defaults into one compiled
// ColumnSpec per column, in schema order. All hint shape validation happens
// here, before any row is generated: a hint incompatible with its column's
// kind is a HintShapeError, a hint naming an unknown column is a ConfigError.
func Resolve(cols []domain.Column, kinds []domain.Kind, hints map[string]interface{}, reference time.Time) ([]*ColumnSpec, error) {
	if len(cols) != len(kinds) {
		return nil, fmt.Errorf("column/kind count mismatch: %d vs %d", len(cols), len(kinds))
	}

	known := make(map[string]bool, len(cols))
	for _, col := range cols {
		known[col.Name] = true
	}
	for name := range hints {
		if !known[name] {
			return nil, &domain.ConfigError{Field: "hints." + name, Reason: "column not present in table schema"}
		}
	}

	specs := make([]*ColumnSpec, len(cols))
	for i, col := range cols {
		var gen Generator
		var err error
		if hint, ok := hints[col.Name]; ok && hint != nil {
			gen, err = compileHint(col, kinds[i], hint)
		} else {
			gen, err = defaultGenerator(kinds[i], reference)
		}
		if err != nil {
			return nil, err
		}
		specs[i] = &ColumnSpec{Column: col.Name, Kind: kinds[i], Gen: gen}
	}
	return specs, nil
}

func compileHint(col domain.Column, kind domain.Kind, hint interface{}) (Generator, error) {
	switch h := hint.(type) {
	case []interface{}:
		if len(h) == 0 {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: "literal list is empty"}
		}
		// A two-number pair on a numeric kind is a range; every other list is
		// an enumeration of literals.
		if len(h) == 2 && kind.Base.Numeric() && isNumber(h[0]) && isNumber(h[1]) {
			return compileRange(col, kind, h[0], h[1])
		}
		return compileEnumeration(col, kind, h)

	case map[string]interface{}:
		return compileWindow(col, kind, h)

	case string:
		return compilePool(col, kind, h)

	default:
		return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("unsupported hint shape %T", hint)}
	}
}

func compileRange(col domain.Column, kind domain.Kind, lo, hi interface{}) (Generator, error) {
	switch kind.Base {
	case domain.KindUInt:
		min, ok1 := asUint64(lo)
		max, ok2 := asUint64(hi)
		if !ok1 || !ok2 {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: "range bounds must be non-negative integers"}
		}
		if min > max {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("range min %d greater than max %d", min, max)}
		}
		if limit := maxUint(kind.Bits); max > limit {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("range max %d exceeds %s%d domain", max, kind.Base, kind.Bits)}
		}
		return uintRange{min: min, max: max, bits: kind.Bits}, nil

	case domain.KindInt:
		min, ok1 := asInt64(lo)
		max, ok2 := asInt64(hi)
		if !ok1 || !ok2 {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: "range bounds must be integers"}
		}
		if min > max {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("range min %d greater than max %d", min, max)}
		}
		lowLimit, highLimit := intBounds(kind.Bits)
		if min < lowLimit || max > highLimit {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("range [%d, %d] exceeds %s%d domain", min, max, kind.Base, kind.Bits)}
		}
		return intRange{min: min, max: max, bits: kind.Bits}, nil

	case domain.KindFloat:
		min, ok1 := asFloat64(lo)
		max, ok2 := asFloat64(hi)
		if !ok1 || !ok2 || min > max {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: "range bounds must be numbers with min <= max"}
		}
		return floatRange{min: min, max: max, bits: kind.Bits}, nil

	case domain.KindFixedPoint:
		minUnits, err := scaledUnits(col, kind, lo)
		if err != nil {
			return nil, err
		}
		maxUnits, err := scaledUnits(col, kind, hi)
		if err != nil {
			return nil, err
		}
		if minUnits > maxUnits {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: "range min greater than max"}
		}
		return decimalGen{minUnits: minUnits, maxUnits: maxUnits, scale: kind.Scale}, nil
	}
	return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("range hint not applicable to %s kind", kind.Base)}
}

func compileEnumeration(col domain.Column, kind domain.Kind, raw []interface{}) (Generator, error) {
	values := make([]interface{}, len(raw))
	for i, v := range raw {
		coerced, err := coerceLiteral(col, kind, v)
		if err != nil {
			return nil, err
		}
		values[i] = coerced
	}
	return enumeration{values: values}, nil
}

func compileWindow(col domain.Column, kind domain.Kind, h map[string]interface{}) (Generator, error) {
	if kind.Base != domain.KindDateTime {
		return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("date window hint not applicable to %s kind", kind.Base)}
	}
	startRaw, ok1 := h["start"].(string)
	endRaw, ok2 := h["end"].(string)
	if !ok1 || !ok2 {
		return nil, &domain.HintShapeError{Column: col.Name, Reason: "date window requires string 'start' and 'end'"}
	}
	start, err := parseTimeLiteral(startRaw)
	if err != nil {
		return nil, &domain.HintShapeError{Column: col.Name, Reason: err.Error()}
	}
	end, err := parseTimeLiteral(endRaw)
	if err != nil {
		return nil, &domain.HintShapeError{Column: col.Name, Reason: err.Error()}
	}
	if end.Before(start) {
		return nil, &domain.HintShapeError{Column: col.Name, Reason: "window end precedes start"}
	}
	return dateWindow{start: start, end: end, dateOnly: kind.DateOnly}, nil
}

func coerceLiteral(col domain.Column, kind domain.Kind, v interface{}) (interface{}, error) {
	switch kind.Base {
	case domain.KindUInt:
		n, ok := asUint64(v)
		if !ok || n > maxUint(kind.Bits) {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v outside %s%d domain", v, kind.Base, kind.Bits)}
		}
		return castUint(n, kind.Bits), nil

	case domain.KindInt:
		n, ok := asInt64(v)
		lo, hi := intBounds(kind.Bits)
		if !ok || n < lo || n > hi {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v outside %s%d domain", v, kind.Base, kind.Bits)}
		}
		return castInt(n, kind.Bits), nil

	case domain.KindFloat:
		f, ok := asFloat64(v)
		if !ok {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v is not a number", v)}
		}
		if kind.Bits == 32 {
			return float32(f), nil
		}
		return f, nil

	case domain.KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v is not a bool", v)}
		}
		return b, nil

	case domain.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v is not a string", v)}
		}
		if kind.FixedLen > 0 && len(s) != kind.FixedLen {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %q is not %d bytes", s, kind.FixedLen)}
		}
		return s, nil

	case domain.KindDateTime:
		s, ok := v.(string)
		if !ok {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v is not a time string", v)}
		}
		t, err := parseTimeLiteral(s)
		if err != nil {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: err.Error()}
		}
		if kind.DateOnly {
			y, m, d := t.Date()
			t = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
		return t, nil

	case domain.KindFixedPoint:
		units, err := scaledUnits(col, kind, v)
		if err != nil {
			return nil, err
		}
		return formatScaled(units, kind.Scale), nil

	case domain.KindUUID:
		s, ok := v.(string)
		if !ok {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v is not a UUID string", v)}
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %q is not a UUID", s)}
		}
		return u.String(), nil
	}
	return nil, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literals not supported for %s kind", kind.Base)}
}

// scaledUnits converts a numeric literal to the column's smallest decimal
// unit, checking the declared precision.
func scaledUnits(col domain.Column, kind domain.Kind, v interface{}) (int64, error) {
	f, ok := asFloat64(v)
	if !ok {
		return 0, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v is not a number", v)}
	}
	units := int64(math.Round(f * float64(pow10(kind.Scale))))
	limit := pow10(kind.Precision)
	if units <= -limit || units >= limit {
		return 0, &domain.HintShapeError{Column: col.Name, Reason: fmt.Sprintf("literal %v exceeds Decimal(%d, %d) precision", v, kind.Precision, kind.Scale)}
	}
	return units, nil
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float32:
		return int64(n), float64(n) == math.Trunc(float64(n))
	case float64:
		return int64(n), n == math.Trunc(n)
	default:
		return 0, false
	}
}

func asUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	default:
		i, ok := asInt64(v)
		if !ok || i < 0 {
			return 0, false
		}
		return uint64(i), true
	}
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
