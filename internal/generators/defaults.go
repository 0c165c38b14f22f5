package generators

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rowforge/rowforge/internal/domain"
)

// Default policies for unhinted columns. Wide integer domains are narrowed to
// a plausible sub-range so unhinted data does not sit at type extremes; the
// narrow widths keep their full native range.
const (
	defaultWideIntBound = 1_000_000
	defaultStrMinLen    = 5
	defaultStrMaxLen    = 15
	defaultWindowDays   = 365
)

// defaultGenerator returns the kind-appropriate fallback generator. reference
// anchors the date window for date/time kinds.
func defaultGenerator(kind domain.Kind, reference time.Time) (Generator, error) {
	switch kind.Base {
	case domain.KindUInt:
		max := maxUint(kind.Bits)
		if kind.Bits >= 32 {
			max = defaultWideIntBound
		}
		return uintRange{min: 0, max: max, bits: kind.Bits}, nil

	case domain.KindInt:
		min, max := intBounds(kind.Bits)
		if kind.Bits >= 32 {
			min, max = -defaultWideIntBound, defaultWideIntBound
		}
		return intRange{min: min, max: max, bits: kind.Bits}, nil

	case domain.KindFloat:
		if kind.Bits == 32 {
			return floatRange{min: -1e3, max: 1e3, bits: 32}, nil
		}
		return floatRange{min: -1e6, max: 1e6, bits: 64}, nil

	case domain.KindBool:
		return boolGen{}, nil

	case domain.KindString:
		return stringGen{minLen: defaultStrMinLen, maxLen: defaultStrMaxLen, fixed: kind.FixedLen}, nil

	case domain.KindDateTime:
		return dateWindow{
			start:    reference.Add(-defaultWindowDays * 24 * time.Hour),
			end:      reference,
			dateOnly: kind.DateOnly,
		}, nil

	case domain.KindFixedPoint:
		// Whole units up to the declared precision, sampled at scale.
		bound := (pow10(kind.Precision-kind.Scale) - 1) * pow10(kind.Scale)
		return decimalGen{minUnits: -bound, maxUnits: bound, scale: kind.Scale}, nil

	case domain.KindUUID:
		return uuidGen{}, nil
	}
	return nil, fmt.Errorf("no default generator for kind %s", kind.Base)
}

func maxUint(bits int) uint64 {
	switch bits {
	case 8:
		return math.MaxUint8
	case 16:
		return math.MaxUint16
	case 32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

func intBounds(bits int) (int64, int64) {
	switch bits {
	case 8:
		return math.MinInt8, math.MaxInt8
	case 16:
		return math.MinInt16, math.MaxInt16
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// formatScaled renders units at the given scale as a plain decimal string,
// e.g. formatScaled(-1234, 2) == "-12.34".
func formatScaled(units int64, scale int) string {
	if scale == 0 {
		return fmt.Sprintf("%d", units)
	}
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	div := pow10(scale)
	whole := units / div
	frac := units % div
	return fmt.Sprintf("%s%d.%0*d", sign, whole, scale, frac)
}

// parseTimeLiteral accepts the date/time literal formats hints may use.
func parseTimeLiteral(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time literal %q", s)
}
