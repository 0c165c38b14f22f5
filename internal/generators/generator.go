package generators

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/rowforge/rowforge/internal/domain"
)

// Generator produces one value per invocation from the run's random stream.
type Generator interface {
	Next(rng *rand.Rand) (interface{}, error)
}

// ColumnSpec is the resolved, type-checked generation rule for one column.
type ColumnSpec struct {
	Column string
	Kind   domain.Kind
	Gen    Generator
}

// Nullable columns produce NULL once every nullEvery draws on average. This
// is a policy constant, not user configurable.
const nullEvery = 20

// Next draws the next value for the column, short-circuiting to NULL for
// nullable columns before any constraint sampling.
func (s *ColumnSpec) Next(rng *rand.Rand) (interface{}, error) {
	if s.Kind.Nullable && rng.Intn(nullEvery) == 0 {
		return nil, nil
	}
	return s.Gen.Next(rng)
}

// uintRange samples uniformly over [min, max] inclusive.
type uintRange struct {
	min, max uint64
	bits     int
}

func (g uintRange) Next(rng *rand.Rand) (interface{}, error) {
	span := g.max - g.min
	var v uint64
	if span == math.MaxUint64 {
		v = rng.Uint64()
	} else {
		v = g.min + rng.Uint64()%(span+1)
	}
	return castUint(v, g.bits), nil
}

// intRange samples uniformly over [min, max] inclusive.
type intRange struct {
	min, max int64
	bits     int
}

func (g intRange) Next(rng *rand.Rand) (interface{}, error) {
	span := uint64(g.max) - uint64(g.min)
	var v int64
	if span == math.MaxUint64 {
		v = int64(rng.Uint64())
	} else {
		v = g.min + int64(rng.Uint64()%(span+1))
	}
	return castInt(v, g.bits), nil
}

type floatRange struct {
	min, max float64
	bits     int
}

func (g floatRange) Next(rng *rand.Rand) (interface{}, error) {
	v := g.min + rng.Float64()*(g.max-g.min)
	if g.bits == 32 {
		return float32(v), nil
	}
	return v, nil
}

// enumeration samples with replacement from an ordered list of literals that
// were already coerced to the column's kind at resolve time.
type enumeration struct {
	values []interface{}
}

func (g enumeration) Next(rng *rand.Rand) (interface{}, error) {
	return g.values[rng.Intn(len(g.values))], nil
}

// dateWindow samples an instant uniformly within [start, end].
type dateWindow struct {
	start, end time.Time
	dateOnly   bool
}

func (g dateWindow) Next(rng *rand.Rand) (interface{}, error) {
	seconds := int64(g.end.Sub(g.start) / time.Second)
	t := g.start
	if seconds > 0 {
		t = g.start.Add(time.Duration(rng.Int63n(seconds+1)) * time.Second)
	}
	if g.dateOnly {
		y, m, d := t.Date()
		t = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return t, nil
}

type boolGen struct{}

func (boolGen) Next(rng *rand.Rand) (interface{}, error) {
	return rng.Intn(2) == 1, nil
}

const alnum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// stringGen produces random alphanumeric strings. A fixed length is used for
// FixedString columns, otherwise the length is sampled from [minLen, maxLen].
type stringGen struct {
	minLen, maxLen int
	fixed          int
}

func (g stringGen) Next(rng *rand.Rand) (interface{}, error) {
	n := g.fixed
	if n == 0 {
		n = g.minLen + rng.Intn(g.maxLen-g.minLen+1)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alnum[rng.Intn(len(alnum))]
	}
	return string(b), nil
}

// decimalGen samples at the declared scale's smallest unit and renders the
// value as a decimal string.
type decimalGen struct {
	minUnits, maxUnits int64
	scale              int
}

func (g decimalGen) Next(rng *rand.Rand) (interface{}, error) {
	span := uint64(g.maxUnits) - uint64(g.minUnits)
	units := g.minUnits + int64(rng.Uint64()%(span+1))
	return formatScaled(units, g.scale), nil
}

// uuidGen builds version-4 UUIDs from the run's seeded stream so UUID columns
// stay reproducible under a fixed seed.
type uuidGen struct{}

func (uuidGen) Next(rng *rand.Rand) (interface{}, error) {
	var b [16]byte
	rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	u, err := uuid.FromBytes(b[:])
	if err != nil {
		return nil, err
	}
	return u.String(), nil
}

func castUint(v uint64, bits int) interface{} {
	switch bits {
	case 8:
		return uint8(v)
	case 16:
		return uint16(v)
	case 32:
		return uint32(v)
	default:
		return v
	}
}

func castInt(v int64, bits int) interface{} {
	switch bits {
	case 8:
		return int8(v)
	case 16:
		return int16(v)
	case 32:
		return int32(v)
	default:
		return v
	}
}
