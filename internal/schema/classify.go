package schema

import (
	"strconv"
	"strings"

	"github.com/rowforge/rowforge/internal/domain"
)

// Classify maps a raw ClickHouse type string to its semantic kind. Wrappers
// are peeled first: Nullable(...) sets the nullable flag, LowCardinality(...)
// is transparent. Anything outside the modeled set is an
// UnsupportedTypeError.
func Classify(rawType string) (domain.Kind, error) {
	t := strings.TrimSpace(rawType)
	nullable := false
	for {
		if inner, ok := unwrap(t, "Nullable"); ok {
			nullable = true
			t = inner
			continue
		}
		if inner, ok := unwrap(t, "LowCardinality"); ok {
			t = inner
			continue
		}
		break
	}

	k, err := classifyBase(t, rawType)
	if err != nil {
		return domain.Kind{}, err
	}
	k.Nullable = nullable
	return k, nil
}

func unwrap(s, wrapper string) (string, bool) {
	prefix := wrapper + "("
	if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, ")") {
		return strings.TrimSpace(s[len(prefix) : len(s)-1]), true
	}
	return "", false
}

func classifyBase(t, rawType string) (domain.Kind, error) {
	switch t {
	case "UInt8":
		return domain.Kind{Base: domain.KindUInt, Bits: 8}, nil
	case "UInt16":
		return domain.Kind{Base: domain.KindUInt, Bits: 16}, nil
	case "UInt32":
		return domain.Kind{Base: domain.KindUInt, Bits: 32}, nil
	case "UInt64":
		return domain.Kind{Base: domain.KindUInt, Bits: 64}, nil
	case "Int8":
		return domain.Kind{Base: domain.KindInt, Bits: 8}, nil
	case "Int16":
		return domain.Kind{Base: domain.KindInt, Bits: 16}, nil
	case "Int32":
		return domain.Kind{Base: domain.KindInt, Bits: 32}, nil
	case "Int64":
		return domain.Kind{Base: domain.KindInt, Bits: 64}, nil
	case "Float32":
		return domain.Kind{Base: domain.KindFloat, Bits: 32}, nil
	case "Float64":
		return domain.Kind{Base: domain.KindFloat, Bits: 64}, nil
	case "Bool":
		return domain.Kind{Base: domain.KindBool}, nil
	case "String":
		return domain.Kind{Base: domain.KindString}, nil
	case "Date", "Date32":
		return domain.Kind{Base: domain.KindDateTime, DateOnly: true}, nil
	case "DateTime":
		return domain.Kind{Base: domain.KindDateTime}, nil
	case "UUID":
		return domain.Kind{Base: domain.KindUUID}, nil
	}

	switch {
	case strings.HasPrefix(t, "FixedString("):
		n, err := singleIntArg(t, "FixedString")
		if err != nil || n <= 0 {
			return domain.Kind{}, &domain.UnsupportedTypeError{RawType: rawType}
		}
		return domain.Kind{Base: domain.KindString, FixedLen: n}, nil

	case strings.HasPrefix(t, "DateTime64("), strings.HasPrefix(t, "DateTime("):
		// Precision and timezone arguments do not change how values are
		// sampled; the driver handles formatting.
		return domain.Kind{Base: domain.KindDateTime}, nil

	case strings.HasPrefix(t, "Decimal("):
		p, s, err := pairIntArgs(t, "Decimal")
		if err != nil || p <= 0 || s < 0 || s > p || p > 18 {
			return domain.Kind{}, &domain.UnsupportedTypeError{RawType: rawType}
		}
		return domain.Kind{Base: domain.KindFixedPoint, Precision: p, Scale: s}, nil

	case strings.HasPrefix(t, "Decimal32("):
		s, err := singleIntArg(t, "Decimal32")
		if err != nil || s < 0 || s > 9 {
			return domain.Kind{}, &domain.UnsupportedTypeError{RawType: rawType}
		}
		return domain.Kind{Base: domain.KindFixedPoint, Precision: 9, Scale: s}, nil

	case strings.HasPrefix(t, "Decimal64("):
		s, err := singleIntArg(t, "Decimal64")
		if err != nil || s < 0 || s > 18 {
			return domain.Kind{}, &domain.UnsupportedTypeError{RawType: rawType}
		}
		return domain.Kind{Base: domain.KindFixedPoint, Precision: 18, Scale: s}, nil
	}

	return domain.Kind{}, &domain.UnsupportedTypeError{RawType: rawType}
}

func singleIntArg(t, name string) (int, error) {
	inner, ok := unwrap(t, name)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(strings.TrimSpace(inner))
}

func pairIntArgs(t, name string) (int, int, error) {
	inner, ok := unwrap(t, name)
	if !ok {
		return 0, 0, strconv.ErrSyntax
	}
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return 0, 0, strconv.ErrSyntax
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
