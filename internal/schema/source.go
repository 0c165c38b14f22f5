package schema

import (
	"context"
	"regexp"

	"github.com/rowforge/rowforge/internal/domain"
)

// Source yields the ordered column list of the target table. Implementations
// are DeclarationSource (static CREATE TABLE text) and DatabaseSource (live
// system.columns metadata); both normalize to the same representation.
type Source interface {
	Columns(ctx context.Context) ([]domain.Column, error)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidIdentifier reports whether s is safe to interpolate into SQL as a
// table or column name.
func IsValidIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// ClassifyColumns maps every column's raw type to its semantic kind,
// preserving order. The first unrecognized type aborts with an
// UnsupportedTypeError naming the column.
func ClassifyColumns(cols []domain.Column) ([]domain.Kind, error) {
	kinds := make([]domain.Kind, len(cols))
	for i, col := range cols {
		k, err := Classify(col.RawType)
		if err != nil {
			if ute, ok := err.(*domain.UnsupportedTypeError); ok {
				ute.Column = col.Name
			}
			return nil, err
		}
		kinds[i] = k
	}
	return kinds, nil
}
