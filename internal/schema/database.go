package schema

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rowforge/rowforge/internal/domain"
)

// DatabaseSource resolves the column list from the live database's
// system.columns metadata. This is the only place schema resolution talks to
// the target; the query is read-only.
type DatabaseSource struct {
	db       *sql.DB
	database string
	table    string
}

func NewDatabaseSource(db *sql.DB, database, table string) *DatabaseSource {
	return &DatabaseSource{db: db, database: database, table: table}
}

const columnsQuery = `
SELECT name, type
FROM system.columns
WHERE database = ? AND table = ?
ORDER BY position`

func (s *DatabaseSource) Columns(ctx context.Context) ([]domain.Column, error) {
	rows, err := s.db.QueryContext(ctx, columnsQuery, s.database, s.table)
	if err != nil {
		return nil, &domain.SchemaError{Table: s.table, Err: err}
	}
	defer rows.Close()

	var cols []domain.Column
	for rows.Next() {
		var name, rawType string
		if err := rows.Scan(&name, &rawType); err != nil {
			return nil, &domain.SchemaError{Table: s.table, Err: err}
		}
		cols = append(cols, domain.Column{
			Name:     name,
			RawType:  rawType,
			Nullable: containsNullable(rawType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.SchemaError{Table: s.table, Err: err}
	}
	if len(cols) == 0 {
		return nil, &domain.SchemaError{Table: s.table, Err: errors.New("table not found or has no columns")}
	}
	return cols, nil
}

func containsNullable(rawType string) bool {
	k, err := Classify(rawType)
	if err != nil {
		// Unsupported types are rejected later by classification; the
		// nullable flag is irrelevant for them.
		return false
	}
	return k.Nullable
}
