package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/ClickHouse/clickhouse-go/v2"
)

// Target is the ClickHouse destination, driven through database/sql with the
// clickhouse-go driver.
type Target struct {
	dsn string
	db  *sql.DB
}

func NewTarget(dsn string) *Target {
	return &Target{dsn: dsn}
}

func (t *Target) Connect(ctx context.Context) error {
	db, err := sql.Open("clickhouse", t.dsn)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}
	t.db = db
	return nil
}

func (t *Target) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for read-only metadata queries.
func (t *Target) DB() *sql.DB {
	return t.db
}

// EnsureTable executes the configured table declaration. The declaration is
// expected to carry IF NOT EXISTS when re-runs against an existing table are
// intended.
func (t *Target) EnsureTable(ctx context.Context, ddl string) error {
	if _, err := t.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// InsertBatch delivers one batch inside a transaction, the batch-insert shape
// the clickhouse driver expects over database/sql.
func (t *Target) InsertBatch(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = "`" + col + "`"
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO `%s` (%s)", table, strings.Join(quoted, ", ")))
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
