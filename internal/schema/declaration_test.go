package schema

import (
	"context"
	"strings"
	"testing"

	"github.com/rowforge/rowforge/internal/domain"
)

func TestParseCreateTable(t *testing.T) {
	ddl := `CREATE TABLE IF NOT EXISTS analytics.events (
		id UInt64,
		user_id Nullable(UInt32),
		name LowCardinality(String),
		amount Decimal(10, 2),
		created_at DateTime64(3, 'UTC') DEFAULT now(),
		INDEX idx_name name TYPE bloom_filter GRANULARITY 4
	) ENGINE = MergeTree() ORDER BY (id, created_at)`

	table, cols, err := ParseCreateTable(ddl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table != "events" {
		t.Fatalf("table = %q, want events", table)
	}

	want := []domain.Column{
		{Name: "id", RawType: "UInt64"},
		{Name: "user_id", RawType: "Nullable(UInt32)", Nullable: true},
		{Name: "name", RawType: "LowCardinality(String)"},
		{Name: "amount", RawType: "Decimal(10, 2)"},
		{Name: "created_at", RawType: "DateTime64(3, 'UTC')"},
	}
	if len(cols) != len(want) {
		t.Fatalf("got %d columns, want %d: %+v", len(cols), len(want), cols)
	}
	for i, w := range want {
		if cols[i] != w {
			t.Errorf("column %d = %+v, want %+v", i, cols[i], w)
		}
	}
}

func TestParseCreateTableBackticks(t *testing.T) {
	_, cols, err := ParseCreateTable("CREATE TABLE `t` (`a` UInt8, `b` String) ENGINE = Memory")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 2 || cols[0].Name != "a" || cols[1].Name != "b" {
		t.Fatalf("unexpected columns: %+v", cols)
	}
}

func TestParseCreateTableErrors(t *testing.T) {
	tests := []struct {
		name string
		ddl  string
	}{
		{"not a create table", "SELECT 1"},
		{"no column list", "CREATE TABLE t"},
		{"empty columns", "CREATE TABLE t ()"},
		{"unbalanced", "CREATE TABLE t (a UInt8"},
		{"missing type", "CREATE TABLE t (a)"},
		{"bad column name", "CREATE TABLE t (1a UInt8)"},
	}
	for _, tt := range tests {
		if _, _, err := ParseCreateTable(tt.ddl); err == nil {
			t.Errorf("%s: expected error, got none", tt.name)
		}
	}
}

func TestDeclarationSourceWrapsSchemaError(t *testing.T) {
	src := NewDeclarationSource("DROP TABLE t")
	_, err := src.Columns(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*domain.SchemaError); !ok {
		t.Fatalf("expected SchemaError, got %T", err)
	}
	if !strings.Contains(err.Error(), "CREATE TABLE") {
		t.Fatalf("error should explain the expected form: %v", err)
	}
}
