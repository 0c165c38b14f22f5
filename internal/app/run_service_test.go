package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/rowforge/rowforge/internal/config"
	"github.com/rowforge/rowforge/internal/domain"
	"github.com/rowforge/rowforge/internal/logging"
)

type fakeTarget struct {
	batches   [][][]interface{}
	columns   []string
	ensured   []string
	connected bool
	insertErr error
}

func (t *fakeTarget) Connect(_ context.Context) error { t.connected = true; return nil }
func (t *fakeTarget) Close() error                    { return nil }
func (t *fakeTarget) DB() *sql.DB                     { return nil }

func (t *fakeTarget) EnsureTable(_ context.Context, ddl string) error {
	t.ensured = append(t.ensured, ddl)
	return nil
}

func (t *fakeTarget) InsertBatch(_ context.Context, table string, columns []string, rows [][]interface{}) error {
	if t.insertErr != nil {
		return t.insertErr
	}
	t.columns = columns
	copied := make([][]interface{}, len(rows))
	for i, row := range rows {
		copied[i] = append([]interface{}(nil), row...)
	}
	t.batches = append(t.batches, copied)
	return nil
}

func seedPtr(v int64) *int64 { return &v }

func usersConfig() *config.Config {
	return &config.Config{
		Host:            "localhost",
		Port:            9000,
		User:            "default",
		Database:        "default",
		TableName:       "users",
		TableDefinition: "CREATE TABLE users (id UInt64, age UInt16, name String) ENGINE = MergeTree() ORDER BY id",
		TotalInserts:    5,
		InsertsPerQuery: 2,
		InsertRetries:   1,
		GenerationSeed:  seedPtr(42),
		ReferenceTime:   "2026-08-01T00:00:00Z",
		Hints: map[string]interface{}{
			"age":  []interface{}{18, 75},
			"name": []interface{}{"Alice", "Bob", "Charlie"},
		},
		LogLevel: "error",
	}
}

func newService(cfg *config.Config) (*RunService, *fakeTarget) {
	target := &fakeTarget{}
	logger := logging.NewLoggerTo(io.Discard, "error")
	return NewRunService(cfg, target, logger), target
}

func TestRunDeliversExampleScenario(t *testing.T) {
	service, target := newService(usersConfig())

	stats, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.RowsInserted != 5 || stats.Batches != 3 {
		t.Fatalf("stats = %+v, want 5 rows in 3 batches", stats)
	}

	wantSizes := []int{2, 2, 1}
	if len(target.batches) != 3 {
		t.Fatalf("sink saw %d batches, want 3", len(target.batches))
	}
	names := map[string]bool{"Alice": true, "Bob": true, "Charlie": true}
	for i, batch := range target.batches {
		if len(batch) != wantSizes[i] {
			t.Errorf("batch %d has %d rows, want %d", i, len(batch), wantSizes[i])
		}
		for _, row := range batch {
			if len(row) != 3 {
				t.Fatalf("row width %d, want 3", len(row))
			}
			age := row[1].(uint16)
			if age < 18 || age > 75 {
				t.Errorf("age %d outside [18, 75]", age)
			}
			if !names[row[2].(string)] {
				t.Errorf("name %v not in enumeration", row[2])
			}
		}
	}

	wantCols := []string{"id", "age", "name"}
	if !reflect.DeepEqual(target.columns, wantCols) {
		t.Fatalf("columns = %v, want %v", target.columns, wantCols)
	}
	if len(target.ensured) != 1 {
		t.Fatalf("table definition should be applied once, got %d", len(target.ensured))
	}
}

func TestRunIsDeterministicForFixedSeed(t *testing.T) {
	s1, t1 := newService(usersConfig())
	s2, t2 := newService(usersConfig())

	if _, err := s1.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s2.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(t1.batches, t2.batches) {
		t.Fatal("identical config and seed must produce identical batches")
	}
}

func TestRunWithoutSeedDiverges(t *testing.T) {
	cfg1 := usersConfig()
	cfg1.GenerationSeed = nil
	cfg2 := usersConfig()
	cfg2.GenerationSeed = nil

	s1, t1 := newService(cfg1)
	s2, t2 := newService(cfg2)

	if _, err := s1.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s2.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(t1.batches, t2.batches) {
		t.Fatal("unseeded runs produced identical batches")
	}
}

func TestRunUnsupportedTypeFailsBeforeGeneration(t *testing.T) {
	cfg := usersConfig()
	cfg.TableDefinition = "CREATE TABLE users (id UInt64, tags Array(String)) ENGINE = Memory"

	service, target := newService(cfg)
	_, err := service.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var ute *domain.UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnsupportedTypeError, got %T: %v", err, err)
	}
	if len(target.batches) != 0 {
		t.Fatal("sink must receive zero batches on schema failure")
	}
}

func TestRunHintShapeErrorFailsBeforeGeneration(t *testing.T) {
	cfg := usersConfig()
	cfg.Hints = map[string]interface{}{
		"id": map[string]interface{}{"start": "2026-01-01", "end": "2026-02-01"},
	}

	service, target := newService(cfg)
	_, err := service.Run(context.Background())
	var hse *domain.HintShapeError
	if !errors.As(err, &hse) {
		t.Fatalf("expected HintShapeError, got %T: %v", err, err)
	}
	if len(target.batches) != 0 {
		t.Fatal("sink must receive zero batches on hint failure")
	}
}

func TestRunUnknownHintColumnFails(t *testing.T) {
	cfg := usersConfig()
	cfg.Hints = map[string]interface{}{"nope": []interface{}{1, 2}}

	service, target := newService(cfg)
	_, err := service.Run(context.Background())
	var ce *domain.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if len(target.batches) != 0 {
		t.Fatal("sink must receive zero batches on config failure")
	}
}

func TestRunUnsafeTableNameRejected(t *testing.T) {
	cfg := usersConfig()
	cfg.TableName = "users; DROP TABLE users"

	service, target := newService(cfg)
	_, err := service.Run(context.Background())
	var ce *domain.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if target.connected {
		t.Fatal("should not connect with an unsafe table name")
	}
}

func TestRunSinkFailureSurfacesFlushedCount(t *testing.T) {
	cfg := usersConfig()
	service, target := newService(cfg)
	target.insertErr = errors.New("connection reset")

	_, err := service.Run(context.Background())
	var se *domain.SinkError
	if !errors.As(err, &se) {
		t.Fatalf("expected SinkError, got %T: %v", err, err)
	}
	if se.RowsFlushed != 0 {
		t.Fatalf("RowsFlushed = %d, want 0", se.RowsFlushed)
	}
}
