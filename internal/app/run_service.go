package app

import (
	"context"
	crand "crypto/rand"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/rowforge/rowforge/internal/config"
	"github.com/rowforge/rowforge/internal/domain"
	"github.com/rowforge/rowforge/internal/exec"
	"github.com/rowforge/rowforge/internal/generators"
	"github.com/rowforge/rowforge/internal/logging"
	"github.com/rowforge/rowforge/internal/schema"
)

// Target is the destination a run talks to: a batch sink plus the connection
// handle schema resolution may query.
type Target interface {
	exec.Sink
	Connect(ctx context.Context) error
	Close() error
	DB() *sql.DB
	EnsureTable(ctx context.Context, ddl string) error
}

// RunService wires schema resolution, hint resolution and batch assembly into
// one generation run. All configuration, schema and hint errors surface
// before the first row is generated.
type RunService struct {
	cfg    *config.Config
	target Target
	logger *logging.Logger
}

func NewRunService(cfg *config.Config, target Target, logger *logging.Logger) *RunService {
	return &RunService{cfg: cfg, target: target, logger: logger}
}

// Plan resolves the schema and compiles per-column generator specs without
// generating anything. db may be nil when a table declaration is configured.
func (s *RunService) Plan(ctx context.Context, db *sql.DB) ([]domain.Column, []*generators.ColumnSpec, error) {
	cols, err := s.source(db).Columns(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, col := range cols {
		if !schema.IsValidIdentifier(col.Name) {
			return nil, nil, &domain.SchemaError{Table: s.cfg.TableName, Err: fmt.Errorf("unsafe column name %q", col.Name)}
		}
	}

	kinds, err := schema.ClassifyColumns(cols)
	if err != nil {
		return nil, nil, err
	}

	specs, err := generators.Resolve(cols, kinds, s.cfg.Hints, s.cfg.Reference())
	if err != nil {
		return nil, nil, err
	}
	return cols, specs, nil
}

// Run executes the full generation run: connect, optionally create the table
// from its declaration, resolve specs, then generate and insert batches until
// total_inserts rows are delivered.
func (s *RunService) Run(ctx context.Context) (*exec.Stats, error) {
	if !schema.IsValidIdentifier(s.cfg.TableName) {
		return nil, &domain.ConfigError{Field: "table_name", Reason: fmt.Sprintf("unsafe identifier %q", s.cfg.TableName)}
	}

	if err := s.target.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to target: %w", err)
	}
	defer s.target.Close()

	if s.cfg.TableDefinition != "" {
		decl := schema.NewDeclarationSource(s.cfg.TableDefinition)
		declTable, err := decl.TableName()
		if err != nil {
			return nil, err
		}
		if declTable != s.cfg.TableName {
			s.logger.Warn("table_definition declares %q but table_name is %q", declTable, s.cfg.TableName)
		}
		if err := s.target.EnsureTable(ctx, s.cfg.TableDefinition); err != nil {
			return nil, err
		}
	}

	cols, specs, err := s.Plan(ctx, s.target.DB())
	if err != nil {
		return nil, err
	}
	s.logger.Info("resolved schema for table %q: %d columns", s.cfg.TableName, len(cols))
	for _, col := range cols {
		s.logger.Debug("  %s %s", col.Name, col.RawType)
	}

	seed := s.seed()
	rng := rand.New(rand.NewSource(seed))
	s.logger.Info("starting generation of %d rows (seed %d, %d per batch)",
		s.cfg.TotalInserts, seed, s.cfg.InsertsPerQuery)

	assembler := exec.NewAssembler(s.target, s.logger, s.cfg.InsertRetries)
	stats, err := assembler.Run(ctx, s.cfg.TableName, specs, rng, s.cfg.TotalInserts, s.cfg.InsertsPerQuery)
	if err != nil {
		return stats, err
	}

	s.logger.Info("done: %d rows in %d batches (%.2fs)", stats.RowsInserted, stats.Batches, stats.DurationSeconds)
	return stats, nil
}

func (s *RunService) source(db *sql.DB) schema.Source {
	if s.cfg.TableDefinition != "" {
		return schema.NewDeclarationSource(s.cfg.TableDefinition)
	}
	return schema.NewDatabaseSource(db, s.cfg.Database, s.cfg.TableName)
}

// seed returns the configured seed, or one drawn from system entropy for a
// non-reproducible run.
func (s *RunService) seed() int64 {
	if s.cfg.GenerationSeed != nil {
		return *s.cfg.GenerationSeed
	}
	var b [8]byte
	crand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}
