package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rowforge/rowforge/internal/app"
	"github.com/rowforge/rowforge/internal/config"
	"github.com/rowforge/rowforge/internal/domain"
	"github.com/rowforge/rowforge/internal/generators"
	"github.com/rowforge/rowforge/internal/infra/clickhouse"
	"github.com/rowforge/rowforge/internal/logging"
)

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rowforge",
		Short: "Generate synthetic rows for a ClickHouse table and load them in batches",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default config.yaml or config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		for _, candidate := range []string{"config.yaml", "config.yml", "config.json"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return nil, fmt.Errorf("no config file found (looked for config.yaml, config.yml, config.json)")
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func runCmd() *cobra.Command {
	var (
		seed    int64
		hasSeed bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate rows and insert them into the target table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if hasSeed {
				cfg.GenerationSeed = &seed
			}

			logger := logging.NewLogger(cfg.LogLevel)
			target := clickhouse.NewTarget(cfg.ClickHouseDSN())
			service := app.NewRunService(cfg, target, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats, err := service.Run(ctx)
			if err != nil {
				if stats != nil && stats.RowsInserted > 0 {
					color.Red("run failed after %d rows: %v", stats.RowsInserted, err)
				} else {
					color.Red("run failed: %v", err)
				}
				return err
			}

			color.Green("inserted %d rows into %q in %d batches (%.2fs)",
				stats.RowsInserted, cfg.TableName, stats.Batches, stats.DurationSeconds)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "Override generation seed")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		hasSeed = cmd.Flags().Changed("seed")
	}
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate config, schema and hints without generating anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				color.Red("invalid: %v", err)
				return err
			}

			if _, _, err := plan(cmd.Context(), cfg); err != nil {
				color.Red("invalid: %v", err)
				return err
			}

			color.Green("config for table %q is valid", cfg.TableName)
			return nil
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the resolved schema and per-column generation rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cols, specs, err := plan(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tTYPE\tKIND\tHINT")
			for i, col := range cols {
				hint := "default"
				if _, ok := cfg.Hints[col.Name]; ok {
					hint = fmt.Sprintf("%v", cfg.Hints[col.Name])
				}
				kind := specs[i].Kind
				label := kind.Base.String()
				if kind.Nullable {
					label += ", nullable"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", col.Name, col.RawType, label, hint)
			}
			return w.Flush()
		},
	}
}

// plan resolves columns and specs, connecting to the target only when no
// table declaration is configured.
func plan(ctx context.Context, cfg *config.Config) ([]domain.Column, []*generators.ColumnSpec, error) {
	logger := logging.NewLogger(cfg.LogLevel)
	target := clickhouse.NewTarget(cfg.ClickHouseDSN())
	service := app.NewRunService(cfg, target, logger)

	if cfg.TableDefinition != "" {
		return service.Plan(ctx, nil)
	}

	if err := target.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect to target: %w", err)
	}
	defer target.Close()
	return service.Plan(ctx, target.DB())
}
