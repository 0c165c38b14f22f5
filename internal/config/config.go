package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rowforge/rowforge/internal/domain"
)

// Config is the one run configuration file, YAML or JSON by extension.
type Config struct {
	// Connection. Either a full DSN or discrete parts; DSN wins when set.
	DSN      string `yaml:"dsn" json:"dsn"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Database string `yaml:"database" json:"database"`

	TableName string `yaml:"table_name" json:"table_name"`

	// TableDefinition is an optional CREATE TABLE declaration. When set it is
	// executed against the target before generation and used as the schema
	// source instead of system.columns.
	TableDefinition string `yaml:"table_definition" json:"table_definition"`

	TotalInserts    int64 `yaml:"total_inserts" json:"total_inserts"`
	InsertsPerQuery int64 `yaml:"inserts_per_query" json:"inserts_per_query"`
	InsertRetries   int   `yaml:"insert_retries" json:"insert_retries"`

	// GenerationSeed makes a run reproducible. Absent means the run is seeded
	// from system entropy.
	GenerationSeed *int64 `yaml:"generation_seed" json:"generation_seed"`

	// ReferenceTime (RFC 3339) anchors the default date window for unhinted
	// date/time columns. Defaults to the wall clock at run start.
	ReferenceTime string `yaml:"reference_time" json:"reference_time"`

	// Hints maps column names to generation hints: a [min, max] pair, a list
	// of literals, a {start, end} window, or a faker pool name.
	Hints map[string]interface{} `yaml:"hints" json:"hints"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

const (
	defaultPort            = 9000
	defaultUser            = "default"
	defaultDatabase        = "default"
	defaultTotalInserts    = 10
	defaultInsertsPerQuery = 10
	defaultInsertRetries   = 3
)

// Load reads the config file at path, applies defaults and environment
// overrides, and validates run parameters. A .env file in the working
// directory is honored for the ROWFORGE_* overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.User == "" {
		c.User = defaultUser
	}
	if c.Database == "" {
		c.Database = defaultDatabase
	}
	if c.TotalInserts == 0 {
		c.TotalInserts = defaultTotalInserts
	}
	if c.InsertsPerQuery == 0 {
		c.InsertsPerQuery = defaultInsertsPerQuery
	}
	if c.InsertRetries == 0 {
		c.InsertRetries = defaultInsertRetries
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ROWFORGE_DSN"); v != "" {
		c.DSN = v
	}
	if v := os.Getenv("ROWFORGE_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("ROWFORGE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks run parameters. Returns a domain.ConfigError so callers can
// distinguish bad configuration from later failures.
func (c *Config) Validate() error {
	if c.TableName == "" {
		return &domain.ConfigError{Field: "table_name", Reason: "required"}
	}
	if c.DSN == "" && c.Host == "" {
		return &domain.ConfigError{Field: "host", Reason: "either host or dsn is required"}
	}
	if c.TotalInserts <= 0 {
		return &domain.ConfigError{Field: "total_inserts", Reason: fmt.Sprintf("must be > 0, got %d", c.TotalInserts)}
	}
	if c.InsertsPerQuery <= 0 {
		return &domain.ConfigError{Field: "inserts_per_query", Reason: fmt.Sprintf("must be > 0, got %d", c.InsertsPerQuery)}
	}
	if c.InsertsPerQuery > c.TotalInserts {
		return &domain.ConfigError{
			Field:  "inserts_per_query",
			Reason: fmt.Sprintf("must be <= total_inserts (%d), got %d", c.TotalInserts, c.InsertsPerQuery),
		}
	}
	if c.InsertRetries < 1 {
		return &domain.ConfigError{Field: "insert_retries", Reason: fmt.Sprintf("must be >= 1, got %d", c.InsertRetries)}
	}
	if c.ReferenceTime != "" {
		if _, err := time.Parse(time.RFC3339, c.ReferenceTime); err != nil {
			return &domain.ConfigError{Field: "reference_time", Reason: fmt.Sprintf("not RFC 3339: %v", err)}
		}
	}
	return nil
}

// ClickHouseDSN returns the connection string for the clickhouse driver.
func (c *Config) ClickHouseDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme: "clickhouse",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	return u.String()
}

// Reference returns the anchor time for default date windows.
func (c *Config) Reference() time.Time {
	if c.ReferenceTime != "" {
		if t, err := time.Parse(time.RFC3339, c.ReferenceTime); err == nil {
			return t
		}
	}
	return time.Now()
}
