package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// CONFIG — YAML file, optional .env, environment overrides
// ============================================================================
// Precedence (lowest first): Default(), YAML file, environment, CLI flags.
// The CLI applies its own flags after Load returns.
// ============================================================================

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Source   SourceConfig   `yaml:"source"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type AnalysisConfig struct {
	Basis        string `yaml:"basis"`
	TopN         int    `yaml:"top_n"`
	HashtagLimit int    `yaml:"hashtag_limit"` // 0 lists every tag
	StrictDates  bool   `yaml:"strict_dates"`
}

// SourceConfig points at a database holding post rows. For mongo, DSN is
// the connection URI and Query is unused.
type SourceConfig struct {
	Driver     string `yaml:"driver"` // pgx, postgres, mysql, mongo
	DSN        string `yaml:"dsn"`
	Query      string `yaml:"query"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

const (
	DefaultAddr           = ":8080"
	DefaultMaxUploadBytes = 10 << 20
)

// Drivers lists the accepted source drivers.
var Drivers = []string{"pgx", "postgres", "mysql", "mongo"}

// Default returns a working configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           DefaultAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Analysis: AnalysisConfig{
			Basis:        string(engine.BasisFollowers),
			TopN:         engine.DefaultTopN,
			HashtagLimit: engine.DefaultHashtagLimit,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// LoadEnv loads .env files into the process environment. A missing file is
// not an error; variables already set are left alone.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load is LoadConfig (or Default when path is empty) followed by the
// process environment and validation.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		var err error
		if config, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	str("ERLENS_ADDR", &c.Server.Addr)
	if v, ok := lookup("ERLENS_MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ERLENS_MAX_UPLOAD_BYTES: %w", err)
		}
		c.Server.MaxUploadBytes = n
	}

	str("ERLENS_BASIS", &c.Analysis.Basis)
	if err := integer("ERLENS_TOP_N", &c.Analysis.TopN); err != nil {
		return err
	}
	if err := integer("ERLENS_HASHTAG_LIMIT", &c.Analysis.HashtagLimit); err != nil {
		return err
	}
	if v, ok := lookup("ERLENS_STRICT_DATES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ERLENS_STRICT_DATES: %w", err)
		}
		c.Analysis.StrictDates = b
	}

	str("ERLENS_SOURCE_DRIVER", &c.Source.Driver)
	str("ERLENS_SOURCE_DSN", &c.Source.DSN)
	str("ERLENS_SOURCE_QUERY", &c.Source.Query)
	return nil
}

// Validate rejects settings the analysis cannot run with.
func (c *Config) Validate() error {
	if _, err := engine.ParseBasis(c.Analysis.Basis); err != nil {
		return fmt.Errorf("analysis.basis: %w", err)
	}
	if c.Analysis.TopN <= 0 {
		return fmt.Errorf("analysis.top_n must be positive, got %d", c.Analysis.TopN)
	}
	if c.Analysis.HashtagLimit < 0 {
		return fmt.Errorf("analysis.hashtag_limit must be zero (no limit) or positive, got %d", c.Analysis.HashtagLimit)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Source.Driver != "" && !knownDriver(c.Source.Driver) {
		return fmt.Errorf("source.driver %q is not one of %v", c.Source.Driver, Drivers)
	}
	return nil
}

func knownDriver(d string) bool {
	for _, known := range Drivers {
		if d == known {
			return true
		}
	}
	return false
}
