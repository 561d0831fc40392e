package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spektr-org/erlens/engine"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if c.Analysis.Basis != "followers" || c.Analysis.TopN != engine.DefaultTopN {
		t.Errorf("unexpected defaults: %+v", c.Analysis)
	}
	if c.Server.Addr != ":8080" {
		t.Errorf("expected :8080, got %s", c.Server.Addr)
	}
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := writeFile(t, "erlens.yaml", `
analysis:
  basis: reach
  top_n: 5
source:
  driver: pgx
  dsn: postgres://localhost/posts
  query: SELECT * FROM posts
`)

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Analysis.Basis != "reach" || c.Analysis.TopN != 5 {
		t.Errorf("file values not applied: %+v", c.Analysis)
	}
	if c.Analysis.HashtagLimit != engine.DefaultHashtagLimit {
		t.Errorf("missing key should keep default, got %d", c.Analysis.HashtagLimit)
	}
	if c.Server.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("missing section should keep default, got %d", c.Server.MaxUploadBytes)
	}
	if c.Source.Driver != "pgx" || c.Source.Query != "SELECT * FROM posts" {
		t.Errorf("source not parsed: %+v", c.Source)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := writeFile(t, "bad.yaml", "analysis: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{
		"PORT":                 "9000",
		"ERLENS_BASIS":         "impressions",
		"ERLENS_TOP_N":         "3",
		"ERLENS_HASHTAG_LIMIT": "7",
		"ERLENS_STRICT_DATES":  "true",
		"ERLENS_SOURCE_DRIVER": "mysql",
		"ERLENS_SOURCE_DSN":    "user:pw@/posts",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Server.Addr != ":9000" {
		t.Errorf("PORT not applied: %s", c.Server.Addr)
	}
	want := AnalysisConfig{Basis: "impressions", TopN: 3, HashtagLimit: 7, StrictDates: true}
	if c.Analysis != want {
		t.Errorf("got %+v, want %+v", c.Analysis, want)
	}
	if c.Source.Driver != "mysql" || c.Source.DSN != "user:pw@/posts" {
		t.Errorf("source env not applied: %+v", c.Source)
	}
}

func TestApplyEnv_AddrWinsOverPort(t *testing.T) {
	c := Default()
	if err := c.ApplyEnv(envMap(map[string]string{"PORT": "9000", "ERLENS_ADDR": "127.0.0.1:7000"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("got %s", c.Server.Addr)
	}
}

func TestApplyEnv_BadNumber(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{"ERLENS_TOP_N": "ten"}))
	if err == nil || !strings.Contains(err.Error(), "ERLENS_TOP_N") {
		t.Errorf("expected ERLENS_TOP_N error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"basis", func(c *Config) { c.Analysis.Basis = "likes" }, "analysis.basis"},
		{"top", func(c *Config) { c.Analysis.TopN = 0 }, "top_n"},
		{"hashtags", func(c *Config) { c.Analysis.HashtagLimit = -1 }, "hashtag_limit"},
		{"upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "max_upload_bytes"},
		{"driver", func(c *Config) { c.Source.Driver = "sqlite" }, "source.driver"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}

	c := Default()
	c.Analysis.HashtagLimit = 0
	if err := c.Validate(); err != nil {
		t.Errorf("hashtag_limit 0 means no limit, got %v", err)
	}

	c = Default()
	c.Analysis.Basis = "likes"
	if err := c.Validate(); !errors.Is(err, engine.ErrInvalidBasis) {
		t.Errorf("expected ErrInvalidBasis in chain, got %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}

	const key = "ERLENS_TEST_LOADENV"
	t.Setenv(key, "")
	os.Unsetenv(key)
	path := writeFile(t, "test.env", key+"=reach\n")
	if err := LoadEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv(key); got != "reach" {
		t.Errorf("expected variable loaded, got %q", got)
	}
}
