package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dupscore/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDB := filepath.Join(tempHome, ".local", "share", "dupscore", "db.db")
	if cfg.Paths.Database != wantDB {
		t.Fatalf("unexpected database path: got %q want %q", cfg.Paths.Database, wantDB)
	}
	wantModel := filepath.Join(tempHome, ".local", "share", "dupscore", "best_model.json")
	if cfg.Paths.Model != wantModel {
		t.Fatalf("unexpected model path: got %q want %q", cfg.Paths.Model, wantModel)
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend by default, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Table != "soundrecording" {
		t.Fatalf("unexpected table: %q", cfg.Store.Table)
	}
	if cfg.Classifier.Kind != config.KindLogistic {
		t.Fatalf("expected logistic classifier by default, got %q", cfg.Classifier.Kind)
	}
	if cfg.API.Bind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.RequestTimeout().Seconds() != 10 {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, filepath.Dir(cfg.Paths.Database)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dupscore.toml")

	type payload struct {
		Paths struct {
			Database string `toml:"database"`
			Model    string `toml:"model"`
		} `toml:"paths"`
		Store struct {
			Backend     string `toml:"backend"`
			RedisPrefix string `toml:"redis_prefix"`
		} `toml:"store"`
		API struct {
			Bind      string  `toml:"bind"`
			RateLimit float64 `toml:"rate_limit"`
		} `toml:"api"`
	}
	custom := payload{}
	custom.Paths.Database = filepath.Join(tempDir, "records.db")
	custom.Paths.Model = filepath.Join(tempDir, "model.json")
	custom.Store.Backend = "Redis"
	custom.Store.RedisPrefix = "sr:"
	custom.API.Bind = "0.0.0.0:9000"
	custom.API.RateLimit = 2.5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.Database != custom.Paths.Database {
		t.Fatalf("expected database from file, got %q", cfg.Paths.Database)
	}
	if cfg.Store.Backend != config.BackendRedis {
		t.Fatalf("expected backend to be normalized to redis, got %q", cfg.Store.Backend)
	}
	if cfg.Store.RedisPrefix != "sr" {
		t.Fatalf("expected trailing colon trimmed from prefix, got %q", cfg.Store.RedisPrefix)
	}
	if cfg.API.Bind != "0.0.0.0:9000" {
		t.Fatalf("expected api bind override, got %q", cfg.API.Bind)
	}
	if cfg.API.RateBurst != 2 {
		t.Fatalf("expected rate burst derived from rate limit, got %d", cfg.API.RateBurst)
	}
}

func TestEnvVarOverridesConfigFilePaths(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dupscore.toml")
	contents := "[paths]\ndatabase = \"/srv/file.db\"\nmodel = \"/srv/file-model.json\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	envDB := filepath.Join(tempDir, "env.db")
	envModel := filepath.Join(tempDir, "env-model.json")
	t.Setenv("DUPSCORE_DATABASE", envDB)
	t.Setenv("DUPSCORE_MODEL", envModel)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Database != envDB {
		t.Errorf("expected database from env, got %q", cfg.Paths.Database)
	}
	if cfg.Paths.Model != envModel {
		t.Errorf("expected model from env, got %q", cfg.Paths.Model)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "soundrecording") {
		t.Fatalf("sample config missing default table: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("expected sample backend sqlite, got %q", cfg.Store.Backend)
	}
	if !strings.Contains(cfg.Paths.Database, "dupscore") {
		t.Fatalf("expected database path to contain dupscore, got %q", cfg.Paths.Database)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.Store.Backend = "mysql" }},
		{"table injection", func(c *config.Config) { c.Store.Table = "soundrecording; DROP TABLE x" }},
		{"table leading digit", func(c *config.Config) { c.Store.Table = "1records" }},
		{"redis without addr", func(c *config.Config) {
			c.Store.Backend = config.BackendRedis
			c.Store.RedisAddr = ""
		}},
		{"unknown classifier", func(c *config.Config) { c.Classifier.Kind = "forest" }},
		{"logistic without model", func(c *config.Config) { c.Paths.Model = "" }},
		{"remote without endpoint", func(c *config.Config) { c.Classifier.Kind = config.KindRemote }},
		{"remote relative endpoint", func(c *config.Config) {
			c.Classifier.Kind = config.KindRemote
			c.Classifier.Endpoint = "/predict"
		}},
		{"zero classifier timeout", func(c *config.Config) { c.Classifier.TimeoutSeconds = 0 }},
		{"bad bind", func(c *config.Config) { c.API.Bind = "localhost" }},
		{"zero request timeout", func(c *config.Config) { c.API.RequestTimeoutSeconds = 0 }},
		{"negative rate", func(c *config.Config) { c.API.RateLimit = -1 }},
		{"rate without burst", func(c *config.Config) {
			c.API.RateLimit = 5
			c.API.RateBurst = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
