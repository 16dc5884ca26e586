package testsupport

import (
	"path/filepath"
	"testing"

	"dupscore/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Database = filepath.Join(base, "db.db")
	cfgVal.Paths.Model = filepath.Join(base, "best_model.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithModelArtifact writes the standard test artifact to the configured model
// path.
func WithModelArtifact() ConfigOption {
	return func(b *configBuilder) {
		WriteModel(b.t, b.cfg.Paths.Model)
	}
}

// WithRedis switches the store backend to the Redis server at addr.
func WithRedis(addr string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = config.BackendRedis
		b.cfg.Store.RedisAddr = addr
	}
}

// WithRateLimit enables request rate limiting on the API.
func WithRateLimit(perSecond float64, burst int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.RateLimit = perSecond
		b.cfg.API.RateBurst = burst
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Database)
}
