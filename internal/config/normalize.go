package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeClassifier()
	c.normalizeAPI()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("DUPSCORE_DATABASE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Database = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("DUPSCORE_MODEL"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Model = strings.TrimSpace(value)
	}
	var err error
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = defaultDatabasePath
	}
	if c.Paths.Database, err = expandPath(c.Paths.Database); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if c.Paths.Model, err = expandPath(strings.TrimSpace(c.Paths.Model)); err != nil {
		return fmt.Errorf("paths.model: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.Store.Table = strings.TrimSpace(c.Store.Table)
	if c.Store.Table == "" {
		c.Store.Table = defaultStoreTable
	}
	if value, ok := os.LookupEnv("DUPSCORE_REDIS_ADDR"); ok && strings.TrimSpace(value) != "" {
		c.Store.RedisAddr = value
	}
	c.Store.RedisAddr = strings.TrimSpace(c.Store.RedisAddr)
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = defaultRedisAddr
	}
	c.Store.RedisPrefix = strings.Trim(strings.TrimSpace(c.Store.RedisPrefix), ":")
	if c.Store.RedisPrefix == "" {
		c.Store.RedisPrefix = defaultRedisPrefix
	}
}

func (c *Config) normalizeClassifier() {
	c.Classifier.Kind = strings.ToLower(strings.TrimSpace(c.Classifier.Kind))
	if c.Classifier.Kind == "" {
		c.Classifier.Kind = defaultClassifierKind
	}
	c.Classifier.Endpoint = strings.TrimSpace(c.Classifier.Endpoint)
	if c.Classifier.TimeoutSeconds <= 0 {
		c.Classifier.TimeoutSeconds = defaultClassifierTimeout
	}
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	if c.API.RequestTimeoutSeconds <= 0 {
		c.API.RequestTimeoutSeconds = defaultAPIRequestTimeout
	}
	if c.API.RateLimit > 0 && c.API.RateBurst <= 0 {
		c.API.RateBurst = int(c.API.RateLimit)
		if c.API.RateBurst < 1 {
			c.API.RateBurst = 1
		}
	}
	origins := make([]string, 0, len(c.API.AllowedOrigins))
	for _, origin := range c.API.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.API.AllowedOrigins = origins
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
