package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Paths.Database) == "" {
			return errors.New("paths.database must be set when store.backend is sqlite")
		}
		if !isIdentifier(c.Store.Table) {
			return fmt.Errorf("store.table %q must contain only letters, digits, and underscores", c.Store.Table)
		}
	case BackendRedis:
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			return errors.New("store.redis_addr must be set when store.backend is redis")
		}
		if c.Store.RedisDB < 0 {
			return errors.New("store.redis_db must be >= 0")
		}
	default:
		return fmt.Errorf("store.backend: unsupported value %q (expected %s or %s)", c.Store.Backend, BackendSQLite, BackendRedis)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	switch c.Classifier.Kind {
	case KindLogistic:
		if strings.TrimSpace(c.Paths.Model) == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/dupscore/config.toml"
			}
			return fmt.Errorf("paths.model is required for the logistic classifier. Set DUPSCORE_MODEL or edit %s (create with 'dupscore config init')", defaultPath)
		}
	case KindRemote:
		if c.Classifier.Endpoint == "" {
			return errors.New("classifier.endpoint must be set when classifier.kind is remote")
		}
		parsed, err := url.Parse(c.Classifier.Endpoint)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("classifier.endpoint %q must be an absolute URL", c.Classifier.Endpoint)
		}
	default:
		return fmt.Errorf("classifier.kind: unsupported value %q (expected %s or %s)", c.Classifier.Kind, KindLogistic, KindRemote)
	}
	return ensurePositiveMap(map[string]int{
		"classifier.timeout_seconds": c.Classifier.TimeoutSeconds,
	})
}

func (c *Config) validateAPI() error {
	if _, _, err := net.SplitHostPort(c.API.Bind); err != nil {
		return fmt.Errorf("api.bind %q: %w", c.API.Bind, err)
	}
	if err := ensurePositiveMap(map[string]int{
		"api.request_timeout_seconds": c.API.RequestTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.API.RateLimit < 0 {
		return errors.New("api.rate_limit must be >= 0")
	}
	if c.API.RateLimit > 0 && c.API.RateBurst <= 0 {
		return errors.New("api.rate_burst must be positive when api.rate_limit is set")
	}
	return nil
}

func isIdentifier(value string) bool {
	if value == "" {
		return false
	}
	for i, r := range value {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
