package config

// Record backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Classifier kinds.
const (
	KindLogistic = "logistic"
	KindRemote   = "remote"
)

const (
	defaultDatabasePath      = "~/.local/share/dupscore/db.db"
	defaultModelPath         = "~/.local/share/dupscore/best_model.json"
	defaultLogDir            = "~/.local/share/dupscore/logs"
	defaultStoreBackend      = BackendSQLite
	defaultStoreTable        = "soundrecording"
	defaultRedisAddr         = "127.0.0.1:6379"
	defaultRedisPrefix       = "soundrecording"
	defaultClassifierKind    = KindLogistic
	defaultClassifierTimeout = 5
	defaultAPIBind           = "127.0.0.1:8000"
	defaultAPIRequestTimeout = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Database: defaultDatabasePath,
			Model:    defaultModelPath,
			LogDir:   defaultLogDir,
		},
		Store: Store{
			Backend:     defaultStoreBackend,
			Table:       defaultStoreTable,
			RedisAddr:   defaultRedisAddr,
			RedisPrefix: defaultRedisPrefix,
		},
		Classifier: Classifier{
			Kind:           defaultClassifierKind,
			TimeoutSeconds: defaultClassifierTimeout,
		},
		API: API{
			Bind:                  defaultAPIBind,
			RequestTimeoutSeconds: defaultAPIRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
