package config

const (
	defaultStateDir           = "~/.local/share/foodhub"
	defaultLogDir             = "~/.local/share/foodhub/logs"
	defaultStorageBackend     = BackendFile
	defaultStorageKey         = "mvsr_token_state"
	defaultLockTimeoutSeconds = 5
	defaultServerBind         = "127.0.0.1:7488"
	defaultDisplaySeconds     = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Storage backend names accepted by storage.backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Storage: Storage{
			Backend:            defaultStorageBackend,
			Key:                defaultStorageKey,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Server: Server{
			Bind:           defaultServerBind,
			DisplaySeconds: defaultDisplaySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
