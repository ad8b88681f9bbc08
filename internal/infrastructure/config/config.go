package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs session tokens; AuthSecret is the shared secret for
	// service-to-service access. Both are opaque configuration values and
	// an empty value disables the corresponding credential path.
	JWTSecret  string        `env:"JWT_SECRET"`
	AuthSecret string        `env:"AUTH_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL, default=24h"`

	Mongo MongoConfig
	Redis RedisConfig
	Sync  SyncConfig
	ThaID ThaIDConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// SyncConfig tunes the background HR reconciliation workers.
type SyncConfig struct {
	Workers         int           `env:"SYNC_WORKERS,        default=4"`
	Timeout         time.Duration `env:"SYNC_TIMEOUT,        default=10s"`
	ThrottleTTL     time.Duration `env:"SYNC_THROTTLE_TTL,   default=15m"`
	DeparturePolicy string        `env:"HR_DEPARTURE_POLICY, default=warn"`
}

// ThaIDConfig holds the sandbox knobs for the verification-code resolver.
// Production deployments leave both empty.
type ThaIDConfig struct {
	TestPrefix string `env:"THAID_TEST_PREFIX"`
	SandboxCID string `env:"THAID_SANDBOX_CID"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
