// Package config provides configuration management for cogmem,
// handling environment variables, .env files, and runtime defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// CoreConfig is the top-level configuration, one struct per concern.
type CoreConfig struct {
	Scope   ScopeConfig   `json:"scope"`
	Decay   DecayConfig   `json:"decay"`
	Vector  VectorConfig  `json:"vector"`
	Logging LoggingConfig `json:"logging"`
}

// ScopeConfig controls where the project and user memory cores keep
// their on-disk data directories.
type ScopeConfig struct {
	ProjectDataDir      string  `json:"project_data_dir"`
	UserDataDir         string  `json:"user_data_dir"`
	ClassifierThreshold float64 `json:"classifier_threshold"`
}

// DecayConfig controls batch decay and reinforcement defaults.
type DecayConfig struct {
	ReinforceBoost          float64       `json:"reinforce_boost"`
	ApplyDecayInterval      time.Duration `json:"apply_decay_interval"`
	FactConfidenceDecayRate float64       `json:"fact_confidence_decay_rate"`
	WaypointMinWeight       float64       `json:"waypoint_min_weight"`
}

// VectorConfig selects and configures the embedding/similarity backend.
type VectorConfig struct {
	Backend string `json:"backend"` // "memory" or "qdrant"

	QdrantHost       string `json:"qdrant_host"`
	QdrantPort       int    `json:"qdrant_port"`
	QdrantAPIKey     string `json:"-"`
	QdrantUseTLS     bool   `json:"qdrant_use_tls"`
	QdrantCollection string `json:"qdrant_collection"`

	CacheBackend string        `json:"cache_backend"` // "lru" or "redis"
	CacheSize    int           `json:"cache_size"`
	CacheTTL     time.Duration `json:"cache_ttl"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "json" or "text"
}

// DefaultConfig returns the built-in defaults, overridden by env vars
// in LoadConfig.
func DefaultConfig() *CoreConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &CoreConfig{
		Scope: ScopeConfig{
			ProjectDataDir:      ".cogmem",
			UserDataDir:         home + "/.cogmem",
			ClassifierThreshold: 0.65,
		},
		Decay: DecayConfig{
			ReinforceBoost:          0.15,
			ApplyDecayInterval:      24 * time.Hour,
			FactConfidenceDecayRate: 0.01,
			WaypointMinWeight:       0.05,
		},
		Vector: VectorConfig{
			Backend:          "memory",
			QdrantHost:       "localhost",
			QdrantPort:       6334,
			QdrantCollection: "cogmem_memories",
			CacheBackend:     "lru",
			CacheSize:        2000,
			CacheTTL:         24 * time.Hour,
			RedisAddr:        "localhost:6379",
			RedisDB:          0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads a .env file if present, then layers environment
// variables over DefaultConfig, and validates the result.
func LoadConfig() (*CoreConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := DefaultConfig()
	loadScopeConfig(cfg)
	loadDecayConfig(cfg)
	loadVectorConfig(cfg)
	loadLoggingConfig(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadScopeConfig(cfg *CoreConfig) {
	cfg.Scope.ProjectDataDir = getStringEnvWithDefault("COGMEM_PROJECT_DATA_DIR", cfg.Scope.ProjectDataDir)
	cfg.Scope.UserDataDir = getStringEnvWithDefault("COGMEM_USER_DATA_DIR", cfg.Scope.UserDataDir)
	cfg.Scope.ClassifierThreshold = getFloatEnvWithDefault("COGMEM_SCOPE_THRESHOLD", cfg.Scope.ClassifierThreshold)
}

func loadDecayConfig(cfg *CoreConfig) {
	cfg.Decay.ReinforceBoost = getFloatEnvWithDefault("COGMEM_REINFORCE_BOOST", cfg.Decay.ReinforceBoost)
	cfg.Decay.FactConfidenceDecayRate = getFloatEnvWithDefault("COGMEM_FACT_DECAY_RATE", cfg.Decay.FactConfidenceDecayRate)
	cfg.Decay.WaypointMinWeight = getFloatEnvWithDefault("COGMEM_WAYPOINT_MIN_WEIGHT", cfg.Decay.WaypointMinWeight)
	if v := os.Getenv("COGMEM_APPLY_DECAY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Decay.ApplyDecayInterval = d
		}
	}
}

func loadVectorConfig(cfg *CoreConfig) {
	cfg.Vector.Backend = getStringEnvWithDefault("COGMEM_VECTOR_BACKEND", cfg.Vector.Backend)
	cfg.Vector.QdrantHost = getStringEnvWithDefault("COGMEM_QDRANT_HOST", cfg.Vector.QdrantHost)
	cfg.Vector.QdrantPort = getIntEnvWithDefault("COGMEM_QDRANT_PORT", cfg.Vector.QdrantPort)
	cfg.Vector.QdrantAPIKey = getStringEnvWithDefault("COGMEM_QDRANT_API_KEY", cfg.Vector.QdrantAPIKey)
	cfg.Vector.QdrantUseTLS = getBoolEnvWithDefault("COGMEM_QDRANT_USE_TLS", cfg.Vector.QdrantUseTLS)
	cfg.Vector.QdrantCollection = getStringEnvWithDefault("COGMEM_QDRANT_COLLECTION", cfg.Vector.QdrantCollection)

	cfg.Vector.CacheBackend = getStringEnvWithDefault("COGMEM_CACHE_BACKEND", cfg.Vector.CacheBackend)
	cfg.Vector.CacheSize = getIntEnvWithDefault("COGMEM_CACHE_SIZE", cfg.Vector.CacheSize)
	if v := os.Getenv("COGMEM_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Vector.CacheTTL = d
		}
	}

	cfg.Vector.RedisAddr = getStringEnvWithDefault("COGMEM_REDIS_ADDR", cfg.Vector.RedisAddr)
	cfg.Vector.RedisPassword = getStringEnvWithDefault("COGMEM_REDIS_PASSWORD", cfg.Vector.RedisPassword)
	cfg.Vector.RedisDB = getIntEnvWithDefault("COGMEM_REDIS_DB", cfg.Vector.RedisDB)
}

func loadLoggingConfig(cfg *CoreConfig) {
	cfg.Logging.Level = getStringEnvWithDefault("COGMEM_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getStringEnvWithDefault("COGMEM_LOG_FORMAT", cfg.Logging.Format)
}

// Validate checks the configuration is internally consistent.
func (c *CoreConfig) Validate() error {
	if c.Vector.Backend != "memory" && c.Vector.Backend != "qdrant" {
		return fmt.Errorf("vector.backend must be 'memory' or 'qdrant', got %q", c.Vector.Backend)
	}
	if c.Vector.CacheBackend != "lru" && c.Vector.CacheBackend != "redis" {
		return fmt.Errorf("vector.cache_backend must be 'lru' or 'redis', got %q", c.Vector.CacheBackend)
	}
	if c.Scope.ClassifierThreshold < 0 || c.Scope.ClassifierThreshold > 1 {
		return fmt.Errorf("scope.classifier_threshold must be in [0,1], got %v", c.Scope.ClassifierThreshold)
	}
	return nil
}

func getStringEnvWithDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntEnvWithDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnvWithDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}
