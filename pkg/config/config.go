package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Log          LogConfig
	Solver       SolverConfig
	Sessions     SessionsConfig
	Cache        CacheConfig
	Persistence  PersistenceConfig
	Verification VerificationConfig
	Catalog      CatalogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig bounds the timetable search.
type SolverConfig struct {
	MaxAttempts     int
	GoalWaiverRatio float64
	Seed            int64
}

// SessionsConfig controls in-memory game session retention.
type SessionsConfig struct {
	TTL time.Duration
	// MaintenanceInterval is how often idle sessions and stale snapshots are swept.
	MaintenanceInterval time.Duration
}

// CacheConfig governs the snapshot read cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// PersistenceConfig toggles snapshot storage in PostgreSQL.
type PersistenceConfig struct {
	Enabled   bool
	Retention time.Duration
}

// VerificationConfig sizes the level verification worker pool.
type VerificationConfig struct {
	Enabled bool
	Workers int
	Retries int
	Seeds   int
}

// CatalogConfig optionally overrides the embedded course catalog.
type CatalogConfig struct {
	Path string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		MaxAttempts:     v.GetInt("SOLVER_MAX_ATTEMPTS"),
		GoalWaiverRatio: v.GetFloat64("SOLVER_GOAL_WAIVER_RATIO"),
		Seed:            v.GetInt64("SOLVER_SEED"),
	}

	cfg.Sessions = SessionsConfig{
		TTL:                 parseDuration(v.GetString("SESSION_TTL"), 2*time.Hour),
		MaintenanceInterval: parseDuration(v.GetString("MAINTENANCE_INTERVAL"), 5*time.Minute),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_SNAPSHOT_CACHE"),
		TTL:     parseDuration(v.GetString("SNAPSHOT_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Persistence = PersistenceConfig{
		Enabled:   v.GetBool("ENABLE_PERSISTENCE"),
		Retention: parseDuration(v.GetString("SNAPSHOT_RETENTION"), 30*24*time.Hour),
	}

	cfg.Verification = VerificationConfig{
		Enabled: v.GetBool("ENABLE_VERIFICATION"),
		Workers: v.GetInt("VERIFICATION_WORKERS"),
		Retries: v.GetInt("VERIFICATION_RETRIES"),
		Seeds:   v.GetInt("VERIFICATION_SEEDS"),
	}

	cfg.Catalog = CatalogConfig{
		Path: v.GetString("CATALOG_PATH"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ects_quest")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_MAX_ATTEMPTS", 5000)
	v.SetDefault("SOLVER_GOAL_WAIVER_RATIO", 0.9)
	v.SetDefault("SOLVER_SEED", 0)

	v.SetDefault("SESSION_TTL", "2h")

	v.SetDefault("ENABLE_SNAPSHOT_CACHE", false)
	v.SetDefault("SNAPSHOT_CACHE_TTL", "10m")
	v.SetDefault("ENABLE_PERSISTENCE", false)
	v.SetDefault("SNAPSHOT_RETENTION", "720h")
	v.SetDefault("MAINTENANCE_INTERVAL", "5m")

	v.SetDefault("ENABLE_VERIFICATION", true)
	v.SetDefault("VERIFICATION_WORKERS", 1)
	v.SetDefault("VERIFICATION_RETRIES", 1)
	v.SetDefault("VERIFICATION_SEEDS", 3)

	v.SetDefault("CATALOG_PATH", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
