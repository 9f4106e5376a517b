package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Lock     LockConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Routing  RoutingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	Timezone              string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	// Session settings applied to every pooled connection.
	ApplicationName string
	Timezone        string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	DialTimeoutSeconds int
}

// LockBackend selects the per-document lock implementation.
type LockBackend string

const (
	LockBackendMemory LockBackend = "memory"
	LockBackendRedis  LockBackend = "redis"
)

// LockConfig configures per-document serialization.
type LockConfig struct {
	Backend     LockBackend
	TTLSeconds  int
	WaitMillis  int
	RetryMillis int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// Format is "json" or "console".
	Format      string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	AdminUsername         string
	AdminPassword         string
}

// RoutingConfig tunes the document routing engine.
type RoutingConfig struct {
	StatusPolicy         string
	CascadeDelete        bool
	DeadlineWatchMinutes int
	DeadlineWatchDays    int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	timezone := getEnv("APP_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	backend := LockBackend(strings.ToLower(getEnv("LOCK_BACKEND", string(LockBackendMemory))))
	if backend != LockBackendMemory && backend != LockBackendRedis {
		return nil, fmt.Errorf("invalid LOCK_BACKEND: %q", backend)
	}

	policy := strings.ToLower(getEnv("ROUTING_STATUS_POLICY", "permissive"))
	if policy != "permissive" && policy != "strict" {
		return nil, fmt.Errorf("invalid ROUTING_STATUS_POLICY: %q", policy)
	}

	appName := getEnv("APP_NAME", "document-tracking-service")
	appEnv := strings.ToLower(getEnv("APP_ENV", "development"))

	cfg := &Config{
		App: AppConfig{
			Name:                  appName,
			Env:                   appEnv,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			Timezone:              timezone,
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ApplicationName: appName,
			Timezone:        timezone,
		},
		Redis: RedisConfig{
			Addr:               getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:           os.Getenv("REDIS_PASSWORD"),
			DB:                 redisDB,
			DialTimeoutSeconds: getEnvAsInt("REDIS_DIAL_TIMEOUT_SECONDS", 5),
		},
		Lock: LockConfig{
			Backend:     backend,
			TTLSeconds:  getEnvAsInt("LOCK_TTL_SECONDS", 10),
			WaitMillis:  getEnvAsInt("LOCK_WAIT_MILLISECONDS", 2000),
			RetryMillis: getEnvAsInt("LOCK_RETRY_MILLISECONDS", 25),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      strings.ToLower(getEnv("LOG_FORMAT", "json")),
			Development: appEnv == "development",
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		},
		Routing: RoutingConfig{
			StatusPolicy:         policy,
			CascadeDelete:        getEnvAsBool("ROUTING_CASCADE_DELETE", false),
			DeadlineWatchMinutes: getEnvAsInt("DEADLINE_WATCH_INTERVAL_MINUTES", 0),
			DeadlineWatchDays:    getEnvAsInt("DEADLINE_WATCH_DAYS", 2),
		},
	}

	return cfg, nil
}

// DeadlineWatchInterval returns how often the deadline watcher runs; zero disables it.
func (r RoutingConfig) DeadlineWatchInterval() time.Duration {
	if r.DeadlineWatchMinutes <= 0 {
		return 0
	}
	return time.Duration(r.DeadlineWatchMinutes) * time.Minute
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the configured timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TTL returns how long a held lock survives without release.
func (l LockConfig) TTL() time.Duration {
	if l.TTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(l.TTLSeconds) * time.Second
}

// Wait returns how long an operation waits for a busy lock.
func (l LockConfig) Wait() time.Duration {
	if l.WaitMillis < 0 {
		return 0
	}
	return time.Duration(l.WaitMillis) * time.Millisecond
}

// DialTimeout bounds connection attempts to Redis.
func (r RedisConfig) DialTimeout() time.Duration {
	if r.DialTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.DialTimeoutSeconds) * time.Second
}

// RetryInterval returns the pause between acquisition attempts.
func (l LockConfig) RetryInterval() time.Duration {
	if l.RetryMillis <= 0 {
		return 25 * time.Millisecond
	}
	return time.Duration(l.RetryMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
