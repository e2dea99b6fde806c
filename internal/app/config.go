package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/recipebook-backend/internal/data/db"
)

const (
	StoreSQL   = "sql"
	StoreGraph = "graph"

	devAccessSecret  = "dev-access-secret"
	devRefreshSecret = "dev-refresh-secret"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	LogMode         string        `env:"LOG_MODE" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"sql"`

	DatabaseDriver   string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"recipes.db"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"recipebook"`

	Neo4jURI         string        `env:"NEO4J_URI"`
	Neo4jUser        string        `env:"NEO4J_USER" envDefault:"neo4j"`
	Neo4jPassword    string        `env:"NEO4J_PASSWORD"`
	Neo4jDatabase    string        `env:"NEO4J_DATABASE"`
	Neo4jTimeout     time.Duration `env:"NEO4J_TIMEOUT" envDefault:"10s"`
	Neo4jMaxPoolSize int           `env:"NEO4J_MAX_POOL_SIZE" envDefault:"50"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret        string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
	CookieSecure     bool          `env:"COOKIE_SECURE" envDefault:"false"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:3001"`
	MaxBodyBytes   int64    `env:"MAX_BODY_BYTES" envDefault:"52428800"`
	BreakerEnabled bool     `env:"BREAKER_ENABLED" envDefault:"true"`

	ServiceName      string  `env:"OTEL_SERVICE_NAME" envDefault:"recipebook"`
	ServiceVersion   string  `env:"SERVICE_VERSION" envDefault:"dev"`
	OtelEnabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders      string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSamplerRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"1"`
	MetricsEnabled   bool    `env:"METRICS_ENABLED" envDefault:"true"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	mode := strings.ToLower(strings.TrimSpace(c.LogMode))
	return mode == "prod" || mode == "production"
}

// Normalize lower-cases enum values and fills development secrets. It fails
// when production mode is missing a JWT secret or a value is out of range.
func (c *Config) Normalize() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))

	var errs []error
	switch c.StoreBackend {
	case StoreSQL:
		if c.DatabaseDriver != db.DriverSQLite && c.DatabaseDriver != db.DriverPostgres {
			errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", db.DriverSQLite, db.DriverPostgres, c.DatabaseDriver))
		}
	case StoreGraph:
		if strings.TrimSpace(c.Neo4jURI) == "" {
			errs = append(errs, errors.New("NEO4J_URI is required when STORE_BACKEND=graph"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreSQL, StoreGraph, c.StoreBackend))
	}

	if c.IsProduction() {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		if c.JWTRefreshSecret == "" {
			errs = append(errs, errors.New("JWT_REFRESH_SECRET is required in production"))
		}
	} else {
		if c.JWTSecret == "" {
			c.JWTSecret = devAccessSecret
		}
		if c.JWTRefreshSecret == "" {
			c.JWTRefreshSecret = devRefreshSecret
		}
	}
	if c.JWTSecret != "" && c.JWTSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	return errors.Join(errs...)
}

// UsingDevSecrets reports whether Normalize filled in development JWT secrets.
func (c Config) UsingDevSecrets() bool {
	return c.JWTSecret == devAccessSecret || c.JWTRefreshSecret == devRefreshSecret
}

func (c Config) DBConfig() db.Config {
	return db.Config{
		Driver:           c.DatabaseDriver,
		SQLitePath:       c.SQLitePath,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
	}
}
