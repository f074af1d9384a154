// Package config defines the configuration of the duty service. It is loaded
// once at process start from the environment (optionally seeded by a .env
// file) and is immutable thereafter. Any missing required value or invalid
// format fails startup.
package config

import (
	"time"

	"dutyservice/internal/types"
)

// SecretString is an alias for types.SecretString so configuration dumps
// never print credentials.
type SecretString = types.SecretString

// ProductionEnv is the APP_ENV value under which bootstrap steps are skipped.
const ProductionEnv = "prod"

// Config is the top-level configuration struct. Sub-components receive only
// the subset they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"duty-service"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`

	Server   ServerConfig
	Database DatabaseConfig

	// Injected via ldflags, not env.
	Build BuildInfo
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == ProductionEnv
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"5001" validate:"required,numeric"`
	ReadTimeout        time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout       time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout        time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	RequestTimeout     time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"10s"`
	ShutdownTimeout    time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// DatabaseConfig holds the connection string, bootstrap targets and pool
// tuning.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	// AdminDatabase is the maintenance database used to create the others.
	AdminDatabase string `envconfig:"DB_ADMIN_DATABASE" default:"postgres" validate:"required"`
	// EnsureDatabases lists databases created at startup outside production.
	// Empty means the database named in URL.
	EnsureDatabases []string `envconfig:"DB_ENSURE_DATABASES"`

	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"10" validate:"min=1"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"2" validate:"min=0,ltefield=MaxConns"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
	TraceSQL          bool          `envconfig:"DB_TRACE_SQL" default:"false"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into its
	// target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrDotenv indicates an explicitly requested .env file could not be read.
	ErrDotenv ConfigErrorType = "DOTENV_FAILED"
	// ErrDerivation indicates a default could not be derived from another value.
	ErrDerivation ConfigErrorType = "DERIVATION_FAILED"
)
