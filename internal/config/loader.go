package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"dutyservice/internal/db"
)

// ConfigError is the diagnostic error type returned by LoadConfig.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfig loads and validates the configuration.
//
// The sequence is:
//  1. Set the process timezone to UTC.
//  2. Load .env files. With no arguments ".env" is tried and a missing file
//     is ignored; explicitly named files must exist.
//  3. Populate Config from the environment via envconfig.
//  4. Populate Config.Build from linker-injected variables.
//  5. Validate the struct.
//  6. Derive Database.EnsureDatabases from the URL when unset.
//
// godotenv never overrides variables already present in the environment.
func LoadConfig(dotenvFiles ...string) (*Config, error) {
	time.Local = time.UTC

	if err := loadDotenv(dotenvFiles); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	if len(cfg.Database.EnsureDatabases) == 0 {
		name, err := db.DatabaseName(cfg.Database.URL.Unmask())
		if err != nil {
			return nil, &ConfigError{
				Type:    ErrDerivation,
				Message: "failed to read database name from DATABASE_URL",
				Err:     err,
			}
		}
		if name != "" {
			cfg.Database.EnsureDatabases = []string{name}
		}
	}

	return &cfg, nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &ConfigError{Type: ErrDotenv, Message: "failed to read .env", Err: err}
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return &ConfigError{Type: ErrDotenv, Message: "failed to read dotenv files", Err: err}
	}
	return nil
}
