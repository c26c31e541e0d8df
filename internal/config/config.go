package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yigit/ssis/internal/app/models"
)

// Storage backends
const (
	BackendCSV = "csv"
	BackendSQL = "sql"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Storage struct {
		Backend     string `yaml:"backend" env:"STORAGE_BACKEND"`
		CSVDir      string `yaml:"csv_dir" env:"STORAGE_CSV_DIR"`
		CascadeMode string `yaml:"cascade_mode" env:"STORAGE_CASCADE_MODE"`
	} `yaml:"storage"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		Path            string `yaml:"path" env:"DB_PATH"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, a .env file and environment variables,
// in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	normalize(config)
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Storage.Backend = BackendSQL
	config.Storage.CSVDir = "data"
	config.Storage.CascadeMode = string(models.CascadeNullify)

	config.Database.Driver = DriverSQLite
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "ssis"
	config.Database.SSLMode = "disable"
	config.Database.Path = "ssis.db"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// normalize lowercases the enumerated settings so later comparisons are exact
func normalize(config *Config) {
	config.Server.Mode = strings.ToLower(strings.TrimSpace(config.Server.Mode))
	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	config.Storage.CascadeMode = strings.ToLower(strings.TrimSpace(config.Storage.CascadeMode))
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Storage.Backend {
	case BackendCSV:
		if config.Storage.CSVDir == "" {
			return fmt.Errorf("csv directory is required for the csv backend")
		}
	case BackendSQL:
		switch config.Database.Driver {
		case DriverPostgres:
			if config.Database.Host == "" {
				return fmt.Errorf("database host is required")
			}
		case DriverSQLite:
			if config.Database.Path == "" {
				return fmt.Errorf("database path is required for sqlite")
			}
		default:
			return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid connection max lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", config.Storage.Backend)
	}

	if _, err := models.ParseCascadeMode(config.Storage.CascadeMode); err != nil {
		return err
	}

	return nil
}

// CascadeMode returns the configured cascade mode; the config was validated on load.
func (c *Config) CascadeMode() models.CascadeMode {
	mode, _ := models.ParseCascadeMode(c.Storage.CascadeMode)
	return mode
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// GetSQLiteConnectionString returns a modernc sqlite DSN with foreign keys enforced
func (c *Config) GetSQLiteConnectionString() string {
	return SQLiteDSN(c.Database.Path)
}

// SQLiteDSN builds the DSN used for a sqlite database file at path.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
