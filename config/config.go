// Package config reads server settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/stevemurr/fitness-server/store"
)

type Config struct {
	Host           string
	Port           string
	DatabaseURL    string
	DatabaseName   string
	StoreBackend   string
	DataDir        string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
	StoreTimeout   time.Duration
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over .env entries.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is fine; an
// unreadable or malformed one is an error.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Host:         env("HOST", "0.0.0.0"),
		Port:         env("PORT", "8000"),
		DatabaseURL:  env("DATABASE_URL", ""),
		DatabaseName: env("DATABASE_NAME", "fitness"),
		DataDir:      env("DATA_DIR", "./data"),
		LogLevel:     env("LOG_LEVEL", "info"),
		LogFormat:    env("LOG_FORMAT", "text"),
	}
	cfg.StoreBackend = env("STORE_BACKEND", defaultBackend(cfg.DatabaseURL))
	for _, o := range strings.Split(env("ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	timeout, err := time.ParseDuration(env("STORE_TIMEOUT", "5s"))
	if err != nil {
		return nil, errors.Wrap(err, "STORE_TIMEOUT")
	}
	cfg.StoreTimeout = timeout
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return errors.Errorf("PORT must be a number between 0 and 65535, got %q", c.Port)
	}
	switch c.StoreBackend {
	case store.BackendMongo, store.BackendPostgres, store.BackendRedis:
		if c.DatabaseURL == "" {
			return errors.Errorf("DATABASE_URL is required when STORE_BACKEND=%s", c.StoreBackend)
		}
	case store.BackendSqlite, store.BackendJSON:
		if c.DataDir == "" {
			return errors.Errorf("DATA_DIR is required when STORE_BACKEND=%s", c.StoreBackend)
		}
	case store.BackendMemory, store.BackendOffline:
	default:
		return errors.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreTimeout < 0 {
		return errors.New("STORE_TIMEOUT must not be negative")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// StoreOptions maps the config onto store.New.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:  c.StoreBackend,
		URL:      c.DatabaseURL,
		Database: c.DatabaseName,
		DataDir:  c.DataDir,
		Timeout:  c.StoreTimeout,
	}
}

// defaultBackend picks mongo when a connection string is present. Without
// one the server runs on fallback data.
func defaultBackend(databaseURL string) string {
	if databaseURL != "" {
		return store.BackendMongo
	}
	return store.BackendOffline
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
