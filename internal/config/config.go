package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServerAddr string

	DBDriver        string
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	LoanPeriodDays int

	LogLevel  string
	LogFormat string
	GinMode   string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can feed their own values.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		ServerAddr:  valueOr(getenv("SERVER_ADDR"), ":8080"),
		DBDriver:    strings.ToLower(valueOr(getenv("DB_DRIVER"), DriverPostgres)),
		DatabaseURL: getenv("DATABASE_URL"),
		LogLevel:    valueOr(getenv("LOG_LEVEL"), "info"),
		LogFormat:   valueOr(getenv("LOG_FORMAT"), "json"),
		GinMode:     valueOr(getenv("GIN_MODE"), "release"),
	}

	var err error
	if cfg.MaxOpenConns, err = intOr(getenv, "DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdleConns, err = intOr(getenv, "DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, err
	}
	if cfg.LoanPeriodDays, err = intOr(getenv, "LOAN_PERIOD_DAYS", 7); err != nil {
		return Config{}, err
	}
	if cfg.ConnMaxLifetime, err = durationOr(getenv, "DB_CONN_MAX_LIFETIME", time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.DBDriver == DriverSQLite && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "biblioteca.db"
	}
	return cfg, nil
}

// Validate checks the settings needed to open the store. It runs after flags are applied.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if c.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.MaxOpenConns)
	}
	if c.LoanPeriodDays < 1 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be positive, got %d", c.LoanPeriodDays)
	}
	return nil
}

func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func valueOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func intOr(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func durationOr(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
