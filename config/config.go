/*
Package config loads server configuration from the environment.

PURPOSE:
  Central place for everything tunable at deploy time. A .env file is
  loaded when present (local development); real environments set the
  variables directly.

VARIABLES:
  PORT                  HTTP server port (default 8080)
  DB_PATH               SQLite database path (default leave.db)
  CATALOG_PATH          JSON catalog override file (optional)
  COUNT_MODE            business_days | calendar_days (default business_days)
  CARRYOVER_ENABLED     true | false (default true)
  CARRYOVER_MAX_CYCLES  prior years the carryover walk covers (default 3)
  LOG_LEVEL             logrus level string (default info)
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/vacation"
)

// Config is the resolved server configuration.
type Config struct {
	Port        int
	DBPath      string
	CatalogPath string
	LogLevel    logrus.Level

	Vacation vacation.Settings
}

// Load reads the environment, honoring a local .env file when present.
func Load() (*Config, error) {
	// Missing .env is fine outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvAsInt("PORT", 8080),
		DBPath:      getEnv("DB_PATH", "leave.db"),
		CatalogPath: getEnv("CATALOG_PATH", ""),
		Vacation:    vacation.DefaultSettings(),
	}

	if mode := getEnv("COUNT_MODE", ""); mode != "" {
		parsed, err := leave.ParseCountMode(mode)
		if err != nil {
			return nil, fmt.Errorf("COUNT_MODE: %w", err)
		}
		cfg.Vacation.CountMode = parsed
	}
	cfg.Vacation.CarryoverEnabled = getEnvAsBool("CARRYOVER_ENABLED", true)
	cfg.Vacation.CarryoverMaxCycles = getEnvAsInt("CARRYOVER_MAX_CYCLES", 3)

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}
