// Package config loads CLI defaults from the environment.
//
// Environment variables:
//
//	AIGO_DB         SQLite query log path (default: none, queries are not logged)
//	AIGO_LOG_LEVEL  debug | info | warn | error (default: info)
//	AIGO_PARALLEL   concurrent component sums, 0 = sequential (default: 0)
//	AIGO_FORMAT     text | json (default: text)
//
// Command-line flags override these values. Always call Validate after
// LoadFromEnv.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds CLI defaults.
type Config struct {
	DB       string `validate:"omitempty,max=4096"`
	LogLevel string `validate:"oneof=debug info warn error"`
	Parallel int    `validate:"gte=0,lte=256"`
	Format   string `validate:"oneof=text json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Format:   "text",
	}
}

// LoadFromEnv reads the AIGO_* variables over the defaults.
// Unparseable numbers keep their default; Validate reports bad enums.
func LoadFromEnv() *Config {
	def := Default()
	return &Config{
		DB:       getEnv("AIGO_DB", def.DB),
		LogLevel: strings.ToLower(getEnv("AIGO_LOG_LEVEL", def.LogLevel)),
		Parallel: getEnvInt("AIGO_PARALLEL", def.Parallel),
		Format:   strings.ToLower(getEnv("AIGO_FORMAT", def.Format)),
	}
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s=%s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
