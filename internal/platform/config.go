package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv.
const (
	EnvData        = "SYLLABUS_DATA"
	EnvAdapter     = "SYLLABUS_ADAPTER"
	EnvRedisURL    = "SYLLABUS_REDIS_URL"
	EnvRedisPrefix = "SYLLABUS_REDIS_PREFIX"
	EnvVersioning  = "SYLLABUS_VERSIONING"
	EnvReadOnly    = "SYLLABUS_READ_ONLY"
)

// EnvConfig is the configuration found in the environment. Empty fields
// were not set.
type EnvConfig struct {
	Data        string
	Adapter     string
	RedisURL    string
	RedisPrefix string
	Versioning  *bool
	ReadOnly    bool
}

// LoadEnv loads the given .env files (missing files are skipped) into the
// process environment without overriding existing variables, then reads
// the SYLLABUS_* variables.
func LoadEnv(files ...string) (EnvConfig, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return EnvConfig{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := EnvConfig{
		Data:        os.Getenv(EnvData),
		Adapter:     strings.ToLower(os.Getenv(EnvAdapter)),
		RedisURL:    os.Getenv(EnvRedisURL),
		RedisPrefix: os.Getenv(EnvRedisPrefix),
	}

	if v := os.Getenv(EnvVersioning); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return EnvConfig{}, fmt.Errorf("invalid %s: %w", EnvVersioning, err)
		}
		cfg.Versioning = &b
	}
	if v := os.Getenv(EnvReadOnly); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return EnvConfig{}, fmt.Errorf("invalid %s: %w", EnvReadOnly, err)
		}
		cfg.ReadOnly = b
	}

	return cfg, nil
}

// Options turns the environment into options. Options passed after these
// take precedence.
func (c EnvConfig) Options() []Option {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.RedisURL != "" {
		opts = append(opts, WithRedisURL(c.RedisURL))
	}
	if c.RedisPrefix != "" {
		opts = append(opts, WithRedisPrefix(c.RedisPrefix))
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	return opts
}
