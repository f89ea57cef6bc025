// Copyright (c) 2026 Quotable. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

Variables are read from the process environment, optionally seeded from a
local .env file, and mapped onto a strongly-typed struct with caarlos0/env.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through
their constructors.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Quotable API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Cache (Redis). Empty disables the shared write limiter.
	RedisURL string `env:"REDIS_URL"`

	// Write protection
	ResourceProtection bool   `env:"RESOURCE_PROTECTION" envDefault:"false"`
	ResourceAPIKey     string `env:"RESOURCE_API_KEY"`

	// WriteRateLimit is the number of mutating requests allowed per client per minute.
	WriteRateLimit int `env:"WRITE_RATE_LIMIT" envDefault:"60"`

	// Bulk upload
	UploadChunkSize int   `env:"UPLOAD_CHUNK_SIZE" envDefault:"500"`
	UploadMaxBytes  int64 `env:"UPLOAD_MAX_BYTES"  envDefault:"10485760"`

	// Cross-Origin Resource Sharing, comma separated.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into
// a [Config] struct.
//
// Variables already present in the environment win over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment onto a [Config] without touching .env.
func Parse() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var problems []string

	if c.ResourceProtection && strings.TrimSpace(c.ResourceAPIKey) == "" {
		problems = append(problems, "RESOURCE_API_KEY is required when RESOURCE_PROTECTION is enabled")
	}
	if c.WriteRateLimit < 0 {
		problems = append(problems, "WRITE_RATE_LIMIT must not be negative")
	}
	if c.UploadChunkSize <= 0 {
		problems = append(problems, "UPLOAD_CHUNK_SIZE must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		problems = append(problems, "UPLOAD_MAX_BYTES must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
