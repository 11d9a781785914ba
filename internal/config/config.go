// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"EXAMTRAIL_DB_PATH" envDefault:"./data/examtrail.db"`
	JWTSecret  string `env:"EXAMTRAIL_JWT_SECRET,required"`
	ServerHost string `env:"EXAMTRAIL_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"EXAMTRAIL_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"EXAMTRAIL_ENV" envDefault:"development"`
	LogLevel   string `env:"EXAMTRAIL_LOG_LEVEL" envDefault:"info"`

	// Organization classification. AdminEmails is the research analyst
	// allowlist; accounts on the configured organization domain are
	// tagged with OrgTag, everything else falls through to "other".
	AdminEmails []string `env:"EXAMTRAIL_ADMIN_EMAILS" envSeparator:","`
	OrgDomain   string   `env:"EXAMTRAIL_ORG_DOMAIN" envDefault:"umbc.edu"`
	OrgTag      string   `env:"EXAMTRAIL_ORG_TAG" envDefault:"umbc"`

	// Seeding configuration
	DoSeed bool `env:"EXAMTRAIL_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinJWTSecretLength is the minimum required length for the token signing key.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("EXAMTRAIL_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("EXAMTRAIL_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("EXAMTRAIL_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	// Normalize allowlist entries once at load so classification can
	// compare without re-trimming on every signup.
	for i, email := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.TrimSpace(email)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
