// Package container provides dependency injection and lifecycle management
// for the letter workflow service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	Store StoreConfig
	Auth  AuthConfig
}

// StoreConfig selects the tabular store backend.
type StoreConfig struct {
	// Driver is one of "sheets", "sqlite" or "memory"
	Driver string

	SpreadsheetID   string
	CredentialsJSON []byte

	// Concurrency caps in-flight Sheets API calls
	Concurrency int

	MetadataTTL time.Duration
	ReadTTL     time.Duration

	SQLitePath string

	// Bootstrap runs EnsureSchema on start
	Bootstrap bool
}

// AuthConfig holds token signing and the environment admin account.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	BcryptCost    int

	// GoogleClientID is the audience Google ID tokens must carry; empty
	// disables them
	GoogleClientID string
}

// DefaultConfig returns a Config for an in-memory store.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:      "memory",
			Concurrency: 2,
			MetadataTTL: 10 * time.Minute,
			ReadTTL:     45 * time.Second,
			Bootstrap:   true,
		},
		Auth: AuthConfig{
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 10,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt secret is required")
	}

	switch c.Store.Driver {
	case "sheets", "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	return nil
}
