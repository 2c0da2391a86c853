package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SPREADSHEET_ID", "sheet-123")
	t.Setenv("BYPASS_AUTH", "true")
	t.Setenv("ADMIN_EMAIL", "admin@example.org")
	t.Setenv("GOOGLE_CLIENT_ID", "client-123.apps.googleusercontent.com")

	cfg, err := Load("missing.yaml")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "sheet-123", cfg.Store.SpreadsheetID)
	assert.True(t, cfg.Auth.BypassAuth)
	assert.Equal(t, "client-123.apps.googleusercontent.com", cfg.Auth.GoogleClientID)
	assert.Equal(t, DriverSheets, cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Store.Concurrency)
	assert.Equal(t, 45*time.Second, cfg.Store.ReadTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_FileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "server:\n  port: 9090\nstore:\n  driver: sqlite\n  sqlite_path: db/surat.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "db/surat.db", cfg.Store.SQLitePath)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Port: 8080},
			Store:  StoreConfig{Driver: DriverMemory},
			Auth:   AuthConfig{JWTSecret: "x"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Driver = DriverSQLite }, true},
		{"unconfigured sheets tolerated", func(c *Config) { c.Store.Driver = DriverSheets }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCredentialsJSON(t *testing.T) {
	inline := StoreConfig{Credentials: ` {"type":"service_account"}`}
	data, err := inline.CredentialsJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, string(data))

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"k":1}`), 0o600))
	data, err = StoreConfig{Credentials: path}.CredentialsJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"k":1}`, string(data))

	_, err = StoreConfig{Credentials: "/nope/sa.json"}.CredentialsJSON()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
