package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Store drivers
const (
	DriverSheets = "sheets"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig selects and configures the tabular store
type StoreConfig struct {
	Driver        string        `mapstructure:"driver"`
	SpreadsheetID string        `mapstructure:"spreadsheet_id"`
	Credentials   string        `mapstructure:"credentials"` // JSON content or a file path
	Concurrency   int           `mapstructure:"concurrency"`
	MetadataTTL   time.Duration `mapstructure:"metadata_ttl"`
	ReadTTL       time.Duration `mapstructure:"read_ttl"`
	SQLitePath    string        `mapstructure:"sqlite_path"`
	Bootstrap     bool          `mapstructure:"bootstrap"`
}

// AuthConfig holds token and admin account settings
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AdminEmail    string        `mapstructure:"admin_email"`
	AdminPassword string        `mapstructure:"admin_password"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
	BypassAuth    bool          `mapstructure:"bypass_auth"`

	// GoogleClientID enables Google Sign-In ID tokens when set
	GoogleClientID string `mapstructure:"google_client_id"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads .env (if present), then the YAML file at configPath (if
// present), then the environment.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind env vars: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Quota-friendly defaults for the Sheets API
	v.SetDefault("store.driver", DriverSheets)
	v.SetDefault("store.concurrency", 2)
	v.SetDefault("store.metadata_ttl", 10*time.Minute)
	v.SetDefault("store.read_ttl", 45*time.Second)
	v.SetDefault("store.sqlite_path", "data/surat.db")
	v.SetDefault("store.bootstrap", true)

	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.bypass_auth", false)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars maps the deployment environment variables onto config keys
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"store.spreadsheet_id":  "SPREADSHEET_ID",
		"store.credentials":     "GOOGLE_SHEETS_CREDENTIALS",
		"store.driver":          "STORE_DRIVER",
		"auth.jwt_secret":       "JWT_SECRET",
		"auth.admin_email":      "ADMIN_EMAIL",
		"auth.admin_password":   "ADMIN_PASSWORD",
		"auth.bypass_auth":      "BYPASS_AUTH",
		"auth.google_client_id": "GOOGLE_CLIENT_ID",
		"server.port":           "PORT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Store.Driver {
	case DriverSheets:
		// An unconfigured spreadsheet is tolerated: the server starts and
		// store-backed endpoints answer 503.
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

// CredentialsJSON returns the service account key, reading it from disk
// when Credentials is a path.
func (c StoreConfig) CredentialsJSON() ([]byte, error) {
	raw := strings.TrimSpace(c.Credentials)
	if raw == "" || strings.HasPrefix(raw, "{") {
		return []byte(raw), nil
	}
	data, err := os.ReadFile(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return data, nil
}
