package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var Module = fx.Provide(NewConfig)

type (
	Config struct {
		Host    string `mapstructure:"HOST"`
		Port    string `mapstructure:"PORT"`
		BaseURL string `mapstructure:"BASE_URL"`

		// Empty disables the gRPC listener.
		GRPCPort string `mapstructure:"GRPC_PORT"`

		LogLevel  string `mapstructure:"LOG_LEVEL"`
		LogPretty bool   `mapstructure:"LOG_PRETTY"`

		// bcrypt hash of the accepted bearer token. Empty accepts any bearer token.
		APITokenHash string `mapstructure:"API_TOKEN_HASH"`

		DBDriver   string `mapstructure:"DB_DRIVER"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
		SQLitePath string `mapstructure:"SQLITE_PATH"`
	}
)

var defaults = map[string]interface{}{
	"HOST":           "0.0.0.0",
	"PORT":           "1323",
	"BASE_URL":       "",
	"GRPC_PORT":      "9000",
	"LOG_LEVEL":      "info",
	"LOG_PRETTY":     false,
	"API_TOKEN_HASH": "",
	"DB_DRIVER":      DriverPostgres,
	"DB_HOST":        "0.0.0.0",
	"DB_PORT":        "5432",
	"DB_USER":        "user",
	"DB_PASSWORD":    "password",
	"DB_NAME":        "db",
	"DB_SSL_MODE":    sslModeDisable,
	"SQLITE_PATH":    "bookmarks.db",
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKMARKER")

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", key)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// PublicBaseURL is the prefix used for Location headers.
func (c *Config) PublicBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("http://localhost:%s", c.Port)
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.DBDriver, DriverPostgres, DriverSQLite, DriverMemory) {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if !oneOf(cfg.LogLevel, "debug", "info", "warn", "error") {
		return errors.New(fmt.Sprintf("log level is invalid: %s", cfg.LogLevel))
	}
	if cfg.Port == "" {
		return errors.New("port is empty")
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
