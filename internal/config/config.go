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

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Frontend FrontendConfig `mapstructure:"frontend"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address, accepting both "4000" and ":4000" forms.
func (c AppConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type FrontendConfig struct {
	URL string `mapstructure:"url"`
}

type RabbitMQConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration from environment variables and an optional
// dotenv file (".env", or the path in CONFIG_FILE).
func Load() (*Config, error) {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = ".env"
	}
	// Values already present in the environment win over the dotenv file.
	if err := gotenv.Load(configFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	v := viper.New()

	v.SetDefault("app.port", "4000")
	v.SetDefault("app.shutdown_timeout", "10s")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.log_level", "silent")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("frontend.url", "")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "product_events")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("app.port", "APP_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind port env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first configuration value that cannot be used.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DATABASE_DRIVER %q is not one of postgres, sqlite, memory", c.Database.Driver)
	}
	switch c.Database.LogLevel {
	case "silent", "error", "warn", "info":
	default:
		return fmt.Errorf("DATABASE_LOG_LEVEL %q is not one of silent, error, warn, info", c.Database.LogLevel)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT %q is not one of json, text", c.Log.Format)
	}
	if c.App.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}
	return nil
}
