package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	User     UserConfig     `mapstructure:"user"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Learning LearningConfig `mapstructure:"learning"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig holds the remote lesson-progress API settings
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UserConfig identifies the learner for the local store
type UserConfig struct {
	ID string `mapstructure:"id"`
}

// ServerConfig holds local progress API server configuration
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds local store configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LearningConfig tunes learning sessions
type LearningConfig struct {
	OptionCount int `mapstructure:"option_count"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. An explicit
// path overrides the default .env lookup.
func Load(path string) (*Config, error) {
	v := viper.GetViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.normalize()
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 10*time.Second)

	v.SetDefault("user.id", "local")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "file:kovoc.db?_fk=1")

	v.SetDefault("learning.option_count", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.User.ID = strings.TrimSpace(c.User.ID)
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	// env values arrive as a single comma separated string
	if len(c.Server.CORSOrigins) == 1 && strings.Contains(c.Server.CORSOrigins[0], ",") {
		c.Server.CORSOrigins = strings.Split(c.Server.CORSOrigins[0], ",")
	}
	for i := range c.Server.CORSOrigins {
		c.Server.CORSOrigins[i] = strings.TrimSpace(c.Server.CORSOrigins[i])
	}
}

// DatabaseDriver returns the normalized driver name: sqlite3 or postgres.
func (c *Config) DatabaseDriver() (string, error) {
	switch c.Database.Driver {
	case "sqlite3", "sqlite":
		return "sqlite3", nil
	case "postgres", "postgresql", "pgx":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

// DatabaseURL returns the configured DSN.
func (c *Config) DatabaseURL() (string, error) {
	dsn := strings.TrimSpace(c.Database.DSN)
	if dsn == "" {
		return "", errors.New("database.dsn is required")
	}
	return dsn, nil
}

// ServerAddr returns host:port for the local progress API.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
