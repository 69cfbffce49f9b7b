package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name  string `envconfig:"APP_NAME" default:"nexuscheck"`
		Stage string `envconfig:"STAGE" default:"local"`
		Port  int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		URL      string `envconfig:"DATABASE_URL"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"nexuscheck"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Compute struct {
		// MaxParallelJurisdictions bounds the fan-out of the nexus engine.
		// Jurisdiction computations share nothing, so this is purely a
		// CPU/connection throttle.
		MaxParallelJurisdictions int `envconfig:"MAX_PARALLEL_JURISDICTIONS" default:"8"`
	}
}

// ConnectionString returns DATABASE_URL when set, otherwise assembles one from
// the individual DB_* variables.
func (c *Config) ConnectionString() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
