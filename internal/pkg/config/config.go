package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/pkg/geospatial"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Temporal   TemporalConfig   `mapstructure:"temporal"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects where site reference data is read from.
type CatalogConfig struct {
	Source string `mapstructure:"source"` // "embedded" | "postgres"
}

// ProjectionConfig configures the map projector.
type ProjectionConfig struct {
	Policy string             `mapstructure:"policy"` // "clamp" | "reject"
	Bounds domain.BoundingBox `mapstructure:"bounds"`
}

type CacheConfig struct {
	LayoutTTL int `mapstructure:"layout_ttl"` // seconds
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allowed_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("catalog.source", "embedded")
	v.SetDefault("projection.policy", string(geospatial.PolicyClamp))
	v.SetDefault("projection.bounds.north", domain.IndiaBounds.North)
	v.SetDefault("projection.bounds.south", domain.IndiaBounds.South)
	v.SetDefault("projection.bounds.east", domain.IndiaBounds.East)
	v.SetDefault("projection.bounds.west", domain.IndiaBounds.West)
	v.SetDefault("cache.layout_ttl", 3600)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hydroline")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "hydroline")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "catalog-sync")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: HYDROLINE_PROJECTION_POLICY → projection.policy
	v.SetEnvPrefix("HYDROLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	switch c.Catalog.Source {
	case "embedded":
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required when catalog.source is postgres")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required when catalog.source is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("catalog.source must be embedded or postgres, got %q", c.Catalog.Source))
	}
	if _, err := geospatial.ParsePolicy(c.Projection.Policy); err != nil {
		errs = append(errs, "projection.policy: "+err.Error())
	}
	if err := c.Projection.Bounds.Validate(); err != nil {
		errs = append(errs, "projection.bounds: "+err.Error())
	}
	if c.Cache.LayoutTTL < 0 {
		errs = append(errs, "cache.layout_ttl must not be negative")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
