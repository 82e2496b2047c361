package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Elevation ElevationConfig `mapstructure:"elevation"`
	RoadGraph RoadGraphConfig `mapstructure:"roadgraph"`
	Terrain   TerrainConfig   `mapstructure:"terrain"`
	Cache     CacheConfig     `mapstructure:"cache"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// ElevationConfig points at the external point-elevation service.
type ElevationConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	GridConcurrency    int    `mapstructure:"grid_concurrency"`
	ProfileConcurrency int    `mapstructure:"profile_concurrency"`
}

// RoadGraphConfig points at the external road routing service.
type RoadGraphConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// TerrainConfig tunes the terrain search engine.
type TerrainConfig struct {
	GridSize    int     `mapstructure:"grid_size"`
	MaxSlopeDeg float64 `mapstructure:"max_slope_deg"`
}

// CacheConfig selects and configures the route cache backend.
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "valkey"
	Addr    string `mapstructure:"addr"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 35)
	v.SetDefault("elevation.base_url", "http://localhost:5000")
	v.SetDefault("elevation.timeout_seconds", 10)
	v.SetDefault("elevation.grid_concurrency", 25)
	v.SetDefault("elevation.profile_concurrency", 10)
	v.SetDefault("roadgraph.base_url", "http://localhost:5001")
	v.SetDefault("roadgraph.timeout_seconds", 15)
	v.SetDefault("terrain.grid_size", 25)
	v.SetDefault("terrain.max_slope_deg", 35.0)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: INTELMAP_ELEVATION_BASE_URL → elevation.base_url
	v.SetEnvPrefix("INTELMAP")
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
	if c.Elevation.BaseURL == "" {
		errs = append(errs, "elevation.base_url is required")
	}
	if c.Elevation.GridConcurrency <= 0 {
		errs = append(errs, "elevation.grid_concurrency must be positive")
	}
	if c.Elevation.ProfileConcurrency <= 0 {
		errs = append(errs, "elevation.profile_concurrency must be positive")
	}
	if c.RoadGraph.BaseURL == "" {
		errs = append(errs, "roadgraph.base_url is required")
	}
	if c.Terrain.GridSize < 2 {
		errs = append(errs, fmt.Sprintf("terrain.grid_size must be at least 2, got %d", c.Terrain.GridSize))
	}
	if c.Terrain.MaxSlopeDeg <= 0 || c.Terrain.MaxSlopeDeg >= 90 {
		errs = append(errs, fmt.Sprintf("terrain.max_slope_deg must be in (0, 90), got %f", c.Terrain.MaxSlopeDeg))
	}
	switch c.Cache.Backend {
	case "memory", "valkey":
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be memory or valkey, got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == "valkey" && c.Cache.Addr == "" {
		errs = append(errs, "cache.addr is required for the valkey backend")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
