package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
	Ranking       RankingConfig       `yaml:"ranking"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL        string `yaml:"url"`
	QueueGroup string `yaml:"queue_group"`
}

// HTTPConfig holds the read API listener settings.
type HTTPConfig struct {
	Addr              string  `yaml:"addr"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// AuthConfig holds the admin bearer token settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name"`
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// RankingConfig tunes the ranking engine's background work.
type RankingConfig struct {
	// NightlyRebuildHour is the UTC hour the reconciliation job runs at.
	NightlyRebuildHour int           `yaml:"nightly_rebuild_hour"`
	MaxWorkers         int           `yaml:"max_workers"`
	SettingsRefresh    time.Duration `yaml:"settings_refresh"`
	// DisableQueue turns off River; rebuild requests then only arrive over NATS.
	DisableQueue bool `yaml:"disable_queue"`
}

// LoadConfig loads the configuration from a YAML file. Values from a .env file
// in the working directory are exported first, and environment variables
// override the file. When the file does not exist the configuration is read
// from the environment alone.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_QUEUE_GROUP"); v != "" {
		cfg.NATS.QueueGroup = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_REQUESTS_PER_SECOND value: %w", err)
		}
		cfg.HTTP.RequestsPerSecond = f
	}
	if v := os.Getenv("HTTP_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_BURST value: %w", err)
		}
		cfg.HTTP.Burst = n
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("RANKING_NIGHTLY_REBUILD_HOUR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RANKING_NIGHTLY_REBUILD_HOUR value: %w", err)
		}
		cfg.Ranking.NightlyRebuildHour = n
	}
	if v := os.Getenv("RANKING_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RANKING_MAX_WORKERS value: %w", err)
		}
		cfg.Ranking.MaxWorkers = n
	}
	if v := os.Getenv("RANKING_SETTINGS_REFRESH"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RANKING_SETTINGS_REFRESH value: %w", err)
		}
		cfg.Ranking.SettingsRefresh = d
	}
	if v := os.Getenv("RANKING_DISABLE_QUEUE"); v != "" {
		cfg.Ranking.DisableQueue = v == "true"
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.NATS.QueueGroup == "" {
		c.NATS.QueueGroup = "lama-ranking"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.RequestsPerSecond <= 0 {
		c.HTTP.RequestsPerSecond = 10
	}
	if c.HTTP.Burst <= 0 {
		c.HTTP.Burst = 20
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "lama-ranking"
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "lama-ranking"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
	if c.Ranking.NightlyRebuildHour < 0 || c.Ranking.NightlyRebuildHour > 23 {
		c.Ranking.NightlyRebuildHour = 3
	}
	if c.Ranking.MaxWorkers <= 0 {
		c.Ranking.MaxWorkers = 4
	}
	if c.Ranking.SettingsRefresh <= 0 {
		c.Ranking.SettingsRefresh = time.Minute
	}
}
