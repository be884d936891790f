// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, WordPress, Redis, Postgres, Kafka, Revalidate, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	WordPress  WordPressConfig  `yaml:"wordpress"`
	Redis      RedisConfig      `yaml:"redis"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Revalidate RevalidateConfig `yaml:"revalidate"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// WordPressConfig holds the origin CMS REST endpoint and caching parameters.
// BaseURL points at the wp/v2 namespace, e.g.
// https://blog.example.com/wp-json/wp/v2.
type WordPressConfig struct {
	BaseURL        string        `yaml:"baseUrl"`
	FetchTimeout   time.Duration `yaml:"fetchTimeout"`
	ListTTL        time.Duration `yaml:"listTtl"`
	SubresourceTTL time.Duration `yaml:"subresourceTtl"`
}

// RedisConfig holds Redis connection parameters and the render-cache TTL.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	RenderTTL time.Duration `yaml:"renderTtl"`
}

// PostgresConfig holds PostgreSQL connection parameters for the view-counter
// store.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	ContentInvalidate string `yaml:"contentInvalidate"`
}

// RevalidateConfig holds the revalidation gateway settings. Secret is parsed
// from inbound requests but not enforced; see internal/revalidate.
type RevalidateConfig struct {
	Port         int      `yaml:"port"`
	Secret       string   `yaml:"secret"`
	GatewayURL   string   `yaml:"gatewayUrl"`
	ListingPaths []string `yaml:"listingPaths"`
}

// LoggingConfig holds log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with defaults suitable for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		WordPress: WordPressConfig{
			BaseURL:        "http://localhost:8888/wp-json/wp/v2",
			FetchTimeout:   10 * time.Second,
			ListTTL:        60 * time.Second,
			SubresourceTTL: time.Hour,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			Password:  "",
			DB:        0,
			PoolSize:  10,
			RenderTTL: 60 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "newsfeed",
			User:            "newsfeed",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "newsfeed-group",
			Topics: KafkaTopics{
				ContentInvalidate: "content-invalidate",
			},
		},
		Revalidate: RevalidateConfig{
			Port:       8081,
			Secret:     "",
			GatewayURL: "http://localhost:8081",
			ListingPaths: []string{
				"/", "/blog", "/latest", "/trending",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads NF_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NF_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NF_WORDPRESS_BASE_URL"); v != "" {
		cfg.WordPress.BaseURL = v
	}
	if v := os.Getenv("NF_WORDPRESS_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WordPress.FetchTimeout = d
		}
	}
	if v := os.Getenv("NF_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("NF_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("NF_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("NF_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("NF_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("NF_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("NF_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("NF_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("NF_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("NF_REVALIDATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Revalidate.Port = port
		}
	}
	if v := os.Getenv("NF_REVALIDATE_SECRET"); v != "" {
		cfg.Revalidate.Secret = v
	}
	if v := os.Getenv("NF_REVALIDATE_GATEWAY_URL"); v != "" {
		cfg.Revalidate.GatewayURL = v
	}
	if v := os.Getenv("NF_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NF_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
