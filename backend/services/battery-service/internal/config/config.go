package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "batteryhub/backend/libs/config"
)

// Storage drivers accepted by storage.driver.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

const (
	defaultHTTPPort        = "8080"
	defaultMongoDatabase   = "batteryhub"
	defaultMongoCollection = "battery"
	defaultCacheTTLSeconds = 300
)

// Config defines battery service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"BATTERY_HTTP_PORT"`
	} `yaml:"http"`
	Storage struct {
		Driver string `yaml:"driver" env:"BATTERY_STORAGE_DRIVER"`
	} `yaml:"storage"`
	Database struct {
		DSN string `yaml:"dsn" env:"BATTERY_POSTGRES_DSN"`
	} `yaml:"database"`
	Mongo struct {
		URI        string `yaml:"uri" env:"BATTERY_MONGO_URI"`
		Database   string `yaml:"database" env:"BATTERY_MONGO_DATABASE"`
		Collection string `yaml:"collection" env:"BATTERY_MONGO_COLLECTION"`
	} `yaml:"mongo"`
	Redis struct {
		Addr     string `yaml:"addr" env:"BATTERY_REDIS_ADDR"`
		Password string `yaml:"password" env:"BATTERY_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"BATTERY_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"BATTERY_REDIS_TTL"`
	} `yaml:"redis"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultHTTPPort
	cfg.Storage.Driver = DriverPostgres
	cfg.Mongo.Database = defaultMongoDatabase
	cfg.Mongo.Collection = defaultMongoCollection
	cfg.Redis.TTL = defaultCacheTTLSeconds

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))

	switch c.Storage.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database dsn required")
		}
	case DriverMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" {
			return errors.New("config: mongo uri required")
		}
		if strings.TrimSpace(c.Mongo.Database) == "" || strings.TrimSpace(c.Mongo.Collection) == "" {
			return errors.New("config: mongo database and collection required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultHTTPPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

// CacheTTL returns ttl as duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return defaultCacheTTLSeconds * time.Second
	}
	return time.Duration(c.Redis.TTL) * time.Second
}
