package api

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rangeops/rangecore/pkg/topology"
	"github.com/rangeops/rangecore/pkg/validation"
)

// Defaults applied by Normalize when a field is unset.
const (
	DefaultPort          = 7700
	DefaultTokenDuration = 8 * time.Hour
	DefaultStoreBackend  = "memory"
)

var storeBackends = []string{"memory", "file", "postgres", "s3"}

// StoreConfig selects and configures the topology store backend.
type StoreConfig struct {
	Backend     string            `yaml:"backend"`
	FileDir     string            `yaml:"file_dir,omitempty"`
	PostgresDSN string            `yaml:"postgres_dsn,omitempty"`
	S3          topology.S3Config `yaml:"s3,omitempty"`
}

// ReplicationConfig configures the topology change feed.
type ReplicationConfig struct {
	Enabled       bool   `yaml:"enabled"`
	PublishAddr   string `yaml:"publish_addr,omitempty"`
	SubscribeAddr string `yaml:"subscribe_addr,omitempty"`
}

// Config is the full server configuration.
type Config struct {
	Port          int               `yaml:"port"`
	JWTSecret     string            `yaml:"jwt_secret"`
	TokenDuration time.Duration     `yaml:"token_duration"`
	Store         StoreConfig       `yaml:"store"`
	Replication   ReplicationConfig `yaml:"replication"`
	AuditBuffer   int               `yaml:"audit_buffer"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	c.Port = validation.DefaultOrInt(c.Port, DefaultPort)
	c.TokenDuration = validation.DefaultOrDuration(c.TokenDuration, DefaultTokenDuration)
	c.Store.Backend = validation.DefaultOr(c.Store.Backend, DefaultStoreBackend)
	c.AuditBuffer = validation.DefaultOrInt(c.AuditBuffer, 1000)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		RangeInt("Port", c.Port, 1, 65535).
		MinLength("JWTSecret", c.JWTSecret, 32).
		MinDuration("TokenDuration", c.TokenDuration, time.Minute).
		OneOf("Store.Backend", c.Store.Backend, storeBackends).
		When(c.Store.Backend == "file", func(cv *validation.ConfigValidator) {
			cv.Required("Store.FileDir", c.Store.FileDir)
		}).
		When(c.Store.Backend == "postgres", func(cv *validation.ConfigValidator) {
			cv.Required("Store.PostgresDSN", c.Store.PostgresDSN)
		}).
		When(c.Store.Backend == "s3", func(cv *validation.ConfigValidator) {
			cv.Required("Store.S3.Bucket", c.Store.S3.Bucket)
			cv.Required("Store.S3.Region", c.Store.S3.Region)
		}).
		When(c.Replication.Enabled, func(cv *validation.ConfigValidator) {
			cv.Custom("Replication", func() error {
				if c.Replication.PublishAddr == "" && c.Replication.SubscribeAddr == "" {
					return fmt.Errorf("replication enabled but no publish or subscribe address set")
				}
				return nil
			})
		}).
		Validate()
}
