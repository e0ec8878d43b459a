package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries everything cmd/server needs to wire the service. The salt
// is the token signing secret: it is process-wide, fixed for the lifetime
// of the process, and must be provided explicitly.
type Config struct {
	HTTPAddr       string        `yaml:"http_addr"`
	MySQLDSN       string        `yaml:"mysql_dsn"`
	RedisAddr      string        `yaml:"redis_addr"`
	Salt           string        `yaml:"salt"`
	StorageTimeout time.Duration `yaml:"storage_timeout"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

func Default() Config {
	return Config{
		HTTPAddr:       ":8080",
		MySQLDSN:       "root:root@tcp(localhost:3306)/seckill?parseTime=true",
		RedisAddr:      "localhost:6379",
		StorageTimeout: 5 * time.Second,
		CacheTTL:       time.Hour,
	}
}

// Load starts from defaults, merges the YAML file at path when given, then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UnmarshalYAML keeps defaults for unset keys and accepts durations in Go
// syntax ("5s", "30m"); yaml.v3 has no native time.Duration support.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		HTTPAddr       string `yaml:"http_addr"`
		MySQLDSN       string `yaml:"mysql_dsn"`
		RedisAddr      string `yaml:"redis_addr"`
		Salt           string `yaml:"salt"`
		StorageTimeout string `yaml:"storage_timeout"`
		CacheTTL       string `yaml:"cache_ttl"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.HTTPAddr != "" {
		c.HTTPAddr = raw.HTTPAddr
	}
	if raw.MySQLDSN != "" {
		c.MySQLDSN = raw.MySQLDSN
	}
	if raw.RedisAddr != "" {
		c.RedisAddr = raw.RedisAddr
	}
	if raw.Salt != "" {
		c.Salt = raw.Salt
	}
	if raw.StorageTimeout != "" {
		d, err := time.ParseDuration(raw.StorageTimeout)
		if err != nil {
			return fmt.Errorf("storage_timeout: %w", err)
		}
		c.StorageTimeout = d
	}
	if raw.CacheTTL != "" {
		d, err := time.ParseDuration(raw.CacheTTL)
		if err != nil {
			return fmt.Errorf("cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.HTTPAddr, "SECKILL_HTTP_ADDR")
	setString(&c.MySQLDSN, "SECKILL_MYSQL_DSN")
	setString(&c.RedisAddr, "SECKILL_REDIS_ADDR")
	setString(&c.Salt, "SECKILL_SALT")
	setDuration(&c.StorageTimeout, "SECKILL_STORAGE_TIMEOUT")
	setDuration(&c.CacheTTL, "SECKILL_CACHE_TTL")
}

func (c Config) Validate() error {
	if c.Salt == "" {
		return errors.New("config: salt is required")
	}
	if c.StorageTimeout <= 0 {
		return errors.New("config: storage_timeout must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
