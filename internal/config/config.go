package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the global ~/.livechat/config.toml. Every field can be
// overridden with its LIVECHAT_* environment variable.
type Config struct {
	DefaultProfile string          `toml:"default_profile" env:"LIVECHAT_PROFILE"`
	Store          StoreConfig     `toml:"store"`
	Broadcast      BroadcastConfig `toml:"broadcast"`
	Redis          RedisConfig     `toml:"redis"`
	Relay          RelayConfig     `toml:"relay"`
}

type StoreConfig struct {
	// Backend is "sqlite" (profile file) or "redis".
	Backend string `toml:"backend" env:"LIVECHAT_STORE_BACKEND" env-default:"sqlite" validate:"oneof=sqlite redis"`
}

type BroadcastConfig struct {
	// Transport is "relay" (livechatd over a unix socket), "redis", or
	// "local" (tabs inside one process only).
	Transport string `toml:"transport" env:"LIVECHAT_BROADCAST_TRANSPORT" env-default:"relay" validate:"oneof=relay redis local"`
	QueueSize int    `toml:"queue_size" env:"LIVECHAT_BROADCAST_QUEUE_SIZE" env-default:"256" validate:"min=1"`
}

type RedisConfig struct {
	Addr     string `toml:"addr" env:"LIVECHAT_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `toml:"password" env:"LIVECHAT_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"LIVECHAT_REDIS_DB" validate:"min=0"`
	Prefix   string `toml:"prefix" env:"LIVECHAT_REDIS_PREFIX" env-default:"livechat:"`
}

type RelayConfig struct {
	// MetricsAddr enables the relay's /metrics listener when set.
	MetricsAddr string `toml:"metrics_addr" env:"LIVECHAT_RELAY_METRICS_ADDR"`
}

var validate = validator.New()

// Load reads config from the given path, then applies environment
// overrides and defaults. Returns error if the file is missing or a value
// is out of range.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrDefault is Load, falling back to environment and defaults alone
// when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		var cfg Config
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		if err := validate.Struct(&cfg); err != nil {
			return nil, fmt.Errorf("config from env: %w", err)
		}
		return &cfg, nil
	}
	return Load(path)
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
