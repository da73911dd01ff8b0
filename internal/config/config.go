// Package config provides the structures and loader for the application config.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the top-level configuration shared by the CLI and the fixture API.
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	API             `yaml:"api"`
	Session         `yaml:"session"`
	RedisConnection `yaml:"redis_connection"`
	Fixture         `yaml:"fixture"`
}

// API configures the outbound HTTP client.
type API struct {
	BaseURL   string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:8000/api"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
	RateLimit float64       `yaml:"rate_limit" env-default:"0"`
	RateBurst int           `yaml:"rate_burst" env-default:"1"`
}

// Session configures where the token and user projection are persisted.
// Backend is either "file" or "redis".
type Session struct {
	Backend string        `yaml:"backend" env-default:"file"`
	File    string        `yaml:"file" env:"SESSION_FILE"`
	TTL     time.Duration `yaml:"ttl" env-default:"168h"`
}

// RedisConnection configures the shared redis session store.
type RedisConnection struct {
	Addr        string        `yaml:"addr" env-default:"localhost:6379"`
	Password    string        `yaml:"password"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"3s"`
}

// Fixture configures the in-memory development backend.
type Fixture struct {
	Addr         string        `yaml:"addr" env-default:"localhost:8000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-default:"fixture-secret"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

// MustLoad reads the config pointed to by CONFIG_PATH and exits on failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// Load reads the config from an explicit path. Used by tests.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}
