package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingDSN       = errors.New("DB_DSN is not set")
	ErrMissingRedisAddr = errors.New("REDIS_ADDR is not set")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")
	ErrUnknownDriver    = errors.New("DB_DRIVER must be mysql or sqlite")
)

// Config holds the process settings read from .env and the environment.
type Config struct {
	Env           string        `mapstructure:"APP_ENV"`
	Port          string        `mapstructure:"APP_PORT"`
	DBDriver      string        `mapstructure:"DB_DRIVER"`
	DBDSN         string        `mapstructure:"DB_DSN"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	FlashTTL      time.Duration `mapstructure:"FLASH_TTL"`
	AdminUsername string        `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string        `mapstructure:"ADMIN_PASSWORD"`
}

var keys = []string{
	"APP_ENV", "APP_PORT", "DB_DRIVER", "DB_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"JWT_SECRET", "SESSION_TTL", "FLASH_TTL", "ADMIN_USERNAME", "ADMIN_PASSWORD",
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may carry everything
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("FLASH_TTL", 10*time.Minute)
	// AutomaticEnv only answers Get for keys viper already knows about
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	if c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		return ErrUnknownDriver
	}
	if c.DBDSN == "" {
		return ErrMissingDSN
	}
	if c.RedisAddr == "" {
		return ErrMissingRedisAddr
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
