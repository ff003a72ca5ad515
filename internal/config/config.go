// Package config loads runtime settings from the environment (and an optional
// .env file) and holds the realtime limits shared by the server packages.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env  string `mapstructure:"ENV"`
	Port string `mapstructure:"PORT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	JWTIssuer  string        `mapstructure:"JWT_ISSUER"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	// Comma separated list; "*" allows every origin.
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`

	EventRatePerSecond float64 `mapstructure:"EVENT_RATE_PER_SEC"`
	EventBurst         int     `mapstructure:"EVENT_BURST"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every key
	// needs a default to be picked up by Unmarshal.
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=user password=password dbname=heartline port=5432 sslmode=disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "heartline")
	v.SetDefault("SESSION_TTL", 72*time.Hour)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("EVENT_RATE_PER_SEC", DefaultEventRatePerSecond)
	v.SetDefault("EVENT_BURST", DefaultEventBurst)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.EventRatePerSecond <= 0 {
		c.EventRatePerSecond = DefaultEventRatePerSecond
	}
	if c.EventBurst <= 0 {
		c.EventBurst = DefaultEventBurst
	}
	return nil
}

// Origins returns the parsed ALLOWED_ORIGINS list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, strings.TrimRight(o, "/"))
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
