// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
)

// Config holds configuration knobs for the HTTP server, storage, and auth.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	ProductsFile   string `env:"PRODUCTS_FILE" envDefault:"products.json"`
	ImageDir       string `env:"IMAGE_DIR" envDefault:"product_images"`
	ImageURLPrefix string `env:"IMAGE_URL_PREFIX" envDefault:"/product_images"`

	JWTSecret          string `env:"JWT_SECRET,required"`
	JWTAlgorithm       string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	TokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	AdminUsername      string `env:"ADMIN_USERNAME,required"`
	AdminPasswordHash  string `env:"ADMIN_PASSWORD_HASH,required"`

	SubscriberBuffer int   `env:"SUBSCRIBER_BUFFER" envDefault:"8"`
	MaxUploadBytes   int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

// TokenLifetime returns the configured token expiry window.
func (c Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenExpireMinutes) * time.Minute
}

// Load collects configuration from environment with defaults.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}
