package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the single explicit configuration surface. It is loaded once in
// main after the .env loader has run; nothing else reads environment state.
type Config struct {
	Addr        string `envconfig:"ADDR" default:":8081"`
	DatabaseDSN string `envconfig:"DB_DSN" required:"true"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	JWTSecret      string        `envconfig:"JWT_SECRET" default:"dev-insecure-secret-change"`
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`

	RefreshTokenTTL     time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`
	RefreshCookieName   string        `envconfig:"REFRESH_COOKIE_NAME" default:"refresh_token"`
	RefreshCookieSecure bool          `envconfig:"REFRESH_COOKIE_SECURE" default:"false"`
}

func loadConfig() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
