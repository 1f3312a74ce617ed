// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type Config struct {
	Port   string `env:"PORT" envDefault:"8000"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	// RedisURL backs the realtime document store. Empty keeps documents in
	// process memory, which only suits a single instance.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AdminEmails []string      `env:"ADMIN_EMAILS" envSeparator:","`

	Google Google `envPrefix:"GOOGLE_"`
	R2     R2     `envPrefix:"R2_"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	FlagsRefresh   string          `env:"FLAGS_REFRESH" envDefault:"@every 5m"`
	FlagsTimeout   time.Duration   `env:"FLAGS_TIMEOUT" envDefault:"10s"`
	FlagDefaults   map[string]bool `env:"FLAG_DEFAULTS" envSeparator:"," envKeyValSeparator:"="`
	RateLimitRPS   float64         `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int             `env:"RATE_LIMIT_BURST" envDefault:"20"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type Google struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// Enabled reports whether Google sign-in was configured.
func (g Google) Enabled() bool {
	return g.ClientID != ""
}

type R2 struct {
	Endpoint      string `env:"ENDPOINT"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	Bucket        string `env:"BUCKET_NAME"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// Enabled reports whether image storage was configured.
func (r R2) Enabled() bool {
	return r.Endpoint != "" || r.AccessKey != "" || r.Bucket != ""
}

func (c Config) Production() bool {
	return c.AppEnv == EnvProduction
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads a .env file outside production and parses the environment.
func Load() (Config, error) {
	if os.Getenv("APP_ENV") != EnvProduction {
		_ = godotenv.Load()
	}
	return Parse(env.Options{})
}

// Parse parses configuration using opts, so tests can supply their own
// environment.
func Parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Production() && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.R2.Enabled() {
		missing := []string{}
		for name, v := range map[string]string{
			"R2_ENDPOINT":        c.R2.Endpoint,
			"R2_ACCESS_KEY":      c.R2.AccessKey,
			"R2_SECRET_KEY":      c.R2.SecretKey,
			"R2_BUCKET_NAME":     c.R2.Bucket,
			"R2_PUBLIC_BASE_URL": c.R2.PublicBaseURL,
		} {
			if v == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			errs = append(errs, fmt.Errorf("incomplete R2 configuration, missing %s", strings.Join(missing, ", ")))
		}
	}
	if c.Google.Enabled() && (c.Google.ClientSecret == "" || c.Google.RedirectURL == "") {
		errs = append(errs, errors.New("GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URL are required with GOOGLE_CLIENT_ID"))
	}

	return errors.Join(errs...)
}
