// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads the accounts service configuration.
//
// Values are layered, later layers winning: built-in defaults, an optional
// YAML file, ACCOUNTS_* environment variables (plus DATABASE_URL), and
// finally command-line flags the operator set explicitly.
package config

import (
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ACCOUNTS_"

// Default values.
const (
	DefaultServerAddr      = ":8080"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultLogFormat       = "json"
	DefaultLogLevel        = "info"
	DefaultMaxConns        = 10
	DefaultPingAttempts    = 5
	DefaultBcryptCost      = 12
	DefaultShutdownTimeout = 15 * time.Second
	DefaultCookieTTL       = 30 * 24 * time.Hour
	DefaultMailgunBaseURL  = "https://api.mailgun.net"
	DefaultMailgunTimeout  = 5 * time.Second
	DefaultRedisAddr       = "127.0.0.1:6379"
	DefaultEventChannel    = "accounts.account_deleted"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"    envPrefix:"SERVER_"`
	Metrics   MetricsConfig   `koanf:"metrics"   envPrefix:"METRICS_"`
	Log       LogConfig       `koanf:"log"       envPrefix:"LOG_"`
	Database  DatabaseConfig  `koanf:"database"  envPrefix:"DATABASE_"`
	Security  SecurityConfig  `koanf:"security"  envPrefix:"SECURITY_"`
	Reset     ResetConfig     `koanf:"reset"     envPrefix:"RESET_"`
	Cookie    CookieConfig    `koanf:"cookie"    envPrefix:"COOKIE_"`
	Mailgun   MailgunConfig   `koanf:"mailgun"   envPrefix:"MAILGUN_"`
	Recaptcha RecaptchaConfig `koanf:"recaptcha" envPrefix:"RECAPTCHA_"`
	S3        S3Config        `koanf:"s3"        envPrefix:"S3_"`
	Redis     RedisConfig     `koanf:"redis"     envPrefix:"REDIS_"`
}

// ServerConfig configures the public HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr"             env:"ADDR"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" env:"ADDR"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format" env:"FORMAT"`
	Level  string `koanf:"level"  env:"LEVEL"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL          string `koanf:"url"           env:"URL"`
	MaxConns     int32  `koanf:"max_conns"     env:"MAX_CONNS"`
	PingAttempts uint64 `koanf:"ping_attempts" env:"PING_ATTEMPTS"`
}

// SecurityConfig configures password hashing.
type SecurityConfig struct {
	BcryptCost int `koanf:"bcrypt_cost" env:"BCRYPT_COST"`
}

// ResetConfig configures password reset links.
type ResetConfig struct {
	URL string `koanf:"url" env:"URL"`
}

// CookieConfig configures the session cookie.
type CookieConfig struct {
	Domain string        `koanf:"domain" env:"DOMAIN"`
	Secure bool          `koanf:"secure" env:"SECURE"`
	TTL    time.Duration `koanf:"ttl"    env:"TTL"`
}

// MailgunConfig configures outbound email.
type MailgunConfig struct {
	BaseURL    string        `koanf:"base_url"    env:"BASE_URL"`
	Domain     string        `koanf:"domain"      env:"DOMAIN"`
	APIKey     string        `koanf:"api_key"     env:"API_KEY"`
	SenderName string        `koanf:"sender_name" env:"SENDER_NAME"`
	Timeout    time.Duration `koanf:"timeout"     env:"TIMEOUT"`
}

// RecaptchaConfig configures captcha checks on reset initiation. An empty
// Secret disables them.
type RecaptchaConfig struct {
	Secret string `koanf:"secret" env:"SECRET"`
}

// S3Config configures the avatar bucket. Endpoint is only set for
// S3-compatible stores such as MinIO.
type S3Config struct {
	Endpoint        string `koanf:"endpoint"          env:"ENDPOINT"`
	Region          string `koanf:"region"            env:"REGION"`
	Bucket          string `koanf:"bucket"            env:"BUCKET"`
	AccessKeyID     string `koanf:"access_key_id"     env:"ACCESS_KEY_ID"`
	SecretAccessKey string `koanf:"secret_access_key" env:"SECRET_ACCESS_KEY"`
}

// RedisConfig configures the account event channel.
type RedisConfig struct {
	Addr     string `koanf:"addr"     env:"ADDR"`
	Password string `koanf:"password" env:"PASSWORD"`
	DB       int    `koanf:"db"       env:"DB"`
	Channel  string `koanf:"channel"  env:"CHANNEL"`
}

// legacyEnv holds unprefixed variables honored for compatibility with
// existing deployments.
type legacyEnv struct {
	DatabaseURL string `env:"DATABASE_URL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Metrics:  MetricsConfig{Addr: DefaultMetricsAddr},
		Log:      LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Database: DatabaseConfig{MaxConns: DefaultMaxConns, PingAttempts: DefaultPingAttempts},
		Security: SecurityConfig{BcryptCost: DefaultBcryptCost},
		Cookie:   CookieConfig{Secure: true, TTL: DefaultCookieTTL},
		Mailgun: MailgunConfig{
			BaseURL:    DefaultMailgunBaseURL,
			SenderName: "Accounts",
			Timeout:    DefaultMailgunTimeout,
		},
		Redis: RedisConfig{Addr: DefaultRedisAddr, Channel: DefaultEventChannel},
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"metrics-addr": "metrics.addr",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"database-url": "database.url",
}

// BindFlags registers the configuration flags on fs. Only flags the
// operator sets override lower layers.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("addr", DefaultServerAddr, "public HTTP listen address")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics and health listen address (empty disables)")
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("database-url", "", "PostgreSQL connection URL")
}

// Load builds the configuration from path (optional), the environment and
// fs (optional). The result is not validated.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
		if err := unmarshal(k, &cfg); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	var legacy legacyEnv
	if err := env.Parse(&legacy); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}
	if legacy.DatabaseURL != "" {
		cfg.Database.URL = legacy.DatabaseURL
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if fs != nil {
		k := koanf.New(".")
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
		if err := unmarshal(k, &cfg); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	return &cfg, nil
}

func unmarshal(k *koanf.Koanf, cfg *Config) error {
	//nolint:wrapcheck // callers attach the layer that failed
	return k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"})
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return invalid("server.addr", "server address is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "log format must be json or text")
	}
	if err := c.ValidateDeletion(); err != nil {
		return err
	}
	if err := absoluteURL("reset.url", c.Reset.URL); err != nil {
		return err
	}
	if err := absoluteURL("mailgun.base_url", c.Mailgun.BaseURL); err != nil {
		return err
	}
	if c.Mailgun.Domain == "" || c.Mailgun.APIKey == "" {
		return invalid("mailgun", "mailgun domain and API key are required")
	}
	if c.Cookie.TTL <= 0 {
		return invalid("cookie.ttl", "cookie TTL must be positive")
	}
	return nil
}

// ValidateDatabase checks the database settings alone.
func (c *Config) ValidateDatabase() error {
	if c.Database.URL == "" {
		return invalid("database.url", "database URL is required")
	}
	if c.Database.MaxConns < 1 {
		return invalid("database.max_conns", "max connections must be at least 1")
	}
	return nil
}

// ValidateDeletion checks the settings account deletion depends on.
func (c *Config) ValidateDeletion() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.S3.Region == "" || c.S3.Bucket == "" {
		return invalid("s3", "s3 region and bucket are required")
	}
	if c.Redis.Addr == "" {
		return invalid("redis.addr", "redis address is required")
	}
	if c.Redis.Channel == "" {
		return invalid("redis.channel", "redis channel is required")
	}
	return nil
}

func absoluteURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid(key, "must be an absolute URL")
	}
	return nil
}

func invalid(key, msg string) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf("%s", msg)
}
