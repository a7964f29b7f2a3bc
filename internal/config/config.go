package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv string `yaml:"app_env"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`

	Workers struct {
		Count      int           `yaml:"count"`
		QueueSize  int           `yaml:"queue_size"`
		Retries    int           `yaml:"retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"workers"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		ReportTo string `yaml:"report_to"`
	} `yaml:"smtp"`

	Push struct {
		Endpoint  string `yaml:"endpoint"`
		ServerKey string `yaml:"server_key"`
		PerSecond int    `yaml:"per_second"`
	} `yaml:"push"`

	Sentry struct {
		DSN string `yaml:"dsn"`
	} `yaml:"sentry"`

	Locale string `yaml:"locale"`

	Feed struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"feed"`

	Nickname struct {
		Adjectives      []string `yaml:"adjectives"`
		Nouns           []string `yaml:"nouns"`
		CharacterImages []string `yaml:"character_images"`
	} `yaml:"nickname"`
}

// Load reads the yaml file at path (optional) and overlays environment
// variables, loading a .env file first when one exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("Config file %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Sentry.DSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{AppEnv: "development", Locale: "ko"}
	cfg.Server.Addr = ":8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Auth.Issuer = "vaxreview"
	cfg.Workers.Count = 4
	cfg.Workers.QueueSize = 100
	cfg.Workers.Retries = 3
	cfg.Workers.RetryDelay = 2 * time.Second
	cfg.SMTP.Port = 587
	cfg.Push.Endpoint = "https://fcm.googleapis.com/fcm/send"
	cfg.Push.PerSecond = 50
	cfg.Feed.PageSize = 10
	return cfg
}

func (c *Config) applyEnv() error {
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	c.Postgres.DSN = getEnv("DATABASE_URL", c.Postgres.DSN)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)
	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.User = getEnv("SMTP_USER", c.SMTP.User)
	c.SMTP.Password = getEnv("SMTP_PASSWORD", c.SMTP.Password)
	c.SMTP.From = getEnv("SMTP_FROM", c.SMTP.From)
	c.SMTP.ReportTo = getEnv("REPORT_EMAIL", c.SMTP.ReportTo)
	c.Push.ServerKey = getEnv("FCM_SERVER_KEY", c.Push.ServerKey)
	c.Sentry.DSN = getEnv("SENTRY_DSN", c.Sentry.DSN)
	c.Locale = getEnv("LOCALE", c.Locale)

	var err error
	if c.SMTP.Port, err = getEnvInt("SMTP_PORT", c.SMTP.Port); err != nil {
		return err
	}
	if c.Workers.Count, err = getEnvInt("WORKER_COUNT", c.Workers.Count); err != nil {
		return err
	}
	if c.Feed.PageSize, err = getEnvInt("FEED_PAGE_SIZE", c.Feed.PageSize); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Workers.Count < 1 || c.Workers.QueueSize < 1 {
		return fmt.Errorf("workers: count and queue_size must be positive")
	}
	if c.Feed.PageSize < 1 {
		return fmt.Errorf("feed: page_size must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
