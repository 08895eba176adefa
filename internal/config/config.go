package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"classroom-subscription/internal/infra/logging"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	FrontendURL string `yaml:"frontend_url"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type PaymentConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	Currency      string `yaml:"currency"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type StorageConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	EndpointURL     string `yaml:"endpoint_url"`
}

type VideoConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// RetentionConfig carries the sweep thresholds, each counted from account
// creation (warnings, deletion) or signup creation (signup TTL).
type RetentionConfig struct {
	FirstWarningAfter time.Duration `yaml:"first_warning_after"`
	FinalWarningAfter time.Duration `yaml:"final_warning_after"`
	DeleteAfter       time.Duration `yaml:"delete_after"`
	PendingSignupTTL  time.Duration `yaml:"pending_signup_ttl"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       logging.Config  `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Payment   PaymentConfig   `yaml:"payment"`
	Mail      MailConfig      `yaml:"mail"`
	Storage   StorageConfig   `yaml:"storage"`
	Video     VideoConfig     `yaml:"video"`
	Retention RetentionConfig `yaml:"retention"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse decodes, defaults, and validates a raw config document.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "usd"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Retention.FirstWarningAfter == 0 {
		cfg.Retention.FirstWarningAfter = 38 * 24 * time.Hour
	}
	if cfg.Retention.FinalWarningAfter == 0 {
		cfg.Retention.FinalWarningAfter = 44 * 24 * time.Hour
	}
	if cfg.Retention.DeleteAfter == 0 {
		cfg.Retention.DeleteAfter = 45 * 24 * time.Hour
	}
	if cfg.Retention.PendingSignupTTL == 0 {
		cfg.Retention.PendingSignupTTL = 24 * time.Hour
	}

	// validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.Payment.SecretKey == "" || cfg.Payment.WebhookSecret == "" {
		return nil, errors.New("payment.secret_key and payment.webhook_secret are required")
	}
	if cfg.Payment.SuccessURL == "" || cfg.Payment.CancelURL == "" {
		return nil, errors.New("payment.success_url and payment.cancel_url are required")
	}
	r := cfg.Retention
	if !(r.FirstWarningAfter < r.FinalWarningAfter && r.FinalWarningAfter < r.DeleteAfter) {
		return nil, fmt.Errorf("retention thresholds must be ordered: first (%s) < final (%s) < delete (%s)",
			r.FirstWarningAfter, r.FinalWarningAfter, r.DeleteAfter)
	}

	return &cfg, nil
}
