package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration, loaded from a YAML file
// with environment variable overrides on top.
type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
		// debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr        string `yaml:"addr"`
		MetricsAddr string `yaml:"metrics_addr"`
		// Public base URL, e.g. https://goals.example.com. Also the
		// WebAuthn relying-party origin.
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Storage struct {
		DSN string `yaml:"dsn"`
	} `yaml:"storage"`

	Session struct {
		// redis | memory
		Driver     string `yaml:"driver"`
		CookieName string `yaml:"cookie_name"`
		Secure     bool   `yaml:"secure"`
		TTL        string `yaml:"ttl"`
		Redis      struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"session"`

	Auth struct {
		// TTL for emailed one-time codes.
		CodeTTL string `yaml:"code_ttl"`
	} `yaml:"auth"`

	WebAuthn struct {
		RPID          string `yaml:"rp_id"`
		RPDisplayName string `yaml:"rp_display_name"`
	} `yaml:"webauthn"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		From     string `yaml:"from"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"smtp"`
}

// Load reads the YAML config at path (optional, pass "" to skip) and
// applies env overrides. Missing values fall back to dev defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	envStr(&c.App.Env, "APP_ENV")
	envStr(&c.App.LogLevel, "LOG_LEVEL")
	envStr(&c.Server.Addr, "SERVER_ADDR")
	envStr(&c.Server.MetricsAddr, "METRICS_ADDR")
	envStr(&c.Server.BaseURL, "BASE_URL")
	envStr(&c.Storage.DSN, "DATABASE_DSN")
	envStr(&c.Session.Driver, "SESSION_DRIVER")
	envStr(&c.Session.Redis.Addr, "REDIS_ADDR")
	envInt(&c.Session.Redis.DB, "REDIS_DB")
	envStr(&c.SMTP.Host, "SMTP_HOST")
	envInt(&c.SMTP.Port, "SMTP_PORT")
	envStr(&c.SMTP.From, "SMTP_FROM")
	envStr(&c.SMTP.Username, "SMTP_USER")
	envStr(&c.SMTP.Password, "SMTP_PASSWORD")
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sg_session"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "24h"
	}
	if c.Auth.CodeTTL == "" {
		c.Auth.CodeTTL = "15m"
	}
	if c.WebAuthn.RPDisplayName == "" {
		c.WebAuthn.RPDisplayName = "Silly Goals"
	}
}

// SessionTTL returns the parsed session TTL.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.Session.TTL, 24*time.Hour)
}

// CodeTTL returns the parsed one-time code TTL.
func (c *Config) CodeTTL() time.Duration {
	return parseDuration(c.Auth.CodeTTL, 15*time.Minute)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
