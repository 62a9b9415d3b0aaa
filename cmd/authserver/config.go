package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// duration parses YAML scalars like "2h" or "30s".
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = duration(parsed)
	return nil
}

type jwtConfig struct {
	Secret string   `yaml:"secret"`
	Issuer string   `yaml:"issuer"`
	Leeway duration `yaml:"leeway"`
}

type sessionConfig struct {
	CookieName       string   `yaml:"cookie_name"`
	RefreshThreshold duration `yaml:"refresh_threshold"`
	CookieSecure     *bool    `yaml:"cookie_secure"`
}

type adminConfig struct {
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	FullName string `yaml:"full_name"`
	Password string `yaml:"password"`
}

type serverConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	DatabaseURL    string        `yaml:"database_url"`
	RedisAddr      string        `yaml:"redis_addr"`
	MetricsEnabled *bool         `yaml:"metrics_enabled"`
	JWT            jwtConfig     `yaml:"jwt"`
	Session        sessionConfig `yaml:"session"`
	BootstrapAdmin adminConfig   `yaml:"bootstrap_admin"`
}

// loadConfig reads the optional YAML file and applies AUTHCORE_*
// environment overrides on top. Environment always wins so deployments
// can keep secrets out of the file.
func loadConfig(path string) (*serverConfig, error) {
	cfg := &serverConfig{
		ListenAddr: ":8080",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return cfg, nil
}

func applyEnv(cfg *serverConfig) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.ListenAddr, "AUTHCORE_LISTEN_ADDR")
	setString(&cfg.DatabaseURL, "AUTHCORE_DATABASE_URL")
	setString(&cfg.RedisAddr, "AUTHCORE_REDIS_ADDR")
	setString(&cfg.JWT.Secret, "AUTHCORE_JWT_SECRET")
	setString(&cfg.BootstrapAdmin.Email, "AUTHCORE_ADMIN_EMAIL")
	setString(&cfg.BootstrapAdmin.Username, "AUTHCORE_ADMIN_USERNAME")
	setString(&cfg.BootstrapAdmin.Password, "AUTHCORE_ADMIN_PASSWORD")

	if v := os.Getenv("AUTHCORE_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Session.CookieSecure = &b
		}
	}
}
